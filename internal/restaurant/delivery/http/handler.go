package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
	"github.com/tair/restaurant-discovery/internal/restaurant/filter"
	"github.com/tair/restaurant-discovery/internal/restaurant/usecase/command"
	"github.com/tair/restaurant-discovery/internal/restaurant/usecase/query"
	"github.com/tair/restaurant-discovery/pkg/logger"
	"github.com/tair/restaurant-discovery/pkg/middleware"
)

// Commands groups the write-side handlers
type Commands struct {
	ToggleBookmark   *command.ToggleBookmarkHandler
	ToggleVisited    *command.ToggleVisitedHandler
	SubmitReview     *command.SubmitReviewHandler
	DeleteReview     *command.DeleteReviewHandler
	CreateCuisine    *command.CreateCuisineHandler
	CreateRestaurant *command.CreateRestaurantHandler
	AddFood          *command.AddFoodHandler
	AddImage         *command.AddImageHandler
}

// Queries groups the read-side handlers
type Queries struct {
	ListRestaurants *query.ListRestaurantsHandler
	GetRestaurant   *query.GetRestaurantHandler
	ListFoods       *query.ListFoodsHandler
	ListCuisines    *query.ListCuisinesHandler
	ListReviews     *query.ListReviewsHandler
	ListBookmarks   *query.ListBookmarksHandler
	ListVisited     *query.ListVisitedHandler
}

// RestaurantHandler handles HTTP requests for restaurants using CQRS pattern
type RestaurantHandler struct {
	commands *Commands
	queries  *Queries
	authn    *middleware.Authenticator
	limiter  *middleware.RateLimiter
	now      func() time.Time

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	requestSummary *prometheus.SummaryVec
	toggleCounter  *prometheus.CounterVec
	reviewCounter  *prometheus.CounterVec
}

// NewRestaurantHandlerWithDI creates a new restaurant handler and registers
// its collectors with reg
func NewRestaurantHandlerWithDI(
	commands *Commands,
	queries *Queries,
	authn *middleware.Authenticator,
	limiter *middleware.RateLimiter,
	reg prometheus.Registerer,
) (*RestaurantHandler, error) {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restaurant_service_requests_total",
			Help: "Total number of requests to restaurant service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "restaurant_service_request_duration_seconds",
			Help:    "Duration of restaurant service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	requestSummary := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "restaurant_service_request_duration_summary",
			Help: "Summary of request durations with percentiles",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.95: 0.01,
				0.99: 0.001,
			},
			MaxAge: 10 * time.Minute,
		},
		[]string{"method", "endpoint"},
	)

	toggleCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restaurant_service_toggles_total",
			Help: "Bookmark and visited toggles by resulting state",
		},
		[]string{"kind", "state"},
	)

	reviewCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restaurant_service_reviews_total",
			Help: "Review mutations by action",
		},
		[]string{"action"},
	)

	for _, c := range []prometheus.Collector{requestCounter, requestLatency, requestSummary, toggleCounter, reviewCounter} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	return &RestaurantHandler{
		commands:       commands,
		queries:        queries,
		authn:          authn,
		limiter:        limiter,
		now:            time.Now,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		requestSummary: requestSummary,
		toggleCounter:  toggleCounter,
		reviewCounter:  reviewCounter,
	}, nil
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *RestaurantHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := middleware.NewStatusRecorder(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.StatusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestSummary.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

// RegisterRoutes registers all restaurant routes
func (h *RestaurantHandler) RegisterRoutes(router *mux.Router) {
	route := func(path string, handler http.HandlerFunc, methods ...string) {
		router.HandleFunc(path, h.metricsMiddleware(path, handler)).Methods(methods...)
	}

	// Public routes, caller identified when a token is present
	route("/restaurants/", h.authn.Optional(h.ListRestaurants), http.MethodGet)
	route("/restaurants/{id:[0-9]+}/", h.authn.Optional(h.GetRestaurant), http.MethodGet)
	route("/restaurants/{id:[0-9]+}/foods/", h.ListFoods, http.MethodGet)
	route("/restaurants/{id:[0-9]+}/reviews/", h.ListReviews, http.MethodGet)
	route("/cuisines/", h.ListCuisines, http.MethodGet)

	// Authenticated routes
	route("/restaurants/toggle-bookmark/", h.authn.Require(h.limiter.Limit(h.ToggleBookmark)), http.MethodPost)
	route("/restaurants/toggle-visited/", h.authn.Require(h.limiter.Limit(h.ToggleVisited)), http.MethodPost)
	route("/restaurants/{id:[0-9]+}/review/", h.authn.Require(h.limiter.Limit(h.SubmitReview)), http.MethodPost)
	route("/reviews/{id:[0-9]+}/", h.authn.Require(h.DeleteReview), http.MethodDelete)
	route("/me/bookmarks/", h.authn.Require(h.ListBookmarks), http.MethodGet)
	route("/me/visited/", h.authn.Require(h.ListVisited), http.MethodGet)

	// Admin routes
	route("/admin/cuisines/", h.authn.RequireAdmin(h.CreateCuisine), http.MethodPost)
	route("/admin/restaurants/", h.authn.RequireAdmin(h.CreateRestaurant), http.MethodPost)
	route("/admin/restaurants/{id:[0-9]+}/foods/", h.authn.RequireAdmin(h.AddFood), http.MethodPost)
	route("/admin/restaurants/{id:[0-9]+}/images/", h.authn.RequireAdmin(h.AddImage), http.MethodPost)
}

// ListRestaurants godoc
// @Summary List restaurants
// @Description Filtered, paginated restaurant list (10 per page), annotated with the caller's bookmark and visited flags
// @Tags Restaurants
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Param cost_for_two_min query int false "Minimum cost for two"
// @Param cost_for_two_max query int false "Maximum cost for two"
// @Param diet_type query []string false "Diet types (1|2|3 or veg|non-veg|vegan)" collectionFormat(multi)
// @Param cuisines query []int false "Cuisine ids" collectionFormat(multi)
// @Param rating query []int false "Star ratings 1-5" collectionFormat(multi)
// @Param city query string false "City"
// @Param q query string false "Name contains"
// @Param spotlight query bool false "Spotlight only"
// @Param sort_by query string false "price_low or price_high"
// @Success 200 {object} object{success=bool,data=query.RestaurantPage}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /restaurants/ [get]
func (h *RestaurantHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	criteria, err := filter.ParseCriteria(r.URL.Query())
	if err != nil {
		middleware.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, ok := pageParam(r)
	if !ok {
		middleware.RespondError(w, http.StatusNotFound, "Invalid page")
		return
	}

	userID, _ := middleware.UserID(r.Context())
	result, err := h.queries.ListRestaurants.Handle(r.Context(), query.ListRestaurantsQuery{
		Criteria: criteria,
		Page:     page,
		UserID:   userID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	middleware.RespondJSON(w, http.StatusOK, middleware.Response{Success: true, Data: result})
}

// GetRestaurant godoc
// @Summary Get restaurant detail
// @Description Restaurant with images, cuisines, rating stats, opening state and the caller's flags
// @Tags Restaurants
// @Produce json
// @Param id path int true "Restaurant ID"
// @Success 200 {object} object{success=bool,data=query.RestaurantDetail}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /restaurants/{id}/ [get]
func (h *RestaurantHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.RespondError(w, http.StatusNotFound, "Restaurant not found")
		return
	}

	userID, _ := middleware.UserID(r.Context())
	detail, err := h.queries.GetRestaurant.Handle(r.Context(), query.GetRestaurantQuery{
		RestaurantID: id,
		UserID:       userID,
		Now:          h.now(),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	middleware.RespondJSON(w, http.StatusOK, middleware.Response{Success: true, Data: detail})
}

// ListFoods godoc
// @Summary Restaurant menu
// @Tags Restaurants
// @Produce json
// @Param id path int true "Restaurant ID"
// @Success 200 {object} object{success=bool,data=query.Menu}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /restaurants/{id}/foods/ [get]
func (h *RestaurantHandler) ListFoods(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.RespondError(w, http.StatusNotFound, "Restaurant not found")
		return
	}

	menu, err := h.queries.ListFoods.Handle(r.Context(), query.ListFoodsQuery{RestaurantID: id})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	middleware.RespondJSON(w, http.StatusOK, middleware.Response{Success: true, Data: menu})
}

// ListReviews godoc
// @Summary Restaurant reviews, newest first
// @Tags Reviews
// @Produce json
// @Param id path int true "Restaurant ID"
// @Param page query int false "Page number (1-based)"
// @Success 200 {object} object{success=bool,data=query.ReviewPage}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /restaurants/{id}/reviews/ [get]
func (h *RestaurantHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	page, pageOK := pageParam(r)
	if !ok || !pageOK {
		middleware.RespondError(w, http.StatusNotFound, "Not found")
		return
	}

	result, err := h.queries.ListReviews.Handle(r.Context(), query.ListReviewsQuery{RestaurantID: id, Page: page})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	middleware.RespondJSON(w, http.StatusOK, middleware.Response{Success: true, Data: result})
}

// ListCuisines godoc
// @Summary List cuisines
// @Tags Cuisines
// @Produce json
// @Success 200 {object} object{success=bool,data=[]domain.Cuisine}
// @Router /cuisines/ [get]
func (h *RestaurantHandler) ListCuisines(w http.ResponseWriter, r *http.Request) {
	cuisines, err := h.queries.ListCuisines.Handle(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	middleware.RespondJSON(w, http.StatusOK, middleware.Response{Success: true, Data: cuisines})
}

// ToggleBookmark godoc
// @Summary Toggle bookmark
// @Description Bookmarks the restaurant, or removes the bookmark when it exists
// @Tags Bookmarks
// @Security BearerAuth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param restaurant_id formData int true "Restaurant ID"
// @Success 200 {object} object{bookmarked=bool}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 401 {object} object{success=bool,error=string}
// @Router /restaurants/toggle-bookmark/ [post]
func (h *RestaurantHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "bookmarked", h.commands.ToggleBookmark.Handle)
}

// ToggleVisited godoc
// @Summary Toggle visited
// @Description Marks the restaurant visited, or clears the mark when it exists
// @Tags Visited
// @Security BearerAuth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param restaurant_id formData int true "Restaurant ID"
// @Success 200 {object} object{visited=bool}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 401 {object} object{success=bool,error=string}
// @Router /restaurants/toggle-visited/ [post]
func (h *RestaurantHandler) ToggleVisited(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "visited", h.commands.ToggleVisited.Handle)
}

func (h *RestaurantHandler) toggle(w http.ResponseWriter, r *http.Request, key string, handle func(context.Context, command.ToggleCommand) (bool, error)) {
	values, err := inputValues(r)
	if err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	restaurantID, err := strconv.ParseUint(values.Get("restaurant_id"), 10, 32)
	if err != nil || restaurantID == 0 {
		middleware.RespondError(w, http.StatusBadRequest, "restaurant_id must be a positive integer")
		return
	}

	userID, _ := middleware.UserID(r.Context())
	on, err := handle(r.Context(), command.ToggleCommand{UserID: userID, RestaurantID: uint(restaurantID)})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.toggleCounter.WithLabelValues(key, strconv.FormatBool(on)).Inc()
	middleware.RespondJSON(w, http.StatusOK, map[string]bool{key: on})
}

// SubmitReview godoc
// @Summary Rate and review a restaurant
// @Description Creates the caller's review or replaces it, then recomputes the restaurant's average rating
// @Tags Reviews
// @Security BearerAuth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path int true "Restaurant ID"
// @Param rating formData int true "Stars 1-5"
// @Param comment formData string false "Comment"
// @Success 200 {object} object{success=bool,data=object}
// @Success 201 {object} object{success=bool,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 401 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /restaurants/{id}/review/ [post]
func (h *RestaurantHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.RespondError(w, http.StatusNotFound, "Restaurant not found")
		return
	}

	values, err := inputValues(r)
	if err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	stars, err := strconv.Atoi(values.Get("rating"))
	if err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "rating must be an integer between 1 and 5")
		return
	}

	userID, _ := middleware.UserID(r.Context())
	result, err := h.commands.SubmitReview.Handle(r.Context(), command.SubmitReviewCommand{
		UserID:       userID,
		RestaurantID: id,
		Rating:       stars,
		Comment:      strings.TrimSpace(values.Get("comment")),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	status, message, action := http.StatusOK, "Review updated", "updated"
	if result.Created {
		status, message, action = http.StatusCreated, "Review created", "created"
	}
	h.reviewCounter.WithLabelValues(action).Inc()

	middleware.RespondJSON(w, status, middleware.Response{
		Success: true,
		Message: message,
		Data: map[string]interface{}{
			"review":         result.Review,
			"average_rating": result.AverageRating,
		},
	})
}

// DeleteReview godoc
// @Summary Delete a review
// @Description Deletes the caller's own review and recomputes the average rating
// @Tags Reviews
// @Security BearerAuth
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} object{success=bool,data=object{average_rating=number}}
// @Failure 403 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /reviews/{id}/ [delete]
func (h *RestaurantHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.RespondError(w, http.StatusNotFound, "Review not found")
		return
	}

	userID, _ := middleware.UserID(r.Context())
	avg, err := h.commands.DeleteReview.Handle(r.Context(), command.DeleteReviewCommand{ReviewID: id, UserID: userID})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.reviewCounter.WithLabelValues("deleted").Inc()
	middleware.RespondJSON(w, http.StatusOK, middleware.Response{
		Success: true,
		Message: "Review deleted",
		Data:    map[string]float64{"average_rating": avg},
	})
}

// ListBookmarks godoc
// @Summary Caller's bookmarked restaurants
// @Tags Bookmarks
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Success 200 {object} object{success=bool,data=query.RestaurantPage}
// @Failure 401 {object} object{success=bool,error=string}
// @Router /me/bookmarks/ [get]
func (h *RestaurantHandler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	h.listSaved(w, r, h.queries.ListBookmarks.Handle)
}

// ListVisited godoc
// @Summary Caller's visited restaurants
// @Tags Visited
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Success 200 {object} object{success=bool,data=query.RestaurantPage}
// @Failure 401 {object} object{success=bool,error=string}
// @Router /me/visited/ [get]
func (h *RestaurantHandler) ListVisited(w http.ResponseWriter, r *http.Request) {
	h.listSaved(w, r, h.queries.ListVisited.Handle)
}

func (h *RestaurantHandler) listSaved(w http.ResponseWriter, r *http.Request, handle func(context.Context, query.ListUserRestaurantsQuery) (*query.RestaurantPage, error)) {
	page, ok := pageParam(r)
	if !ok {
		middleware.RespondError(w, http.StatusNotFound, "Invalid page")
		return
	}

	userID, _ := middleware.UserID(r.Context())
	result, err := handle(r.Context(), query.ListUserRestaurantsQuery{UserID: userID, Page: page})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	middleware.RespondJSON(w, http.StatusOK, middleware.Response{Success: true, Data: result})
}

// CreateCuisine godoc
// @Summary Create a cuisine
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body command.CreateCuisineCommand true "Cuisine"
// @Success 201 {object} object{success=bool,data=domain.Cuisine}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 403 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /admin/cuisines/ [post]
func (h *RestaurantHandler) CreateCuisine(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateCuisineCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cuisine, err := h.commands.CreateCuisine.Handle(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	middleware.RespondJSON(w, http.StatusCreated, middleware.Response{
		Success: true,
		Message: "Cuisine created successfully",
		Data:    cuisine,
	})
}

// CreateRestaurant godoc
// @Summary Create a restaurant
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body command.CreateRestaurantCommand true "Restaurant"
// @Success 201 {object} object{success=bool,data=domain.Restaurant}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 403 {object} object{success=bool,error=string}
// @Router /admin/restaurants/ [post]
func (h *RestaurantHandler) CreateRestaurant(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateRestaurantCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	restaurant, err := h.commands.CreateRestaurant.Handle(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	middleware.RespondJSON(w, http.StatusCreated, middleware.Response{
		Success: true,
		Message: "Restaurant created successfully",
		Data:    restaurant,
	})
}

// AddFood godoc
// @Summary Add a menu item
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Restaurant ID"
// @Param request body command.AddFoodCommand true "Food"
// @Success 201 {object} object{success=bool,data=domain.Food}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /admin/restaurants/{id}/foods/ [post]
func (h *RestaurantHandler) AddFood(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.RespondError(w, http.StatusNotFound, "Restaurant not found")
		return
	}

	var cmd command.AddFoodCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	cmd.RestaurantID = id

	food, err := h.commands.AddFood.Handle(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	middleware.RespondJSON(w, http.StatusCreated, middleware.Response{
		Success: true,
		Message: "Food added successfully",
		Data:    food,
	})
}

// AddImage godoc
// @Summary Attach an image path
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Restaurant ID"
// @Param request body object{image=string} true "Stored image path"
// @Success 201 {object} object{success=bool,data=domain.RestaurantImage}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /admin/restaurants/{id}/images/ [post]
func (h *RestaurantHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.RespondError(w, http.StatusNotFound, "Restaurant not found")
		return
	}

	var cmd command.AddImageCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	cmd.RestaurantID = id

	image, err := h.commands.AddImage.Handle(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	middleware.RespondJSON(w, http.StatusCreated, middleware.Response{
		Success: true,
		Message: "Image added successfully",
		Data:    image,
	})
}

// HealthCheck godoc
// @Summary Health check
// @Description Check service health, database and cache connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} object{success=bool,message=string}
// @Failure 503 {object} object{success=bool,error=string}
// @Router /health [get]
func RegisterHealthCheck(router *mux.Router, db *sql.DB, redisClient *redis.Client) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.Error(ctx).Err(err).Msg("Health check: database unavailable")
			middleware.RespondError(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				logger.Error(ctx).Err(err).Msg("Health check: redis unavailable")
				middleware.RespondError(w, http.StatusServiceUnavailable, "Cache unavailable")
				return
			}
		}

		middleware.RespondJSON(w, http.StatusOK, middleware.Response{
			Success: true,
			Message: "Restaurant service is healthy",
		})
	}).Methods(http.MethodGet)
}

// respondError maps domain errors to status codes. Unexpected errors are
// logged and hidden behind a generic message.
func (h *RestaurantHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		middleware.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidRating), errors.Is(err, filter.ErrInvalidCriteria):
		middleware.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		middleware.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		middleware.RespondError(w, http.StatusConflict, err.Error())
	default:
		logger.Error(r.Context()).
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		middleware.RespondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// pageParam returns 0 when page is absent; anything not an integer is invalid.
func pageParam(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 0, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return page, true
}

// inputValues reads form fields, or a flat JSON object rendered as form values
func inputValues(r *http.Request) (url.Values, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	}

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	values := url.Values{}
	for key, v := range body {
		switch v := v.(type) {
		case nil:
		case string:
			values.Set(key, v)
		case float64:
			values.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			values.Set(key, fmt.Sprint(v))
		}
	}
	return values, nil
}
