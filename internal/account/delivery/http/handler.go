package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/restaurant-discovery/internal/account/domain"
	"github.com/tair/restaurant-discovery/internal/account/usecase/command"
	"github.com/tair/restaurant-discovery/pkg/logger"
	"github.com/tair/restaurant-discovery/pkg/middleware"
	"github.com/tair/restaurant-discovery/pkg/validation"
)

// Commands groups the account use cases
type Commands struct {
	Register             *command.RegisterHandler
	Login                *command.LoginHandler
	ChangePassword       *command.ChangePasswordHandler
	RequestPasswordReset *command.RequestPasswordResetHandler
	ResetPassword        *command.ResetPasswordHandler
}

// AccountHandler serves signup, login and password management
type AccountHandler struct {
	commands *Commands
	authn    *middleware.Authenticator
	limiter  *middleware.RateLimiter
	secure   bool

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	authCounter    *prometheus.CounterVec
}

// CookieSecure marks the login cookie Secure. Off in development.
type CookieSecure bool

// NewAccountHandlerWithDI creates the account handler and registers its
// collectors with reg
func NewAccountHandlerWithDI(
	commands *Commands,
	authn *middleware.Authenticator,
	limiter *middleware.RateLimiter,
	secure CookieSecure,
	reg prometheus.Registerer,
) (*AccountHandler, error) {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_service_requests_total",
			Help: "Total number of requests to account endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "account_service_request_duration_seconds",
			Help:    "Duration of account requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	authCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_service_auth_attempts_total",
			Help: "Signup and login attempts by outcome",
		},
		[]string{"kind", "outcome"},
	)

	for _, c := range []prometheus.Collector{requestCounter, requestLatency, authCounter} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	return &AccountHandler{
		commands:       commands,
		authn:          authn,
		limiter:        limiter,
		secure:         bool(secure),
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		authCounter:    authCounter,
	}, nil
}

func (h *AccountHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := middleware.NewStatusRecorder(w)
		next.ServeHTTP(rw, r)

		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.StatusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// RegisterRoutes registers the /auth routes
func (h *AccountHandler) RegisterRoutes(router *mux.Router) {
	route := func(path string, handler http.HandlerFunc, methods ...string) {
		router.HandleFunc(path, h.metricsMiddleware(path, handler)).Methods(methods...)
	}

	route("/auth/signup", h.limiter.Limit(h.Signup), http.MethodPost)
	route("/auth/login", h.limiter.Limit(h.Login), http.MethodPost)
	route("/auth/logout", h.Logout, http.MethodPost)
	route("/auth/me", h.authn.Require(h.Me), http.MethodGet)
	route("/auth/password/change", h.authn.Require(h.ChangePassword), http.MethodPost)
	route("/auth/password/reset", h.limiter.Limit(h.RequestPasswordReset), http.MethodPost)
	route("/auth/password/reset/confirm", h.ResetPassword, http.MethodPost)
}

// Signup godoc
// @Summary Create an account
// @Description Registers a user and logs them in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body command.RegisterCommand true "Signup form"
// @Success 201 {object} object{success=bool,data=command.LoginResult}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /auth/signup [post]
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var cmd command.RegisterCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.commands.Register.Handle(r.Context(), cmd)
	if err != nil {
		h.authCounter.WithLabelValues("signup", "failure").Inc()
		h.respondError(w, r, err)
		return
	}

	h.authCounter.WithLabelValues("signup", "success").Inc()
	h.setTokenCookie(w, result)
	middleware.RespondJSON(w, http.StatusCreated, middleware.Response{
		Success: true,
		Message: "Account created",
		Data:    result,
	})
}

// Login godoc
// @Summary Log in
// @Description Returns a bearer token and sets the access_token cookie. Form posts with a next field are redirected there.
// @Tags Auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body command.LoginCommand true "Credentials"
// @Success 200 {object} object{success=bool,data=command.LoginResult}
// @Success 303
// @Failure 401 {object} object{success=bool,error=string}
// @Router /auth/login [post]
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var cmd command.LoginCommand
	var next string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		cmd.Username = r.PostForm.Get("username")
		cmd.Password = r.PostForm.Get("password")
		next = r.PostForm.Get("next")
	}

	result, err := h.commands.Login.Handle(r.Context(), cmd)
	if err != nil {
		h.authCounter.WithLabelValues("login", "failure").Inc()
		h.respondError(w, r, err)
		return
	}

	h.authCounter.WithLabelValues("login", "success").Inc()
	h.setTokenCookie(w, result)

	if safeRedirect(next) {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	middleware.RespondJSON(w, http.StatusOK, middleware.Response{
		Success: true,
		Message: "Login successful",
		Data:    result,
	})
}

// Logout godoc
// @Summary Log out
// @Description Clears the access_token cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} object{success=bool,message=string}
// @Router /auth/logout [post]
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	middleware.RespondJSON(w, http.StatusOK, middleware.Response{Success: true, Message: "Logged out"})
}

// Me godoc
// @Summary Current identity
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=object{user_id=int,username=string,role=string}}
// @Failure 401 {object} object{success=bool,error=string}
// @Router /auth/me [get]
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	middleware.RespondJSON(w, http.StatusOK, middleware.Response{
		Success: true,
		Data: map[string]interface{}{
			"user_id":  userID,
			"username": middleware.Username(r.Context()),
			"role":     middleware.Role(r.Context()),
		},
	})
}

// ChangePassword godoc
// @Summary Change password
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body command.ChangePasswordCommand true "Passwords"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 401 {object} object{success=bool,error=string}
// @Router /auth/password/change [post]
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var cmd command.ChangePasswordCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	cmd.UserID, _ = middleware.UserID(r.Context())

	if err := h.commands.ChangePassword.Handle(r.Context(), cmd); err != nil {
		h.respondError(w, r, err)
		return
	}

	middleware.RespondJSON(w, http.StatusOK, middleware.Response{Success: true, Message: "Password changed"})
}

// RequestPasswordReset godoc
// @Summary Request a password reset link
// @Description Always accepted so that registered addresses cannot be discovered
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body command.RequestPasswordResetCommand true "Email"
// @Success 202 {object} object{success=bool,message=string}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /auth/password/reset [post]
func (h *AccountHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var cmd command.RequestPasswordResetCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.commands.RequestPasswordReset.Handle(r.Context(), cmd); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			h.respondError(w, r, err)
			return
		}
		logger.Error(r.Context()).Err(err).Msg("Password reset request failed")
	}

	middleware.RespondJSON(w, http.StatusAccepted, middleware.Response{
		Success: true,
		Message: "If the address is registered, a reset link has been sent",
	})
}

// ResetPassword godoc
// @Summary Set a new password with a reset token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body command.ResetPasswordCommand true "Token and new password"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /auth/password/reset/confirm [post]
func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var cmd command.ResetPasswordCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.commands.ResetPassword.Handle(r.Context(), cmd); err != nil {
		h.respondError(w, r, err)
		return
	}

	middleware.RespondJSON(w, http.StatusOK, middleware.Response{Success: true, Message: "Password has been reset"})
}

func (h *AccountHandler) setTokenCookie(w http.ResponseWriter, result *command.LoginResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(result.ExpiresIn),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeRedirect accepts only local absolute paths
func safeRedirect(next string) bool {
	return strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\")
}

func (h *AccountHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		middleware.RespondJSON(w, http.StatusBadRequest, middleware.Response{
			Success: false,
			Error:   err.Error(),
			Data:    verr.Fields,
		})
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidResetToken):
		middleware.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrInactive):
		middleware.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrUserExists):
		middleware.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		middleware.RespondError(w, http.StatusNotFound, err.Error())
	default:
		logger.Error(r.Context()).
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		middleware.RespondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
