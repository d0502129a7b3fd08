package command_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tair/restaurant-discovery/internal/restaurant/diet"
	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
	"github.com/tair/restaurant-discovery/internal/restaurant/repository"
	"github.com/tair/restaurant-discovery/internal/restaurant/usecase/command"
	"github.com/tair/restaurant-discovery/internal/testfixture"
	"github.com/tair/restaurant-discovery/kafka"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.ReviewChangedEvent
	err    error
}

func (p *recordingPublisher) PublishReviewChanged(_ context.Context, event kafka.ReviewChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) PublishPasswordResetRequested(context.Context, kafka.PasswordResetRequestedEvent) error {
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type recordingInvalidator struct {
	ids []uint
}

func (c *recordingInvalidator) Invalidate(_ context.Context, restaurantID uint) {
	c.ids = append(c.ids, restaurantID)
}

func TestToggleBookmarkBurgerKing(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	alice := testfixture.User(t, db, "alice")
	bk := testfixture.Restaurant(t, db)

	handler := command.NewToggleBookmarkHandler(
		repository.NewGormRestaurantRepository(db),
		repository.NewGormBookmarkRepository(db),
	)

	for i, want := range []bool{true, false, true} {
		got, err := handler.Handle(ctx, command.ToggleCommand{UserID: alice.ID, RestaurantID: bk.ID})
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if got != want {
			t.Errorf("toggle %d = %v, want %v", i, got, want)
		}
	}
}

func TestToggleRejectsUnknownRestaurant(t *testing.T) {
	db := testfixture.NewDB(t)
	alice := testfixture.User(t, db, "alice")

	handler := command.NewToggleVisitedHandler(
		repository.NewGormRestaurantRepository(db),
		repository.NewGormVisitedRepository(db),
	)

	tests := []struct {
		name string
		cmd  command.ToggleCommand
	}{
		{"unknown restaurant", command.ToggleCommand{UserID: alice.ID, RestaurantID: 999}},
		{"missing restaurant", command.ToggleCommand{UserID: alice.ID}},
		{"missing user", command.ToggleCommand{RestaurantID: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Handle(context.Background(), tt.cmd)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestSubmitReviewRecomputesAverage(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	alice := testfixture.User(t, db, "alice")
	bob := testfixture.User(t, db, "bob")
	bk := testfixture.Restaurant(t, db)

	publisher := &recordingPublisher{}
	cache := &recordingInvalidator{}
	handler := command.NewSubmitReviewHandler(repository.NewGormReviewRepository(db), cache, publisher)

	first, err := handler.Handle(ctx, command.SubmitReviewCommand{UserID: alice.ID, RestaurantID: bk.ID, Rating: 5})
	if err != nil {
		t.Fatalf("first review: %v", err)
	}
	if !first.Created || first.AverageRating != 5.0 {
		t.Errorf("first = %+v, want created with average 5.0", first)
	}

	second, err := handler.Handle(ctx, command.SubmitReviewCommand{UserID: bob.ID, RestaurantID: bk.ID, Rating: 3, Comment: "ok"})
	if err != nil {
		t.Fatalf("second review: %v", err)
	}
	if second.AverageRating != 4.0 {
		t.Errorf("average = %v, want 4.0", second.AverageRating)
	}

	var stored domain.Restaurant
	if err := db.First(&stored, bk.ID).Error; err != nil {
		t.Fatalf("reload restaurant: %v", err)
	}
	if stored.AverageRating != 4.0 {
		t.Errorf("stored average = %v, want 4.0", stored.AverageRating)
	}

	if len(publisher.events) != 2 {
		t.Fatalf("published %d events, want 2", len(publisher.events))
	}
	if publisher.events[1].Action != kafka.ReviewCreated || publisher.events[1].AverageRating != 4.0 {
		t.Errorf("event = %+v", publisher.events[1])
	}
	if len(cache.ids) != 2 || cache.ids[0] != bk.ID {
		t.Errorf("invalidated = %v, want [%d %d]", cache.ids, bk.ID, bk.ID)
	}

	// resubmitting replaces the review
	third, err := handler.Handle(ctx, command.SubmitReviewCommand{UserID: bob.ID, RestaurantID: bk.ID, Rating: 4})
	if err != nil {
		t.Fatalf("update review: %v", err)
	}
	if third.Created || third.AverageRating != 4.5 {
		t.Errorf("update = %+v, want updated with average 4.5", third)
	}
	if publisher.events[2].Action != kafka.ReviewUpdated {
		t.Errorf("action = %s, want %s", publisher.events[2].Action, kafka.ReviewUpdated)
	}
}

func TestSubmitReviewSurvivesPublishFailure(t *testing.T) {
	db := testfixture.NewDB(t)
	alice := testfixture.User(t, db, "alice")
	bk := testfixture.Restaurant(t, db)

	publisher := &recordingPublisher{err: errors.New("broker down")}
	handler := command.NewSubmitReviewHandler(repository.NewGormReviewRepository(db), &recordingInvalidator{}, publisher)

	result, err := handler.Handle(context.Background(), command.SubmitReviewCommand{UserID: alice.ID, RestaurantID: bk.ID, Rating: 2})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.AverageRating != 2.0 {
		t.Errorf("average = %v, want 2.0", result.AverageRating)
	}
}

func TestSubmitReviewValidation(t *testing.T) {
	db := testfixture.NewDB(t)
	alice := testfixture.User(t, db, "alice")
	bk := testfixture.Restaurant(t, db)

	handler := command.NewSubmitReviewHandler(repository.NewGormReviewRepository(db), &recordingInvalidator{}, &recordingPublisher{})

	tests := []struct {
		name string
		cmd  command.SubmitReviewCommand
	}{
		{"rating zero", command.SubmitReviewCommand{UserID: alice.ID, RestaurantID: bk.ID, Rating: 0}},
		{"rating six", command.SubmitReviewCommand{UserID: alice.ID, RestaurantID: bk.ID, Rating: 6}},
		{"no restaurant", command.SubmitReviewCommand{UserID: alice.ID, Rating: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := handler.Handle(context.Background(), tt.cmd); !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestDeleteReviewOwnerOnly(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	alice := testfixture.User(t, db, "alice")
	bob := testfixture.User(t, db, "bob")
	bk := testfixture.Restaurant(t, db)

	reviews := repository.NewGormReviewRepository(db)
	publisher := &recordingPublisher{}
	submit := command.NewSubmitReviewHandler(reviews, &recordingInvalidator{}, publisher)
	remove := command.NewDeleteReviewHandler(reviews, &recordingInvalidator{}, publisher)

	mine, err := submit.Handle(ctx, command.SubmitReviewCommand{UserID: alice.ID, RestaurantID: bk.ID, Rating: 5})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := submit.Handle(ctx, command.SubmitReviewCommand{UserID: bob.ID, RestaurantID: bk.ID, Rating: 3}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := remove.Handle(ctx, command.DeleteReviewCommand{ReviewID: mine.Review.ID, UserID: bob.ID}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	avg, err := remove.Handle(ctx, command.DeleteReviewCommand{ReviewID: mine.Review.ID, UserID: alice.ID})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if avg != 3.0 {
		t.Errorf("average = %v, want 3.0", avg)
	}
	last := publisher.events[len(publisher.events)-1]
	if last.Action != kafka.ReviewDeleted || last.RestaurantID != bk.ID {
		t.Errorf("event = %+v", last)
	}
}

func TestCreateRestaurant(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	italian := testfixture.Cuisine(t, db, "Italian")

	handler := command.NewCreateRestaurantHandler(repository.NewGormRestaurantRepository(db))

	created, err := handler.Handle(ctx, command.CreateRestaurantCommand{
		Name:        "  Pizza Hut ",
		City:        "Mumbai",
		CostForTwo:  600,
		DietType:    diet.NonVeg,
		OpeningTime: "11:00",
		ClosingTime: "23:00",
		CuisineIDs:  []uint{italian.ID},
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if created.ID == 0 || created.Name != "Pizza Hut" {
		t.Errorf("created = %+v", created)
	}

	tests := []struct {
		name string
		cmd  command.CreateRestaurantCommand
	}{
		{"missing name", command.CreateRestaurantCommand{City: "Pune", DietType: diet.Veg}},
		{"bad diet", command.CreateRestaurantCommand{Name: "A", City: "Pune", DietType: diet.Type(9)}},
		{"bad hours", command.CreateRestaurantCommand{Name: "A", City: "Pune", DietType: diet.Veg, OpeningTime: "9am"}},
		{"unknown cuisine", command.CreateRestaurantCommand{Name: "A", City: "Pune", DietType: diet.Veg, CuisineIDs: []uint{404}}},
		{"negative cost", command.CreateRestaurantCommand{Name: "A", City: "Pune", DietType: diet.Veg, CostForTwo: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := handler.Handle(ctx, tt.cmd); !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCreateCuisineConflict(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	handler := command.NewCreateCuisineHandler(repository.NewGormCuisineRepository(db))

	if _, err := handler.Handle(ctx, command.CreateCuisineCommand{Name: "Chinese"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if _, err := handler.Handle(ctx, command.CreateCuisineCommand{Name: "chinese"}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
	if _, err := handler.Handle(ctx, command.CreateCuisineCommand{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestAddFoodAndImage(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	bk := testfixture.Restaurant(t, db)
	restaurants := repository.NewGormRestaurantRepository(db)

	addFood := command.NewAddFoodHandler(restaurants, repository.NewGormFoodRepository(db))
	food, err := addFood.Handle(ctx, command.AddFoodCommand{RestaurantID: bk.ID, Name: "Whopper", Price: 199, DietType: diet.Veg})
	if err != nil {
		t.Fatalf("AddFood: %v", err)
	}
	if food.ID == 0 {
		t.Error("food id not set")
	}
	if _, err := addFood.Handle(ctx, command.AddFoodCommand{RestaurantID: 999, Name: "X", DietType: diet.Veg}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	cache := &recordingInvalidator{}
	addImage := command.NewAddImageHandler(restaurants, cache)
	image, err := addImage.Handle(ctx, command.AddImageCommand{RestaurantID: bk.ID, Image: "restaurants/bk.jpg"})
	if err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	if image.ID == 0 || len(cache.ids) != 1 {
		t.Errorf("image = %+v, invalidated = %v", image, cache.ids)
	}
}
