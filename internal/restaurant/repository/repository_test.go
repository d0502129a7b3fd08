package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tair/restaurant-discovery/internal/restaurant/diet"
	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
	"github.com/tair/restaurant-discovery/internal/restaurant/filter"
	"github.com/tair/restaurant-discovery/internal/restaurant/repository"
	"github.com/tair/restaurant-discovery/internal/testfixture"
)

func intPtr(v int) *int { return &v }

func TestBookmarkToggleIsInvolution(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	user := testfixture.User(t, db, "alice")
	restaurant := testfixture.Restaurant(t, db)
	repo := repository.NewGormBookmarkRepository(db)

	// first toggle creates the row
	on, err := repo.Toggle(ctx, user.ID, restaurant.ID)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !on {
		t.Fatal("first toggle should report bookmarked")
	}
	if exists, _ := repo.Exists(ctx, user.ID, restaurant.ID); !exists {
		t.Fatal("expected a bookmark row after first toggle")
	}

	// second toggle removes it
	on, err = repo.Toggle(ctx, user.ID, restaurant.ID)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if on {
		t.Fatal("second toggle should report not bookmarked")
	}
	if exists, _ := repo.Exists(ctx, user.ID, restaurant.ID); exists {
		t.Fatal("bookmark row should be gone after second toggle")
	}
}

func TestVisitedToggleIsIndependentOfBookmarks(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	user := testfixture.User(t, db, "alice")
	restaurant := testfixture.Restaurant(t, db)

	bookmarks := repository.NewGormBookmarkRepository(db)
	visits := repository.NewGormVisitedRepository(db)

	if _, err := visits.Toggle(ctx, user.ID, restaurant.ID); err != nil {
		t.Fatalf("Toggle visited: %v", err)
	}
	if exists, _ := bookmarks.Exists(ctx, user.ID, restaurant.ID); exists {
		t.Error("visiting must not bookmark")
	}
	if exists, _ := visits.Exists(ctx, user.ID, restaurant.ID); !exists {
		t.Error("expected visited row")
	}
}

func TestConcurrentTogglesKeepAtMostOneRow(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	user := testfixture.User(t, db, "alice")
	restaurant := testfixture.Restaurant(t, db)
	repo := repository.NewGormBookmarkRepository(db)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Toggle(ctx, user.ID, restaurant.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Toggle: %v", err)
	}

	var count int64
	db.Model(&domain.Bookmark{}).Where("user_id = ? AND restaurant_id = ?", user.ID, restaurant.ID).Count(&count)
	if count > 1 {
		t.Fatalf("found %d bookmark rows, want at most 1", count)
	}
	// an even number of serialised toggles ends where it started
	if count != 0 {
		t.Errorf("after %d toggles expected no row, found %d", workers, count)
	}
}

func TestFlagsAndListRestaurants(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	user := testfixture.User(t, db, "alice")
	a := testfixture.Restaurant(t, db, testfixture.WithName("A"))
	b := testfixture.Restaurant(t, db, testfixture.WithName("B"))
	repo := repository.NewGormBookmarkRepository(db)

	if _, err := repo.Toggle(ctx, user.ID, b.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	flags, err := repo.Flags(ctx, user.ID, []uint{a.ID, b.ID})
	if err != nil {
		t.Fatalf("Flags: %v", err)
	}
	if flags[a.ID] || !flags[b.ID] {
		t.Errorf("flags = %v, want only %d", flags, b.ID)
	}

	anon, err := repo.Flags(ctx, 0, []uint{a.ID, b.ID})
	if err != nil || len(anon) != 0 {
		t.Errorf("anonymous flags = %v, %v", anon, err)
	}

	list, total, err := repo.ListRestaurants(ctx, user.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListRestaurants: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("ListRestaurants = %d items (total %d), want only B", len(list), total)
	}
}

func TestReviewUpsertRecomputesAverage(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	alice := testfixture.User(t, db, "alice")
	bob := testfixture.User(t, db, "bob")
	restaurant := testfixture.Restaurant(t, db)
	reviews := repository.NewGormReviewRepository(db)
	restaurants := repository.NewGormRestaurantRepository(db)

	// Given: no reviews, a 5 star review sets the average to 5.0
	res, err := reviews.Upsert(ctx, alice.ID, restaurant.ID, 5, "Great")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !res.Created || res.AverageRating != 5.0 {
		t.Fatalf("first review: created=%v avg=%v", res.Created, res.AverageRating)
	}

	// When: another user rates 3
	res, err = reviews.Upsert(ctx, bob.ID, restaurant.ID, 3, "Okay")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Then: the stored average is 4.0
	stored, err := restaurants.FindByID(ctx, restaurant.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if res.AverageRating != 4.0 || stored.AverageRating != 4.0 {
		t.Errorf("average = %v (stored %v), want 4.0", res.AverageRating, stored.AverageRating)
	}

	// re-rating updates in place
	res, err = reviews.Upsert(ctx, bob.ID, restaurant.ID, 4, "Better second time")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if res.Created {
		t.Error("second review by the same user must update, not create")
	}
	if res.AverageRating != 4.5 {
		t.Errorf("average = %v, want 4.5", res.AverageRating)
	}

	var count int64
	db.Model(&domain.Review{}).Where("restaurant_id = ?", restaurant.ID).Count(&count)
	if count != 2 {
		t.Errorf("review rows = %d, want 2", count)
	}
}

func TestReviewUpsertRejects(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	user := testfixture.User(t, db, "alice")
	restaurant := testfixture.Restaurant(t, db)
	reviews := repository.NewGormReviewRepository(db)

	if _, err := reviews.Upsert(ctx, user.ID, restaurant.ID, 6, ""); !errors.Is(err, domain.ErrInvalidRating) {
		t.Errorf("rating 6: err = %v, want ErrInvalidRating", err)
	}
	if _, err := reviews.Upsert(ctx, user.ID, restaurant.ID+100, 4, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown restaurant: err = %v, want ErrNotFound", err)
	}
}

func TestReviewDelete(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	alice := testfixture.User(t, db, "alice")
	bob := testfixture.User(t, db, "bob")
	restaurant := testfixture.Restaurant(t, db)
	reviews := repository.NewGormReviewRepository(db)

	res, err := reviews.Upsert(ctx, alice.ID, restaurant.ID, 5, "")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := reviews.Upsert(ctx, bob.ID, restaurant.ID, 2, ""); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if _, _, err := reviews.Delete(ctx, res.Review.ID, bob.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("delete by non-owner: err = %v, want ErrForbidden", err)
	}

	restaurantID, avg, err := reviews.Delete(ctx, res.Review.ID, alice.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if restaurantID != restaurant.ID || avg != 2.0 {
		t.Errorf("Delete = (%d, %v), want (%d, 2.0)", restaurantID, avg, restaurant.ID)
	}

	if _, _, err := reviews.Delete(ctx, res.Review.ID, alice.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}

	views, total, err := reviews.FindByRestaurant(ctx, restaurant.ID, 10, 0)
	if err != nil {
		t.Fatalf("FindByRestaurant: %v", err)
	}
	if total != 1 || len(views) != 1 || views[0].Username != "bob" {
		t.Errorf("remaining reviews = %+v", views)
	}
}

func TestLastReviewDeletedResetsAverage(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	user := testfixture.User(t, db, "alice")
	restaurant := testfixture.Restaurant(t, db)
	reviews := repository.NewGormReviewRepository(db)

	res, err := reviews.Upsert(ctx, user.ID, restaurant.ID, 3, "")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	_, avg, err := reviews.Delete(ctx, res.Review.ID, user.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if avg != 0 {
		t.Errorf("average after deleting the only review = %v, want 0", avg)
	}
}

func TestRatingCounts(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	restaurant := testfixture.Restaurant(t, db)
	reviews := repository.NewGormReviewRepository(db)

	for i, stars := range []int{5, 5, 4} {
		user := testfixture.User(t, db, string(rune('a'+i))+"user")
		if _, err := reviews.Upsert(ctx, user.ID, restaurant.ID, stars, ""); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	counts, err := reviews.RatingCounts(ctx, restaurant.ID)
	if err != nil {
		t.Fatalf("RatingCounts: %v", err)
	}
	if counts[5] != 2 || counts[4] != 1 || counts[1] != 0 {
		t.Errorf("counts = %v", counts)
	}
}

func TestRestaurantListAppliesSpec(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	indian := testfixture.Cuisine(t, db, "Indian")
	chinese := testfixture.Cuisine(t, db, "Chinese")

	bk := testfixture.Restaurant(t, db, testfixture.WithCuisines(indian), testfixture.WithRating(4.2))
	fancy := testfixture.Restaurant(t, db,
		testfixture.WithName("Fancy Feast"), testfixture.WithCost(600),
		testfixture.WithDiet(diet.NonVeg), testfixture.WithCuisines(chinese), testfixture.WithRating(3.5))
	cheap := testfixture.Restaurant(t, db,
		testfixture.WithName("Dosa Corner"), testfixture.WithCost(300),
		testfixture.WithCity("Chennai"), testfixture.WithCuisines(indian, chinese), testfixture.WithRating(5.0))

	repo := repository.NewGormRestaurantRepository(db)

	tests := []struct {
		name     string
		criteria filter.Criteria
		want     []uint
	}{
		{"default order is rating desc", filter.Criteria{}, []uint{cheap.ID, bk.ID, fancy.ID}},
		{"price range", filter.Criteria{MinCost: intPtr(300), MaxCost: intPtr(500)}, []uint{cheap.ID, bk.ID}},
		{"price low", filter.Criteria{SortBy: filter.SortPriceLow}, []uint{cheap.ID, bk.ID, fancy.ID}},
		{"price high", filter.Criteria{SortBy: filter.SortPriceHigh}, []uint{fancy.ID, bk.ID, cheap.ID}},
		{"diet", filter.Criteria{DietTypes: []diet.Type{diet.NonVeg}}, []uint{fancy.ID}},
		{"cuisine", filter.Criteria{CuisineIDs: []uint{chinese.ID}}, []uint{cheap.ID, fancy.ID}},
		{"rating 4 or 5", filter.Criteria{Ratings: []int{4, 5}}, []uint{cheap.ID, bk.ID}},
		{"city", filter.Criteria{City: "chennai"}, []uint{cheap.ID}},
		{"name", filter.Criteria{Query: "feast"}, []uint{fancy.ID}},
		{"no match", filter.Criteria{MinCost: intPtr(1000)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.List(ctx, filter.Build(tt.criteria), 10, 0)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if int(total) != len(tt.want) || len(got) != len(tt.want) {
				t.Fatalf("got %d rows (total %d), want %d", len(got), total, len(tt.want))
			}
			spec := filter.Build(tt.criteria)
			for i, r := range got {
				if r.ID != tt.want[i] {
					t.Errorf("position %d: id %d, want %d", i, r.ID, tt.want[i])
				}
				if !spec.Matches(r.Subject()) {
					t.Errorf("row %d does not satisfy the in-memory spec", r.ID)
				}
			}
		})
	}
}

func TestRestaurantListNameSearchIsLiteral(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	percent := testfixture.Restaurant(t, db, testfixture.WithName("100% Veg"))
	testfixture.Restaurant(t, db, testfixture.WithName("Burger King"))
	repo := repository.NewGormRestaurantRepository(db)

	tests := []struct {
		query string
		want  []uint
	}{
		{"%", []uint{percent.ID}},
		{"0% v", []uint{percent.ID}},
		{"_", nil},
		{"b_rger", nil},
		{`\`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			spec := filter.Build(filter.Criteria{Query: tt.query})
			got, total, err := repo.List(ctx, spec, 10, 0)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if int(total) != len(tt.want) || len(got) != len(tt.want) {
				t.Fatalf("got %d rows (total %d), want %d", len(got), total, len(tt.want))
			}
			for i, r := range got {
				if r.ID != tt.want[i] {
					t.Errorf("position %d: id %d, want %d", i, r.ID, tt.want[i])
				}
				if !spec.Matches(r.Subject()) {
					t.Errorf("row %d does not satisfy the in-memory spec", r.ID)
				}
			}
		})
	}
}

func TestRestaurantListPaginates(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		testfixture.Restaurant(t, db, testfixture.WithCost(100+i))
	}
	repo := repository.NewGormRestaurantRepository(db)

	page, total, err := repo.List(ctx, filter.Build(filter.Criteria{SortBy: filter.SortPriceLow}), 10, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 12 || len(page) != 2 {
		t.Fatalf("second page: %d rows of %d", len(page), total)
	}
	if page[0].CostForTwo != 110 {
		t.Errorf("first row of page two costs %d, want 110", page[0].CostForTwo)
	}
}

func TestRestaurantCreateAndFind(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	indian := testfixture.Cuisine(t, db, "Indian")
	repo := repository.NewGormRestaurantRepository(db)

	restaurant := &domain.Restaurant{Name: "Burger King", City: "Pune", CostForTwo: 400, DietType: diet.Veg}
	if err := repo.Create(ctx, restaurant, []uint{indian.ID}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.AddImage(ctx, &domain.RestaurantImage{RestaurantID: restaurant.ID, Image: "images/bk.jpg"}); err != nil {
		t.Fatalf("AddImage: %v", err)
	}

	found, err := repo.FindByID(ctx, restaurant.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(found.Cuisines) != 1 || found.Cuisines[0].Name != "Indian" {
		t.Errorf("cuisines = %+v", found.Cuisines)
	}
	if len(found.Images) != 1 || found.Images[0].Image != "images/bk.jpg" {
		t.Errorf("images = %+v", found.Images)
	}

	if _, err := repo.FindByID(ctx, restaurant.ID+1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing restaurant: err = %v, want ErrNotFound", err)
	}
	if err := repo.Create(ctx, &domain.Restaurant{Name: "X", CostForTwo: 1, DietType: diet.Veg}, []uint{999}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("unknown cuisine: err = %v, want ErrInvalidInput", err)
	}
}

func TestCuisineAndFood(t *testing.T) {
	db := testfixture.NewDB(t)
	ctx := context.Background()
	cuisines := repository.NewGormCuisineRepository(db)

	if err := cuisines.Create(ctx, &domain.Cuisine{Name: "Indian"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := cuisines.Create(ctx, &domain.Cuisine{Name: "indian"}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate cuisine: err = %v, want ErrConflict", err)
	}

	restaurant := testfixture.Restaurant(t, db)
	foods := repository.NewGormFoodRepository(db)
	testfixture.Food(t, db, restaurant.ID, "Paneer Tikka", 220)
	testfixture.Food(t, db, restaurant.ID, "", 0)

	menu, err := foods.FindByRestaurant(ctx, restaurant.ID)
	if err != nil {
		t.Fatalf("FindByRestaurant: %v", err)
	}
	if len(menu) != 2 || menu[0].Name != "Fried Rice" || menu[1].Price != 220 {
		t.Errorf("menu = %+v", menu)
	}
}
