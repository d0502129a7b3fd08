package filter

import (
	"errors"
	"net/url"
	"sort"
	"testing"

	"github.com/tair/restaurant-discovery/internal/restaurant/diet"
)

func intPtr(v int) *int { return &v }

var subjects = []Subject{
	{ID: 1, Name: "Burger King", City: "Pune", CostForTwo: 400, DietType: diet.NonVeg, CuisineIDs: []uint{1}, AverageRating: 4.5},
	{ID: 2, Name: "Fancy Feast", City: "Mumbai", CostForTwo: 600, DietType: diet.Veg, CuisineIDs: []uint{2}, AverageRating: 3.2, IsSpotlight: true},
	{ID: 3, Name: "Green Bowl", City: "pune", CostForTwo: 300, DietType: diet.Vegan, CuisineIDs: []uint{1, 2}, AverageRating: 5.0},
	{ID: 4, Name: "Dosa Corner", City: "Chennai", CostForTwo: 150, DietType: diet.Veg, CuisineIDs: []uint{3}, AverageRating: 0},
	{ID: 5, Name: "Kebab House", City: "Delhi", CostForTwo: 500, DietType: diet.NonVeg, AverageRating: 3.9},
}

func matchingIDs(spec Spec) []uint {
	var ids []uint
	for _, s := range subjects {
		if spec.Matches(s) {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

func equalIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuildMatches(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []uint
	}{
		{"no criteria matches everything", Criteria{}, []uint{1, 2, 3, 4, 5}},
		{"price range 300..500", Criteria{MinCost: intPtr(300), MaxCost: intPtr(500)}, []uint{1, 3, 5}},
		{"min only", Criteria{MinCost: intPtr(500)}, []uint{2, 5}},
		{"inverted range is empty", Criteria{MinCost: intPtr(500), MaxCost: intPtr(300)}, nil},
		{"diet or-set", Criteria{DietTypes: []diet.Type{diet.Veg, diet.Vegan}}, []uint{2, 3, 4}},
		{"cuisine or-set", Criteria{CuisineIDs: []uint{2, 3}}, []uint{2, 3, 4}},
		{"four stars", Criteria{Ratings: []int{4}}, []uint{1}},
		{"three or five stars", Criteria{Ratings: []int{3, 5}}, []uint{2, 3, 5}},
		{"and across dimensions", Criteria{DietTypes: []diet.Type{diet.NonVeg}, MaxCost: intPtr(450)}, []uint{1}},
		{"city is case-insensitive", Criteria{City: "PUNE"}, []uint{1, 3}},
		{"name contains", Criteria{Query: "bowl"}, []uint{3}},
		{"spotlight", Criteria{SpotlightOnly: true}, []uint{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchingIDs(Build(tt.criteria))
			if !equalIDs(got, tt.want) {
				t.Errorf("matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStarRangeIsABand(t *testing.T) {
	tests := []struct {
		stars   int
		average float64
		want    bool
	}{
		{4, 4.0, true},
		{4, 4.5, true},
		{4, 4.9, true},
		{4, 5.0, false},
		{4, 3.9, false},
		{5, 5.0, true},
		{1, 1.0, true},
		{1, 0, false},
	}
	for _, tt := range tests {
		spec := Build(Criteria{Ratings: []int{tt.stars}})
		if got := spec.Matches(Subject{AverageRating: tt.average}); got != tt.want {
			t.Errorf("rating=%d average %.1f: matches = %v, want %v", tt.stars, tt.average, got, tt.want)
		}
	}
}

func TestMatchesIffEveryPredicate(t *testing.T) {
	c := Criteria{MinCost: intPtr(300), MaxCost: intPtr(500)}
	spec := Build(c)

	in := Subject{ID: 10, CostForTwo: 400}
	out := Subject{ID: 11, CostForTwo: 600}
	if !spec.Matches(in) {
		t.Error("restaurant priced 400 must be included")
	}
	if spec.Matches(out) {
		t.Error("restaurant priced 600 must be excluded")
	}

	for _, s := range subjects {
		want := s.CostForTwo >= 300 && s.CostForTwo <= 500
		if spec.Matches(s) != want {
			t.Errorf("subject %d: Matches = %v, want %v", s.ID, !want, want)
		}
	}
}

func TestOrdering(t *testing.T) {
	tests := []struct {
		sortBy SortBy
		check  func(prev, next Subject) bool
	}{
		{SortPriceLow, func(p, n Subject) bool { return p.CostForTwo <= n.CostForTwo }},
		{SortPriceHigh, func(p, n Subject) bool { return p.CostForTwo >= n.CostForTwo }},
		{SortDefault, func(p, n Subject) bool { return p.AverageRating >= n.AverageRating }},
	}
	for _, tt := range tests {
		spec := Build(Criteria{SortBy: tt.sortBy})
		sorted := append([]Subject(nil), subjects...)
		sort.SliceStable(sorted, func(i, j int) bool { return spec.Less(sorted[i], sorted[j]) })
		for i := 1; i < len(sorted); i++ {
			if !tt.check(sorted[i-1], sorted[i]) {
				t.Errorf("sort_by=%q: %d before %d breaks the order", tt.sortBy, sorted[i-1].ID, sorted[i].ID)
			}
		}
	}
}

func TestBuildDedupesSets(t *testing.T) {
	spec := Build(Criteria{CuisineIDs: []uint{3, 1, 3}, Ratings: []int{4, 4}})
	if len(spec.Predicates) != 2 {
		t.Fatalf("predicates = %+v", spec.Predicates)
	}
	if got := spec.Predicates[0].Set; len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("cuisine set = %v, want [1 3]", got)
	}
	if got := spec.Predicates[1].Ranges; len(got) != 1 {
		t.Errorf("rating ranges = %v, want one", got)
	}
}

func TestParseCriteria(t *testing.T) {
	values, _ := url.ParseQuery("cost_for_two_min=300&cost_for_two_max=500&diet_type=veg&diet_type=3" +
		"&cuisines=1,2&rating=4&rating=5&sort_by=price_high&city=Pune&spotlight=true")

	c, err := ParseCriteria(values)
	if err != nil {
		t.Fatalf("ParseCriteria: %v", err)
	}
	if c.MinCost == nil || *c.MinCost != 300 || c.MaxCost == nil || *c.MaxCost != 500 {
		t.Errorf("cost bounds = %v..%v", c.MinCost, c.MaxCost)
	}
	if len(c.DietTypes) != 2 || c.DietTypes[0] != diet.Veg || c.DietTypes[1] != diet.Vegan {
		t.Errorf("DietTypes = %v", c.DietTypes)
	}
	if len(c.CuisineIDs) != 2 || c.CuisineIDs[1] != 2 {
		t.Errorf("CuisineIDs = %v", c.CuisineIDs)
	}
	if len(c.Ratings) != 2 || c.SortBy != SortPriceHigh || c.City != "Pune" || !c.SpotlightOnly {
		t.Errorf("criteria = %+v", c)
	}

	again, err := ParseCriteria(c.Encode())
	if err != nil {
		t.Fatalf("ParseCriteria(Encode()): %v", err)
	}
	if len(again.DietTypes) != 2 || *again.MinCost != 300 || again.SortBy != SortPriceHigh {
		t.Errorf("encoded criteria did not survive: %+v", again)
	}
}

func TestParseCriteriaEmpty(t *testing.T) {
	c, err := ParseCriteria(url.Values{})
	if err != nil {
		t.Fatalf("ParseCriteria: %v", err)
	}
	spec := Build(c)
	if len(spec.Predicates) != 0 {
		t.Errorf("expected no predicates, got %+v", spec.Predicates)
	}
	if len(spec.Orders) == 0 || spec.Orders[0].Field != FieldAverageRating || !spec.Orders[0].Desc {
		t.Errorf("default order = %+v", spec.Orders)
	}
}

func TestParseCriteriaRejects(t *testing.T) {
	bad := []string{
		"cost_for_two_min=abc",
		"cost_for_two_max=-5",
		"diet_type=meat",
		"cuisines=x",
		"cuisines=0",
		"rating=6",
		"rating=0",
		"sort_by=rating",
		"spotlight=maybe",
	}
	for _, q := range bad {
		values, _ := url.ParseQuery(q)
		if _, err := ParseCriteria(values); !errors.Is(err, ErrInvalidCriteria) {
			t.Errorf("ParseCriteria(%q) error = %v, want ErrInvalidCriteria", q, err)
		}
	}
}
