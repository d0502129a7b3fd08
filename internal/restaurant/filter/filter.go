// Package filter turns restaurant listing criteria into a storage-neutral
// specification of predicates and ordering. Build is a pure function; the
// repository translates the resulting Spec into SQL, and Spec.Matches
// evaluates the same predicates in memory.
package filter

import (
	"sort"
	"strings"

	"github.com/tair/restaurant-discovery/internal/restaurant/diet"
	"github.com/tair/restaurant-discovery/internal/restaurant/rating"
)

// SortBy selects an explicit ordering
type SortBy string

const (
	SortDefault   SortBy = ""
	SortPriceLow  SortBy = "price_low"
	SortPriceHigh SortBy = "price_high"
)

// Criteria is the structured form of the listing query parameters. Zero
// values impose no constraint.
type Criteria struct {
	MinCost       *int
	MaxCost       *int
	DietTypes     []diet.Type
	CuisineIDs    []uint
	Ratings       []int
	City          string
	Query         string
	SpotlightOnly bool
	SortBy        SortBy
}

// Field names a filterable or sortable restaurant attribute
type Field string

const (
	FieldID            Field = "id"
	FieldName          Field = "name"
	FieldCity          Field = "city"
	FieldCostForTwo    Field = "cost_for_two"
	FieldDietType      Field = "diet_type"
	FieldCuisine       Field = "cuisine"
	FieldAverageRating Field = "average_rating"
	FieldSpotlight     Field = "is_spotlight"
)

// Op is a predicate operator
type Op string

const (
	OpGTE       Op = "gte"        // Field >= Number
	OpLTE       Op = "lte"        // Field <= Number
	OpIn        Op = "in"         // Field in Set
	OpAnyRange  Op = "any_range"  // Field within at least one of Ranges
	OpEqualFold Op = "equal_fold" // case-insensitive equality with Text
	OpContains  Op = "contains"   // case-insensitive substring Text
	OpIsTrue    Op = "is_true"
)

// Range is a numeric interval [Min, Max) or [Min, Max] when MaxInclusive
type Range struct {
	Min          float64
	Max          float64
	MaxInclusive bool
}

// Contains reports whether v lies in the range
func (r Range) Contains(v float64) bool {
	if v < r.Min {
		return false
	}
	if r.MaxInclusive {
		return v <= r.Max
	}
	return v < r.Max
}

// Predicate is one conjunct of a Spec
type Predicate struct {
	Field  Field
	Op     Op
	Number float64
	Set    []int64
	Text   string
	Ranges []Range
}

// Order is one ordering term
type Order struct {
	Field Field
	Desc  bool
}

// Spec is the conjunction of Predicates plus the ordering to apply
type Spec struct {
	Predicates []Predicate
	Orders     []Order
}

// Build composes criteria into a Spec. Every supplied dimension adds one
// predicate; multi-valued dimensions become a single OR-set predicate.
func Build(c Criteria) Spec {
	var spec Spec

	if c.MinCost != nil {
		spec.Predicates = append(spec.Predicates, Predicate{
			Field: FieldCostForTwo, Op: OpGTE, Number: float64(*c.MinCost),
		})
	}
	if c.MaxCost != nil {
		spec.Predicates = append(spec.Predicates, Predicate{
			Field: FieldCostForTwo, Op: OpLTE, Number: float64(*c.MaxCost),
		})
	}
	if len(c.DietTypes) > 0 {
		set := make([]int64, 0, len(c.DietTypes))
		for _, d := range c.DietTypes {
			set = append(set, int64(d))
		}
		spec.Predicates = append(spec.Predicates, Predicate{
			Field: FieldDietType, Op: OpIn, Set: dedupe(set),
		})
	}
	if len(c.CuisineIDs) > 0 {
		set := make([]int64, 0, len(c.CuisineIDs))
		for _, id := range c.CuisineIDs {
			set = append(set, int64(id))
		}
		spec.Predicates = append(spec.Predicates, Predicate{
			Field: FieldCuisine, Op: OpIn, Set: dedupe(set),
		})
	}
	if len(c.Ratings) > 0 {
		seen := make(map[int]bool)
		var ranges []Range
		for _, stars := range c.Ratings {
			if seen[stars] {
				continue
			}
			seen[stars] = true
			ranges = append(ranges, starRange(stars))
		}
		sort.Slice(ranges, func(i, j int) bool { return ranges[i].Min < ranges[j].Min })
		spec.Predicates = append(spec.Predicates, Predicate{
			Field: FieldAverageRating, Op: OpAnyRange, Ranges: ranges,
		})
	}
	if city := strings.TrimSpace(c.City); city != "" {
		spec.Predicates = append(spec.Predicates, Predicate{
			Field: FieldCity, Op: OpEqualFold, Text: city,
		})
	}
	if q := strings.TrimSpace(c.Query); q != "" {
		spec.Predicates = append(spec.Predicates, Predicate{
			Field: FieldName, Op: OpContains, Text: q,
		})
	}
	if c.SpotlightOnly {
		spec.Predicates = append(spec.Predicates, Predicate{
			Field: FieldSpotlight, Op: OpIsTrue,
		})
	}

	switch c.SortBy {
	case SortPriceLow:
		spec.Orders = []Order{{Field: FieldCostForTwo}, {Field: FieldID}}
	case SortPriceHigh:
		spec.Orders = []Order{{Field: FieldCostForTwo, Desc: true}, {Field: FieldID}}
	default:
		spec.Orders = []Order{{Field: FieldAverageRating, Desc: true}, {Field: FieldID}}
	}

	return spec
}

// starRange maps a star value n to [n, n+1); the top value is closed at 5.0.
// A star selects a band of averages, so rating=4 matches 4.0 through 4.9
// and never requires the average to equal n exactly.
func starRange(stars int) Range {
	r := Range{Min: float64(stars), Max: float64(stars + 1)}
	if stars >= rating.MaxStars {
		r.Max = float64(rating.MaxStars)
		r.MaxInclusive = true
	}
	return r
}

func dedupe(set []int64) []int64 {
	seen := make(map[int64]bool, len(set))
	out := set[:0]
	for _, v := range set {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Subject is the view of a restaurant the predicates are evaluated against
type Subject struct {
	ID            uint
	Name          string
	City          string
	CostForTwo    int
	DietType      diet.Type
	CuisineIDs    []uint
	AverageRating float64
	IsSpotlight   bool
}

// Matches reports whether s satisfies every predicate of the spec
func (s Spec) Matches(subject Subject) bool {
	for _, p := range s.Predicates {
		if !p.matches(subject) {
			return false
		}
	}
	return true
}

func (p Predicate) matches(s Subject) bool {
	switch p.Field {
	case FieldCuisine:
		for _, id := range s.CuisineIDs {
			if containsInt(p.Set, int64(id)) {
				return true
			}
		}
		return false
	case FieldCity, FieldName:
		return p.matchText(s.text(p.Field))
	case FieldSpotlight:
		return p.Op == OpIsTrue && s.IsSpotlight
	}

	v := s.number(p.Field)
	switch p.Op {
	case OpGTE:
		return v >= p.Number
	case OpLTE:
		return v <= p.Number
	case OpIn:
		return containsInt(p.Set, int64(v))
	case OpAnyRange:
		for _, r := range p.Ranges {
			if r.Contains(v) {
				return true
			}
		}
		return false
	}
	return false
}

func (p Predicate) matchText(value string) bool {
	switch p.Op {
	case OpEqualFold:
		return strings.EqualFold(value, p.Text)
	case OpContains:
		return strings.Contains(strings.ToLower(value), strings.ToLower(p.Text))
	}
	return false
}

func (s Subject) text(f Field) string {
	if f == FieldCity {
		return s.City
	}
	return s.Name
}

func (s Subject) number(f Field) float64 {
	switch f {
	case FieldID:
		return float64(s.ID)
	case FieldCostForTwo:
		return float64(s.CostForTwo)
	case FieldDietType:
		return float64(s.DietType)
	case FieldAverageRating:
		return s.AverageRating
	}
	return 0
}

// Less orders two subjects the way the spec's Orders would
func (s Spec) Less(a, b Subject) bool {
	for _, o := range s.Orders {
		av, bv := a.number(o.Field), b.number(o.Field)
		if av == bv {
			continue
		}
		if o.Desc {
			return av > bv
		}
		return av < bv
	}
	return false
}

func containsInt(set []int64, v int64) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}
