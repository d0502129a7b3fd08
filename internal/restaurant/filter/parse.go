package filter

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tair/restaurant-discovery/internal/restaurant/diet"
	"github.com/tair/restaurant-discovery/internal/restaurant/rating"
)

// ErrInvalidCriteria wraps every query parameter validation failure
var ErrInvalidCriteria = errors.New("invalid filter")

// ParseCriteria reads listing criteria from query parameters. Multi-valued
// parameters may be repeated or comma separated.
func ParseCriteria(values url.Values) (Criteria, error) {
	var c Criteria
	var err error

	if c.MinCost, err = optionalCost(values, "cost_for_two_min"); err != nil {
		return Criteria{}, err
	}
	if c.MaxCost, err = optionalCost(values, "cost_for_two_max"); err != nil {
		return Criteria{}, err
	}

	for _, raw := range multi(values, "diet_type") {
		d, err := diet.Parse(raw)
		if err != nil {
			return Criteria{}, fmt.Errorf("%w: diet_type: %v", ErrInvalidCriteria, err)
		}
		c.DietTypes = append(c.DietTypes, d)
	}

	for _, raw := range multi(values, "cuisines") {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return Criteria{}, fmt.Errorf("%w: cuisines: %q is not a cuisine id", ErrInvalidCriteria, raw)
		}
		c.CuisineIDs = append(c.CuisineIDs, uint(id))
	}

	for _, raw := range multi(values, "rating") {
		stars, err := strconv.Atoi(raw)
		if err != nil || !rating.Valid(stars) {
			return Criteria{}, fmt.Errorf("%w: rating: %q must be between %d and %d",
				ErrInvalidCriteria, raw, rating.MinStars, rating.MaxStars)
		}
		c.Ratings = append(c.Ratings, stars)
	}

	c.City = strings.TrimSpace(values.Get("city"))
	c.Query = strings.TrimSpace(values.Get("q"))

	if raw := strings.TrimSpace(values.Get("spotlight")); raw != "" {
		spotlight, err := strconv.ParseBool(raw)
		if err != nil {
			return Criteria{}, fmt.Errorf("%w: spotlight: %q is not a boolean", ErrInvalidCriteria, raw)
		}
		c.SpotlightOnly = spotlight
	}

	switch sortBy := SortBy(strings.TrimSpace(values.Get("sort_by"))); sortBy {
	case SortDefault, SortPriceLow, SortPriceHigh:
		c.SortBy = sortBy
	default:
		return Criteria{}, fmt.Errorf("%w: sort_by: %q is not one of price_low, price_high",
			ErrInvalidCriteria, sortBy)
	}

	return c, nil
}

func optionalCost(values url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("%w: %s: %q is not a non-negative integer", ErrInvalidCriteria, key, raw)
	}
	return &v, nil
}

func multi(values url.Values, key string) []string {
	var out []string
	for _, v := range values[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Encode renders criteria back into query parameters, used to build
// pagination links that preserve the active filters.
func (c Criteria) Encode() url.Values {
	v := url.Values{}
	if c.MinCost != nil {
		v.Set("cost_for_two_min", strconv.Itoa(*c.MinCost))
	}
	if c.MaxCost != nil {
		v.Set("cost_for_two_max", strconv.Itoa(*c.MaxCost))
	}
	for _, d := range c.DietTypes {
		v.Add("diet_type", strconv.Itoa(int(d)))
	}
	for _, id := range c.CuisineIDs {
		v.Add("cuisines", strconv.FormatUint(uint64(id), 10))
	}
	for _, r := range c.Ratings {
		v.Add("rating", strconv.Itoa(r))
	}
	if c.City != "" {
		v.Set("city", c.City)
	}
	if c.Query != "" {
		v.Set("q", c.Query)
	}
	if c.SpotlightOnly {
		v.Set("spotlight", "true")
	}
	if c.SortBy != SortDefault {
		v.Set("sort_by", string(c.SortBy))
	}
	return v
}
