// Package rating computes the denormalized rating figures shown for a
// restaurant: the one-decimal average and the per-star distribution.
package rating

import "math"

// Bounds of a valid star rating
const (
	MinStars = 1
	MaxStars = 5
)

// Valid reports whether stars is within 1..5
func Valid(stars int) bool {
	return stars >= MinStars && stars <= MaxStars
}

// Average is the mean of ratings rounded to one decimal place, 0 when empty.
func Average(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return Round1(float64(sum) / float64(len(ratings)))
}

// Round1 rounds half away from zero to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Bucket is one star value of a distribution
type Bucket struct {
	Stars   int   `json:"stars"`
	Count   int64 `json:"count"`
	Percent int   `json:"percent"`
}

// Distribution is the share of each star value among a restaurant's reviews
type Distribution struct {
	Total   int64    `json:"total"`
	Average float64  `json:"average"`
	Buckets []Bucket `json:"buckets"`
}

// NewDistribution builds buckets for 5 down to 1 stars from counts keyed by
// star value. Unknown keys are ignored. Percentages are rounded
// independently, so their sum may drift from 100 by a point or two.
func NewDistribution(counts map[int]int64) Distribution {
	var total, weighted int64
	for stars := MinStars; stars <= MaxStars; stars++ {
		total += counts[stars]
		weighted += counts[stars] * int64(stars)
	}

	denominator := total
	if denominator < 1 {
		denominator = 1
	}

	d := Distribution{Total: total, Buckets: make([]Bucket, 0, MaxStars)}
	if total > 0 {
		d.Average = Round1(float64(weighted) / float64(total))
	}
	for stars := MaxStars; stars >= MinStars; stars-- {
		c := counts[stars]
		d.Buckets = append(d.Buckets, Bucket{
			Stars:   stars,
			Count:   c,
			Percent: int(math.Round(float64(c) * 100 / float64(denominator))),
		})
	}
	return d
}

// Bucket returns the bucket for a star value
func (d Distribution) Bucket(stars int) Bucket {
	for _, b := range d.Buckets {
		if b.Stars == stars {
			return b
		}
	}
	return Bucket{Stars: stars}
}
