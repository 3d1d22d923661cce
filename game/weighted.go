package game

import (
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Weighted pairs a value with its relative likelihood. A slice of Weighted
// values forms a discrete distribution up to normalization.
type Weighted[T any] struct {
	value  T
	weight float64
}

// NewWeighted panics on negative, infinite or NaN weights.
func NewWeighted[T any](value T, weight float64) Weighted[T] {
	if !validWeight(weight) {
		panic(errors.Wrapf(ErrInvalidWeight, "weight %v", weight))
	}
	return Weighted[T]{value: value, weight: weight}
}

func (w Weighted[T]) Value() T {
	return w.value
}

func (w Weighted[T]) Weight() float64 {
	return w.weight
}

// TotalWeight sums the weights of a distribution.
func TotalWeight[T any](distribution []Weighted[T]) float64 {
	return lo.SumBy(distribution, func(w Weighted[T]) float64 {
		return w.weight
	})
}

// Sample picks a value from the distribution given a uniform draw in [0, 1).
func Sample[T any](distribution []Weighted[T], draw float64) T {
	if len(distribution) == 0 {
		panic("cannot sample from an empty distribution")
	}

	target := draw * TotalWeight(distribution)
	cumulative := 0.0
	for _, w := range distribution {
		cumulative += w.weight
		if target < cumulative {
			return w.value
		}
	}
	return distribution[len(distribution)-1].value // Fallback in case of rounding errors
}

func validWeight(weight float64) bool {
	return weight >= 0 && !math.IsInf(weight, 0) && !math.IsNaN(weight)
}
