// Package metrics computes derived strength metrics from performed sets.
// All functions are pure: no I/O, no state.
package metrics

import (
	"math"

	"github.com/claude/liftlog/internal/models"
)

// EstimatedOneRepMax estimates the one-rep max for a single set by averaging
// two independent formulas:
//
//	Epley:   w * (1 + r/30)
//	Brzycki: w * 36 / (37 - r), defined only for r < 37
//
// Averaging smooths the bias either formula carries on its own. At r >= 37
// Brzycki is undefined and contributes 0, so the estimate degrades to half
// the Epley value. If weight or reps is zero or negative the estimate is 0.
func EstimatedOneRepMax(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	epley := weight * (1 + float64(reps)/30)
	var brzycki float64
	if reps < 37 {
		brzycki = weight * 36 / float64(37-reps)
	}
	return (epley + brzycki) / 2
}

// BestEstimatedOneRepMax returns the highest per-set estimated 1RM across the
// collection, using each set's actual reps and weight, rounded to 2 decimal
// places. Sets with neither actual reps nor actual weight are skipped; they
// contribute nothing rather than a zero. Returns 0 when no set has usable
// actual data.
func BestEstimatedOneRepMax(sets []models.Set) float64 {
	best := 0.0
	for _, s := range sets {
		if s.ActualReps == nil && s.ActualWeight == nil {
			continue
		}
		est := EstimatedOneRepMax(deref(s.ActualWeight), derefInt(s.ActualReps))
		if est > best {
			best = est
		}
	}
	return math.Round(best*100) / 100
}

// TotalVolume sums actualWeight * actualReps over the collection, treating
// missing values as 0. No rounding; callers round for display.
func TotalVolume(sets []models.Set) float64 {
	total := 0.0
	for _, s := range sets {
		total += deref(s.ActualWeight) * float64(derefInt(s.ActualReps))
	}
	return total
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
