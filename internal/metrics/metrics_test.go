package metrics

import (
	"math"
	"testing"

	"github.com/claude/liftlog/internal/models"
)

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// TestEstimatedOneRepMaxFormula verifies the estimate is the arithmetic mean
// of Epley and Brzycki for ordinary rep counts.
func TestEstimatedOneRepMaxFormula(t *testing.T) {
	cases := []struct {
		weight float64
		reps   int
	}{
		{100, 5},
		{60, 1},
		{82.5, 8},
		{140, 3},
		{20, 30},
	}
	for _, c := range cases {
		epley := c.weight * (1 + float64(c.reps)/30)
		brzycki := c.weight * 36 / float64(37-c.reps)
		want := (epley + brzycki) / 2
		got := EstimatedOneRepMax(c.weight, c.reps)
		if !almostEqual(got, want) {
			t.Errorf("EstimatedOneRepMax(%v, %d) = %v, want %v", c.weight, c.reps, got, want)
		}
	}
}

// TestEstimatedOneRepMaxSingleRep verifies a true single is estimated above
// the lifted weight (Epley adds 1/30) rather than exactly at it.
func TestEstimatedOneRepMaxSingleRep(t *testing.T) {
	got := EstimatedOneRepMax(100, 1)
	want := (100*(1+1.0/30) + 100*36.0/36) / 2
	if !almostEqual(got, want) {
		t.Errorf("EstimatedOneRepMax(100, 1) = %v, want %v", got, want)
	}
}

// TestEstimatedOneRepMaxHighReps pins the chosen policy for reps >= 37, where
// Brzycki's denominator hits zero: Brzycki contributes 0 and the estimate is
// half the Epley value.
func TestEstimatedOneRepMaxHighReps(t *testing.T) {
	got := EstimatedOneRepMax(100, 37)
	want := 100 * (1 + 37.0/30) / 2 // 111.666...
	if !almostEqual(got, want) {
		t.Errorf("EstimatedOneRepMax(100, 37) = %v, want %v", got, want)
	}
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Fatalf("EstimatedOneRepMax(100, 37) is not finite: %v", got)
	}

	got = EstimatedOneRepMax(50, 40)
	want = 50 * (1 + 40.0/30) / 2
	if !almostEqual(got, want) {
		t.Errorf("EstimatedOneRepMax(50, 40) = %v, want %v", got, want)
	}
}

// TestEstimatedOneRepMaxZeroInputs verifies zero or absent weight/reps yields
// a zero estimate for the whole set.
func TestEstimatedOneRepMaxZeroInputs(t *testing.T) {
	if got := EstimatedOneRepMax(0, 5); got != 0 {
		t.Errorf("EstimatedOneRepMax(0, 5) = %v, want 0", got)
	}
	if got := EstimatedOneRepMax(100, 0); got != 0 {
		t.Errorf("EstimatedOneRepMax(100, 0) = %v, want 0", got)
	}
	if got := EstimatedOneRepMax(-80, 5); got != 0 {
		t.Errorf("EstimatedOneRepMax(-80, 5) = %v, want 0", got)
	}
}

// TestBestEstimatedOneRepMaxEmpty verifies the empty collection returns 0.
func TestBestEstimatedOneRepMaxEmpty(t *testing.T) {
	if got := BestEstimatedOneRepMax(nil); got != 0 {
		t.Errorf("BestEstimatedOneRepMax(nil) = %v, want 0", got)
	}
}

// TestBestEstimatedOneRepMaxSingleUsableSet verifies that with one usable set
// the result equals that set's estimate rounded to 2 decimals, and that sets
// lacking both actuals are skipped.
func TestBestEstimatedOneRepMaxSingleUsableSet(t *testing.T) {
	sets := []models.Set{
		{}, // planned only, no actuals: skipped
		{ActualWeight: fptr(100), ActualReps: iptr(5)},
		{}, // skipped
	}
	est := EstimatedOneRepMax(100, 5)
	want := math.Round(est*100) / 100
	if got := BestEstimatedOneRepMax(sets); got != want {
		t.Errorf("BestEstimatedOneRepMax = %v, want %v", got, want)
	}
}

// TestBestEstimatedOneRepMaxPicksMax verifies the max-reduction across sets.
func TestBestEstimatedOneRepMaxPicksMax(t *testing.T) {
	sets := []models.Set{
		{ActualWeight: fptr(60), ActualReps: iptr(12)},
		{ActualWeight: fptr(100), ActualReps: iptr(3)},
		{ActualWeight: fptr(80), ActualReps: iptr(8)},
	}
	want := math.Round(EstimatedOneRepMax(100, 3)*100) / 100
	if got := BestEstimatedOneRepMax(sets); got != want {
		t.Errorf("BestEstimatedOneRepMax = %v, want %v", got, want)
	}
}

// TestBestEstimatedOneRepMaxPartialActuals verifies a set with only one of
// the two actual fields present is not skipped but estimates to 0.
func TestBestEstimatedOneRepMaxPartialActuals(t *testing.T) {
	sets := []models.Set{
		{ActualWeight: fptr(100)}, // reps missing: estimate 0
	}
	if got := BestEstimatedOneRepMax(sets); got != 0 {
		t.Errorf("BestEstimatedOneRepMax = %v, want 0", got)
	}
}

// TestTotalVolume verifies the weight*reps sum with the spec's example data.
func TestTotalVolume(t *testing.T) {
	sets := []models.Set{
		{ActualWeight: fptr(100), ActualReps: iptr(5)},
		{ActualWeight: fptr(80), ActualReps: iptr(8)},
	}
	if got := TotalVolume(sets); got != 1140 {
		t.Errorf("TotalVolume = %v, want 1140", got)
	}
}

// TestTotalVolumeMissingValues verifies nil actuals count as 0, not an error.
func TestTotalVolumeMissingValues(t *testing.T) {
	sets := []models.Set{
		{ActualWeight: fptr(100)},
		{ActualReps: iptr(10)},
		{},
		{ActualWeight: fptr(50), ActualReps: iptr(2)},
	}
	if got := TotalVolume(sets); got != 100 {
		t.Errorf("TotalVolume = %v, want 100", got)
	}
}
