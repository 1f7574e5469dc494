package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "liftlog.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }

// seededWorkout seeds the catalog and creates one workout, returning the
// repository, the workout, and the first catalog exercise.
func seededWorkout(t *testing.T) (*Repository, models.Workout, models.Exercise) {
	t.Helper()
	r := newTestRepo(t)
	ctx := context.Background()
	if err := r.SeedIfEmpty(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	snap, err := r.CreateWorkout(ctx, "Heavy Day", time.Now())
	if err != nil {
		t.Fatalf("create workout: %v", err)
	}
	if len(snap.Workouts) != 1 {
		t.Fatalf("workouts = %d, want 1", len(snap.Workouts))
	}
	return r, snap.Workouts[0], snap.Exercises[0]
}

// TestSeedIfEmptyIdempotent verifies seeding twice leaves exactly one copy of
// the default catalog.
func TestSeedIfEmptyIdempotent(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	if err := r.SeedIfEmpty(ctx); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	snap, err := r.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := len(snap.Exercises)
	if want == 0 {
		t.Fatal("seed inserted nothing")
	}

	if err := r.SeedIfEmpty(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	snap, err = r.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Exercises) != want {
		t.Errorf("exercises after second seed = %d, want %d", len(snap.Exercises), want)
	}
}

// TestCreateWorkoutDefaults verifies a blank name falls back to "Workout" and
// the date lands on local noon.
func TestCreateWorkoutDefaults(t *testing.T) {
	r := newTestRepo(t)
	snap, err := r.CreateWorkout(context.Background(), "   ", time.Now())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	w := snap.Workouts[0]
	if w.Name != "Workout" {
		t.Errorf("name = %q, want %q", w.Name, "Workout")
	}
	if w.Date.Hour() != 12 {
		t.Errorf("date hour = %d, want 12 (local noon)", w.Date.Hour())
	}
	if w.ID == "" {
		t.Error("id not generated")
	}
}

// TestAddPlannedSetsOrdering verifies the spec's ordering property: a batch
// of 3 on an empty workout gets orders {1,2,3} in ascending creation order,
// and a following batch of 2 gets {4,5}.
func TestAddPlannedSetsOrdering(t *testing.T) {
	r, w, ex := seededWorkout(t)
	ctx := context.Background()

	snap, err := r.AddPlannedSets(ctx, AddSetsParams{
		WorkoutID:    w.ID,
		ExerciseID:   ex.ID,
		Count:        3,
		TargetReps:   5,
		TargetWeight: fptr(60),
	})
	if err != nil {
		t.Fatalf("first batch: %v", err)
	}

	group := snap.SetsByWorkout[w.ID]
	if len(group) != 3 {
		t.Fatalf("sets = %d, want 3", len(group))
	}
	for i, s := range group {
		if s.Order != i+1 {
			t.Errorf("set[%d].order = %d, want %d", i, s.Order, i+1)
		}
		if i > 0 && !group[i-1].CreatedAt.Before(s.CreatedAt) {
			t.Errorf("set[%d] createdAt not strictly after set[%d]", i, i-1)
		}
		if s.TargetReps == nil || *s.TargetReps != 5 {
			t.Errorf("set[%d].targetReps = %v, want 5", i, s.TargetReps)
		}
		if s.TargetWeight == nil || *s.TargetWeight != 60 {
			t.Errorf("set[%d].targetWeight = %v, want 60", i, s.TargetWeight)
		}
		if s.RestSec == nil || *s.RestSec != 90 {
			t.Errorf("set[%d].restSec = %v, want default 90", i, s.RestSec)
		}
		if s.ActualReps != nil || s.ActualWeight != nil || s.ActualRPE != nil || s.Notes != nil {
			t.Errorf("set[%d] has non-null actuals on creation", i)
		}
		if s.Type != models.SetTypeWork {
			t.Errorf("set[%d].type = %q, want work", i, s.Type)
		}
	}

	snap, err = r.AddPlannedSets(ctx, AddSetsParams{
		WorkoutID:  w.ID,
		ExerciseID: ex.ID,
		Count:      2,
		TargetReps: 8,
	})
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}
	group = snap.SetsByWorkout[w.ID]
	if len(group) != 5 {
		t.Fatalf("sets = %d, want 5", len(group))
	}
	if group[3].Order != 4 || group[4].Order != 5 {
		t.Errorf("second batch orders = {%d,%d}, want {4,5}", group[3].Order, group[4].Order)
	}
}

// TestAddPlannedSetsValidation verifies count < 1 never reaches the store.
func TestAddPlannedSetsValidation(t *testing.T) {
	r, w, ex := seededWorkout(t)

	_, err := r.AddPlannedSets(context.Background(), AddSetsParams{
		WorkoutID:  w.ID,
		ExerciseID: ex.ID,
		Count:      0,
		TargetReps: 5,
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

// TestAddPlannedSetsMissingWorkout verifies no orphan sets can be created.
func TestAddPlannedSetsMissingWorkout(t *testing.T) {
	r, _, ex := seededWorkout(t)

	_, err := r.AddPlannedSets(context.Background(), AddSetsParams{
		WorkoutID:  "nope",
		ExerciseID: ex.ID,
		Count:      1,
		TargetReps: 5,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestDeleteWorkoutCascades verifies deletion removes the workout and all its
// sets from the read model, with nothing orphaned.
func TestDeleteWorkoutCascades(t *testing.T) {
	r, w, ex := seededWorkout(t)
	ctx := context.Background()

	if _, err := r.AddPlannedSets(ctx, AddSetsParams{WorkoutID: w.ID, ExerciseID: ex.ID, Count: 3, TargetReps: 5}); err != nil {
		t.Fatal(err)
	}

	snap, err := r.DeleteWorkout(ctx, w.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(snap.Workouts) != 0 {
		t.Errorf("workouts = %d, want 0", len(snap.Workouts))
	}
	if len(snap.Sets) != 0 {
		t.Errorf("sets = %d, want 0 (no orphans)", len(snap.Sets))
	}
	if len(snap.SetsByWorkout[w.ID]) != 0 {
		t.Errorf("setsByWorkout[%s] not empty after delete", w.ID)
	}
}

// TestDeleteWorkoutAbsent verifies deleting a missing workout is a no-op, not
// an error.
func TestDeleteWorkoutAbsent(t *testing.T) {
	r := newTestRepo(t)
	if _, err := r.DeleteWorkout(context.Background(), "nope"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestDuplicateWorkout verifies the copy gets a new id, today's date, the
// " (copy)" suffix, the identical ordered target tuples, and cleared actuals.
func TestDuplicateWorkout(t *testing.T) {
	r, w, ex := seededWorkout(t)
	ctx := context.Background()

	snap, err := r.AddPlannedSets(ctx, AddSetsParams{
		WorkoutID: w.ID, ExerciseID: ex.ID, Count: 2, TargetReps: 5, TargetWeight: fptr(100), TargetRPE: fptr(8),
	})
	if err != nil {
		t.Fatal(err)
	}

	// Log actuals on the source so we can verify the copy clears them.
	src := snap.SetsByWorkout[w.ID][0]
	if _, err := r.UpdateSetFields(ctx, src.ID, models.SetPatch{ActualReps: iptr(5), ActualWeight: fptr(100)}); err != nil {
		t.Fatal(err)
	}

	snap, err = r.DuplicateWorkout(ctx, w.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if len(snap.Workouts) != 2 {
		t.Fatalf("workouts = %d, want 2", len(snap.Workouts))
	}

	var dup *models.Workout
	for i := range snap.Workouts {
		if snap.Workouts[i].ID != w.ID {
			dup = &snap.Workouts[i]
		}
	}
	if dup == nil {
		t.Fatal("copy not found")
	}
	if dup.Name != "Heavy Day (copy)" {
		t.Errorf("copy name = %q, want %q", dup.Name, "Heavy Day (copy)")
	}
	if !dup.Date.Equal(models.NoonLocal(time.Now())) {
		t.Errorf("copy date = %v, want today's noon", dup.Date)
	}

	srcSets := snap.SetsByWorkout[w.ID]
	dupSets := snap.SetsByWorkout[dup.ID]
	if len(dupSets) != len(srcSets) {
		t.Fatalf("copy sets = %d, want %d", len(dupSets), len(srcSets))
	}
	for i := range dupSets {
		d, s := dupSets[i], srcSets[i]
		if d.ID == s.ID {
			t.Errorf("set[%d] id not regenerated", i)
		}
		if d.WorkoutID != dup.ID {
			t.Errorf("set[%d] workoutId = %q, want copy id", i, d.WorkoutID)
		}
		if d.ExerciseID != s.ExerciseID || d.Order != s.Order || d.Type != s.Type {
			t.Errorf("set[%d] tuple differs from source", i)
		}
		if !eqIntPtr(d.TargetReps, s.TargetReps) || !eqFloatPtr(d.TargetWeight, s.TargetWeight) || !eqFloatPtr(d.TargetRPE, s.TargetRPE) {
			t.Errorf("set[%d] targets differ from source", i)
		}
		if d.ActualReps != nil || d.ActualWeight != nil || d.ActualRPE != nil || d.Notes != nil {
			t.Errorf("set[%d] actuals not cleared on copy", i)
		}
	}
}

// TestDuplicateWorkoutAbsent verifies duplicating a missing workout fails
// with ErrNotFound.
func TestDuplicateWorkoutAbsent(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.DuplicateWorkout(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestUpdateSetFieldsPartial verifies merge semantics through the repository.
func TestUpdateSetFieldsPartial(t *testing.T) {
	r, w, ex := seededWorkout(t)
	ctx := context.Background()

	snap, err := r.AddPlannedSets(ctx, AddSetsParams{WorkoutID: w.ID, ExerciseID: ex.ID, Count: 1, TargetReps: 5, TargetWeight: fptr(80)})
	if err != nil {
		t.Fatal(err)
	}
	id := snap.SetsByWorkout[w.ID][0].ID

	snap, err = r.UpdateSetFields(ctx, id, models.SetPatch{ActualReps: iptr(8)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	s := snap.SetsByWorkout[w.ID][0]
	if s.ActualReps == nil || *s.ActualReps != 8 {
		t.Errorf("actualReps = %v, want 8", s.ActualReps)
	}
	if s.TargetReps == nil || *s.TargetReps != 5 {
		t.Errorf("targetReps = %v, want unchanged 5", s.TargetReps)
	}
	if s.TargetWeight == nil || *s.TargetWeight != 80 {
		t.Errorf("targetWeight = %v, want unchanged 80", s.TargetWeight)
	}
	if s.ActualWeight != nil {
		t.Errorf("actualWeight = %v, want still nil", s.ActualWeight)
	}
}

// TestDeleteSetAbsent verifies deleting a missing set is a benign no-op.
func TestDeleteSetAbsent(t *testing.T) {
	r := newTestRepo(t)
	if _, err := r.DeleteSet(context.Background(), "nope"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestSnapshotOrdering verifies the three collections come back in their
// contract order and the derived maps are consistent.
func TestSnapshotOrdering(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	if err := r.SeedIfEmpty(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := r.CreateWorkout(ctx, "Older", time.Now().AddDate(0, 0, -2)); err != nil {
		t.Fatal(err)
	}
	snap, err := r.CreateWorkout(ctx, "Newer", time.Now())
	if err != nil {
		t.Fatal(err)
	}

	if snap.Workouts[0].Name != "Newer" || snap.Workouts[1].Name != "Older" {
		t.Errorf("workout order = %q, %q; want date descending", snap.Workouts[0].Name, snap.Workouts[1].Name)
	}
	for i := 1; i < len(snap.Exercises); i++ {
		if snap.Exercises[i].CreatedAt.Before(snap.Exercises[i-1].CreatedAt) {
			t.Errorf("exercises not createdAt-ascending at %d", i)
		}
	}
	for _, e := range snap.Exercises {
		if _, ok := snap.ExercisesByID[e.ID]; !ok {
			t.Errorf("exercisesById missing %s", e.ID)
		}
	}
}

// TestExerciseProgress verifies the per-workout trend: points only for
// workouts with actual data, ascending by date, with best-1RM and volume.
func TestExerciseProgress(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	if err := r.SeedIfEmpty(ctx); err != nil {
		t.Fatal(err)
	}
	snap, err := r.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	ex := snap.Exercises[0]

	// Two sessions a week apart plus one planned-only session.
	s1, err := r.CreateWorkout(ctx, "Week 1", time.Now().AddDate(0, 0, -14))
	if err != nil {
		t.Fatal(err)
	}
	week1 := s1.Workouts[0].ID
	s2, err := r.CreateWorkout(ctx, "Week 2", time.Now().AddDate(0, 0, -7))
	if err != nil {
		t.Fatal(err)
	}
	week2 := workoutByName(t, s2, "Week 2").ID
	s3, err := r.CreateWorkout(ctx, "Planned", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	planned := workoutByName(t, s3, "Planned").ID

	for _, wid := range []string{week1, week2, planned} {
		if _, err := r.AddPlannedSets(ctx, AddSetsParams{WorkoutID: wid, ExerciseID: ex.ID, Count: 1, TargetReps: 5}); err != nil {
			t.Fatal(err)
		}
	}

	snap, err = r.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	logActual := func(workoutID string, weight float64, reps int) {
		t.Helper()
		id := snap.SetsByWorkout[workoutID][0].ID
		if _, err := r.UpdateSetFields(ctx, id, models.SetPatch{ActualWeight: fptr(weight), ActualReps: iptr(reps)}); err != nil {
			t.Fatal(err)
		}
	}
	logActual(week1, 100, 5)
	logActual(week2, 105, 5)

	points, err := r.ExerciseProgress(ctx, ex.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("points = %d, want 2 (planned-only session excluded)", len(points))
	}
	if !points[0].Date.Before(points[1].Date) {
		t.Error("points not ascending by date")
	}
	if points[1].Best1RM <= points[0].Best1RM {
		t.Errorf("best1rm not increasing: %v then %v", points[0].Best1RM, points[1].Best1RM)
	}
	if points[0].Volume != 500 {
		t.Errorf("week1 volume = %v, want 500", points[0].Volume)
	}
}

func workoutByName(t *testing.T, snap *Snapshot, name string) models.Workout {
	t.Helper()
	for _, w := range snap.Workouts {
		if w.Name == name {
			return w
		}
	}
	t.Fatalf("workout %q not in snapshot", name)
	return models.Workout{}
}

func eqIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
