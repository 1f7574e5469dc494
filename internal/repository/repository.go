// Package repository orchestrates multi-entity mutations against the store
// and re-derives the read models after every change. The store is the sole
// source of truth: callers never patch a cached view, they get a fresh
// snapshot back from each mutation.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
)

// ErrNotFound signals that an operation referenced an id absent from the
// store. Deletes and patches of missing rows are benign no-ops instead.
var ErrNotFound = errors.New("not found")

// ErrValidation signals invalid input; the operation never reaches the store.
var ErrValidation = errors.New("validation failed")

// defaultRestSec is the rest period assigned to newly planned sets.
const defaultRestSec = 90

// Repository exposes the planner's mutation operations and read models.
type Repository struct {
	db  *storage.DB
	log *slog.Logger
	now func() time.Time
}

// New creates a Repository over the given store.
func New(db *storage.DB, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log, now: time.Now}
}

// CreateWorkout inserts a new workout for the given calendar date. A blank
// name defaults to "Workout"; the date is normalized to local noon.
func (r *Repository) CreateWorkout(ctx context.Context, name string, date time.Time) (*Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Workout"
	}

	w := models.Workout{
		ID:        uuid.NewString(),
		Date:      models.NoonLocal(date),
		Name:      name,
		CreatedAt: r.now(),
	}
	if err := r.db.InsertWorkout(ctx, w); err != nil {
		return nil, err
	}
	r.log.Info("workout created", "id", w.ID, "name", w.Name, "date", w.Date.Format("2006-01-02"))
	return r.Snapshot(ctx)
}

// DeleteWorkout removes a workout and all sets it owns in one atomic step.
// A missing id is a benign no-op.
func (r *Repository) DeleteWorkout(ctx context.Context, workoutID string) (*Snapshot, error) {
	existed, err := r.db.DeleteWorkoutCascade(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if existed {
		r.log.Info("workout deleted", "id", workoutID)
	}
	return r.Snapshot(ctx)
}

// DuplicateWorkout clones a workout onto today's date: new ids throughout,
// name suffixed " (copy)", identical exercise/order/type/target tuples, and
// every actual field and note cleared. The copy and its sets are inserted in
// one transaction.
func (r *Repository) DuplicateWorkout(ctx context.Context, workoutID string) (*Snapshot, error) {
	src, err := r.db.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: workout %s", ErrNotFound, workoutID)
	}

	srcSets, err := r.db.ListSetsByWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	copyWorkout := models.Workout{
		ID:        uuid.NewString(),
		Date:      models.NoonLocal(now),
		Name:      src.Name + " (copy)",
		Notes:     src.Notes,
		CreatedAt: now,
	}

	copies := make([]models.Set, 0, len(srcSets))
	for i, s := range srcSets {
		copies = append(copies, models.Set{
			ID:           uuid.NewString(),
			WorkoutID:    copyWorkout.ID,
			ExerciseID:   s.ExerciseID,
			Order:        s.Order,
			Type:         s.Type,
			TargetReps:   s.TargetReps,
			TargetWeight: s.TargetWeight,
			TargetRPE:    s.TargetRPE,
			Tempo:        s.Tempo,
			RestSec:      s.RestSec,
			CreatedAt:    now.Add(time.Duration(i+1) * time.Millisecond),
		})
	}

	if err := r.db.InsertWorkoutWithSets(ctx, copyWorkout, copies); err != nil {
		return nil, err
	}
	r.log.Info("workout duplicated", "source", workoutID, "copy", copyWorkout.ID, "sets", len(copies))
	return r.Snapshot(ctx)
}

// AddSetsParams describes a planned-set batch: count identical rows sharing
// the same targets, appended to the workout's display order.
type AddSetsParams struct {
	WorkoutID    string
	ExerciseID   string
	Count        int
	TargetReps   int
	TargetWeight *float64
	TargetRPE    *float64
	Type         models.SetType
}

// AddPlannedSets batch-inserts count planned sets. Order continues from the
// workout's current maximum; created_at values increase strictly by row index
// so ties cannot occur within a batch. Actual fields start null and rest
// defaults to 90 seconds.
func (r *Repository) AddPlannedSets(ctx context.Context, p AddSetsParams) (*Snapshot, error) {
	if p.Count < 1 {
		return nil, fmt.Errorf("%w: count must be >= 1, got %d", ErrValidation, p.Count)
	}
	if p.WorkoutID == "" || p.ExerciseID == "" {
		return nil, fmt.Errorf("%w: workoutId and exerciseId are required", ErrValidation)
	}
	setType := p.Type
	if setType == "" {
		setType = models.SetTypeWork
	}

	w, err := r.db.GetWorkout(ctx, p.WorkoutID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: workout %s", ErrNotFound, p.WorkoutID)
	}

	maxOrder, err := r.db.MaxSetOrder(ctx, p.WorkoutID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	restSec := defaultRestSec
	targetReps := p.TargetReps

	rows := make([]models.Set, 0, p.Count)
	for i := 0; i < p.Count; i++ {
		rows = append(rows, models.Set{
			ID:           uuid.NewString(),
			WorkoutID:    p.WorkoutID,
			ExerciseID:   p.ExerciseID,
			Order:        maxOrder + 1 + i,
			Type:         setType,
			TargetReps:   &targetReps,
			TargetWeight: p.TargetWeight,
			TargetRPE:    p.TargetRPE,
			RestSec:      &restSec,
			CreatedAt:    now.Add(time.Duration(i) * time.Millisecond),
		})
	}

	if err := r.db.InsertSets(ctx, rows); err != nil {
		return nil, err
	}
	r.log.Info("planned sets added", "workout", p.WorkoutID, "exercise", p.ExerciseID, "count", p.Count, "firstOrder", maxOrder+1)
	return r.Snapshot(ctx)
}

// DeleteSet removes one set row. A missing id is a benign no-op.
func (r *Repository) DeleteSet(ctx context.Context, setID string) (*Snapshot, error) {
	existed, err := r.db.DeleteSet(ctx, setID)
	if err != nil {
		return nil, err
	}
	if existed {
		r.log.Info("set deleted", "id", setID)
	}
	return r.Snapshot(ctx)
}

// UpdateSetFields applies a partial patch to one set; only supplied fields
// change. A missing id is a benign no-op.
func (r *Repository) UpdateSetFields(ctx context.Context, setID string, patch models.SetPatch) (*Snapshot, error) {
	if patch.IsZero() {
		return r.Snapshot(ctx)
	}
	if _, err := r.db.UpdateSet(ctx, setID, patch); err != nil {
		return nil, err
	}
	return r.Snapshot(ctx)
}

// ExportRows returns every set joined with its workout and exercise names,
// flattened for tabular export. Formatting belongs to collaborators.
func (r *Repository) ExportRows(ctx context.Context) ([]storage.ExportRow, error) {
	return r.db.ExportRows(ctx)
}

// ProgressPoint is one workout's contribution to an exercise's strength
// trend: the best estimated 1RM achieved and the session volume.
type ProgressPoint struct {
	WorkoutID string    `json:"workoutId"`
	Date      time.Time `json:"date"`
	Best1RM   float64   `json:"best1rm"`
	Volume    float64   `json:"volume"`
}

// ExerciseProgress computes the per-workout strength trend for one exercise,
// ascending by workout date. Workouts where none of the exercise's sets carry
// actual data contribute no point.
func (r *Repository) ExerciseProgress(ctx context.Context, exerciseID string) ([]ProgressPoint, error) {
	sets, err := r.db.ListSetsByExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	byWorkout := make(map[string][]models.Set)
	for _, s := range sets {
		byWorkout[s.WorkoutID] = append(byWorkout[s.WorkoutID], s)
	}

	workouts, err := r.db.ListWorkouts(ctx)
	if err != nil {
		return nil, err
	}

	var points []ProgressPoint
	// ListWorkouts is date-descending; walk backwards for an ascending series.
	for i := len(workouts) - 1; i >= 0; i-- {
		w := workouts[i]
		group, ok := byWorkout[w.ID]
		if !ok || !hasActualData(group) {
			continue
		}
		points = append(points, ProgressPoint{
			WorkoutID: w.ID,
			Date:      w.Date,
			Best1RM:   metrics.BestEstimatedOneRepMax(group),
			Volume:    metrics.TotalVolume(group),
		})
	}
	return points, nil
}

func hasActualData(sets []models.Set) bool {
	for _, s := range sets {
		if s.ActualReps != nil || s.ActualWeight != nil {
			return true
		}
	}
	return false
}
