package repository

import (
	"context"
	"sort"

	"github.com/claude/liftlog/internal/models"
)

// Snapshot is the consistent read model the view layer renders from:
// the three ordered collections plus the derived groupings. It is rebuilt
// from the store after every mutation, never patched in place.
type Snapshot struct {
	Exercises []models.Exercise `json:"exercises"`
	Workouts  []models.Workout  `json:"workouts"`
	Sets      []models.Set      `json:"sets"`

	// SetsByWorkout groups sets per owning workout, ordered by display
	// order with created_at breaking ties.
	SetsByWorkout map[string][]models.Set `json:"setsByWorkout"`

	// ExercisesByID resolves a set's exerciseId to its definition.
	ExercisesByID map[string]models.Exercise `json:"exercisesById"`
}

// Snapshot re-queries all three collections from the store and derives the
// grouped views. Exercises come back by creation time ascending, workouts by
// date descending, sets by creation time ascending.
func (r *Repository) Snapshot(ctx context.Context) (*Snapshot, error) {
	exercises, err := r.db.ListExercises(ctx)
	if err != nil {
		return nil, err
	}
	workouts, err := r.db.ListWorkouts(ctx)
	if err != nil {
		return nil, err
	}
	sets, err := r.db.ListSets(ctx)
	if err != nil {
		return nil, err
	}

	byWorkout := make(map[string][]models.Set, len(workouts))
	for _, s := range sets {
		byWorkout[s.WorkoutID] = append(byWorkout[s.WorkoutID], s)
	}
	for _, group := range byWorkout {
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Order != group[j].Order {
				return group[i].Order < group[j].Order
			}
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})
	}

	byID := make(map[string]models.Exercise, len(exercises))
	for _, e := range exercises {
		byID[e.ID] = e
	}

	return &Snapshot{
		Exercises:     exercises,
		Workouts:      workouts,
		Sets:          sets,
		SetsByWorkout: byWorkout,
		ExercisesByID: byID,
	}, nil
}
