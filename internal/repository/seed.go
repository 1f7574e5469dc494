package repository

import (
	"context"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// seedTemplate is one default-catalog entry; ids and timestamps are assigned
// at seed time.
type seedTemplate struct {
	name     string
	category string
	muscles  []string
	unit     models.Unit
}

var defaultCatalog = []seedTemplate{
	{"Back Squat", "barbell", []string{"quads", "glutes", "core"}, models.UnitKg},
	{"Bench Press", "barbell", []string{"chest", "triceps", "front delts"}, models.UnitKg},
	{"Deadlift", "barbell", []string{"hamstrings", "glutes", "back"}, models.UnitKg},
	{"Overhead Press", "barbell", []string{"shoulders", "triceps"}, models.UnitKg},
	{"Barbell Row", "barbell", []string{"lats", "upper back", "biceps"}, models.UnitKg},
	{"Romanian Deadlift", "barbell", []string{"hamstrings", "glutes"}, models.UnitKg},
	{"Pull-Up", "bodyweight", []string{"lats", "biceps"}, models.UnitBodyweight},
	{"Dip", "bodyweight", []string{"chest", "triceps"}, models.UnitBodyweight},
	{"Dumbbell Curl", "dumbbell", []string{"biceps"}, models.UnitKg},
	{"Lateral Raise", "dumbbell", []string{"side delts"}, models.UnitKg},
	{"Leg Press", "machine", []string{"quads", "glutes"}, models.UnitKg},
	{"Plank", "bodyweight", []string{"core"}, models.UnitBodyweight},
}

// SeedIfEmpty bulk-inserts the default exercise catalog when the exercises
// collection is empty. Idempotent: a non-empty catalog makes it a no-op, so
// repeated startups never duplicate entries.
func (r *Repository) SeedIfEmpty(ctx context.Context) error {
	count, err := r.db.CountExercises(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := r.now()
	rows := make([]models.Exercise, 0, len(defaultCatalog))
	for i, t := range defaultCatalog {
		rows = append(rows, models.Exercise{
			ID:        uuid.NewString(),
			Name:      t.name,
			Category:  t.category,
			Muscles:   t.muscles,
			Unit:      t.unit,
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
		})
	}

	inserted, err := r.db.InsertExercises(ctx, rows)
	if err != nil {
		return err
	}
	r.log.Info("seeded default exercise catalog", "count", inserted)
	return nil
}
