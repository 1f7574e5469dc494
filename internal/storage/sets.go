package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
)

const setColumns = `id, workout_id, exercise_id, set_order, set_type,
	target_reps, target_weight, target_rpe, tempo, rest_sec,
	actual_reps, actual_weight, actual_rpe, notes, created_at`

// InsertSets batch-inserts set rows. A single multi-row INSERT is atomic, so
// a planned-set batch either lands whole or not at all.
func (db *DB) InsertSets(ctx context.Context, rows []models.Set) error {
	return insertSets(ctx, db.sql, rows)
}

func insertSets(ctx context.Context, ex execer, rows []models.Set) error {
	if len(rows) == 0 {
		return nil
	}

	query := `INSERT INTO sets (` + setColumns + `) VALUES `
	args := make([]any, 0, len(rows)*15)
	valueStrings := make([]string, 0, len(rows))

	for _, s := range rows {
		valueStrings = append(valueStrings, "(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)")
		args = append(args, s.ID, s.WorkoutID, s.ExerciseID, s.Order, string(s.Type),
			s.TargetReps, s.TargetWeight, s.TargetRPE, s.Tempo, s.RestSec,
			s.ActualReps, s.ActualWeight, s.ActualRPE, s.Notes, s.CreatedAt.UnixMilli())
	}

	query += strings.Join(valueStrings, ",")

	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting sets: %w", err)
	}
	return nil
}

// MaxSetOrder returns the highest order value among a workout's sets, or 0
// when the workout has none.
func (db *DB) MaxSetOrder(ctx context.Context, workoutID string) (int, error) {
	var max int
	err := db.sql.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(set_order), 0) FROM sets WHERE workout_id = ?`, workoutID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("querying max set order: %w", err)
	}
	return max, nil
}

// ListSets retrieves all sets ordered by creation time ascending.
func (db *DB) ListSets(ctx context.Context) ([]models.Set, error) {
	return db.querySets(ctx,
		`SELECT `+setColumns+` FROM sets ORDER BY created_at ASC`)
}

// ListSetsByWorkout retrieves a workout's sets in display order, creation
// time breaking order ties.
func (db *DB) ListSetsByWorkout(ctx context.Context, workoutID string) ([]models.Set, error) {
	return db.querySets(ctx,
		`SELECT `+setColumns+` FROM sets WHERE workout_id = ? ORDER BY set_order ASC, created_at ASC`,
		workoutID)
}

// ListSetsByExercise retrieves all sets referencing an exercise, oldest first.
func (db *DB) ListSetsByExercise(ctx context.Context, exerciseID string) ([]models.Set, error) {
	return db.querySets(ctx,
		`SELECT `+setColumns+` FROM sets WHERE exercise_id = ? ORDER BY created_at ASC`,
		exerciseID)
}

// DeleteSet deletes one set row. Returns whether it existed.
func (db *DB) DeleteSet(ctx context.Context, id string) (bool, error) {
	res, err := db.sql.ExecContext(ctx, `DELETE FROM sets WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting set: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting set: %w", err)
	}
	return n > 0, nil
}

// UpdateSet applies a partial patch to one set: only supplied fields change,
// all others keep their prior values. Returns whether the row existed.
func (db *DB) UpdateSet(ctx context.Context, id string, patch models.SetPatch) (bool, error) {
	var clauses []string
	var args []any

	add := func(column string, value any) {
		clauses = append(clauses, column+" = ?")
		args = append(args, value)
	}

	if patch.TargetReps != nil {
		add("target_reps", *patch.TargetReps)
	}
	if patch.TargetWeight != nil {
		add("target_weight", *patch.TargetWeight)
	}
	if patch.TargetRPE != nil {
		add("target_rpe", *patch.TargetRPE)
	}
	if patch.Tempo != nil {
		add("tempo", *patch.Tempo)
	}
	if patch.RestSec != nil {
		add("rest_sec", *patch.RestSec)
	}
	if patch.ActualReps != nil {
		add("actual_reps", *patch.ActualReps)
	}
	if patch.ActualWeight != nil {
		add("actual_weight", *patch.ActualWeight)
	}
	if patch.ActualRPE != nil {
		add("actual_rpe", *patch.ActualRPE)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}

	if len(clauses) == 0 {
		return false, nil
	}

	args = append(args, id)
	res, err := db.sql.ExecContext(ctx,
		`UPDATE sets SET `+strings.Join(clauses, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return false, fmt.Errorf("updating set: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating set: %w", err)
	}
	return n > 0, nil
}

func (db *DB) querySets(ctx context.Context, query string, args ...any) ([]models.Set, error) {
	rows, err := db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer rows.Close()

	var result []models.Set
	for rows.Next() {
		var s models.Set
		var setType string
		var createdMs int64
		if err := rows.Scan(&s.ID, &s.WorkoutID, &s.ExerciseID, &s.Order, &setType,
			&s.TargetReps, &s.TargetWeight, &s.TargetRPE, &s.Tempo, &s.RestSec,
			&s.ActualReps, &s.ActualWeight, &s.ActualRPE, &s.Notes, &createdMs); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		s.Type = models.SetType(setType)
		s.CreatedAt = time.UnixMilli(createdMs)
		result = append(result, s)
	}
	return result, rows.Err()
}

// ExportRow is one set joined with its parent workout and exercise names,
// ready for tabular export. Formatting is a collaborator concern.
type ExportRow struct {
	WorkoutID    string    `json:"workoutId"`
	WorkoutName  string    `json:"workoutName"`
	WorkoutDate  time.Time `json:"workoutDate"`
	ExerciseID   string    `json:"exerciseId"`
	ExerciseName string    `json:"exerciseName"`
	Order        int       `json:"order"`
	Type         string    `json:"type"`
	TargetReps   *int      `json:"targetReps"`
	TargetWeight *float64  `json:"targetWeight"`
	TargetRPE    *float64  `json:"targetRpe"`
	ActualReps   *int      `json:"actualReps"`
	ActualWeight *float64  `json:"actualWeight"`
	ActualRPE    *float64  `json:"actualRpe"`
	Notes        *string   `json:"notes"`
}

// ExportRows retrieves every set joined with workout and exercise names,
// newest workout first, sets in display order. The exercise join is LEFT:
// sets reference exercises weakly.
func (db *DB) ExportRows(ctx context.Context) ([]ExportRow, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT s.workout_id, w.name, w.date, s.exercise_id, COALESCE(e.name, ''),
		        s.set_order, s.set_type,
		        s.target_reps, s.target_weight, s.target_rpe,
		        s.actual_reps, s.actual_weight, s.actual_rpe, s.notes
		 FROM sets s
		 JOIN workouts w ON w.id = s.workout_id
		 LEFT JOIN exercises e ON e.id = s.exercise_id
		 ORDER BY w.date DESC, w.created_at DESC, s.set_order ASC, s.created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying export rows: %w", err)
	}
	defer rows.Close()

	var result []ExportRow
	for rows.Next() {
		var r ExportRow
		var dateMs int64
		if err := rows.Scan(&r.WorkoutID, &r.WorkoutName, &dateMs, &r.ExerciseID, &r.ExerciseName,
			&r.Order, &r.Type,
			&r.TargetReps, &r.TargetWeight, &r.TargetRPE,
			&r.ActualReps, &r.ActualWeight, &r.ActualRPE, &r.Notes); err != nil {
			return nil, fmt.Errorf("scanning export row: %w", err)
		}
		r.WorkoutDate = time.UnixMilli(dateMs)
		result = append(result, r)
	}
	return result, rows.Err()
}
