package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// InsertWorkout inserts a single workout row.
func (db *DB) InsertWorkout(ctx context.Context, w models.Workout) error {
	_, err := db.sql.ExecContext(ctx,
		`INSERT INTO workouts (id, date, name, notes, created_at) VALUES (?,?,?,?,?)`,
		w.ID, w.Date.UnixMilli(), w.Name, w.Notes, w.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}
	return nil
}

// GetWorkout retrieves one workout by id. Returns nil when absent.
func (db *DB) GetWorkout(ctx context.Context, id string) (*models.Workout, error) {
	row := db.sql.QueryRowContext(ctx,
		`SELECT id, date, name, notes, created_at FROM workouts WHERE id = ?`, id)
	w, err := scanWorkout(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	return w, nil
}

// ListWorkouts retrieves all workouts ordered by calendar date descending,
// creation time descending as the tie-break.
func (db *DB) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, date, name, notes, created_at
		 FROM workouts
		 ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, *w)
	}
	return result, rows.Err()
}

// DeleteWorkoutCascade deletes a workout and every set it owns in one
// transaction. Returns whether the workout existed; missing ids delete
// nothing and leave no orphans either way.
func (db *DB) DeleteWorkoutCascade(ctx context.Context, workoutID string) (bool, error) {
	var existed bool
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sets WHERE workout_id = ?`, workoutID); err != nil {
			return fmt.Errorf("deleting workout sets: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, workoutID)
		if err != nil {
			return fmt.Errorf("deleting workout: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting workout: %w", err)
		}
		existed = n > 0
		return nil
	})
	return existed, err
}

// InsertWorkoutWithSets inserts a workout together with its sets in one
// transaction. Used by workout duplication so readers never see the copied
// workout without its rows.
func (db *DB) InsertWorkoutWithSets(ctx context.Context, w models.Workout, sets []models.Set) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO workouts (id, date, name, notes, created_at) VALUES (?,?,?,?,?)`,
			w.ID, w.Date.UnixMilli(), w.Name, w.Notes, w.CreatedAt.UnixMilli()); err != nil {
			return fmt.Errorf("inserting workout: %w", err)
		}
		if err := insertSets(ctx, tx, sets); err != nil {
			return err
		}
		return nil
	})
}

func scanWorkout(row rowScanner) (*models.Workout, error) {
	var w models.Workout
	var dateMs, createdMs int64
	if err := row.Scan(&w.ID, &dateMs, &w.Name, &w.Notes, &createdMs); err != nil {
		return nil, err
	}
	w.Date = time.UnixMilli(dateMs)
	w.CreatedAt = time.UnixMilli(createdMs)
	return &w, nil
}
