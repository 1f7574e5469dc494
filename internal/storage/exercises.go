package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// InsertExercises batch-inserts exercise rows. Returns count inserted.
func (db *DB) InsertExercises(ctx context.Context, rows []models.Exercise) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO exercises (id, name, category, muscles, unit, created_at) VALUES `
	args := make([]any, 0, len(rows)*6)
	valueStrings := make([]string, 0, len(rows))

	for _, e := range rows {
		muscles, err := json.Marshal(e.Muscles)
		if err != nil {
			return 0, fmt.Errorf("encoding muscles for %s: %w", e.Name, err)
		}
		valueStrings = append(valueStrings, "(?,?,?,?,?,?)")
		args = append(args, e.ID, e.Name, e.Category, string(muscles), string(e.Unit), e.CreatedAt.UnixMilli())
	}

	query += strings.Join(valueStrings, ",")

	res, err := db.sql.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting exercises: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("inserting exercises: %w", err)
	}
	return n, nil
}

// CountExercises returns the number of exercises in the catalog.
func (db *DB) CountExercises(ctx context.Context) (int, error) {
	var count int
	err := db.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM exercises`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting exercises: %w", err)
	}
	return count, nil
}

// GetExercise retrieves one exercise by id. Returns nil when absent.
func (db *DB) GetExercise(ctx context.Context, id string) (*models.Exercise, error) {
	row := db.sql.QueryRowContext(ctx,
		`SELECT id, name, category, muscles, unit, created_at FROM exercises WHERE id = ?`, id)
	e, err := scanExercise(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return e, nil
}

// ListExercises retrieves all exercises ordered by creation time ascending.
func (db *DB) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, name, category, muscles, unit, created_at
		 FROM exercises
		 ORDER BY created_at ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, *e)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExercise(row rowScanner) (*models.Exercise, error) {
	var e models.Exercise
	var muscles string
	var unit string
	var createdMs int64
	if err := row.Scan(&e.ID, &e.Name, &e.Category, &muscles, &unit, &createdMs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(muscles), &e.Muscles); err != nil {
		return nil, fmt.Errorf("decoding muscles: %w", err)
	}
	e.Unit = models.Unit(unit)
	e.CreatedAt = time.UnixMilli(createdMs)
	return &e, nil
}
