package importer

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
)

// Stats tracks import progress.
type Stats struct {
	RowsRead           int
	RowsSkipped        int
	WorkoutsInserted   int
	WorkoutsDuplicated int
	SetsInserted       int
	ExercisesCreated   int
}

// Importer reads a LiftLog CSV export and inserts workouts and sets into
// the database. Exercises are matched by name against the catalog;
// unknown names are created on the fly.
type Importer struct {
	db     *storage.DB
	log    *slog.Logger
	dryRun bool
	now    func() time.Time
	stats  Stats
}

// New creates a new Importer.
func New(db *storage.DB, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, log: log, dryRun: dryRun, now: time.Now}
}

// header must match the columns liftlog-export writes.
var header = []string{
	"workout_date", "workout_name", "exercise", "order", "type",
	"target_reps", "target_weight", "target_rpe",
	"actual_reps", "actual_weight", "actual_rpe", "notes",
}

// csvRow is one parsed line of the export file.
type csvRow struct {
	date     time.Time
	workout  string
	exercise string
	order    int
	setType  models.SetType

	targetReps   *int
	targetWeight *float64
	targetRPE    *float64
	actualReps   *int
	actualWeight *float64
	actualRPE    *float64
	notes        *string
}

// Import reads the CSV file at path (gzipped when it ends in .gz) and
// inserts its workouts. A workout whose name and date both match an
// existing one is skipped rather than duplicated, so re-importing the
// same file is safe.
func (imp *Importer) Import(ctx context.Context, path string) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return &imp.stats, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var rdr io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return &imp.stats, fmt.Errorf("reading gzip %s: %w", path, err)
		}
		defer func() { _ = gz.Close() }()
		rdr = gz
	}

	rows, err := imp.parse(rdr)
	if err != nil {
		return &imp.stats, err
	}

	if err := imp.insert(ctx, rows); err != nil {
		return &imp.stats, err
	}
	return &imp.stats, nil
}

// parse reads and validates the CSV document, returning rows in file order.
func (imp *Importer) parse(rdr io.Reader) ([]csvRow, error) {
	cr := csv.NewReader(rdr)
	cr.FieldsPerRecord = len(header)

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	for i, col := range header {
		if head[i] != col {
			return nil, fmt.Errorf("unexpected csv header: column %d is %q, want %q", i, head[i], col)
		}
	}

	var rows []csvRow
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}
		imp.stats.RowsRead++

		row, err := parseRow(record)
		if err != nil {
			imp.log.Warn("skipping malformed row", "line", line, "error", err)
			imp.stats.RowsSkipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(record []string) (csvRow, error) {
	var row csvRow
	var err error

	row.date, err = time.ParseInLocation("2006-01-02", record[0], time.Local)
	if err != nil {
		return row, fmt.Errorf("bad workout_date %q: %w", record[0], err)
	}
	row.workout = record[1]
	row.exercise = record[2]
	if row.exercise == "" {
		return row, fmt.Errorf("empty exercise name")
	}

	row.order, err = strconv.Atoi(record[3])
	if err != nil {
		return row, fmt.Errorf("bad order %q: %w", record[3], err)
	}

	switch models.SetType(record[4]) {
	case models.SetTypeWarmup, models.SetTypeWork:
		row.setType = models.SetType(record[4])
	case "":
		row.setType = models.SetTypeWork
	default:
		return row, fmt.Errorf("bad type %q", record[4])
	}

	if row.targetReps, err = parseIntCell(record[5]); err != nil {
		return row, fmt.Errorf("bad target_reps: %w", err)
	}
	if row.targetWeight, err = parseFloatCell(record[6]); err != nil {
		return row, fmt.Errorf("bad target_weight: %w", err)
	}
	if row.targetRPE, err = parseFloatCell(record[7]); err != nil {
		return row, fmt.Errorf("bad target_rpe: %w", err)
	}
	if row.actualReps, err = parseIntCell(record[8]); err != nil {
		return row, fmt.Errorf("bad actual_reps: %w", err)
	}
	if row.actualWeight, err = parseFloatCell(record[9]); err != nil {
		return row, fmt.Errorf("bad actual_weight: %w", err)
	}
	if row.actualRPE, err = parseFloatCell(record[10]); err != nil {
		return row, fmt.Errorf("bad actual_rpe: %w", err)
	}
	if record[11] != "" {
		notes := record[11]
		row.notes = &notes
	}
	return row, nil
}

func parseIntCell(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseFloatCell(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// insert groups rows into workouts (by name and date, in file order) and
// writes each group atomically. Exercise names are resolved against the
// catalog case-insensitively.
func (imp *Importer) insert(ctx context.Context, rows []csvRow) error {
	existing, err := imp.db.ListWorkouts(ctx)
	if err != nil {
		return fmt.Errorf("listing workouts: %w", err)
	}
	seen := map[string]bool{}
	for _, w := range existing {
		seen[workoutKey(w.Name, w.Date)] = true
	}

	catalog, err := imp.db.ListExercises(ctx)
	if err != nil {
		return fmt.Errorf("listing exercises: %w", err)
	}
	byName := map[string]string{}
	for _, e := range catalog {
		byName[strings.ToLower(e.Name)] = e.ID
	}

	// Group rows preserving file order.
	type group struct {
		name string
		date time.Time
		rows []csvRow
	}
	var groups []*group
	index := map[string]*group{}
	for _, row := range rows {
		key := workoutKey(row.workout, models.NoonLocal(row.date))
		g, ok := index[key]
		if !ok {
			g = &group{name: row.workout, date: models.NoonLocal(row.date)}
			index[key] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, row)
	}

	now := imp.now()
	for _, g := range groups {
		if seen[workoutKey(g.name, g.date)] {
			imp.log.Info("skipping existing workout", "name", g.name, "date", g.date.Format("2006-01-02"))
			imp.stats.WorkoutsDuplicated++
			continue
		}

		workout := models.Workout{
			ID:        uuid.NewString(),
			Name:      g.name,
			Date:      g.date,
			CreatedAt: now,
		}
		now = now.Add(time.Millisecond)

		sets := make([]models.Set, 0, len(g.rows))
		for _, row := range g.rows {
			exerciseID, err := imp.resolveExercise(ctx, byName, row.exercise, now)
			if err != nil {
				return err
			}
			sets = append(sets, models.Set{
				ID:           uuid.NewString(),
				WorkoutID:    workout.ID,
				ExerciseID:   exerciseID,
				Order:        row.order,
				Type:         row.setType,
				TargetReps:   row.targetReps,
				TargetWeight: row.targetWeight,
				TargetRPE:    row.targetRPE,
				ActualReps:   row.actualReps,
				ActualWeight: row.actualWeight,
				ActualRPE:    row.actualRPE,
				Notes:        row.notes,
				CreatedAt:    now,
			})
			now = now.Add(time.Millisecond)
		}

		if imp.dryRun {
			imp.log.Info("dry run: would insert workout", "name", g.name, "sets", len(sets))
		} else {
			if err := imp.db.InsertWorkoutWithSets(ctx, workout, sets); err != nil {
				return fmt.Errorf("inserting workout %q: %w", g.name, err)
			}
		}
		imp.stats.WorkoutsInserted++
		imp.stats.SetsInserted += len(sets)
	}
	return nil
}

// resolveExercise returns the catalog id for a name, creating an entry when
// the name is unknown. byName is updated in place so one file creates each
// missing exercise once.
func (imp *Importer) resolveExercise(ctx context.Context, byName map[string]string, name string, now time.Time) (string, error) {
	if id, ok := byName[strings.ToLower(name)]; ok {
		return id, nil
	}

	e := models.Exercise{
		ID:        uuid.NewString(),
		Name:      name,
		Category:  "imported",
		Unit:      models.UnitKg,
		CreatedAt: now,
	}
	if !imp.dryRun {
		if _, err := imp.db.InsertExercises(ctx, []models.Exercise{e}); err != nil {
			return "", fmt.Errorf("creating exercise %q: %w", name, err)
		}
	}
	imp.log.Info("created exercise from import", "name", name)
	imp.stats.ExercisesCreated++
	byName[strings.ToLower(name)] = e.ID
	return e.ID, nil
}

func workoutKey(name string, date time.Time) string {
	return name + "\x00" + date.Format("2006-01-02")
}
