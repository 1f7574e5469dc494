package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var csvHeader = []string{
	"workout_date", "workout_name", "exercise", "order", "type",
	"target_reps", "target_weight", "target_rpe",
	"actual_reps", "actual_weight", "actual_rpe", "notes",
}

// WriteCSV encodes export rows as CSV with a header line. Null fields are
// emitted as empty cells.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.WorkoutDate.Format("2006-01-02"),
			row.WorkoutName,
			row.ExerciseName,
			strconv.Itoa(row.Order),
			row.Type,
			formatIntPtr(row.TargetReps),
			formatFloatPtr(row.TargetWeight),
			formatFloatPtr(row.TargetRPE),
			formatIntPtr(row.ActualReps),
			formatFloatPtr(row.ActualWeight),
			formatFloatPtr(row.ActualRPE),
			formatStringPtr(row.Notes),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%g", *v)
}

func formatStringPtr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
