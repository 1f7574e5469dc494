// Package models defines the planner entities persisted in the local store.
package models

import "time"

// Unit is the logging unit configured on an exercise.
type Unit string

const (
	UnitKg         Unit = "kg"
	UnitLb         Unit = "lb"
	UnitBodyweight Unit = "bodyweight"
)

// SetType discriminates warmup rows from working rows.
type SetType string

const (
	SetTypeWarmup SetType = "warmup"
	SetTypeWork   SetType = "work"
)

// Exercise is a reusable movement definition. Exercises are immutable once
// created; sets reference them by id but do not own them.
type Exercise struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Muscles   []string  `json:"muscles"`
	Unit      Unit      `json:"unit"`
	CreatedAt time.Time `json:"createdAt"`
}

// Workout is a planned or completed training session. Date is normalized to
// local noon so calendar ordering is immune to timezone date shifts.
type Workout struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Name      string    `json:"name"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Set is one line of a workout's plan or log. Target fields hold the plan,
// actual fields hold what was performed; all are nullable. Order is unique
// within a workout under sequential insertion and is an advisory display
// sort, with created_at as the tie-break.
type Set struct {
	ID         string  `json:"id"`
	WorkoutID  string  `json:"workoutId"`
	ExerciseID string  `json:"exerciseId"`
	Order      int     `json:"order"`
	Type       SetType `json:"type"`

	TargetReps   *int     `json:"targetReps"`
	TargetWeight *float64 `json:"targetWeight"`
	TargetRPE    *float64 `json:"targetRpe"`
	Tempo        *string  `json:"tempo"`
	RestSec      *int     `json:"restSec"`

	ActualReps   *int     `json:"actualReps"`
	ActualWeight *float64 `json:"actualWeight"`
	ActualRPE    *float64 `json:"actualRpe"`
	Notes        *string  `json:"notes"`

	CreatedAt time.Time `json:"createdAt"`
}

// SetPatch carries a partial update for a set. Nil fields are left unchanged;
// only supplied fields are written.
type SetPatch struct {
	TargetReps   *int     `json:"targetReps,omitempty"`
	TargetWeight *float64 `json:"targetWeight,omitempty"`
	TargetRPE    *float64 `json:"targetRpe,omitempty"`
	Tempo        *string  `json:"tempo,omitempty"`
	RestSec      *int     `json:"restSec,omitempty"`
	ActualReps   *int     `json:"actualReps,omitempty"`
	ActualWeight *float64 `json:"actualWeight,omitempty"`
	ActualRPE    *float64 `json:"actualRpe,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
}

// IsZero reports whether the patch carries no fields.
func (p SetPatch) IsZero() bool {
	return p.TargetReps == nil && p.TargetWeight == nil && p.TargetRPE == nil &&
		p.Tempo == nil && p.RestSec == nil &&
		p.ActualReps == nil && p.ActualWeight == nil && p.ActualRPE == nil &&
		p.Notes == nil
}

// NoonLocal normalizes t to 12:00 local time on the same calendar day.
func NoonLocal(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}
