package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/repository"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise catalog: name, category, muscle groups, and logging unit for each exercise."),
)

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List workouts, newest first, each with its set count."),
	mcp.WithNumber("limit", mcp.Description("Maximum workouts to return. Defaults to 20.")),
)

var toolGetWorkoutSets = mcp.NewTool("get_workout_sets",
	mcp.WithDescription("Get a workout's sets in display order, with exercise names, target and actual fields."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout id")),
)

var toolGetExerciseProgress = mcp.NewTool("get_exercise_progress",
	mcp.WithDescription("Per-workout strength trend for one exercise: best estimated one-rep max and session volume, ascending by date."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise id or name (partial match, e.g. 'bench')")),
)

var toolGetVolumeSummary = mcp.NewTool("get_volume_summary",
	mcp.WithDescription("Total volume (weight x reps over actual performance) per workout, newest first."),
	mcp.WithNumber("limit", mcp.Description("Maximum workouts to summarize. Defaults to 10.")),
)

var toolCreateWorkout = mcp.NewTool("create_workout",
	mcp.WithDescription("Create a new workout for a calendar date."),
	mcp.WithString("name", mcp.Description("Workout name. Defaults to 'Workout'.")),
	mcp.WithString("date", mcp.Description("Calendar date (YYYY-MM-DD). Defaults to today.")),
)

var toolAddPlannedSets = mcp.NewTool("add_planned_sets",
	mcp.WithDescription("Append a batch of planned sets to a workout: count identical rows sharing the given targets."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout id")),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise id or name (partial match)")),
	mcp.WithNumber("count", mcp.Required(), mcp.Description("Number of sets, >= 1")),
	mcp.WithNumber("target_reps", mcp.Required(), mcp.Description("Planned reps per set")),
	mcp.WithNumber("target_weight", mcp.Description("Planned weight")),
	mcp.WithNumber("target_rpe", mcp.Description("Planned RPE (1-10)")),
	mcp.WithString("type", mcp.Description("Set type"), mcp.Enum("warmup", "work")),
)

var toolLogSet = mcp.NewTool("log_set",
	mcp.WithDescription("Record actual performance on one set. Only supplied fields change."),
	mcp.WithString("set_id", mcp.Required(), mcp.Description("Set id")),
	mcp.WithNumber("actual_reps", mcp.Description("Performed reps")),
	mcp.WithNumber("actual_weight", mcp.Description("Performed weight")),
	mcp.WithNumber("actual_rpe", mcp.Description("Perceived exertion (1-10)")),
	mcp.WithString("notes", mcp.Description("Free-text notes")),
)

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := h.ds.Snapshot(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(snap.Exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := h.ds.Snapshot(ctx)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	limit := req.GetInt("limit", 20)
	workouts := snap.Workouts
	if limit > 0 && len(workouts) > limit {
		workouts = workouts[:limit]
	}

	type workoutSummary struct {
		models.Workout
		SetCount int `json:"setCount"`
	}
	summaries := make([]workoutSummary, 0, len(workouts))
	for _, w := range workouts {
		summaries = append(summaries, workoutSummary{Workout: w, SetCount: len(snap.SetsByWorkout[w.ID])})
	}

	result, err := mcp.NewToolResultJSON(summaries)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workoutID, err := req.RequireString("workout_id")
	if err != nil {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}

	snap, err := h.ds.Snapshot(ctx)
	if err != nil {
		h.log.Error("mcp get_workout_sets", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	found := false
	for _, w := range snap.Workouts {
		if w.ID == workoutID {
			found = true
			break
		}
	}
	if !found {
		return mcp.NewToolResultError("workout not found: " + workoutID), nil
	}
	sets := snap.SetsByWorkout[workoutID]

	type setRow struct {
		models.Set
		ExerciseName string `json:"exerciseName"`
	}
	rows := make([]setRow, 0, len(sets))
	for _, s := range sets {
		rows = append(rows, setRow{Set: s, ExerciseName: snap.ExercisesByID[s.ExerciseID].Name})
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	exercise, errResult := h.resolveExercise(ctx, query)
	if errResult != nil {
		return errResult, nil
	}

	points, err := h.ds.ExerciseProgress(ctx, exercise.ID)
	if err != nil {
		h.log.Error("mcp get_exercise_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise": exercise,
		"points":   points,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getVolumeSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := h.ds.Snapshot(ctx)
	if err != nil {
		h.log.Error("mcp get_volume_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	limit := req.GetInt("limit", 10)
	workouts := snap.Workouts
	if limit > 0 && len(workouts) > limit {
		workouts = workouts[:limit]
	}

	type volumeRow struct {
		WorkoutID string    `json:"workoutId"`
		Name      string    `json:"name"`
		Date      time.Time `json:"date"`
		Volume    float64   `json:"volume"`
	}
	rows := make([]volumeRow, 0, len(workouts))
	for _, w := range workouts {
		rows = append(rows, volumeRow{
			WorkoutID: w.ID,
			Name:      w.Name,
			Date:      w.Date,
			Volume:    metrics.TotalVolume(snap.SetsByWorkout[w.ID]),
		})
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) createWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date := time.Now()
	if s := req.GetString("date", ""); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			return mcp.NewToolResultError("invalid date, want YYYY-MM-DD: " + err.Error()), nil
		}
		date = parsed
	}

	snap, err := h.ds.CreateWorkout(ctx, req.GetString("name", ""), date)
	if err != nil {
		h.log.Error("mcp create_workout", "error", err)
		return mcp.NewToolResultError("create failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(snap.Workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) addPlannedSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workoutID, err := req.RequireString("workout_id")
	if err != nil {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}
	query, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	count, err := req.RequireInt("count")
	if err != nil {
		return mcp.NewToolResultError("count parameter is required"), nil
	}
	targetReps, err := req.RequireInt("target_reps")
	if err != nil {
		return mcp.NewToolResultError("target_reps parameter is required"), nil
	}

	exercise, errResult := h.resolveExercise(ctx, query)
	if errResult != nil {
		return errResult, nil
	}

	params := repository.AddSetsParams{
		WorkoutID:  workoutID,
		ExerciseID: exercise.ID,
		Count:      count,
		TargetReps: targetReps,
		Type:       models.SetType(req.GetString("type", "work")),
	}
	if w := req.GetFloat("target_weight", 0); w != 0 {
		params.TargetWeight = &w
	}
	if rpe := req.GetFloat("target_rpe", 0); rpe != 0 {
		params.TargetRPE = &rpe
	}

	snap, err := h.ds.AddPlannedSets(ctx, params)
	if err != nil {
		h.log.Error("mcp add_planned_sets", "error", err)
		return mcp.NewToolResultError("add failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(snap.SetsByWorkout[workoutID])
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	setID, err := req.RequireString("set_id")
	if err != nil {
		return mcp.NewToolResultError("set_id parameter is required"), nil
	}

	var patch models.SetPatch
	if v := req.GetFloat("actual_reps", 0); v != 0 {
		reps := int(v)
		patch.ActualReps = &reps
	}
	if v := req.GetFloat("actual_weight", 0); v != 0 {
		patch.ActualWeight = &v
	}
	if v := req.GetFloat("actual_rpe", 0); v != 0 {
		patch.ActualRPE = &v
	}
	if v := req.GetString("notes", ""); v != "" {
		patch.Notes = &v
	}
	if patch.IsZero() {
		return mcp.NewToolResultError("no fields to update"), nil
	}

	snap, err := h.ds.UpdateSetFields(ctx, setID, patch)
	if err != nil {
		h.log.Error("mcp log_set", "error", err)
		return mcp.NewToolResultError("update failed: " + err.Error()), nil
	}

	for _, s := range snap.Sets {
		if s.ID == setID {
			result, err := mcp.NewToolResultJSON(s)
			if err != nil {
				return mcp.NewToolResultError("serialization failed"), nil
			}
			return result, nil
		}
	}
	return mcp.NewToolResultError("set not found: " + setID), nil
}

// resolveExercise matches an id exactly or a name case-insensitively
// (substring). Returns a tool error result on no or ambiguous match.
func (h *handlers) resolveExercise(ctx context.Context, query string) (*models.Exercise, *mcp.CallToolResult) {
	snap, err := h.ds.Snapshot(ctx)
	if err != nil {
		h.log.Error("mcp resolve exercise", "error", err)
		return nil, mcp.NewToolResultError("query failed: " + err.Error())
	}

	if e, ok := snap.ExercisesByID[query]; ok {
		return &e, nil
	}

	var matches []models.Exercise
	needle := strings.ToLower(query)
	for _, e := range snap.Exercises {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 1:
		return &matches[0], nil
	case 0:
		return nil, mcp.NewToolResultError("no exercise matches " + query)
	default:
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.Name)
		}
		return nil, mcp.NewToolResultError("ambiguous exercise " + query + ": matches " + strings.Join(names, ", "))
	}
}
