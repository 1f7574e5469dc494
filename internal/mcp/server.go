package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog workout planner. Browse the exercise catalog, review workout history and per-set logs, chart estimated 1RM progress, and plan new sessions (create workouts, add target sets, log actual performance)."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetWorkoutSets, Handler: h.getWorkoutSets},
		server.ServerTool{Tool: toolGetExerciseProgress, Handler: h.getExerciseProgress},
		server.ServerTool{Tool: toolGetVolumeSummary, Handler: h.getVolumeSummary},
		server.ServerTool{Tool: toolCreateWorkout, Handler: h.createWorkout},
		server.ServerTool{Tool: toolAddPlannedSets, Handler: h.addPlannedSets},
		server.ServerTool{Tool: toolLogSet, Handler: h.logSet},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resExerciseCatalog = mcp.NewResource(
	"liftlog://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All defined exercises with categories, muscle groups, and logging units"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"liftlog://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("The 10 most recent workouts with their sets"),
	mcp.WithMIMEType("application/json"),
)

// --- Resource handlers ---

func (h *handlers) exerciseCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	snap, err := h.ds.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, snap.Exercises)
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	snap, err := h.ds.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	workouts := snap.Workouts
	if len(workouts) > 10 {
		workouts = workouts[:10]
	}

	type workoutWithSets struct {
		Workout any `json:"workout"`
		Sets    any `json:"sets"`
	}
	result := make([]workoutWithSets, 0, len(workouts))
	for _, w := range workouts {
		result = append(result, workoutWithSets{Workout: w, Sets: snap.SetsByWorkout[w.ID]})
	}
	return jsonResource(req.Params.URI, result)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(data)},
	}, nil
}
