package mcp

import (
	"context"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/repository"
	"github.com/claude/liftlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both
// *repository.Repository (local database) and HTTPClient (remote via REST
// API) satisfy this interface.
type DataSource interface {
	Snapshot(ctx context.Context) (*repository.Snapshot, error)
	CreateWorkout(ctx context.Context, name string, date time.Time) (*repository.Snapshot, error)
	AddPlannedSets(ctx context.Context, p repository.AddSetsParams) (*repository.Snapshot, error)
	UpdateSetFields(ctx context.Context, setID string, patch models.SetPatch) (*repository.Snapshot, error)
	ExerciseProgress(ctx context.Context, exerciseID string) ([]repository.ProgressPoint, error)
	ExportRows(ctx context.Context) ([]storage.ExportRow, error)
}

// Compile-time check: *repository.Repository satisfies DataSource.
var _ DataSource = (*repository.Repository)(nil)
