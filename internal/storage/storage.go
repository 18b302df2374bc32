// Package storage persists run results so the resource handler can
// serve individual documents and the archive after the tool call that
// produced them has returned. The core pipeline never reads from here;
// each run is written once and fetched by ID.
package storage

import (
	"context"

	"github.com/Meridian-Assist/policysplit-mcp/models"
)

// Store is the interface for persisting and retrieving run results.
type Store interface {
	// StoreRun stores a completed run and returns its unique run ID.
	StoreRun(ctx context.Context, result *models.RunResult) (string, error)

	// GetRun retrieves the stored summary of a run.
	GetRun(ctx context.Context, runID string) (*models.RunInfo, error)

	// GetDocuments retrieves all documents of a run, in run order, with
	// PDF bytes populated.
	GetDocuments(ctx context.Context, runID string) ([]models.NamedDocument, error)

	// GetDocument retrieves one document of a run by 0-based index.
	GetDocument(ctx context.Context, runID string, index int) (*models.NamedDocument, error)

	// ListRuns returns summaries of all stored runs.
	ListRuns(ctx context.Context) ([]models.RunInfo, error)

	// DeleteRun removes a run and its documents.
	DeleteRun(ctx context.Context, runID string) error

	// Close closes the underlying database.
	Close() error
}
