package storage

import (
	"context"

	"spikejump/internal/model"
)

// Store persists genomes, spike-jump session records and per-scape summaries.
type Store interface {
	Init(ctx context.Context) error
	SaveGenome(ctx context.Context, genome model.Genome) error
	GetGenome(ctx context.Context, id string) (model.Genome, bool, error)
	SaveSessionRecord(ctx context.Context, record model.SessionRecord) error
	GetSessionRecord(ctx context.Context, id string) (model.SessionRecord, bool, error)
	// ListSessionRecords returns records oldest first. An empty runID lists
	// every run.
	ListSessionRecords(ctx context.Context, runID string) ([]model.SessionRecord, error)
	SaveScapeSummary(ctx context.Context, summary model.ScapeSummary) error
	GetScapeSummary(ctx context.Context, name string) (model.ScapeSummary, bool, error)
}
