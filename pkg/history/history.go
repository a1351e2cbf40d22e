// Package history records accepted and failed translations. Successful
// entries double as few-shot material for later prompts.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/contoso-bi/nlsql-engine/pkg/models"
)

// Entry is one recorded translation outcome.
type Entry struct {
	ID        uuid.UUID              `json:"id"`
	Question  string                 `json:"question"`
	SQL       string                 `json:"sql"`
	QueryType models.QueryType       `json:"query_type"`
	Origin    models.CandidateOrigin `json:"origin"`
	Backend   string                 `json:"backend,omitempty"`
	Valid     bool                   `json:"valid"`
	Attempts  int                    `json:"attempts"`
	CreatedAt time.Time              `json:"created_at"`
}

// Sink persists translation outcomes. Recording failures is as useful as
// recording successes; only FindSimilar filters to valid entries.
type Sink interface {
	Record(ctx context.Context, entry *Entry) error

	// FindSimilar returns valid entries whose questions resemble the given
	// one, best match first, for few-shot prompting.
	FindSimilar(ctx context.Context, question string, limit int) ([]*Entry, error)
}

// NopSink discards everything. Used when history persistence is disabled.
type NopSink struct{}

func (NopSink) Record(ctx context.Context, entry *Entry) error { return nil }

func (NopSink) FindSimilar(ctx context.Context, question string, limit int) ([]*Entry, error) {
	return nil, nil
}

var _ Sink = (*NopSink)(nil)
