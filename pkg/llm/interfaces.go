// Package llm provides the SQL generation backends and the ordered fallback
// chain that walks them.
package llm

import "context"

// Backend is a single SQL generation provider. GenerateSQL returns the raw
// model output for a fully rendered prompt; callers extract and normalize
// the SQL downstream.
//
// A timeout and an empty response are equivalent failures: both make the
// chain advance to the next backend.
type Backend interface {
	GenerateSQL(ctx context.Context, prompt string) (string, error)

	// Name identifies the backend in logs, cache keys, and history records.
	Name() string
}
