package models

// CandidateOrigin records which pipeline stage produced a SQL candidate.
type CandidateOrigin string

const (
	OriginTemplate  CandidateOrigin = "template"
	OriginGenerated CandidateOrigin = "generated"
	OriginCorrected CandidateOrigin = "corrected"
)

// SQLCandidate is one in-flight SQL string moving through extraction,
// normalization, and validation. Each attempt produces exactly one new
// candidate; stages return new values rather than mutating shared state.
type SQLCandidate struct {
	Text    string          `json:"text"`
	Origin  CandidateOrigin `json:"origin"`
	Attempt int             `json:"attempt"`
	Backend string          `json:"backend,omitempty"` // name of the backend that produced it
}

// CorrectionContext is the error feedback package handed to a generation
// backend to repair a previously rejected candidate. It is built only when
// validation fails with retry budget remaining, or when the external
// execution engine reports a runtime error post-hoc.
type CorrectionContext struct {
	OriginalSQL  string            `json:"original_sql"`
	Issues       []ValidationIssue `json:"issues,omitempty"`
	RuntimeError string            `json:"runtime_error,omitempty"`
	Question     string            `json:"question"`
	Intent       Intent            `json:"intent"`
}
