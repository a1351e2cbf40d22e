package apperrors

import "errors"

var (
	// ErrEmptyGeneration means a backend returned an empty response.
	ErrEmptyGeneration = errors.New("backend returned empty response")

	// ErrBackendsExhausted means every backend in the fallback chain failed
	// for one generation round.
	ErrBackendsExhausted = errors.New("all generation backends exhausted")

	// ErrCorrectionExhausted means the bounded correction loop ran out of
	// attempts without producing valid SQL.
	ErrCorrectionExhausted = errors.New("correction attempts exhausted")

	// ErrCatalogUnavailable means no schema catalog snapshot has been loaded.
	ErrCatalogUnavailable = errors.New("schema catalog unavailable")

	// ErrOutOfScope means the question is not about the retail warehouse at
	// all and never reaches classification or generation.
	ErrOutOfScope = errors.New("question out of scope")
)
