package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/contoso-bi/nlsql-engine/pkg/apperrors"
	"github.com/contoso-bi/nlsql-engine/pkg/pipeline"
)

// TranslateRequest is the body of POST /api/translate.
type TranslateRequest struct {
	Question string `json:"question"`
}

// CorrectRequest is the body of POST /api/correct: SQL that validated here
// but failed when the caller ran it against the warehouse.
type CorrectRequest struct {
	Question string `json:"question"`
	SQL      string `json:"sql"`
	Error    string `json:"error"`
}

// FailureResponse carries the last rejected candidate back to the caller.
type FailureResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	LastSQL string   `json:"last_sql,omitempty"`
	Issues  []string `json:"issues,omitempty"`
}

// TranslateHandler exposes the translation pipeline over HTTP.
type TranslateHandler struct {
	engine *pipeline.Engine
	logger *zap.Logger
}

func NewTranslateHandler(engine *pipeline.Engine, logger *zap.Logger) *TranslateHandler {
	return &TranslateHandler{engine: engine, logger: logger}
}

// RegisterRoutes registers the translation routes on the given mux.
func (h *TranslateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/translate", h.Translate)
	mux.HandleFunc("POST /api/correct", h.Correct)
}

// Translate handles POST /api/translate.
func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = writeError(w, http.StatusBadRequest, codeInvalidRequest, "body must be JSON with a question field")
		return
	}
	if req.Question == "" {
		_ = writeError(w, http.StatusBadRequest, codeInvalidRequest, "question is required")
		return
	}

	result, err := h.engine.Translate(r.Context(), req.Question)
	if err != nil {
		h.writeTranslateError(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode translate response", zap.Error(err))
	}
}

// Correct handles POST /api/correct.
func (h *TranslateHandler) Correct(w http.ResponseWriter, r *http.Request) {
	var req CorrectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = writeError(w, http.StatusBadRequest, codeInvalidRequest, "body must be JSON")
		return
	}
	if req.Question == "" || req.SQL == "" || req.Error == "" {
		_ = writeError(w, http.StatusBadRequest, codeInvalidRequest, "question, sql, and error are required")
		return
	}

	result, err := h.engine.CorrectRuntime(r.Context(), req.Question, req.SQL, req.Error)
	if err != nil {
		h.writeTranslateError(w, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode correct response", zap.Error(err))
	}
}

func (h *TranslateHandler) writeTranslateError(w http.ResponseWriter, err error) {
	var failure *pipeline.GenerationFailure
	switch {
	case errors.Is(err, apperrors.ErrOutOfScope):
		_ = writeError(w, http.StatusUnprocessableEntity, codeOutOfScope,
			"this assistant only answers questions about the Contoso retail warehouse")
	case errors.As(err, &failure):
		issues := make([]string, 0, len(failure.Issues))
		for _, issue := range failure.Issues {
			issues = append(issues, issue.Message)
		}
		_ = writeJSON(w, http.StatusUnprocessableEntity, FailureResponse{
			Error:   codeGenerationFailed,
			Message: "no valid SQL could be produced for this question",
			LastSQL: failure.LastSQL,
			Issues:  issues,
		})
	case errors.Is(err, apperrors.ErrCatalogUnavailable):
		_ = writeError(w, http.StatusServiceUnavailable, codeCatalogUnavailable,
			"schema catalog is not loaded yet")
	default:
		h.logger.Error("translation failed", zap.Error(err))
		_ = writeError(w, http.StatusInternalServerError, codeInternal,
			"translation failed")
	}
}
