// Package pipeline wires the translation stages into one engine: classify,
// try the template shortcut, generate with validation rounds, and run one
// correction pass before giving up.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/contoso-bi/nlsql-engine/pkg/apperrors"
	"github.com/contoso-bi/nlsql-engine/pkg/history"
	"github.com/contoso-bi/nlsql-engine/pkg/intent"
	"github.com/contoso-bi/nlsql-engine/pkg/llm"
	"github.com/contoso-bi/nlsql-engine/pkg/logging"
	"github.com/contoso-bi/nlsql-engine/pkg/models"
	"github.com/contoso-bi/nlsql-engine/pkg/prompts"
	"github.com/contoso-bi/nlsql-engine/pkg/sqlcheck"
	"github.com/contoso-bi/nlsql-engine/pkg/templates"
)

// Questions mentioning none of these are rejected before classification.
var scopeKeywords = []string{
	"satış", "satis", "ciro", "gelir", "ürün", "urun",
	"kategori", "mağaza", "magaza", "müşteri", "musteri",
	"iade", "karlılık", "profit", "revenue", "sales",
	"store", "online", "kanal", "bölge", "bolge", "segment",
}

// Result is a completed translation.
type Result struct {
	SQL        string                  `json:"sql"`
	Origin     models.CandidateOrigin  `json:"origin"`
	Backend    string                  `json:"backend,omitempty"`
	Intent     models.Intent           `json:"intent"`
	Validation models.ValidationResult `json:"validation"`
	Attempts   int                     `json:"attempts"`
}

// GenerationFailure carries the last rejected candidate so callers can show
// what was tried and why it was rejected.
type GenerationFailure struct {
	LastSQL string
	Issues  []models.ValidationIssue
}

func (f *GenerationFailure) Error() string {
	msgs := make([]string, 0, len(f.Issues))
	for _, issue := range f.Issues {
		msgs = append(msgs, issue.Message)
	}
	return fmt.Sprintf("no valid SQL produced: %s", strings.Join(msgs, "; "))
}

func (f *GenerationFailure) Unwrap() error {
	return apperrors.ErrCorrectionExhausted
}

// Engine runs the full translation pipeline for one question at a time.
// All state is per-call; a single Engine serves concurrent requests.
type Engine struct {
	classifier        *intent.Classifier
	router            *templates.Router
	builder           *prompts.Builder
	chain             *llm.Chain
	correctionBackend llm.Backend // nil means use the chain head
	normalizer        *sqlcheck.Normalizer
	validator         *sqlcheck.Validator
	sink              history.Sink
	maxAttempts       int
	logger            *zap.Logger
}

// EngineConfig collects the engine's collaborators.
type EngineConfig struct {
	Classifier        *intent.Classifier
	Router            *templates.Router
	PromptBuilder     *prompts.Builder
	Chain             *llm.Chain
	CorrectionBackend llm.Backend
	Normalizer        *sqlcheck.Normalizer
	Validator         *sqlcheck.Validator
	Sink              history.Sink
	MaxAttempts       int
}

func NewEngine(cfg EngineConfig, logger *zap.Logger) *Engine {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 2
	}
	sink := cfg.Sink
	if sink == nil {
		sink = history.NopSink{}
	}
	return &Engine{
		classifier:        cfg.Classifier,
		router:            cfg.Router,
		builder:           cfg.PromptBuilder,
		chain:             cfg.Chain,
		correctionBackend: cfg.CorrectionBackend,
		normalizer:        cfg.Normalizer,
		validator:         cfg.Validator,
		sink:              sink,
		maxAttempts:       maxAttempts,
		logger:            logger.Named("pipeline"),
	}
}

// Translate turns a business question into validated T-SQL. The walk is
// bounded: one template check, at most maxAttempts generation rounds, then
// one correction pass. There is no path back from correction to generation.
func (e *Engine) Translate(ctx context.Context, question string) (*Result, error) {
	return e.TranslateWithIntent(ctx, question, nil)
}

// TranslateWithIntent is Translate with a caller-supplied intent, for
// callers that already classified the question. A nil intent classifies
// here.
func (e *Engine) TranslateWithIntent(ctx context.Context, question string, precomputed *models.Intent) (*Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.ErrOutOfScope
	}
	if !inScope(question) {
		e.logger.Info("question rejected as out of scope",
			zap.String("question", logging.TruncateSQL(question)))
		return nil, apperrors.ErrOutOfScope
	}

	var queryIntent models.Intent
	if precomputed != nil {
		queryIntent = *precomputed
	} else {
		queryIntent = e.classifier.Classify(question)
	}
	e.logger.Info("intent classified",
		zap.String("query_type", string(queryIntent.QueryType)),
		zap.Int("complexity", queryIntent.Complexity),
		zap.Float64("confidence", queryIntent.Confidence))

	// Template shortcut: deterministic, no model call.
	if sql, ok := e.router.Route(question, queryIntent); ok {
		result := &Result{
			SQL:        sql,
			Origin:     models.OriginTemplate,
			Intent:     queryIntent,
			Validation: e.validator.Validate(sql, &queryIntent),
			Attempts:   0,
		}
		e.record(ctx, question, result)
		return result, nil
	}

	return e.generate(ctx, question, queryIntent)
}

func (e *Engine) generate(ctx context.Context, question string, queryIntent models.Intent) (*Result, error) {
	strategy := prompts.SelectStrategy(queryIntent)

	var examples []prompts.Example
	if strategy == prompts.StrategyFewShot {
		examples = e.fewShotExamples(ctx, question)
	}

	prompt, err := e.builder.Build(question, queryIntent, strategy, examples)
	if err != nil {
		return nil, err
	}

	var (
		lastSQL    string
		lastErrors []models.ValidationIssue
	)

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		e.logger.Info("generation attempt",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", e.maxAttempts),
			zap.String("strategy", string(strategy)))

		chainResult, err := e.chain.Generate(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.logger.Warn("generation round failed", zap.Error(err))
			continue
		}

		sql := e.normalizer.Normalize(sqlcheck.Extract(chainResult.Content))
		validation := e.validator.Validate(sql, &queryIntent)

		lastSQL = sql
		lastErrors = validation.Errors()

		if validation.IsValid {
			result := &Result{
				SQL:        sql,
				Origin:     models.OriginGenerated,
				Backend:    chainResult.Backend,
				Intent:     queryIntent,
				Validation: validation,
				Attempts:   attempt,
			}
			e.record(ctx, question, result)
			return result, nil
		}

		e.logger.Warn("candidate rejected",
			zap.Int("attempt", attempt),
			zap.String("sql", logging.TruncateSQL(sql)),
			zap.Int("errors", len(validation.Errors())))
	}

	// Warnings are advisory and would only dilute the correction prompt;
	// the model is asked to fix errors alone.
	return e.correct(ctx, question, models.CorrectionContext{
		OriginalSQL: lastSQL,
		Issues:      lastErrors,
		Question:    question,
		Intent:      queryIntent,
	})
}

// correct runs the single correction pass. Its output is final: either it
// validates and is accepted, or translation fails.
func (e *Engine) correct(ctx context.Context, question string, cc models.CorrectionContext) (*Result, error) {
	if cc.OriginalSQL == "" && cc.RuntimeError == "" {
		e.failSink(ctx, question, cc)
		return nil, &GenerationFailure{Issues: cc.Issues}
	}

	e.logger.Info("entering correction pass")

	prompt, err := e.builder.BuildCorrection(cc)
	if err != nil {
		return nil, err
	}

	content, backendName, err := e.generateCorrection(ctx, prompt)
	if err != nil {
		e.logger.Error("correction generation failed", zap.Error(err))
		e.failSink(ctx, question, cc)
		return nil, &GenerationFailure{LastSQL: cc.OriginalSQL, Issues: cc.Issues}
	}

	sql := e.normalizer.Normalize(sqlcheck.Extract(content))
	validation := e.validator.Validate(sql, &cc.Intent)

	if !validation.IsValid {
		e.logger.Warn("corrected candidate rejected",
			zap.String("sql", logging.TruncateSQL(sql)))
		e.failSink(ctx, question, cc)
		return nil, &GenerationFailure{LastSQL: sql, Issues: validation.Issues}
	}

	result := &Result{
		SQL:        sql,
		Origin:     models.OriginCorrected,
		Backend:    backendName,
		Intent:     cc.Intent,
		Validation: validation,
		Attempts:   e.maxAttempts + 1,
	}
	e.record(ctx, question, result)
	return result, nil
}

// CorrectRuntime repairs SQL that validated but failed when the caller
// executed it against the warehouse. It is a separate entry point because
// the feedback is an engine error message, not validator findings.
func (e *Engine) CorrectRuntime(ctx context.Context, question, faultySQL, dbError string) (*Result, error) {
	queryIntent := e.classifier.Classify(question)
	return e.correct(ctx, question, models.CorrectionContext{
		OriginalSQL:  faultySQL,
		RuntimeError: dbError,
		Question:     question,
		Intent:       queryIntent,
	})
}

func (e *Engine) generateCorrection(ctx context.Context, prompt string) (string, string, error) {
	backend := e.correctionBackend
	if backend == nil {
		backend = e.chain.Head()
	}
	if backend == nil {
		return "", "", apperrors.ErrBackendsExhausted
	}

	content, err := backend.GenerateSQL(ctx, prompt)
	if err != nil {
		return "", "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", "", apperrors.ErrEmptyGeneration
	}
	return content, backend.Name(), nil
}

func (e *Engine) fewShotExamples(ctx context.Context, question string) []prompts.Example {
	entries, err := e.sink.FindSimilar(ctx, question, 3)
	if err != nil {
		e.logger.Warn("could not load few-shot examples", zap.Error(err))
		return nil
	}
	examples := make([]prompts.Example, 0, len(entries))
	for _, entry := range entries {
		examples = append(examples, prompts.Example{
			Question: entry.Question,
			SQL:      entry.SQL,
		})
	}
	return examples
}

func (e *Engine) record(ctx context.Context, question string, result *Result) {
	err := e.sink.Record(ctx, &history.Entry{
		Question:  question,
		SQL:       result.SQL,
		QueryType: result.Intent.QueryType,
		Origin:    result.Origin,
		Backend:   result.Backend,
		Valid:     true,
		Attempts:  result.Attempts,
	})
	if err != nil {
		e.logger.Warn("failed to record history entry", zap.Error(err))
	}
}

func (e *Engine) failSink(ctx context.Context, question string, cc models.CorrectionContext) {
	err := e.sink.Record(ctx, &history.Entry{
		Question:  question,
		SQL:       cc.OriginalSQL,
		QueryType: cc.Intent.QueryType,
		Origin:    models.OriginGenerated,
		Valid:     false,
		Attempts:  e.maxAttempts,
	})
	if err != nil {
		e.logger.Warn("failed to record history entry", zap.Error(err))
	}
}

func inScope(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range scopeKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
