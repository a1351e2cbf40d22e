// Package prompts renders generation and correction prompts: a schema slice
// scoped to the question, the warehouse business rules, strategy-specific
// instructions, and the output contract.
package prompts

import "github.com/contoso-bi/nlsql-engine/pkg/models"

// Strategy selects the instruction style for a generation prompt.
type Strategy string

const (
	StrategyDirect         Strategy = "direct"
	StrategyFewShot        Strategy = "few_shot"
	StrategyChainOfThought Strategy = "chain_of_thought"
	StrategyCorrection     Strategy = "correction"
)

// SelectStrategy picks the instruction style from the classified intent.
// Simple, confidently classified questions get direct instructions; middling
// complexity gets few-shot examples; everything harder gets step-by-step
// reasoning instructions.
func SelectStrategy(intent models.Intent) Strategy {
	switch {
	case intent.Complexity <= 3 && intent.Confidence > 0.7:
		return StrategyDirect
	case intent.Complexity <= 7:
		return StrategyFewShot
	default:
		return StrategyChainOfThought
	}
}
