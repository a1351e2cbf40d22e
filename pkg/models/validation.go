package models

// IssueSeverity classifies a validation finding.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ValidationIssue is a single finding from the query validator.
type ValidationIssue struct {
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// ValidationResult is the outcome of running the validator rule battery.
// IsValid is true iff no issue has error severity; warnings are surfaced
// for diagnostics but never block acceptance.
type ValidationResult struct {
	IsValid bool              `json:"is_valid"`
	Issues  []ValidationIssue `json:"issues,omitempty"`
}

// Errors returns only the error-severity issues.
func (r ValidationResult) Errors() []ValidationIssue {
	var errs []ValidationIssue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			errs = append(errs, issue)
		}
	}
	return errs
}

// Warnings returns only the warning-severity issues.
func (r ValidationResult) Warnings() []ValidationIssue {
	var warns []ValidationIssue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			warns = append(warns, issue)
		}
	}
	return warns
}
