// Package sqlcheck turns raw model output into validated T-SQL: extraction,
// normalization, and the rule-based validator.
package sqlcheck

import (
	"regexp"
	"strings"
)

var (
	fencePattern     = regexp.MustCompile("(?i)```sql|```")
	sqlLabelPattern  = regexp.MustCompile(`(?i)^\s*SQL\s*:`)
	statementPattern = regexp.MustCompile(`(?is)\b(SELECT|WITH)\b[\s\S]*`)
	trailingGO       = regexp.MustCompile(`(?im)^\s*GO\s*$`)
)

// Extract pulls the SQL statement out of raw model output. The prompt
// contract asks for SQL followed by an "EXPLANATION:" line, but models also
// wrap answers in markdown fences, prefix them with "SQL:", or append a
// batch separator; Extract strips all of that and returns everything from
// the first SELECT or WITH onward.
func Extract(response string) string {
	if idx := strings.Index(response, "EXPLANATION:"); idx >= 0 {
		response = response[:idx]
	}

	response = fencePattern.ReplaceAllString(response, "")
	response = sqlLabelPattern.ReplaceAllString(response, "")
	response = trailingGO.ReplaceAllString(response, "")

	if m := statementPattern.FindString(response); m != "" {
		return strings.TrimSpace(m)
	}
	return strings.TrimSpace(response)
}
