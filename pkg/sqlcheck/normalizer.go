package sqlcheck

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/jinzhu/inflection"
	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"
)

// Column names models hallucinate for revenue. They are rewritten to
// SalesAmount, but only in the projection; FROM/JOIN clauses are left alone.
var phantomColumns = []string{
	"OnlineSales", "PhysicalSales", "StoreSales", "RetailSales",
	"ChannelSales", "WebSales", "TotalRevenue",
}

var phantomPatterns = compileWordPatterns(phantomColumns)

func compileWordPatterns(words []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		patterns[i] = regexp.MustCompile(`(?i)\b` + w + `\b`)
	}
	return patterns
}

var multiWordKeywords = []string{
	"GROUP BY", "ORDER BY", "INNER JOIN",
	"LEFT JOIN", "RIGHT JOIN", "FULL JOIN",
	"LEFT OUTER JOIN", "RIGHT OUTER JOIN", "FULL OUTER JOIN",
	"PARTITION BY",
}

var singleWordKeywords = []string{
	"SELECT", "FROM", "WHERE", "GROUP", "BY", "ORDER", "INNER",
	"JOIN", "LEFT", "RIGHT", "FULL", "OUTER", "ON", "TOP",
	"HAVING", "UNION", "ALL", "EXISTS", "DISTINCT",
	"CASE", "WHEN", "THEN", "END", "OVER", "PARTITION",
}

// Fuzzy repair safety thresholds. A candidate replaces a table reference
// only when it clears both: similarity ratio at least 0.85 and edit distance
// at most max(2, len/4). Below either bound the reference is left untouched
// for the validator to reject.
const fuzzyMinRatio = 0.85

var (
	tableRefPattern   = regexp.MustCompile(`(?i)\b(FROM|JOIN)\s+((?:\w+\.)?)(\w+)(\s+(?:AS\s+)?\w+)?`)
	aliasDotPattern   = regexp.MustCompile(`(\w+)\s*\.\s*(\w+)`)
	limitPattern      = regexp.MustCompile(`(?i)LIMIT\s+(\d+)`)
	selectWordPattern = regexp.MustCompile(`(?i)\bSELECT\b`)
	sqlPrefixPattern  = regexp.MustCompile(`(?i)^SQL\s*:`)
	trailingSemies    = regexp.MustCompile(`;+\s*$`)
	blankLinesPattern = regexp.MustCompile(`\n{2,}`)
	proseLinePattern  = regexp.MustCompile(`[A-Za-z]{4,}\s*:`)
)

// Normalizer repairs mechanical defects in extracted SQL: markdown residue,
// prose lines, hallucinated columns, misspelled table names, MySQL-isms.
// It never rewrites query logic; anything it cannot repair safely passes
// through unchanged.
type Normalizer struct {
	tables []string
	lcMap  map[string]string
	logger *zap.Logger
}

// NewNormalizer creates a normalizer over the given canonical table names.
func NewNormalizer(tables []string, logger *zap.Logger) *Normalizer {
	lcMap := make(map[string]string, len(tables))
	for _, t := range tables {
		lcMap[strings.ToLower(t)] = t
	}
	return &Normalizer{
		tables: tables,
		lcMap:  lcMap,
		logger: logger.Named("sql_normalizer"),
	}
}

// Normalize runs the full repair pipeline. Stages run in a fixed order and
// each consumes the previous stage's output; the whole pipeline is
// idempotent, so re-normalizing already clean SQL is a no-op.
func (n *Normalizer) Normalize(sql string) string {
	if sql == "" {
		return ""
	}

	sql = strings.TrimSpace(sql)
	sql = removeMarkdown(sql)
	sql = removeProseLines(sql)
	sql = sqlPrefixPattern.ReplaceAllString(sql, "")
	sql = strings.TrimSpace(sql)
	sql = rewritePhantomColumns(sql, n.logger)
	sql = n.repairTableNames(sql)
	sql = aliasDotPattern.ReplaceAllString(sql, "$1.$2")
	sql = rewriteLimit(sql)
	sql = uppercaseKeywords(sql)
	sql = trailingSemies.ReplaceAllString(sql, "")
	sql = balanceParentheses(sql)
	sql = blankLinesPattern.ReplaceAllString(sql, "\n")

	return strings.TrimSpace(sql)
}

func removeMarkdown(sql string) string {
	sql = fencePattern.ReplaceAllString(sql, "")
	return strings.TrimSpace(sql)
}

// removeProseLines drops explanation lines models slip in between or around
// the SQL ("Here is the query:", "Reasoning: ...").
func removeProseLines(sql string) string {
	var kept []string
	for _, line := range strings.Split(sql, "\n") {
		stripped := strings.TrimSpace(line)
		upper := strings.ToUpper(stripped)
		lower := strings.ToLower(stripped)

		if proseLinePattern.MatchString(stripped) &&
			!strings.HasPrefix(upper, "SELECT") &&
			!strings.HasPrefix(upper, "WITH ") {
			continue
		}
		if strings.Contains(lower, "reasoning") {
			continue
		}
		if strings.HasPrefix(lower, "here is") && strings.Contains(lower, "query") {
			continue
		}
		if strings.HasPrefix(lower, "below") && strings.Contains(lower, "query") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// rewritePhantomColumns maps hallucinated revenue columns to SalesAmount in
// the projection only. When the query has no FROM at all it is too broken to
// segment, and the rewrite applies globally.
func rewritePhantomColumns(sql string, logger *zap.Logger) string {
	fromIdx := strings.Index(strings.ToUpper(sql), " FROM ")

	rewrite := func(segment string) string {
		for i, p := range phantomPatterns {
			if p.MatchString(segment) {
				logger.Info("phantom column rewritten",
					zap.String("column", phantomColumns[i]))
				segment = p.ReplaceAllString(segment, "SalesAmount")
			}
		}
		return segment
	}

	if fromIdx == -1 {
		return rewrite(sql)
	}
	return rewrite(sql[:fromIdx]) + sql[fromIdx:]
}

// repairTableNames fixes table references after FROM/JOIN while preserving
// schema prefixes and aliases. Resolution order: case-insensitive exact
// match, then a singular/plural variant probe, then scored fuzzy matching
// under the safety thresholds.
func (n *Normalizer) repairTableNames(sql string) string {
	if len(n.tables) == 0 {
		return sql
	}

	return tableRefPattern.ReplaceAllStringFunc(sql, func(ref string) string {
		m := tableRefPattern.FindStringSubmatch(ref)
		keyword, schema, table, alias := m[1], m[2], m[3], m[4]

		canonical, ok := n.resolveTable(table)
		if !ok || canonical == table {
			return ref
		}

		n.logger.Info("table reference repaired",
			zap.String("from", table),
			zap.String("to", canonical))
		return fmt.Sprintf("%s %s%s%s", keyword, schema, canonical, alias)
	})
}

func (n *Normalizer) resolveTable(table string) (string, bool) {
	lc := strings.ToLower(table)

	if canonical, ok := n.lcMap[lc]; ok {
		return canonical, true
	}

	// Singular/plural slips are common enough to probe before fuzzy
	// scoring: "FactSale" should land on FactSales without spending edit
	// distance budget. The hit still has to clear the same thresholds as a
	// fuzzy match, or an irregular pair like Person/People would be
	// rewritten on a far weaker signal than the gates allow.
	for _, variant := range []string{inflection.Plural(lc), inflection.Singular(lc)} {
		if canonical, ok := n.lcMap[variant]; ok && withinRepairThresholds(lc, canonical) {
			return canonical, true
		}
	}

	return n.fuzzyMatch(lc)
}

// withinRepairThresholds applies the dual safety gates between a reference
// and a canonical table name.
func withinRepairThresholds(target, canonical string) bool {
	lc := strings.ToLower(canonical)
	return charRatio(target, lc) >= fuzzyMinRatio &&
		levenshtein.ComputeDistance(target, lc) <= max(2, len(lc)/4)
}

// fuzzyMatch scores every candidate by similarity ratio, breaking ties with
// edit distance, and accepts the best only when it clears both thresholds.
func (n *Normalizer) fuzzyMatch(target string) (string, bool) {
	var (
		best         string
		bestRatio    float64
		bestDistance = -1
	)

	for _, valid := range n.tables {
		lc := strings.ToLower(valid)

		// Length pre-filter before any scoring.
		if abs(len(lc)-len(target)) > max(4, len(lc)/2) {
			continue
		}

		distance := levenshtein.ComputeDistance(target, lc)
		ratio := charRatio(target, lc)

		if ratio > bestRatio || (ratio == bestRatio && (bestDistance == -1 || distance < bestDistance)) {
			bestRatio = ratio
			bestDistance = distance
			best = valid
		}
	}

	if best == "" || bestDistance == -1 {
		return "", false
	}
	if bestRatio >= fuzzyMinRatio && bestDistance <= max(2, len(best)/4) {
		return best, true
	}
	return "", false
}

// charRatio is a character-level SequenceMatcher similarity ratio.
func charRatio(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

// rewriteLimit converts a MySQL trailing LIMIT into TOP on the first SELECT.
func rewriteLimit(sql string) string {
	m := limitPattern.FindStringSubmatch(sql)
	if m == nil {
		return sql
	}
	replaced := false
	sql = selectWordPattern.ReplaceAllStringFunc(sql, func(kw string) string {
		if replaced {
			return kw
		}
		replaced = true
		return "SELECT TOP " + m[1]
	})
	return limitPattern.ReplaceAllString(sql, "")
}

var (
	multiWordPatterns  = compilePhrasePatterns(multiWordKeywords)
	singleWordPatterns = compileWordPatterns(singleWordKeywords)
)

func compilePhrasePatterns(phrases []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(phrases))
	for i, p := range phrases {
		patterns[i] = regexp.MustCompile(`(?i)` + strings.ReplaceAll(regexp.QuoteMeta(p), ` `, `\s+`))
	}
	return patterns
}

// uppercaseKeywords normalizes keyword casing, multi-word patterns first so
// "group   by" becomes "GROUP BY" before the single-word pass sees it.
func uppercaseKeywords(sql string) string {
	for i, p := range multiWordPatterns {
		sql = p.ReplaceAllString(sql, multiWordKeywords[i])
	}
	for i, p := range singleWordPatterns {
		sql = p.ReplaceAllString(sql, singleWordKeywords[i])
	}
	return sql
}

// balanceParentheses conservatively closes unclosed parentheses at the end,
// or opens missing ones at the front.
func balanceParentheses(sql string) string {
	diff := strings.Count(sql, "(") - strings.Count(sql, ")")
	if diff > 0 {
		sql += strings.Repeat(")", diff)
	} else if diff < 0 {
		sql = strings.Repeat("(", -diff) + sql
	}
	return sql
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
