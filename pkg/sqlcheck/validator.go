package sqlcheck

import (
	"fmt"
	"regexp"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
	"go.uber.org/zap"

	"github.com/contoso-bi/nlsql-engine/pkg/models"
)

// Columns that live only on the other fact table. Referencing them through
// the wrong fact is the single most common model mistake against this schema.
var (
	factSalesForbidden       = []string{"CustomerKey"}
	factOnlineSalesForbidden = []string{"ChannelKey", "StoreKey"}
)

// Dialect functions from other engines that SQL Server rejects.
var forbiddenFunctions = []struct {
	pattern *regexp.Regexp
	message string
}{
	{regexp.MustCompile(`(?i)LIMIT\s+\d+`), "LIMIT is MySQL-specific, use SELECT TOP"},
	{regexp.MustCompile(`(?i)IFNULL\s*\(`), "IFNULL() is MySQL-only, use ISNULL()"},
	{regexp.MustCompile(`(?i)ILIKE\s`), "ILIKE is PostgreSQL-only"},
	{regexp.MustCompile(`(?i)REGEXP\s`), "REGEXP is SQLite/MySQL, use LIKE or PATINDEX"},
	{regexp.MustCompile(`(?i)NOW\s*\(`), "NOW() is MySQL-only, use GETDATE()"},
	{regexp.MustCompile(`(?i)CURDATE\s*\(`), "CURDATE() is MySQL-only"},
}

var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i);\s*DROP\s+TABLE`),
	regexp.MustCompile(`(?i);\s*ALTER\s+TABLE`),
	regexp.MustCompile(`(?i);\s*TRUNCATE\s+TABLE`),
}

var (
	yearOnDateKey   = regexp.MustCompile(`(?i)YEAR\s*\(\s*[\w\.]*DateKey\s*\)`)
	fsAliasPattern  = regexp.MustCompile(`\bfs\b`)
	fosAliasPattern = regexp.MustCompile(`\bfos\b`)
	selectColsGrab  = regexp.MustCompile(`(?is)SELECT\s+(.*?)\s+FROM`)
)

// Validator runs the rule battery against normalized SQL. Rules never
// execute anything; every check is textual. Error-severity findings make the
// candidate invalid, warnings only annotate it.
type Validator struct {
	logger *zap.Logger
}

func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{logger: logger.Named("query_validator")}
}

// Validate checks the SQL against schema rules, dialect rules, injection
// patterns, structural sanity, and (when an intent is supplied) intent
// alignment. Pass nil intent to skip alignment checks.
func (v *Validator) Validate(sql string, intent *models.Intent) models.ValidationResult {
	if len(strings.TrimSpace(sql)) < 10 {
		return invalid("SQL is empty or too short")
	}

	var issues []models.ValidationIssue
	issues = append(issues, v.checkDimDateUsage(sql)...)
	issues = append(issues, v.checkFactColumnMisuse(sql)...)
	issues = append(issues, v.checkForbiddenFunctions(sql)...)
	issues = append(issues, v.checkInjection(sql)...)
	issues = append(issues, v.checkAggregationGroupBy(sql)...)
	if intent != nil {
		issues = append(issues, v.checkIntentAlignment(sql, *intent)...)
	}
	issues = append(issues, v.checkStructure(sql)...)

	result := models.ValidationResult{Issues: issues}
	result.IsValid = len(result.Errors()) == 0

	if !result.IsValid {
		for _, e := range result.Errors() {
			v.logger.Warn("validation error", zap.String("message", e.Message))
		}
	}
	for _, w := range result.Warnings() {
		v.logger.Debug("validation warning", zap.String("message", w.Message))
	}
	return result
}

// checkDimDateUsage enforces the date handling rules. Extracting the year
// from a surrogate DateKey is wrong on this warehouse, not merely
// unidiomatic: DateKey is not a date, so YEAR(DateKey) silently produces
// garbage and is rejected outright.
func (v *Validator) checkDimDateUsage(sql string) []models.ValidationIssue {
	var issues []models.ValidationIssue

	if yearOnDateKey.MatchString(sql) {
		issues = append(issues, errIssue("YEAR(DateKey) is invalid, join DimDate and filter on CalendarYear"))
	}

	if strings.Contains(sql, "CalendarYear") || strings.Contains(sql, "CalendarMonth") {
		if !strings.Contains(sql, "DimDate") {
			issues = append(issues, errIssue("CalendarYear/CalendarMonth used without joining DimDate"))
		}
	}
	return issues
}

func (v *Validator) checkFactColumnMisuse(sql string) []models.ValidationIssue {
	var issues []models.ValidationIssue

	if strings.Contains(sql, "FactSales") || fsAliasPattern.MatchString(sql) {
		for _, col := range factSalesForbidden {
			p := regexp.MustCompile(`(?i)(FactSales|fs)\s*\.\s*` + col)
			if p.MatchString(sql) {
				issues = append(issues, errIssue(
					fmt.Sprintf("FactSales does not contain %s, use FactOnlineSales", col)))
			}
		}
	}
	if strings.Contains(sql, "FactOnlineSales") || fosAliasPattern.MatchString(sql) {
		for _, col := range factOnlineSalesForbidden {
			p := regexp.MustCompile(`(?i)(FactOnlineSales|fos)\s*\.\s*` + col)
			if p.MatchString(sql) {
				issues = append(issues, errIssue(
					fmt.Sprintf("FactOnlineSales does not contain %s, use FactSales", col)))
			}
		}
	}
	return issues
}

func (v *Validator) checkForbiddenFunctions(sql string) []models.ValidationIssue {
	var issues []models.ValidationIssue
	for _, f := range forbiddenFunctions {
		if f.pattern.MatchString(sql) {
			issues = append(issues, errIssue(f.message))
		}
	}
	return issues
}

// checkInjection combines the stacked-statement patterns with libinjection's
// tokenizer. Templates never trip this; it exists for generated candidates
// where prompt content could have steered the model.
func (v *Validator) checkInjection(sql string) []models.ValidationIssue {
	for _, p := range injectionPatterns {
		if p.MatchString(sql) {
			return []models.ValidationIssue{errIssue("suspicious statement stacking detected")}
		}
	}
	if strings.Contains(sql, ";") {
		if isSQLi, _ := libinjection.IsSQLi(sql); isSQLi {
			return []models.ValidationIssue{errIssue("SQL injection pattern detected")}
		}
	}
	return nil
}

func (v *Validator) checkAggregationGroupBy(sql string) []models.ValidationIssue {
	upper := strings.ToUpper(sql)
	isAgg := strings.Contains(upper, "SUM(") ||
		strings.Contains(upper, "COUNT(") ||
		strings.Contains(upper, "AVG(")

	if !isAgg || strings.Contains(upper, "GROUP BY") {
		return nil
	}

	m := selectColsGrab.FindStringSubmatch(sql)
	if m == nil {
		return nil
	}

	var bare int
	for _, col := range strings.Split(m[1], ",") {
		c := strings.ToUpper(strings.TrimSpace(col))
		if !strings.Contains(c, "(") {
			bare++
		}
	}
	if bare > 1 {
		return []models.ValidationIssue{warnIssue("aggregation without GROUP BY may produce incorrect results")}
	}
	return nil
}

func (v *Validator) checkIntentAlignment(sql string, intent models.Intent) []models.ValidationIssue {
	var issues []models.ValidationIssue
	upper := strings.ToUpper(sql)

	switch intent.QueryType {
	case models.QueryTypeRanking:
		if !strings.Contains(upper, "ORDER BY") {
			issues = append(issues, warnIssue("ranking query expected an ORDER BY clause"))
		}
		if !strings.Contains(upper, "TOP") {
			issues = append(issues, warnIssue("ranking query expected SELECT TOP"))
		}
	case models.QueryTypeTrend:
		if !strings.Contains(upper, "GROUP BY") {
			issues = append(issues, warnIssue("trend query expected GROUP BY"))
		}
	case models.QueryTypeComparison:
		if intent.ComparisonType == models.ComparisonStoreVsOnline &&
			!strings.Contains(upper, "UNION") {
			issues = append(issues, warnIssue("store vs online comparison expected a UNION of both fact tables"))
		}
	}
	return issues
}

func (v *Validator) checkStructure(sql string) []models.ValidationIssue {
	var issues []models.ValidationIssue
	upper := strings.ToUpper(sql)

	if !strings.Contains(upper, "SELECT") {
		issues = append(issues, errIssue("missing SELECT keyword"))
	}
	if !strings.Contains(upper, "FROM") {
		issues = append(issues, errIssue("missing FROM clause"))
	}
	if strings.Count(sql, "(") != strings.Count(sql, ")") {
		issues = append(issues, errIssue("unbalanced parentheses"))
	}
	return issues
}

func errIssue(msg string) models.ValidationIssue {
	return models.ValidationIssue{Severity: models.SeverityError, Message: msg}
}

func warnIssue(msg string) models.ValidationIssue {
	return models.ValidationIssue{Severity: models.SeverityWarning, Message: msg}
}

func invalid(msg string) models.ValidationResult {
	return models.ValidationResult{
		IsValid: false,
		Issues:  []models.ValidationIssue{errIssue(msg)},
	}
}
