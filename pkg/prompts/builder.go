package prompts

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/contoso-bi/nlsql-engine/pkg/models"
	"github.com/contoso-bi/nlsql-engine/pkg/schema"
)

const outputContract = `CRITICAL OUTPUT FORMAT (YOU MUST FOLLOW THIS EXACTLY):

1) First, output ONLY the final T-SQL query (no backticks, no markdown, no comments).
2) Then, on a new line, start with: EXPLANATION:
   and write a short explanation in natural language.

Example:

SELECT
    dd.CalendarYear,
    SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
INNER JOIN DimDate dd ON fs.DateKey = dd.DateKey
WHERE dd.CalendarYear = 2008
GROUP BY dd.CalendarYear
ORDER BY dd.CalendarYear;

EXPLANATION: This query returns total sales for 2008 by summing SalesAmount in FactSales joined with DimDate.

Now produce ONLY ONE final SQL query followed by EXPLANATION: as shown.`

// Example is a previously accepted question/SQL pair used for few-shot
// prompts.
type Example struct {
	Question string
	SQL      string
}

// Builder renders generation and correction prompts against the current
// schema catalog snapshot.
type Builder struct {
	catalog *schema.Store
	logger  *zap.Logger
}

func NewBuilder(catalog *schema.Store, logger *zap.Logger) *Builder {
	return &Builder{
		catalog: catalog,
		logger:  logger.Named("prompt_builder"),
	}
}

// Build renders the full prompt: header with the question and intent, the
// schema slice with business rules, strategy instructions, and the output
// contract.
func (b *Builder) Build(question string, intent models.Intent, strategy Strategy, examples []Example) (string, error) {
	return b.build(question, intent, strategy, examples, "")
}

// BuildCorrection renders a correction prompt carrying the rejected SQL and
// the feedback that rejected it.
func (b *Builder) BuildCorrection(cc models.CorrectionContext) (string, error) {
	return b.build(cc.Question, cc.Intent, StrategyCorrection, nil, formatErrorContext(cc))
}

func (b *Builder) build(question string, intent models.Intent, strategy Strategy, examples []Example, errorContext string) (string, error) {
	catalog, err := b.catalog.Current()
	if err != nil {
		return "", err
	}

	tables := inferTables(question, intent)
	b.logger.Debug("schema slice selected",
		zap.Strings("tables", tables),
		zap.String("strategy", string(strategy)))

	var sb strings.Builder
	fmt.Fprintf(&sb, `You are an expert BI developer working with the Microsoft ContosoRetailDW SQL Server data warehouse (star schema).

Your job:
- Convert a business question into a SINGLE valid T-SQL query.
- Use ONLY real tables and columns from the provided CONTOSO SCHEMA.
- Strictly follow Contoso business rules and join patterns.

User question (in Turkish or English):
"%s"

Detected intent:
- Type: %s
- Complexity: %d/10
- Confidence: %.2f

IMPORTANT:
- Database: SQL Server (T-SQL)
- Use SELECT ... FROM ..., INNER JOIN, LEFT JOIN, etc.
- Use SELECT TOP N ... ORDER BY ... instead of LIMIT.
- NEVER use YEAR(DateKey) or similar functions directly on DateKey.
- ALWAYS join DimDate and filter via dd.CalendarYear, dd.CalendarMonth, etc.

Below is the relevant part of the Contoso schema and business rules:
%s
`, question, intent.QueryType, intent.Complexity, intent.Confidence, schemaContext(catalog, tables))

	sb.WriteString("\n")
	switch strategy {
	case StrategyFewShot:
		sb.WriteString(fewShotInstructions(examples))
	case StrategyChainOfThought:
		sb.WriteString(chainOfThoughtInstructions)
	case StrategyCorrection:
		sb.WriteString(correctionInstructions(errorContext))
	default:
		sb.WriteString(directInstructions)
	}

	sb.WriteString("\n")
	sb.WriteString(outputContract)
	sb.WriteString("\n")
	return sb.String(), nil
}

const directInstructions = `STRATEGY: DIRECT SQL GENERATION

Generate a single, clean T-SQL query that answers the question.
- Prefer simple, readable SQL.
- Use correct joins based on the schema and rules.
- Use GROUP BY whenever you select non-aggregated columns together with aggregates.
- Use ORDER BY when returning rankings or top-N results.
`

const chainOfThoughtInstructions = `STRATEGY: CHAIN-OF-THOUGHT (DEEP REASONING)

You may think step-by-step INTERNALLY, but in the final answer you MUST:
- Output ONLY the final SQL query
- Then output EXPLANATION: on a new line

When reasoning about the query:
- Choose the correct fact table(s) based on the question (FactSales vs FactOnlineSales)
- Join DimDate, DimProduct, DimCustomer, DimStore, DimGeography, etc. as needed
- For comparisons (store vs online, 2007 vs 2008), use either:
    UNION ALL with matching column lists, OR
    a single query with conditional aggregation (preferred)
- For top-N products or stores, use:
    SELECT TOP N ... ORDER BY <metric> DESC
`

func fewShotInstructions(examples []Example) string {
	var sb strings.Builder
	sb.WriteString(`STRATEGY: FEW-SHOT SQL GENERATION

Generate a T-SQL query inspired by the style of previous successful queries.
Re-use patterns like:
- FactSales/FactOnlineSales + DimDate for time filtering
- DimProduct + DimProductSubcategory + DimProductCategory for product/category analysis
- DimStore / DimGeography for store and region analysis

Previous successful examples (for STYLE ONLY, do NOT copy table/column names that don't exist in the schema):
`)

	n := 0
	for _, ex := range examples {
		q := strings.TrimSpace(ex.Question)
		sql := strings.TrimSpace(ex.SQL)
		if q == "" || sql == "" {
			continue
		}
		n++
		fmt.Fprintf(&sb, "\nExample %d:\nQ: %s\nSQL:\n%s\n", n, q, sql)
	}
	if n == 0 {
		sb.WriteString("\n(No previous examples found, just follow the schema and rules.)\n")
	}
	return sb.String()
}

func correctionInstructions(errorContext string) string {
	base := `STRATEGY: SQL CORRECTION

You are given a previous SQL attempt and its validation errors.
Your job is to FIX the SQL so that:
- It uses only valid tables/columns from the schema
- It respects Contoso business rules and join patterns
- It is syntactically valid T-SQL for SQL Server
- It correctly answers the original business question

DO NOT explain the error in the SQL itself.
`
	if errorContext != "" {
		base += fmt.Sprintf(`
Here is the previous attempt and the validation feedback:
%s

Now generate a NEW corrected SQL query (do NOT just patch small pieces).
`, errorContext)
	}
	return base
}

func formatErrorContext(cc models.CorrectionContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Original SQL:\n%s\n\nValidation Errors:\n", cc.OriginalSQL)
	for _, issue := range cc.Issues {
		fmt.Fprintf(&sb, "- %s: %s\n", strings.ToUpper(string(issue.Severity)), issue.Message)
	}
	if cc.RuntimeError != "" {
		fmt.Fprintf(&sb, "- RUNTIME: %s\n", cc.RuntimeError)
	}
	return sb.String()
}

// inferTables picks the schema slice to show the model. The core facts and
// DimDate are always included; dimensions come in only when the question
// mentions their domain.
func inferTables(question string, intent models.Intent) []string {
	q := strings.ToLower(question)
	tables := []string{"FactSales", "FactOnlineSales", "DimDate"}

	if containsAny(q, "ürün", "urun", "product", "kategori", "category", "subkategori", "subcategory") {
		tables = append(tables, "DimProduct", "DimProductSubcategory", "DimProductCategory")
	}
	if containsAny(q, "mağaza", "magaza", "store", "bölge", "bolge", "region", "ülke", "ulke", "city") {
		tables = append(tables, "DimStore", "DimGeography")
	}
	if containsAny(q, "müşteri", "musteri", "customer", "online") {
		tables = append(tables, "DimCustomer", "DimGeography")
	}

	seen := make(map[string]bool, len(tables))
	unique := tables[:0]
	for _, t := range tables {
		if !seen[t] {
			seen[t] = true
			unique = append(unique, t)
		}
	}
	return unique
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
