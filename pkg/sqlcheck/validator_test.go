package sqlcheck

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/contoso-bi/nlsql-engine/pkg/models"
)

func newTestValidator() *Validator {
	return NewValidator(zap.NewNop())
}

func TestValidate_Errors(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		sql     string
		wantMsg string
	}{
		{
			name:    "year on surrogate date key",
			sql:     "SELECT SUM(fs.SalesAmount) FROM FactSales fs WHERE YEAR(fs.DateKey) = 2008",
			wantMsg: "YEAR(DateKey)",
		},
		{
			name:    "calendar year without dimdate",
			sql:     "SELECT SUM(fs.SalesAmount) FROM FactSales fs WHERE CalendarYear = 2008",
			wantMsg: "without joining DimDate",
		},
		{
			name:    "customer key on store fact",
			sql:     "SELECT fs.CustomerKey FROM FactSales fs",
			wantMsg: "FactSales does not contain CustomerKey",
		},
		{
			name:    "store key on online fact",
			sql:     "SELECT fos.StoreKey FROM FactOnlineSales fos",
			wantMsg: "FactOnlineSales does not contain StoreKey",
		},
		{
			name:    "mysql limit",
			sql:     "SELECT ProductName FROM DimProduct LIMIT 10",
			wantMsg: "LIMIT is MySQL-specific",
		},
		{
			name:    "mysql ifnull",
			sql:     "SELECT IFNULL(SalesAmount, 0) FROM FactSales",
			wantMsg: "IFNULL()",
		},
		{
			name:    "stacked drop statement",
			sql:     "SELECT ProductName FROM DimProduct; DROP TABLE DimProduct",
			wantMsg: "statement stacking",
		},
		{
			name:    "missing from clause",
			sql:     "SELECT 1 + 1 AS Answer",
			wantMsg: "missing FROM",
		},
		{
			name:    "unbalanced parentheses",
			sql:     "SELECT SUM(SalesAmount FROM FactSales",
			wantMsg: "unbalanced parentheses",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.sql, nil)
			if result.IsValid {
				t.Fatalf("Validate(%q) unexpectedly valid", tt.sql)
			}
			if !hasIssue(result.Errors(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got %v", tt.wantMsg, result.Issues)
			}
		})
	}
}

func TestValidate_TooShort(t *testing.T) {
	v := newTestValidator()
	for _, sql := range []string{"", "   ", "SELECT"} {
		if result := v.Validate(sql, nil); result.IsValid {
			t.Errorf("Validate(%q) unexpectedly valid", sql)
		}
	}
}

func TestValidate_CleanQuery(t *testing.T) {
	v := newTestValidator()
	sql := `SELECT dp.ProductName, SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
JOIN DimProduct dp ON fs.ProductKey = dp.ProductKey
JOIN DimDate dd ON fs.DateKey = dd.DateKey
WHERE dd.CalendarYear = 2008
GROUP BY dp.ProductName
ORDER BY TotalSales DESC`

	result := v.Validate(sql, nil)
	if !result.IsValid {
		t.Fatalf("clean query rejected: %v", result.Issues)
	}
	if len(result.Issues) != 0 {
		t.Errorf("clean query produced issues: %v", result.Issues)
	}
}

// Warnings annotate the result but never invalidate it.
func TestValidate_WarningsDoNotInvalidate(t *testing.T) {
	v := newTestValidator()
	sql := "SELECT ProductName, StoreName, SUM(SalesAmount) AS Total FROM FactSales"

	result := v.Validate(sql, nil)
	if !result.IsValid {
		t.Fatalf("warning-only result marked invalid: %v", result.Issues)
	}
	if !hasIssue(result.Warnings(), "without GROUP BY") {
		t.Errorf("expected aggregation warning, got %v", result.Issues)
	}
}

func TestValidate_IntentAlignment(t *testing.T) {
	v := newTestValidator()

	ranking := &models.Intent{QueryType: models.QueryTypeRanking}
	result := v.Validate("SELECT ProductName FROM DimProduct", ranking)
	if !result.IsValid {
		t.Fatalf("alignment warnings must not invalidate: %v", result.Issues)
	}
	if !hasIssue(result.Warnings(), "ORDER BY") || !hasIssue(result.Warnings(), "SELECT TOP") {
		t.Errorf("expected ranking alignment warnings, got %v", result.Issues)
	}

	cmp := &models.Intent{
		QueryType:      models.QueryTypeComparison,
		ComparisonType: models.ComparisonStoreVsOnline,
	}
	result = v.Validate("SELECT SUM(fs.SalesAmount) AS Total FROM FactSales fs", cmp)
	if !hasIssue(result.Warnings(), "UNION") {
		t.Errorf("expected store vs online warning, got %v", result.Issues)
	}

	trend := &models.Intent{QueryType: models.QueryTypeTrend}
	result = v.Validate("SELECT dd.CalendarMonth FROM DimDate dd", trend)
	if !hasIssue(result.Warnings(), "GROUP BY") {
		t.Errorf("expected trend alignment warning, got %v", result.Issues)
	}
}

func TestValidate_TemplatesPassClean(t *testing.T) {
	v := newTestValidator()

	// Representative template shapes, including UNION and window functions.
	queries := []string{
		`SELECT 'Store' AS Channel, SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
JOIN DimDate dd ON fs.DateKey = dd.DateKey
WHERE dd.CalendarYear = 2009
UNION ALL
SELECT 'Online' AS Channel, SUM(fos.SalesAmount) AS TotalSales
FROM FactOnlineSales fos
JOIN DimDate dd ON fos.DateKey = dd.DateKey
WHERE dd.CalendarYear = 2009`,
		`WITH ProductSales AS (
    SELECT dp.ProductName, SUM(fs.SalesAmount) AS TotalSales
    FROM FactSales fs
    JOIN DimProduct dp ON fs.ProductKey = dp.ProductKey
    GROUP BY dp.ProductName
)
SELECT ProductName, TotalSales FROM ProductSales ORDER BY TotalSales DESC`,
	}

	for _, sql := range queries {
		result := v.Validate(sql, nil)
		if !result.IsValid {
			t.Errorf("template-shaped query rejected: %v\n%s", result.Issues, sql)
		}
	}
}

func hasIssue(issues []models.ValidationIssue, substr string) bool {
	for _, i := range issues {
		if strings.Contains(i.Message, substr) {
			return true
		}
	}
	return false
}
