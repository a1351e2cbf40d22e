package sqlcheck

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

var testTables = []string{
	"FactSales", "FactOnlineSales", "DimProduct",
	"DimProductSubcategory", "DimProductCategory",
	"DimDate", "DimStore", "DimCustomer", "DimGeography",
}

func newTestNormalizer() *Normalizer {
	return NewNormalizer(testTables, zap.NewNop())
}

func TestNormalize_RepairTableNames(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "case slip",
			sql:  "SELECT * FROM factsales",
			want: "SELECT * FROM FactSales",
		},
		{
			name: "missing plural",
			sql:  "SELECT * FROM FactSale fs",
			want: "SELECT * FROM FactSales fs",
		},
		{
			name: "transposed letters",
			sql:  "SELECT ProductName FROM DimProdcut",
			want: "SELECT ProductName FROM DimProduct",
		},
		{
			name: "join reference with alias",
			sql:  "SELECT * FROM FactSales fs JOIN DimDat dd ON fs.DateKey = dd.DateKey",
			want: "SELECT * FROM FactSales fs JOIN DimDate dd ON fs.DateKey = dd.DateKey",
		},
		{
			name: "schema prefix preserved",
			sql:  "SELECT * FROM dbo.DimProdcut dp",
			want: "SELECT * FROM dbo.DimProduct dp",
		},
		{
			name: "unrelated name left untouched",
			sql:  "SELECT * FROM SomeRandomTable",
			want: "SELECT * FROM SomeRandomTable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.sql); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.sql, got, tt.want)
			}
		})
	}
}

// An inflection variant that maps onto a catalog table still has to clear
// the ratio and distance gates before it is rewritten.
func TestNormalize_IrregularPluralBelowThresholds(t *testing.T) {
	n := NewNormalizer([]string{"People", "FactSales"}, zap.NewNop())

	sql := "SELECT * FROM Person p"
	if got := n.Normalize(sql); got != sql {
		t.Errorf("irregular pair below thresholds was rewritten: %q", got)
	}

	// A regular pair well inside the gates still repairs.
	got := n.Normalize("SELECT * FROM FactSale fs")
	if !strings.Contains(got, "FactSales fs") {
		t.Errorf("regular plural slip not repaired: %q", got)
	}
}

func TestNormalize_LimitBecomesTop(t *testing.T) {
	n := newTestNormalizer()

	got := n.Normalize("SELECT ProductName FROM DimProduct LIMIT 5")
	want := "SELECT TOP 5 ProductName FROM DimProduct"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Only the outermost SELECT receives the TOP clause.
func TestNormalize_LimitFirstSelectOnly(t *testing.T) {
	n := newTestNormalizer()

	got := n.Normalize("SELECT a FROM (SELECT b FROM DimProduct) x LIMIT 3")
	want := "SELECT TOP 3 a FROM (SELECT b FROM DimProduct) x"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalize_PhantomColumnsProjectionOnly(t *testing.T) {
	n := newTestNormalizer()

	got := n.Normalize("SELECT SUM(TotalRevenue) AS Total FROM FactSales fs")
	if !strings.Contains(got, "SUM(SalesAmount)") {
		t.Errorf("phantom column not rewritten: %q", got)
	}

	// Identifiers after FROM stay as they are, even when they look like a
	// phantom column.
	got = n.Normalize("SELECT SUM(WebSales) AS Total FROM WebSales ws")
	if !strings.HasSuffix(got, "FROM WebSales ws") {
		t.Errorf("FROM clause was rewritten: %q", got)
	}
	if !strings.Contains(got, "SUM(SalesAmount)") {
		t.Errorf("projection was not rewritten: %q", got)
	}
}

func TestNormalize_KeywordsAndResidue(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "keyword casing",
			sql:  "select ProductName from DimProduct order   by ProductName",
			want: "SELECT ProductName FROM DimProduct ORDER BY ProductName",
		},
		{
			name: "alias dot spacing",
			sql:  "SELECT fs . SalesAmount FROM FactSales fs",
			want: "SELECT fs.SalesAmount FROM FactSales fs",
		},
		{
			name: "trailing semicolons",
			sql:  "SELECT ProductName FROM DimProduct;;",
			want: "SELECT ProductName FROM DimProduct",
		},
		{
			name: "markdown fences",
			sql:  "```sql\nSELECT ProductName FROM DimProduct\n```",
			want: "SELECT ProductName FROM DimProduct",
		},
		{
			name: "prose line dropped",
			sql:  "Here is the query:\nSELECT ProductName FROM DimProduct",
			want: "SELECT ProductName FROM DimProduct",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.sql); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.sql, got, tt.want)
			}
		})
	}
}

func TestNormalize_BalancesParentheses(t *testing.T) {
	n := newTestNormalizer()

	got := n.Normalize("SELECT SUM(SalesAmount FROM FactSales")
	if strings.Count(got, "(") != strings.Count(got, ")") {
		t.Errorf("parentheses still unbalanced: %q", got)
	}
	if !strings.HasSuffix(got, ")") {
		t.Errorf("expected closing paren appended, got %q", got)
	}
}

// Re-normalizing clean output must change nothing.
func TestNormalize_Idempotent(t *testing.T) {
	n := newTestNormalizer()

	inputs := []string{
		"select * from factsale LIMIT 10",
		"```sql\nSELECT SUM(TotalRevenue) AS Total FROM FactSales fs;\n```",
		"SELECT dp.ProductName FROM DimProdcut dp JOIN FactSales fs ON fs.ProductKey = dp.ProductKey",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("normalization not idempotent for %q:\nonce:  %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestNormalize_Empty(t *testing.T) {
	n := newTestNormalizer()
	if got := n.Normalize(""); got != "" {
		t.Errorf("Normalize(\"\") = %q, want empty", got)
	}
}
