package templates

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/contoso-bi/nlsql-engine/pkg/models"
)

func rankingIntent(count int, direction models.OrderDirection) models.Intent {
	i := models.Intent{
		QueryType:      models.QueryTypeRanking,
		OrderDirection: direction,
		Confidence:     0.95,
	}
	if count > 0 {
		i.ExpectedCount = &count
	}
	return i
}

func TestRoute_RankingRequiresExplicitCount(t *testing.T) {
	r := NewRouter(zap.NewNop())

	if _, ok := r.Route("en çok satan ürünler", rankingIntent(0, models.OrderDesc)); ok {
		t.Fatal("ranking without an explicit count must not match a template")
	}

	sql, ok := r.Route("en çok satan 5 ürün", rankingIntent(5, models.OrderDesc))
	if !ok {
		t.Fatal("ranking with explicit count should match")
	}
	if !strings.Contains(sql, "TOP 5") {
		t.Errorf("expected TOP 5 in template, got:\n%s", sql)
	}
	if !strings.Contains(sql, "ORDER BY TotalSales DESC") {
		t.Errorf("expected descending order, got:\n%s", sql)
	}
}

func TestRoute_RankingVariants(t *testing.T) {
	r := NewRouter(zap.NewNop())

	tests := []struct {
		name      string
		question  string
		direction models.OrderDirection
		contains  []string
	}{
		{
			name:      "bottom products",
			question:  "en az satan 3 ürün",
			direction: models.OrderAsc,
			contains:  []string{"TOP 3", "ORDER BY TotalSales ASC", "FactSales"},
		},
		{
			name:      "quantity ranking",
			question:  "adet bazında en çok satan 5 ürün",
			direction: models.OrderDesc,
			contains:  []string{"SalesQuantity", "TotalQuantity"},
		},
		{
			name:      "online products",
			question:  "online en çok satan 5 ürün",
			direction: models.OrderDesc,
			contains:  []string{"FactOnlineSales"},
		},
		{
			name:      "best stores",
			question:  "en çok satış yapan 5 mağaza",
			direction: models.OrderDesc,
			contains:  []string{"DimStore", "StoreName"},
		},
		{
			name:      "worst stores",
			question:  "en az satış yapan 5 mağaza",
			direction: models.OrderAsc,
			contains:  []string{"DimStore", "ORDER BY TotalSales ASC"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, ok := r.Route(tt.question, rankingIntent(5, tt.direction))
			if !ok {
				t.Fatalf("Route(%q) did not match", tt.question)
			}
			for _, want := range tt.contains {
				if !strings.Contains(sql, want) {
					t.Errorf("Route(%q) missing %q:\n%s", tt.question, want, sql)
				}
			}
		})
	}
}

func TestRoute_TrendNeedsYear(t *testing.T) {
	r := NewRouter(zap.NewNop())
	trendIntent := models.Intent{
		QueryType:       models.QueryTypeTrend,
		TimeGranularity: models.GranularityMonth,
	}

	if _, ok := r.Route("aylık satış trendi", trendIntent); ok {
		t.Fatal("monthly trend without a year must not match")
	}

	sql, ok := r.Route("2008 aylık satış trendi", trendIntent)
	if !ok {
		t.Fatal("monthly trend with year should match")
	}
	if !strings.Contains(sql, "dd.CalendarYear = 2008") {
		t.Errorf("expected year filter, got:\n%s", sql)
	}
	if !strings.Contains(sql, "GROUP BY dd.CalendarMonth") {
		t.Errorf("expected monthly grouping, got:\n%s", sql)
	}
}

func TestRoute_StoreVsOnline(t *testing.T) {
	r := NewRouter(zap.NewNop())
	cmpIntent := models.Intent{
		QueryType:      models.QueryTypeComparison,
		ComparisonType: models.ComparisonStoreVsOnline,
	}

	sql, ok := r.Route("2009 mağaza ve online satış karşılaştırması", cmpIntent)
	if !ok {
		t.Fatal("store vs online with year should match")
	}
	for _, want := range []string{"UNION ALL", "FactSales", "FactOnlineSales", "2009"} {
		if !strings.Contains(sql, want) {
			t.Errorf("missing %q in:\n%s", want, sql)
		}
	}

	if _, ok := r.Route("mağaza ve online satış karşılaştırması", cmpIntent); ok {
		t.Fatal("store vs online without a year must not match")
	}
}

func TestRoute_YearOverYear(t *testing.T) {
	r := NewRouter(zap.NewNop())
	yoyIntent := models.Intent{
		QueryType:      models.QueryTypeComparison,
		ComparisonType: models.ComparisonYearOverYear,
	}

	sql, ok := r.Route("compare 2008 vs 2007 sales", yoyIntent)
	if !ok {
		t.Fatal("two-year comparison should match")
	}
	// Years are normalized (earlier, later) regardless of question order.
	if !strings.Contains(sql, "IN (2007, 2008)") {
		t.Errorf("expected normalized year pair, got:\n%s", sql)
	}

	growth, ok := r.Route("2007 vs 2008 growth percent", yoyIntent)
	if !ok {
		t.Fatal("growth comparison should match")
	}
	if !strings.Contains(growth, "GrowthPercent") {
		t.Errorf("expected growth template, got:\n%s", growth)
	}

	if _, ok := r.Route("compare with previous year", yoyIntent); ok {
		t.Fatal("comparison with fewer than two years must not match")
	}
}

func TestRoute_Aggregation(t *testing.T) {
	r := NewRouter(zap.NewNop())
	aggIntent := models.Intent{QueryType: models.QueryTypeAggregation}

	sql, ok := r.Route("2008 toplam satış ne kadar", aggIntent)
	if !ok {
		t.Fatal("total sales should match")
	}
	if !strings.Contains(sql, "SUM(fs.SalesAmount)") || !strings.Contains(sql, "2008") {
		t.Errorf("unexpected total sales template:\n%s", sql)
	}

	lastDays, ok := r.Route("son 30 gün toplam satış", aggIntent)
	if !ok {
		t.Fatal("last N days should match")
	}
	if !strings.Contains(lastDays, "DATEADD(DAY, -30") {
		t.Errorf("expected trailing window, got:\n%s", lastDays)
	}

	if _, ok := r.Route("satışları özetle", aggIntent); ok {
		t.Fatal("generic aggregation question must fall through to generation")
	}
}

func TestRoute_AggregationAnalysisTemplates(t *testing.T) {
	r := NewRouter(zap.NewNop())
	aggIntent := models.Intent{QueryType: models.QueryTypeAggregation}

	tests := []struct {
		question string
		want     string
	}{
		{"abc analizi yap", "ABCClass"},
		{"abc analysis of products", "CumulativePercent"},
		{"müşteri segment bazında gelir", "dc.Education AS Segment"},
		{"müşteri başına ortalama gelir", "AvgRevenuePerCustomer"},
		{"average revenue per customer in 2008", "AvgRevenuePerCustomer"},
	}
	for _, tt := range tests {
		sql, ok := r.Route(tt.question, aggIntent)
		if !ok {
			t.Errorf("%q: expected a template match", tt.question)
			continue
		}
		if !strings.Contains(sql, tt.want) {
			t.Errorf("%q: template missing %q:\n%s", tt.question, tt.want, sql)
		}
	}

	sql, ok := r.Route("2008 müşteri segment gelirleri", aggIntent)
	if !ok || !strings.Contains(sql, "dd.CalendarYear = 2008") {
		t.Errorf("segment template should carry the year filter:\n%s", sql)
	}
}

// The same question and intent must always produce the same SQL.
func TestRoute_Deterministic(t *testing.T) {
	r := NewRouter(zap.NewNop())
	q := "en çok satan 5 ürün 2008"

	first, ok1 := r.Route(q, rankingIntent(5, models.OrderDesc))
	second, ok2 := r.Route(q, rankingIntent(5, models.OrderDesc))
	if !ok1 || !ok2 || first != second {
		t.Fatalf("routing is not deterministic:\n%s\nvs\n%s", first, second)
	}
}

func TestExtractYears(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"2008 satışları", []int{2008}},
		{"compare 2009 vs 2007", []int{2007, 2009}},
		{"no years here", nil},
	}
	for _, tt := range tests {
		got := extractYears(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("extractYears(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("extractYears(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}
