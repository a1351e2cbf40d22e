package intent

import (
	"testing"

	"go.uber.org/zap"

	"github.com/contoso-bi/nlsql-engine/pkg/models"
)

func TestClassify_QueryTypes(t *testing.T) {
	c := NewClassifier(zap.NewNop())

	tests := []struct {
		name     string
		question string
		want     models.QueryType
	}{
		{"turkish top sellers", "en çok satan 5 ürün", models.QueryTypeRanking},
		{"english top n", "top 10 products by sales", models.QueryTypeRanking},
		{"turkish worst sellers", "en az satan 3 ürün hangileri", models.QueryTypeRanking},
		{"turkish total is aggregation not ranking", "2008 toplam satış ne kadar", models.QueryTypeAggregation},
		{"monthly trend", "2008 aylık satış trendi", models.QueryTypeTrend},
		{"store vs online", "2009 mağaza ve online satış karşılaştırması", models.QueryTypeComparison},
		{"year over year", "compare 2007 vs 2008 sales", models.QueryTypeComparison},
		{"category breakdown", "kategori bazında satışlar", models.QueryTypeCategoryAnalysis},
		{"region breakdown", "bölgelere göre satışlar", models.QueryTypeGeography},
		{"profit question", "ürün bazında kar marjı nedir", models.QueryTypeProfit},
		{"returns question", "iade oranı nedir", models.QueryTypeReturns},
		{"unknown falls back to aggregation", "satış rakamlarını getir", models.QueryTypeAggregation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.question)
			if got.QueryType != tt.want {
				t.Errorf("Classify(%q).QueryType = %q, want %q", tt.question, got.QueryType, tt.want)
			}
		})
	}
}

// "toplam" contains the substring "top"; word-boundary matching must keep it
// out of the ranking bucket.
func TestClassify_ToplamIsNotRanking(t *testing.T) {
	c := NewClassifier(zap.NewNop())

	got := c.Classify("toplam ciro nedir")
	if got.QueryType == models.QueryTypeRanking {
		t.Fatalf("Classify(toplam ciro nedir) = ranking, want aggregation")
	}
}

func TestClassify_ExpectedCount(t *testing.T) {
	c := NewClassifier(zap.NewNop())

	tests := []struct {
		name     string
		question string
		want     *int
	}{
		{"top 5", "top 5 products", intPtr(5)},
		{"turkish count", "en çok satan 3 ürün", intPtr(3)},
		{"no count stays nil", "en çok satan ürünler", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.question)
			if tt.want == nil {
				if got.ExpectedCount != nil {
					t.Errorf("ExpectedCount = %d, want nil", *got.ExpectedCount)
				}
				return
			}
			if got.ExpectedCount == nil {
				t.Fatalf("ExpectedCount = nil, want %d", *tt.want)
			}
			if *got.ExpectedCount != *tt.want {
				t.Errorf("ExpectedCount = %d, want %d", *got.ExpectedCount, *tt.want)
			}
		})
	}
}

func TestClassify_OrderDirection(t *testing.T) {
	c := NewClassifier(zap.NewNop())

	if got := c.Classify("en çok satan 5 ürün"); got.OrderDirection != models.OrderDesc {
		t.Errorf("descending ranking got direction %q", got.OrderDirection)
	}
	if got := c.Classify("en az satan 5 ürün"); got.OrderDirection != models.OrderAsc {
		t.Errorf("ascending ranking got direction %q", got.OrderDirection)
	}
}

func TestClassify_TimeGranularity(t *testing.T) {
	c := NewClassifier(zap.NewNop())

	tests := []struct {
		question string
		want     models.TimeGranularity
	}{
		{"2008 aylık satış trendi", models.GranularityMonth},
		{"2008 haftalık satış trendi", models.GranularityWeek},
		{"2008 çeyreklik satış trendi", models.GranularityQuarter},
	}
	for _, tt := range tests {
		if got := c.Classify(tt.question); got.TimeGranularity != tt.want {
			t.Errorf("Classify(%q).TimeGranularity = %q, want %q", tt.question, got.TimeGranularity, tt.want)
		}
	}
}

func TestClassify_ComparisonType(t *testing.T) {
	c := NewClassifier(zap.NewNop())

	if got := c.Classify("2007 ile 2008 satışlarını karşılaştır"); got.ComparisonType != models.ComparisonYearOverYear {
		t.Errorf("year pair comparison got type %q", got.ComparisonType)
	}
	if got := c.Classify("mağaza ve online satışları karşılaştır"); got.ComparisonType != models.ComparisonStoreVsOnline {
		t.Errorf("store vs online comparison got type %q", got.ComparisonType)
	}
}

// Classification is memoized; asking twice must return identical intents.
func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier(zap.NewNop())

	q := "en çok satan 5 ürün 2008"
	first := c.Classify(q)
	second := c.Classify(q)

	if first.QueryType != second.QueryType ||
		first.Confidence != second.Confidence ||
		(first.ExpectedCount == nil) != (second.ExpectedCount == nil) {
		t.Errorf("repeated classification differs: %+v vs %+v", first, second)
	}
}

func TestExtractCount(t *testing.T) {
	tests := []struct {
		question string
		want     *int
	}{
		{"top 5 products", intPtr(5)},
		{"first 3 stores", intPtr(3)},
		{"en çok satan 7 ürün", intPtr(7)},
		{"ilk 10 mağaza", intPtr(10)},
		{"best selling products", nil},
		{"2008 satışları", nil}, // years are not counts
	}

	for _, tt := range tests {
		got := ExtractCount(tt.question)
		if tt.want == nil {
			if got != nil {
				t.Errorf("ExtractCount(%q) = %d, want nil", tt.question, *got)
			}
			continue
		}
		if got == nil || *got != *tt.want {
			t.Errorf("ExtractCount(%q) = %v, want %d", tt.question, got, *tt.want)
		}
	}
}

func intPtr(n int) *int { return &n }
