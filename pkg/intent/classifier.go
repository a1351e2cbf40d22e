// Package intent classifies natural-language business questions (Turkish or
// English) into structured Intent descriptors without any LLM involvement.
//
// Classification is an ordered list of lexical rules evaluated top to
// bottom; the first matching rule wins. The order is a deliberate
// tie-break, not an accident: ranking keywords are checked before
// aggregation keywords so "top 5 total sales" classifies as ranking.
// Reordering the rules silently changes behavior.
package intent

import (
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/contoso-bi/nlsql-engine/pkg/models"
)

const (
	// ruleConfidence is assigned when a lexical rule matches.
	ruleConfidence = 0.95
	// fallbackConfidence marks the documented low-confidence default.
	fallbackConfidence = 0.4
)

// Classifier maps question text to an Intent. It never fails; when no rule
// matches it falls back to a low-confidence aggregation intent.
type Classifier struct {
	mu     sync.RWMutex
	memo   map[string]models.Intent
	logger *zap.Logger
}

// NewClassifier creates a classifier with an empty memo cache.
func NewClassifier(logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		memo:   make(map[string]models.Intent),
		logger: logger.Named("intent"),
	}
}

// rule is one entry in the ordered classification table.
type rule struct {
	name     string
	matches  func(q string) bool
	classify func(c *Classifier, q string) models.Intent
}

// ruleTable is evaluated top to bottom; first match wins.
var ruleTable = []rule{
	{
		name: "ranking_desc",
		// Single-word keywords use word boundaries so "top" does not fire
		// inside Turkish "toplam" (total).
		matches: anyOf(
			containsAny("en çok", "en cok", "most selling", "top seller", "top selling", "best performing"),
			matchesWord("top", "best", "highest"),
		),
		classify: func(c *Classifier, q string) models.Intent {
			return c.rankingIntent(q, models.OrderDesc)
		},
	},
	{
		name: "ranking_asc",
		matches: anyOf(
			containsAny("en az", "least selling", "worst performing"),
			matchesWord("least", "bottom", "worst", "lowest"),
		),
		classify: func(c *Classifier, q string) models.Intent {
			return c.rankingIntent(q, models.OrderAsc)
		},
	},
	{
		name:    "ranking_top_n",
		matches: func(q string) bool { return topNPattern.MatchString(q) },
		classify: func(c *Classifier, q string) models.Intent {
			return c.rankingIntent(q, models.OrderDesc)
		},
	},
	{
		name:    "category",
		matches: containsAny("kategori", "category", "sub category", "alt kategori"),
		classify: func(c *Classifier, q string) models.Intent {
			return models.Intent{
				QueryType:       models.QueryTypeCategoryAnalysis,
				Complexity:      6,
				OrderDirection:  models.OrderNone,
				TimeDimension:   hasTimeDimension(q),
				TimeGranularity: detectGranularity(q),
				ComparisonType:  models.ComparisonNone,
				Confidence:      ruleConfidence,
			}
		},
	},
	{
		name:    "geography",
		matches: containsAny("bölge", "bolge", "region", "country", "ülke"),
		classify: func(c *Classifier, q string) models.Intent {
			return models.Intent{
				QueryType:       models.QueryTypeGeography,
				Complexity:      6,
				OrderDirection:  models.OrderNone,
				TimeDimension:   hasTimeDimension(q),
				TimeGranularity: detectGranularity(q),
				ComparisonType:  models.ComparisonNone,
				Confidence:      ruleConfidence,
			}
		},
	},
	{
		name:    "store_vs_online",
		matches: containsAny("store vs online", "mağaza vs online", "magaza vs online"),
		classify: func(c *Classifier, q string) models.Intent {
			return models.Intent{
				QueryType:       models.QueryTypeComparison,
				Complexity:      6,
				OrderDirection:  models.OrderNone,
				TimeGranularity: models.GranularityNone,
				ComparisonType:  models.ComparisonStoreVsOnline,
				Confidence:      ruleConfidence,
			}
		},
	},
	{
		name:    "comparison",
		matches: containsAny("karşı", "karsi", "compare", "vs", "versus"),
		classify: func(c *Classifier, q string) models.Intent {
			comparison := models.ComparisonNone
			switch {
			case containsAny("mağaza", "magaza", "store")(q) && strings.Contains(q, "online"):
				comparison = models.ComparisonStoreVsOnline
			case yearPairPattern.MatchString(q) || containsAny("geçen yıl", "gecen yil", "previous year", "yoy")(q):
				comparison = models.ComparisonYearOverYear
			}
			return models.Intent{
				QueryType:       models.QueryTypeComparison,
				Complexity:      6,
				OrderDirection:  models.OrderNone,
				TimeGranularity: models.GranularityNone,
				ComparisonType:  comparison,
				Confidence:      ruleConfidence,
			}
		},
	},
	{
		name:    "online_channel",
		matches: containsAny("online satış", "online satis", "online", "e-commerce"),
		classify: func(c *Classifier, q string) models.Intent {
			return models.Intent{
				QueryType:       models.QueryTypeOnlineChannel,
				Complexity:      6,
				OrderDirection:  models.OrderNone,
				TimeDimension:   hasTimeDimension(q),
				TimeGranularity: detectGranularity(q),
				ComparisonType:  models.ComparisonNone,
				Confidence:      ruleConfidence,
			}
		},
	},
	{
		name: "trend",
		matches: containsAny(
			"trend", "aylık", "aylik", "monthly",
			"weekly", "haftalık", "çeyrek", "quarterly",
			"yearly", "yıllık", "yillik",
		),
		classify: func(c *Classifier, q string) models.Intent {
			return models.Intent{
				QueryType:       models.QueryTypeTrend,
				Complexity:      6,
				OrderDirection:  models.OrderNone,
				TimeDimension:   true,
				TimeGranularity: detectGranularity(q),
				ComparisonType:  models.ComparisonNone,
				Confidence:      ruleConfidence,
			}
		},
	},
	{
		name:    "profit",
		matches: containsAny("kâr", "kar", "profit", "margin", "karlılık"),
		classify: func(c *Classifier, q string) models.Intent {
			return models.Intent{
				QueryType:       models.QueryTypeProfit,
				Complexity:      7,
				OrderDirection:  models.OrderNone,
				TimeDimension:   hasTimeDimension(q),
				TimeGranularity: models.GranularityNone,
				ComparisonType:  models.ComparisonNone,
				Confidence:      ruleConfidence,
			}
		},
	},
	{
		name:    "returns",
		matches: containsAny("iade", "return rate", "refund"),
		classify: func(c *Classifier, q string) models.Intent {
			return models.Intent{
				QueryType:       models.QueryTypeReturns,
				Complexity:      6,
				OrderDirection:  models.OrderNone,
				TimeDimension:   hasTimeDimension(q),
				TimeGranularity: models.GranularityNone,
				ComparisonType:  models.ComparisonNone,
				Confidence:      ruleConfidence,
			}
		},
	},
	{
		name: "aggregation",
		matches: containsAny(
			"toplam", "sum", "total", "revenue", "ciro",
			"ortalama", "avg", "count", "kaç adet", "how many",
			"adet", "quantity",
		),
		classify: func(c *Classifier, q string) models.Intent {
			return models.Intent{
				QueryType:       models.QueryTypeAggregation,
				Complexity:      4,
				OrderDirection:  models.OrderNone,
				TimeDimension:   hasTimeDimension(q),
				TimeGranularity: detectGranularity(q),
				ComparisonType:  models.ComparisonNone,
				Confidence:      ruleConfidence,
			}
		},
	},
}

// Classify maps a question to an Intent. Results are memoized per
// normalized question text; the cache never changes the result.
func (c *Classifier) Classify(question string) models.Intent {
	q := strings.ToLower(strings.TrimSpace(question))

	c.mu.RLock()
	cached, ok := c.memo[q]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	intent := c.classify(q)

	c.mu.Lock()
	c.memo[q] = intent
	c.mu.Unlock()

	return intent
}

func (c *Classifier) classify(q string) models.Intent {
	for _, r := range ruleTable {
		if r.matches(q) {
			intent := r.classify(c, q)
			c.logger.Debug("intent classified",
				zap.String("rule", r.name),
				zap.String("query_type", string(intent.QueryType)))
			return intent
		}
	}

	// Documented fallback: generic aggregation at low confidence.
	c.logger.Debug("no classification rule matched, using aggregation fallback")
	return models.Intent{
		QueryType:       models.QueryTypeAggregation,
		Complexity:      4,
		OrderDirection:  models.OrderNone,
		TimeDimension:   hasTimeDimension(q),
		TimeGranularity: detectGranularity(q),
		ComparisonType:  models.ComparisonNone,
		Confidence:      fallbackConfidence,
	}
}

// rankingIntent builds a ranking intent, extracting the explicit count from
// the question when one is present. The count is never defaulted here; a
// missing count stays nil and defers template emission to the router.
func (c *Classifier) rankingIntent(q string, direction models.OrderDirection) models.Intent {
	return models.Intent{
		QueryType:       models.QueryTypeRanking,
		Complexity:      5,
		OrderDirection:  direction,
		TimeDimension:   hasTimeDimension(q),
		TimeGranularity: models.GranularityNone,
		ComparisonType:  models.ComparisonNone,
		ExpectedCount:   ExtractCount(q),
		Confidence:      ruleConfidence,
	}
}

func anyOf(fns ...func(q string) bool) func(q string) bool {
	return func(q string) bool {
		for _, fn := range fns {
			if fn(q) {
				return true
			}
		}
		return false
	}
}

func matchesWord(words ...string) func(q string) bool {
	patterns := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return func(q string) bool {
		for _, p := range patterns {
			if p.MatchString(q) {
				return true
			}
		}
		return false
	}
}

func containsAny(words ...string) func(q string) bool {
	return func(q string) bool {
		for _, w := range words {
			if strings.Contains(q, w) {
				return true
			}
		}
		return false
	}
}

func hasTimeDimension(q string) bool {
	markers := []string{
		"2007", "2008", "2009", "2010", "2011",
		"yıl", "year", "ay", "month", "hafta", "week",
		"çeyrek", "quarter",
	}
	for _, m := range markers {
		if strings.Contains(q, m) {
			return true
		}
	}
	return false
}

func detectGranularity(q string) models.TimeGranularity {
	switch {
	case strings.Contains(q, "ay") || strings.Contains(q, "month"):
		return models.GranularityMonth
	case strings.Contains(q, "hafta") || strings.Contains(q, "week"):
		return models.GranularityWeek
	case strings.Contains(q, "çeyrek") || strings.Contains(q, "quarter"):
		return models.GranularityQuarter
	case strings.Contains(q, "yıl") || strings.Contains(q, "year"):
		return models.GranularityYear
	default:
		return models.GranularityNone
	}
}
