// Package models defines the value types threaded through the translation
// pipeline: intents, SQL candidates, validation results, and correction
// contexts.
package models

// QueryType classifies the analytical shape of a question.
type QueryType string

const (
	QueryTypeRanking          QueryType = "ranking"
	QueryTypeAggregation      QueryType = "aggregation"
	QueryTypeTrend            QueryType = "trend"
	QueryTypeComparison       QueryType = "comparison"
	QueryTypeCategoryAnalysis QueryType = "category_analysis"
	QueryTypeGeography        QueryType = "geography"
	QueryTypeOnlineChannel    QueryType = "online_channel"
	QueryTypeProfit           QueryType = "profit"
	QueryTypeReturns          QueryType = "returns"
)

// OrderDirection is the requested sort direction for ranking questions.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "asc"
	OrderDesc OrderDirection = "desc"
	OrderNone OrderDirection = "none"
)

// TimeGranularity is the bucket size for trend questions.
type TimeGranularity string

const (
	GranularityNone    TimeGranularity = "none"
	GranularityWeek    TimeGranularity = "week"
	GranularityMonth   TimeGranularity = "month"
	GranularityQuarter TimeGranularity = "quarter"
	GranularityYear    TimeGranularity = "year"
)

// ComparisonType distinguishes the comparison shapes the warehouse supports.
type ComparisonType string

const (
	ComparisonNone          ComparisonType = "none"
	ComparisonStoreVsOnline ComparisonType = "store_vs_online"
	ComparisonYearOverYear  ComparisonType = "year_over_year"
)

// Intent is the structured descriptor of what kind of analytical question
// was asked. It is created once per request by the classifier and never
// mutated downstream.
//
// ExpectedCount is set only for ranking intents where the question names an
// explicit count ("top 5", "en az satan 3 ürün"). The classifier never
// defaults it; the router treats a nil count as "no template".
type Intent struct {
	QueryType       QueryType       `json:"query_type"`
	Complexity      int             `json:"complexity"` // 1-10
	OrderDirection  OrderDirection  `json:"order_direction"`
	TimeDimension   bool            `json:"time_dimension"`
	TimeGranularity TimeGranularity `json:"time_granularity"`
	ComparisonType  ComparisonType  `json:"comparison_type"`
	ExpectedCount   *int            `json:"expected_count,omitempty"`
	Confidence      float64         `json:"confidence"` // 0.0-1.0
}
