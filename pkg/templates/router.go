package templates

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/contoso-bi/nlsql-engine/pkg/models"
)

var (
	yearPattern     = regexp.MustCompile(`\b(20\d{2})\b`)
	lastDaysPattern = regexp.MustCompile(`(?:last|son)\s+(\d+)\s+(?:days?|gün)`)
)

// Router maps a classified question to a pre-vetted template. Routing is
// purely lexical and deterministic: the same question and intent always
// produce the same SQL, or no match at all.
type Router struct {
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{logger: logger.Named("template_router")}
}

// Route returns template SQL for the question, or false when no template
// applies and the question must go to generation.
//
// Ranking questions route only when the classifier extracted an explicit
// count. A ranking question without a count never gets a default limit; it
// falls through so the generator can interpret it.
func (r *Router) Route(question string, intent models.Intent) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(question))
	years := extractYears(q)
	year := 0
	if len(years) > 0 {
		year = years[0]
	}

	sql, ok := r.route(q, intent, years, year)
	if ok {
		r.logger.Debug("template matched",
			zap.String("query_type", string(intent.QueryType)),
			zap.Int("year", year))
	}
	return sql, ok
}

func (r *Router) route(q string, intent models.Intent, years []int, year int) (string, bool) {
	switch intent.QueryType {
	case models.QueryTypeRanking:
		return r.routeRanking(q, intent, year)
	case models.QueryTypeTrend:
		return r.routeTrend(q, intent, year)
	case models.QueryTypeComparison:
		return r.routeComparison(q, intent, years, year)
	case models.QueryTypeCategoryAnalysis:
		if containsAny(q, "alt kategori", "subcategory") {
			return SubcategorySales(year), true
		}
		if containsAny(q, "her kategori", "each category", "per category", "by category best") {
			return TopProductEachCategory(), true
		}
		return CategorySales(year), true
	case models.QueryTypeGeography:
		return RegionSales(year), true
	case models.QueryTypeOnlineChannel:
		if intent.TimeGranularity == models.GranularityMonth && year > 0 {
			return OnlineMonthlyTrend(year), true
		}
		if containsAny(q, "müşteri başına", "per customer", "average revenue") {
			return AvgRevenuePerCustomer(year), true
		}
		if containsAny(q, "segment", "eğitim", "education") {
			return CustomerSegmentRevenue(year), true
		}
		return "", false
	case models.QueryTypeProfit:
		if containsAny(q, "margin", "marj", "kar", "kâr", "profit") {
			return ProfitMarginByProduct(year), true
		}
		return "", false
	case models.QueryTypeReturns:
		return ReturnRateByCategory(year), true
	case models.QueryTypeAggregation:
		return r.routeAggregation(q, year)
	}
	return "", false
}

func (r *Router) routeRanking(q string, intent models.Intent, year int) (string, bool) {
	if intent.ExpectedCount == nil {
		r.logger.Debug("ranking question without explicit count, deferring to generation")
		return "", false
	}
	limit := *intent.ExpectedCount

	if containsAny(q, "abc") {
		return ABCAnalysis(), true
	}

	byQuantity := containsAny(q, "adet", "quantity", "units", "miktar")
	online := containsAny(q, "online", "çevrimiçi", "internet")
	stores := containsAny(q, "mağaza", "store", "shop")
	asc := intent.OrderDirection == models.OrderAsc

	switch {
	case stores && asc:
		return WorstStores(limit, year), true
	case stores:
		return BestStores(limit, year), true
	case online && asc:
		return BottomOnlineProducts(limit, year), true
	case online:
		return TopOnlineProducts(limit, year), true
	case byQuantity && asc:
		return BottomProductsByQuantity(limit, year), true
	case byQuantity:
		return TopProductsByQuantity(limit, year), true
	case asc:
		return BottomProducts(limit, year), true
	default:
		return TopProducts(limit, year), true
	}
}

func (r *Router) routeTrend(q string, intent models.Intent, year int) (string, bool) {
	online := containsAny(q, "online", "çevrimiçi", "internet")
	switch intent.TimeGranularity {
	case models.GranularityMonth:
		if year == 0 {
			return "", false
		}
		if online {
			return OnlineMonthlyTrend(year), true
		}
		return MonthlyTrend(year), true
	case models.GranularityWeek:
		if year == 0 {
			return "", false
		}
		return WeeklyTrend(year), true
	case models.GranularityQuarter:
		if year == 0 {
			return "", false
		}
		return QuarterlyTrend(year), true
	case models.GranularityYear:
		return DailyTrend(year), true
	}
	if containsAny(q, "günlük", "daily", "by day") {
		return DailyTrend(year), true
	}
	return "", false
}

func (r *Router) routeComparison(q string, intent models.Intent, years []int, year int) (string, bool) {
	switch intent.ComparisonType {
	case models.ComparisonStoreVsOnline:
		if year == 0 {
			return "", false
		}
		if containsAny(q, "bölge", "region", "ülke", "country") {
			return RegionStoreVsOnline(year), true
		}
		return StoreVsOnline(year), true
	case models.ComparisonYearOverYear:
		if len(years) < 2 {
			return "", false
		}
		if containsAny(q, "büyüme", "growth", "artış", "increase", "percent", "yüzde") {
			return YoYGrowth(years[0], years[1]), true
		}
		return YearlyComparison(years[0], years[1]), true
	}
	return "", false
}

func (r *Router) routeAggregation(q string, year int) (string, bool) {
	if m := lastDaysPattern.FindStringSubmatch(q); m != nil {
		days, err := strconv.Atoi(m[1])
		if err == nil && days > 0 {
			return LastNDaysSales(days), true
		}
	}
	if containsAny(q, "en çok satan ürün hangi", "best selling product detail", "which product sold the most") {
		return TopProductDetails(), true
	}
	if containsAny(q, "müşteri segment", "musteri segment", "segment", "education", "income") {
		return CustomerSegmentRevenue(year), true
	}
	if containsAny(q, "müşteri başına", "musteri basina", "per customer", "average revenue") {
		return AvgRevenuePerCustomer(year), true
	}
	if containsAny(q, "abc analizi", "abc analysis") {
		return ABCAnalysis(), true
	}
	if containsAny(q, "toplam satış", "total sales", "toplam ciro", "total revenue") {
		return TotalSales(year), true
	}
	return "", false
}

// extractYears returns every four-digit 20xx year in order of appearance,
// sorted ascending when exactly two are present so comparison templates get
// (earlier, later).
func extractYears(q string) []int {
	matches := yearPattern.FindAllString(q, -1)
	years := make([]int, 0, len(matches))
	for _, m := range matches {
		y, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		years = append(years, y)
	}
	if len(years) == 2 && years[0] > years[1] {
		years[0], years[1] = years[1], years[0]
	}
	return years
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
