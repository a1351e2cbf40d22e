// Package templates contains the pre-vetted T-SQL template library and the
// deterministic router that picks a template for a classified question.
//
// Templates are trusted by construction: they reference only real Contoso
// tables and columns, always filter dates through DimDate, and never need
// validation. A year of 0 means "no year filter".
package templates

import (
	"fmt"
	"strings"
)

// TotalSales sums revenue, optionally for one calendar year.
func TotalSales(year int) string {
	var b strings.Builder
	b.WriteString(`SELECT SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
JOIN DimDate dd ON fs.DateKey = dd.DateKey
`)
	writeYearFilter(&b, year)
	return strings.TrimSpace(b.String())
}

// TopProducts ranks products by revenue, highest first.
func TopProducts(limit, year int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `SELECT TOP %d
    dp.ProductName,
    SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
JOIN DimProduct dp ON fs.ProductKey = dp.ProductKey
JOIN DimDate dd ON fs.DateKey = dd.DateKey
`, limit)
	writeYearFilter(&b, year)
	b.WriteString(`GROUP BY dp.ProductName
ORDER BY TotalSales DESC`)
	return b.String()
}

// BottomProducts ranks products by revenue, lowest first.
func BottomProducts(limit, year int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `SELECT TOP %d
    dp.ProductName,
    SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
JOIN DimProduct dp ON fs.ProductKey = dp.ProductKey
JOIN DimDate dd ON fs.DateKey = dd.DateKey
`, limit)
	writeYearFilter(&b, year)
	b.WriteString(`GROUP BY dp.ProductName
ORDER BY TotalSales ASC`)
	return b.String()
}

// TopProductsByQuantity ranks products by units sold, highest first.
func TopProductsByQuantity(limit, year int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `SELECT TOP %d
    dp.ProductName,
    SUM(fs.SalesQuantity) AS TotalQuantity
FROM FactSales fs
JOIN DimProduct dp ON fs.ProductKey = dp.ProductKey
JOIN DimDate dd ON fs.DateKey = dd.DateKey
`, limit)
	writeYearFilter(&b, year)
	b.WriteString(`GROUP BY dp.ProductName
ORDER BY TotalQuantity DESC`)
	return b.String()
}

// BottomProductsByQuantity ranks products by units sold, lowest first.
func BottomProductsByQuantity(limit, year int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `SELECT TOP %d
    dp.ProductName,
    SUM(fs.SalesQuantity) AS TotalQuantity
FROM FactSales fs
JOIN DimProduct dp ON fs.ProductKey = dp.ProductKey
JOIN DimDate dd ON fs.DateKey = dd.DateKey
`, limit)
	writeYearFilter(&b, year)
	b.WriteString(`GROUP BY dp.ProductName
ORDER BY TotalQuantity ASC`)
	return b.String()
}

// TopOnlineProducts ranks products by online revenue, highest first.
func TopOnlineProducts(limit, year int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `SELECT TOP %d
    dp.ProductName,
    SUM(fos.SalesAmount) AS TotalSales
FROM FactOnlineSales fos
JOIN DimProduct dp ON fos.ProductKey = dp.ProductKey
JOIN DimDate dd ON fos.DateKey = dd.DateKey
`, limit)
	writeYearFilter(&b, year)
	b.WriteString(`GROUP BY dp.ProductName
ORDER BY TotalSales DESC`)
	return b.String()
}

// BottomOnlineProducts ranks products by online revenue, lowest first.
func BottomOnlineProducts(limit, year int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `SELECT TOP %d
    dp.ProductName,
    SUM(fos.SalesAmount) AS TotalSales
FROM FactOnlineSales fos
JOIN DimProduct dp ON fos.ProductKey = dp.ProductKey
JOIN DimDate dd ON fos.DateKey = dd.DateKey
`, limit)
	writeYearFilter(&b, year)
	b.WriteString(`GROUP BY dp.ProductName
ORDER BY TotalSales ASC`)
	return b.String()
}

// BestStores ranks stores by revenue, highest first.
func BestStores(limit, year int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `SELECT TOP %d
    st.StoreName,
    SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
JOIN DimStore st ON fs.StoreKey = st.StoreKey
JOIN DimDate dd ON fs.DateKey = dd.DateKey
`, limit)
	writeYearFilter(&b, year)
	b.WriteString(`GROUP BY st.StoreName
ORDER BY TotalSales DESC`)
	return b.String()
}

// WorstStores ranks stores by revenue, lowest first.
func WorstStores(limit, year int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `SELECT TOP %d
    st.StoreName,
    SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
JOIN DimStore st ON fs.StoreKey = st.StoreKey
JOIN DimDate dd ON fs.DateKey = dd.DateKey
`, limit)
	writeYearFilter(&b, year)
	b.WriteString(`GROUP BY st.StoreName
ORDER BY TotalSales ASC`)
	return b.String()
}

// MonthlyTrend buckets one year's revenue by calendar month.
func MonthlyTrend(year int) string {
	return fmt.Sprintf(`SELECT
    dd.CalendarMonth AS Month,
    dd.CalendarMonthLabel AS MonthLabel,
    SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
JOIN DimDate dd ON fs.DateKey = dd.DateKey
WHERE dd.CalendarYear = %d
GROUP BY dd.CalendarMonth, dd.CalendarMonthLabel
ORDER BY dd.CalendarMonth`, year)
}

// WeeklyTrend buckets one year's revenue by calendar week.
func WeeklyTrend(year int) string {
	return fmt.Sprintf(`SELECT
    dd.CalendarWeek AS Week,
    SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
JOIN DimDate dd ON fs.DateKey = dd.DateKey
WHERE dd.CalendarYear = %d
GROUP BY dd.CalendarWeek
ORDER BY dd.CalendarWeek`, year)
}

// QuarterlyTrend buckets one year's revenue by calendar quarter.
func QuarterlyTrend(year int) string {
	return fmt.Sprintf(`SELECT
    dd.CalendarQuarter AS Quarter,
    SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
JOIN DimDate dd ON fs.DateKey = dd.DateKey
WHERE dd.CalendarYear = %d
GROUP BY dd.CalendarQuarter
ORDER BY dd.CalendarQuarter`, year)
}

// DailyTrend buckets revenue by day, optionally within one year.
func DailyTrend(year int) string {
	var b strings.Builder
	b.WriteString(`SELECT
    dd.FullDateLabel AS Day,
    SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
JOIN DimDate dd ON fs.DateKey = dd.DateKey
`)
	writeYearFilter(&b, year)
	b.WriteString(`GROUP BY dd.FullDateLabel
ORDER BY dd.FullDateLabel`)
	return b.String()
}

// OnlineMonthlyTrend buckets one year's online revenue by calendar month.
func OnlineMonthlyTrend(year int) string {
	return fmt.Sprintf(`SELECT
    dd.CalendarMonth AS Month,
    dd.CalendarMonthLabel AS MonthLabel,
    SUM(fos.SalesAmount) AS TotalSales
FROM FactOnlineSales fos
JOIN DimDate dd ON fos.DateKey = dd.DateKey
WHERE dd.CalendarYear = %d
GROUP BY dd.CalendarMonth, dd.CalendarMonthLabel
ORDER BY dd.CalendarMonth`, year)
}

// StoreVsOnline compares store and online revenue for one year via UNION ALL.
func StoreVsOnline(year int) string {
	return fmt.Sprintf(`SELECT 'Store' AS Channel, SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
JOIN DimDate dd ON fs.DateKey = dd.DateKey
WHERE dd.CalendarYear = %d

UNION ALL

SELECT 'Online' AS Channel, SUM(fos.SalesAmount) AS TotalSales
FROM FactOnlineSales fos
JOIN DimDate dd ON fos.DateKey = dd.DateKey
WHERE dd.CalendarYear = %d`, year, year)
}

// RegionStoreVsOnline compares store and online revenue per region for one year.
func RegionStoreVsOnline(year int) string {
	return fmt.Sprintf(`SELECT dg.RegionCountryName AS Region, 'Store' AS Channel, SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
JOIN DimStore st ON fs.StoreKey = st.StoreKey
JOIN DimGeography dg ON st.GeographyKey = dg.GeographyKey
JOIN DimDate dd ON fs.DateKey = dd.DateKey
WHERE dd.CalendarYear = %d
GROUP BY dg.RegionCountryName

UNION ALL

SELECT dg.RegionCountryName AS Region, 'Online' AS Channel, SUM(fos.SalesAmount) AS TotalSales
FROM FactOnlineSales fos
JOIN DimCustomer dc ON fos.CustomerKey = dc.CustomerKey
JOIN DimGeography dg ON dc.GeographyKey = dg.GeographyKey
JOIN DimDate dd ON fos.DateKey = dd.DateKey
WHERE dd.CalendarYear = %d
GROUP BY dg.RegionCountryName`, year, year)
}

// CategorySales breaks revenue down by product category.
func CategorySales(year int) string {
	var b strings.Builder
	b.WriteString(`SELECT
    dpc.ProductCategoryName,
    SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
JOIN DimProduct dp ON fs.ProductKey = dp.ProductKey
JOIN DimProductSubcategory dps ON dp.ProductSubcategoryKey = dps.ProductSubcategoryKey
JOIN DimProductCategory dpc ON dps.ProductCategoryKey = dpc.ProductCategoryKey
JOIN DimDate dd ON fs.DateKey = dd.DateKey
`)
	writeYearFilter(&b, year)
	b.WriteString(`GROUP BY dpc.ProductCategoryName
ORDER BY TotalSales DESC`)
	return b.String()
}

// SubcategorySales breaks revenue down by product subcategory.
func SubcategorySales(year int) string {
	var b strings.Builder
	b.WriteString(`SELECT
    dps.ProductSubcategoryName,
    SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
JOIN DimProduct dp ON fs.ProductKey = dp.ProductKey
JOIN DimProductSubcategory dps ON dp.ProductSubcategoryKey = dps.ProductSubcategoryKey
JOIN DimDate dd ON fs.DateKey = dd.DateKey
`)
	writeYearFilter(&b, year)
	b.WriteString(`GROUP BY dps.ProductSubcategoryName
ORDER BY TotalSales DESC`)
	return b.String()
}

// RegionSales breaks store revenue down by region/country.
func RegionSales(year int) string {
	var b strings.Builder
	b.WriteString(`SELECT
    dg.RegionCountryName,
    SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
JOIN DimStore st ON fs.StoreKey = st.StoreKey
JOIN DimGeography dg ON st.GeographyKey = dg.GeographyKey
JOIN DimDate dd ON fs.DateKey = dd.DateKey
`)
	writeYearFilter(&b, year)
	b.WriteString(`GROUP BY dg.RegionCountryName
ORDER BY TotalSales DESC`)
	return b.String()
}

// YearlyComparison puts two calendar years side by side.
func YearlyComparison(year1, year2 int) string {
	return fmt.Sprintf(`SELECT
    dd.CalendarYear AS Year,
    SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
JOIN DimDate dd ON fs.DateKey = dd.DateKey
WHERE dd.CalendarYear IN (%d, %d)
GROUP BY dd.CalendarYear
ORDER BY dd.CalendarYear`, year1, year2)
}

// YoYGrowth computes revenue growth between two years with conditional
// aggregation.
func YoYGrowth(startYear, endYear int) string {
	return fmt.Sprintf(`SELECT
    SUM(CASE WHEN dd.CalendarYear = %d THEN fs.SalesAmount ELSE 0 END) AS StartYearSales,
    SUM(CASE WHEN dd.CalendarYear = %d THEN fs.SalesAmount ELSE 0 END) AS EndYearSales,
    (SUM(CASE WHEN dd.CalendarYear = %d THEN fs.SalesAmount ELSE 0 END) -
     SUM(CASE WHEN dd.CalendarYear = %d THEN fs.SalesAmount ELSE 0 END)) * 100.0 /
     NULLIF(SUM(CASE WHEN dd.CalendarYear = %d THEN fs.SalesAmount ELSE 0 END), 0) AS GrowthPercent
FROM FactSales fs
JOIN DimDate dd ON fs.DateKey = dd.DateKey
WHERE dd.CalendarYear IN (%d, %d)`,
		startYear, endYear, endYear, startYear, startYear, startYear, endYear)
}

// ProfitMarginByProduct computes per-product profit and margin.
func ProfitMarginByProduct(year int) string {
	var b strings.Builder
	b.WriteString(`SELECT
    dp.ProductName,
    SUM(fs.SalesAmount) AS TotalSales,
    SUM(fs.TotalCost) AS TotalCost,
    SUM(fs.SalesAmount - fs.TotalCost) AS Profit,
    SUM(fs.SalesAmount - fs.TotalCost) * 100.0 / NULLIF(SUM(fs.SalesAmount), 0) AS MarginPercent
FROM FactSales fs
JOIN DimProduct dp ON fs.ProductKey = dp.ProductKey
JOIN DimDate dd ON fs.DateKey = dd.DateKey
`)
	writeYearFilter(&b, year)
	b.WriteString(`GROUP BY dp.ProductName
ORDER BY Profit DESC`)
	return b.String()
}

// ReturnRateByCategory computes return quantity share per category.
func ReturnRateByCategory(year int) string {
	var b strings.Builder
	b.WriteString(`SELECT
    dpc.ProductCategoryName,
    SUM(fs.ReturnQuantity) AS TotalReturns,
    SUM(fs.SalesQuantity) AS TotalSold,
    SUM(fs.ReturnQuantity) * 100.0 / NULLIF(SUM(fs.SalesQuantity), 0) AS ReturnRatePercent
FROM FactSales fs
JOIN DimProduct dp ON fs.ProductKey = dp.ProductKey
JOIN DimProductSubcategory dps ON dp.ProductSubcategoryKey = dps.ProductSubcategoryKey
JOIN DimProductCategory dpc ON dps.ProductCategoryKey = dpc.ProductCategoryKey
JOIN DimDate dd ON fs.DateKey = dd.DateKey
`)
	writeYearFilter(&b, year)
	b.WriteString(`GROUP BY dpc.ProductCategoryName
ORDER BY ReturnRatePercent DESC`)
	return b.String()
}

// CustomerSegmentRevenue breaks online revenue down by customer education
// segment.
func CustomerSegmentRevenue(year int) string {
	var b strings.Builder
	b.WriteString(`SELECT
    dc.Education AS Segment,
    SUM(fos.SalesAmount) AS TotalSales
FROM FactOnlineSales fos
JOIN DimCustomer dc ON fos.CustomerKey = dc.CustomerKey
JOIN DimDate dd ON fos.DateKey = dd.DateKey
`)
	writeYearFilter(&b, year)
	b.WriteString(`GROUP BY dc.Education
ORDER BY TotalSales DESC`)
	return b.String()
}

// AvgRevenuePerCustomer computes average online revenue per customer.
func AvgRevenuePerCustomer(year int) string {
	var b strings.Builder
	b.WriteString(`SELECT
    SUM(fos.SalesAmount) / NULLIF(COUNT(DISTINCT fos.CustomerKey), 0) AS AvgRevenuePerCustomer
FROM FactOnlineSales fos
JOIN DimDate dd ON fos.DateKey = dd.DateKey
`)
	writeYearFilter(&b, year)
	return strings.TrimSpace(b.String())
}

// ABCAnalysis classifies products into A/B/C revenue bands by cumulative
// contribution.
func ABCAnalysis() string {
	return `WITH ProductSales AS (
    SELECT
        dp.ProductName,
        SUM(fs.SalesAmount) AS TotalSales
    FROM FactSales fs
    JOIN DimProduct dp ON fs.ProductKey = dp.ProductKey
    GROUP BY dp.ProductName
),
Ranked AS (
    SELECT
        ProductName,
        TotalSales,
        SUM(TotalSales) OVER (ORDER BY TotalSales DESC) * 100.0 /
            SUM(TotalSales) OVER () AS CumulativePercent
    FROM ProductSales
)
SELECT
    ProductName,
    TotalSales,
    CASE
        WHEN CumulativePercent <= 80 THEN 'A'
        WHEN CumulativePercent <= 95 THEN 'B'
        ELSE 'C'
    END AS ABCClass
FROM Ranked
ORDER BY TotalSales DESC`
}

// LastNDaysSales sums revenue over the trailing n days of data.
func LastNDaysSales(days int) string {
	return fmt.Sprintf(`SELECT SUM(fs.SalesAmount) AS TotalSales
FROM FactSales fs
JOIN DimDate dd ON fs.DateKey = dd.DateKey
WHERE dd.DateKey >= DATEADD(DAY, -%d, (SELECT MAX(DateKey) FROM FactSales))`, days)
}

// TopProductDetails returns the best-selling product with its category path.
func TopProductDetails() string {
	return `WITH Ranked AS (
    SELECT
        dp.ProductKey,
        dp.ProductName,
        SUM(fs.SalesAmount) AS TotalSales,
        ROW_NUMBER() OVER (ORDER BY SUM(fs.SalesAmount) DESC) AS rn
    FROM FactSales fs
    JOIN DimProduct dp ON fs.ProductKey = dp.ProductKey
    GROUP BY dp.ProductKey, dp.ProductName
)
SELECT
    r.ProductName,
    r.TotalSales,
    dps.ProductSubcategoryName,
    dpc.ProductCategoryName
FROM Ranked r
JOIN DimProduct dp ON r.ProductKey = dp.ProductKey
JOIN DimProductSubcategory dps ON dp.ProductSubcategoryKey = dps.ProductSubcategoryKey
JOIN DimProductCategory dpc ON dps.ProductCategoryKey = dpc.ProductCategoryKey
WHERE r.rn = 1`
}

// TopProductEachCategory returns the best seller within every category.
func TopProductEachCategory() string {
	return `WITH CategorySales AS (
    SELECT
        dpc.ProductCategoryName,
        dp.ProductName,
        SUM(fs.SalesAmount) AS TotalSales,
        ROW_NUMBER() OVER (
            PARTITION BY dpc.ProductCategoryName
            ORDER BY SUM(fs.SalesAmount) DESC
        ) AS rn
    FROM FactSales fs
    JOIN DimProduct dp ON fs.ProductKey = dp.ProductKey
    JOIN DimProductSubcategory dps ON dp.ProductSubcategoryKey = dps.ProductSubcategoryKey
    JOIN DimProductCategory dpc ON dps.ProductCategoryKey = dpc.ProductCategoryKey
    GROUP BY dpc.ProductCategoryName, dp.ProductName
)
SELECT ProductCategoryName, ProductName, TotalSales
FROM CategorySales
WHERE rn = 1
ORDER BY ProductCategoryName`
}

func writeYearFilter(b *strings.Builder, year int) {
	if year > 0 {
		fmt.Fprintf(b, "WHERE dd.CalendarYear = %d\n", year)
	}
}
