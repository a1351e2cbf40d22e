package prompts

import (
	"fmt"
	"strings"

	"github.com/contoso-bi/nlsql-engine/pkg/schema"
)

const businessRules = `CRITICAL BUSINESS RULES

1. DATE FILTERING:
   - NEVER use YEAR(DateKey); DateKey is a surrogate key, not a date.
   - ALWAYS join DimDate:
       INNER JOIN DimDate dd ON [fact].DateKey = dd.DateKey
   - Filter via dd.CalendarYear, dd.CalendarMonth, dd.CalendarQuarter.

2. SALES LOGIC:
   - Use SUM(SalesAmount) for revenue.
   - Use SUM(SalesQuantity) for volume metrics.

3. FACT SALES vs FACT ONLINE SALES:
   FactSales:
     - HAS: ChannelKey, StoreKey
     - DOES NOT HAVE: CustomerKey
   FactOnlineSales:
     - HAS: CustomerKey, StoreKey
     - DOES NOT HAVE: ChannelKey

4. COMPARISON LOGIC:
   For store vs online comparisons:
     SELECT ... FROM FactSales ...
     UNION ALL
     SELECT ... FROM FactOnlineSales ...

5. TIME SERIES:
   - GROUP BY dd.CalendarMonth or dd.CalendarYear.
   - ORDER BY dd.CalendarMonth ASC.`

const relationshipRules = `TABLE RELATIONSHIPS

FactSales:
  FactSales.DateKey       -> DimDate.DateKey
  FactSales.ProductKey    -> DimProduct.ProductKey
  FactSales.StoreKey      -> DimStore.StoreKey
  FactSales.PromotionKey  -> DimPromotion.PromotionKey
  FactSales.ChannelKey    -> DimChannel.ChannelKey

FactOnlineSales:
  FactOnlineSales.DateKey      -> DimDate.DateKey
  FactOnlineSales.ProductKey   -> DimProduct.ProductKey
  FactOnlineSales.CustomerKey  -> DimCustomer.CustomerKey

PRODUCT HIERARCHY:
  DimProduct.ProductSubcategoryKey         -> DimProductSubcategory.ProductSubcategoryKey
  DimProductSubcategory.ProductCategoryKey -> DimProductCategory.ProductCategoryKey

GEOGRAPHY HIERARCHY:
  FactSales.StoreKey          -> DimStore.StoreKey -> DimGeography.GeographyKey
  FactOnlineSales.CustomerKey -> DimCustomer.CustomerKey -> DimGeography.GeographyKey

IMPORTANT:
- Fact tables must always JOIN through these relationships.
- Product -> Subcategory -> Category is the ONLY valid path.
- Do NOT invent new join paths or aliases.
- UNION only when column structures match exactly.`

// schemaContext renders the schema slice for the given tables plus the
// business and relationship rules. Tables missing from the catalog are
// silently skipped; the model only ever sees real tables and columns.
func schemaContext(catalog *schema.Catalog, tablesNeeded []string) string {
	var b strings.Builder
	b.WriteString("CONTOSO DATABASE SCHEMA (RELEVANT TABLES ONLY)\n\n")

	found := 0
	for _, name := range tablesNeeded {
		table, ok := catalog.Lookup(name)
		if !ok {
			continue
		}
		found++
		fmt.Fprintf(&b, "TABLE: %s\nCOLUMNS:\n", table.Name)
		for _, col := range table.Columns {
			fmt.Fprintf(&b, "  - %s (%s)\n", col.Name, col.DataType)
		}
		b.WriteString("\n")
	}

	if found == 0 {
		return "NO MATCHING TABLE FOUND IN DATABASE SCHEMA."
	}

	b.WriteString(businessRules)
	b.WriteString("\n\n")
	b.WriteString(relationshipRules)
	return b.String()
}
