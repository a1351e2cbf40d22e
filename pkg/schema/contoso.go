package schema

import "context"

// StaticProvider serves a fixed catalog. It backs the Contoso seed and
// test fixtures.
type StaticProvider struct {
	tables []Table
}

// NewStaticProvider wraps a fixed table list.
func NewStaticProvider(tables []Table) *StaticProvider {
	return &StaticProvider{tables: tables}
}

// ListTables implements Provider.
func (p *StaticProvider) ListTables(ctx context.Context) ([]string, error) {
	names := make([]string, len(p.tables))
	for i, t := range p.tables {
		names[i] = t.Name
	}
	return names, nil
}

// Columns implements Provider.
func (p *StaticProvider) Columns(ctx context.Context, table string) ([]Column, error) {
	for _, t := range p.tables {
		if t.Name == table {
			return t.Columns, nil
		}
	}
	return nil, nil
}

// ContosoTables is the ContosoRetailDW star schema subset the engine
// queries against. It seeds the catalog at startup so fuzzy repair and
// prompt building work before the first warehouse refresh.
func ContosoTables() []Table {
	return []Table{
		{Name: "FactSales", Columns: []Column{
			{Name: "SalesKey", DataType: "int"},
			{Name: "DateKey", DataType: "datetime"},
			{Name: "ChannelKey", DataType: "int"},
			{Name: "StoreKey", DataType: "int"},
			{Name: "ProductKey", DataType: "int"},
			{Name: "PromotionKey", DataType: "int"},
			{Name: "UnitCost", DataType: "money"},
			{Name: "UnitPrice", DataType: "money"},
			{Name: "SalesQuantity", DataType: "int"},
			{Name: "ReturnQuantity", DataType: "int"},
			{Name: "ReturnAmount", DataType: "money", Nullable: true},
			{Name: "SalesAmount", DataType: "money"},
			{Name: "TotalCost", DataType: "money"},
		}},
		{Name: "FactOnlineSales", Columns: []Column{
			{Name: "OnlineSalesKey", DataType: "int"},
			{Name: "DateKey", DataType: "datetime"},
			{Name: "StoreKey", DataType: "int"},
			{Name: "ProductKey", DataType: "int"},
			{Name: "PromotionKey", DataType: "int"},
			{Name: "CustomerKey", DataType: "int"},
			{Name: "SalesQuantity", DataType: "int"},
			{Name: "ReturnQuantity", DataType: "int"},
			{Name: "ReturnAmount", DataType: "money", Nullable: true},
			{Name: "SalesAmount", DataType: "money"},
			{Name: "UnitCost", DataType: "money"},
			{Name: "UnitPrice", DataType: "money"},
			{Name: "TotalCost", DataType: "money"},
		}},
		{Name: "DimDate", Columns: []Column{
			{Name: "DateKey", DataType: "datetime"},
			{Name: "FullDateLabel", DataType: "nvarchar"},
			{Name: "CalendarYear", DataType: "int"},
			{Name: "CalendarQuarter", DataType: "int"},
			{Name: "CalendarMonth", DataType: "int"},
			{Name: "CalendarMonthLabel", DataType: "nvarchar"},
			{Name: "CalendarWeek", DataType: "int"},
			{Name: "CalendarWeekLabel", DataType: "nvarchar"},
			{Name: "CalendarDayOfWeek", DataType: "int"},
		}},
		{Name: "DimProduct", Columns: []Column{
			{Name: "ProductKey", DataType: "int"},
			{Name: "ProductName", DataType: "nvarchar"},
			{Name: "ProductDescription", DataType: "nvarchar", Nullable: true},
			{Name: "ProductSubcategoryKey", DataType: "int"},
			{Name: "BrandName", DataType: "nvarchar"},
			{Name: "UnitCost", DataType: "money"},
			{Name: "UnitPrice", DataType: "money"},
		}},
		{Name: "DimProductSubcategory", Columns: []Column{
			{Name: "ProductSubcategoryKey", DataType: "int"},
			{Name: "ProductSubcategoryName", DataType: "nvarchar"},
			{Name: "ProductCategoryKey", DataType: "int"},
		}},
		{Name: "DimProductCategory", Columns: []Column{
			{Name: "ProductCategoryKey", DataType: "int"},
			{Name: "ProductCategoryName", DataType: "nvarchar"},
		}},
		{Name: "DimStore", Columns: []Column{
			{Name: "StoreKey", DataType: "int"},
			{Name: "StoreName", DataType: "nvarchar"},
			{Name: "StoreType", DataType: "nvarchar"},
			{Name: "GeographyKey", DataType: "int"},
			{Name: "OpenDate", DataType: "datetime", Nullable: true},
		}},
		{Name: "DimCustomer", Columns: []Column{
			{Name: "CustomerKey", DataType: "int"},
			{Name: "FirstName", DataType: "nvarchar", Nullable: true},
			{Name: "LastName", DataType: "nvarchar", Nullable: true},
			{Name: "GeographyKey", DataType: "int"},
			{Name: "Education", DataType: "nvarchar", Nullable: true},
			{Name: "YearlyIncome", DataType: "money", Nullable: true},
		}},
		{Name: "DimGeography", Columns: []Column{
			{Name: "GeographyKey", DataType: "int"},
			{Name: "RegionCountryName", DataType: "nvarchar"},
			{Name: "ContinentName", DataType: "nvarchar"},
			{Name: "CityName", DataType: "nvarchar", Nullable: true},
		}},
		{Name: "DimChannel", Columns: []Column{
			{Name: "ChannelKey", DataType: "int"},
			{Name: "ChannelName", DataType: "nvarchar"},
		}},
		{Name: "DimPromotion", Columns: []Column{
			{Name: "PromotionKey", DataType: "int"},
			{Name: "PromotionName", DataType: "nvarchar"},
			{Name: "DiscountPercent", DataType: "float", Nullable: true},
		}},
	}
}
