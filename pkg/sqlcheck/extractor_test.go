package sqlcheck

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "bare statement",
			response: "SELECT ProductName FROM DimProduct",
			want:     "SELECT ProductName FROM DimProduct",
		},
		{
			name:     "markdown fence",
			response: "```sql\nSELECT ProductName FROM DimProduct\n```",
			want:     "SELECT ProductName FROM DimProduct",
		},
		{
			name:     "sql label prefix",
			response: "SQL: SELECT ProductName FROM DimProduct",
			want:     "SELECT ProductName FROM DimProduct",
		},
		{
			name:     "explanation suffix dropped",
			response: "SELECT ProductName FROM DimProduct\nEXPLANATION: lists all products",
			want:     "SELECT ProductName FROM DimProduct",
		},
		{
			name:     "prose before the statement",
			response: "Here is the query you asked for:\n\nSELECT ProductName FROM DimProduct",
			want:     "SELECT ProductName FROM DimProduct",
		},
		{
			name:     "batch separator stripped",
			response: "SELECT ProductName FROM DimProduct\nGO",
			want:     "SELECT ProductName FROM DimProduct",
		},
		{
			name:     "cte statement",
			response: "Reasoning first.\nWITH Ranked AS (SELECT 1 AS n) SELECT n FROM Ranked",
			want:     "WITH Ranked AS (SELECT 1 AS n) SELECT n FROM Ranked",
		},
		{
			name:     "no statement at all",
			response: "I cannot answer that question.",
			want:     "I cannot answer that question.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.response); got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}
