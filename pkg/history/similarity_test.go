package history

import "testing"

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		q1   string
		q2   string
		min  float64
		max  float64
	}{
		{
			name: "identical questions",
			q1:   "en çok satan 5 ürün",
			q2:   "en çok satan 5 ürün",
			min:  1.0,
			max:  1.0,
		},
		{
			name: "shared tokens and ranking keywords",
			q1:   "en çok satan ürünler hangileri",
			q2:   "en çok satan 3 ürün",
			min:  0.25,
			max:  1.0,
		},
		{
			name: "unrelated questions",
			q1:   "aylık satış trendi",
			q2:   "iade oranı nedir",
			min:  0.0,
			max:  0.1,
		},
		{
			name: "stopwords carry no weight",
			q1:   "ve ile bir bu",
			q2:   "ve ile bir bu",
			min:  0.0,
			max:  0.0,
		},
		{
			name: "intent bonus without token overlap",
			q1:   "monthly revenue development",
			q2:   "aylık ciro gelişimi",
			min:  0.15,
			max:  0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := similarity(tt.q1, tt.q2)
			if got < tt.min || got > tt.max {
				t.Errorf("similarity(%q, %q) = %v, want in [%v, %v]",
					tt.q1, tt.q2, got, tt.min, tt.max)
			}
		})
	}
}

func TestRankBySimilarity(t *testing.T) {
	entries := []*Entry{
		{Question: "iade oranı nedir", SQL: "returns"},
		{Question: "en çok satan 3 ürün", SQL: "top3"},
		{Question: "en çok satan ürünler listesi", SQL: "toplist"},
		{Question: "aylık trend", SQL: "trend"},
	}

	got := rankBySimilarity("en çok satan 5 ürün", entries, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 examples, got %d", len(got))
	}
	for _, e := range got {
		if e.SQL != "top3" && e.SQL != "toplist" {
			t.Errorf("unrelated entry %q ranked as similar", e.Question)
		}
	}
	// The closer question wins the first slot.
	if got[0].SQL != "top3" {
		t.Errorf("expected closest question first, got %q", got[0].Question)
	}
}

func TestRankBySimilarity_ThresholdFiltersAll(t *testing.T) {
	entries := []*Entry{
		{Question: "iade oranı nedir"},
		{Question: "bölge bazında mağaza performansı"},
	}
	if got := rankBySimilarity("how is the weather", entries, 3); len(got) != 0 {
		t.Errorf("expected no examples below threshold, got %d", len(got))
	}
}
