package intent

import (
	"regexp"
	"strconv"
)

// topNPattern matches "top 5", "top 10" style phrases.
var topNPattern = regexp.MustCompile(`\btop\s+(\d+)\b`)

// yearPairPattern matches questions comparing two calendar years.
var yearPairPattern = regexp.MustCompile(`\b20\d{2}\b.*\b20\d{2}\b`)

// countPatterns are tried in order against the lowercased question. Each
// pattern's first capture group is the explicit count.
var countPatterns = []*regexp.Regexp{
	topNPattern,
	regexp.MustCompile(`\bfirst\s+(\d+)\b`),
	regexp.MustCompile(`\bbottom\s+(\d+)\b`),
	regexp.MustCompile(`\b(\d+)\s+(?:products?|items?|stores?)\b`),
	regexp.MustCompile(`\b(\d+)\s+(?:ürün|urun|mağaza|magaza)\b`),
	regexp.MustCompile(`(?:en çok|en cok|en az)\s+satan\s+(\d+)\b`),
	regexp.MustCompile(`\bilk\s+(\d+)\b`),
	regexp.MustCompile(`\bson\s+(\d+)\s+(?:ürün|urun)\b`),
}

// ExtractCount pulls an explicit result count out of a ranking question
// ("top 5", "en az satan 3 ürün"). Absence of a match returns nil: the
// count is deliberately never defaulted, so the template router can refuse
// to guess and hand the question to the LLM path instead.
func ExtractCount(q string) *int {
	for _, p := range countPatterns {
		m := p.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		return &n
	}
	return nil
}
