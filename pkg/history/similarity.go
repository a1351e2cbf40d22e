package history

import (
	"sort"
	"strings"
)

// similarityThreshold is the minimum score for an entry to qualify as a
// few-shot example. Below it the entry is noise, not guidance.
const similarityThreshold = 0.25

var similarityStopwords = map[string]struct{}{
	"ve": {}, "veya": {}, "için": {}, "ile": {}, "bir": {}, "bu": {},
	"and": {}, "or": {}, "the": {}, "a": {}, "an": {},
	"in": {}, "on": {}, "at": {}, "to": {},
}

// intentGroups boost pairs of questions that share the same analytical
// shape even when their wording overlaps little.
var intentGroups = []struct {
	words  []string
	weight float64
}{
	{[]string{"top", "best", "highest", "en cok", "en çok"}, 0.20},
	{[]string{"worst", "lowest", "en az"}, 0.20},
	{[]string{"trend", "aylık", "aylik", "monthly"}, 0.20},
	{[]string{"total", "toplam"}, 0.15},
	{[]string{"compare", "vs", "karşı", "karsi"}, 0.15},
}

// similarity scores two questions in [0,1]: token Jaccard after stopword
// removal, plus a bonus when both questions carry the same intent keywords.
func similarity(q1, q2 string) float64 {
	q1 = strings.ToLower(q1)
	q2 = strings.ToLower(q2)

	t1 := contentTokens(q1)
	t2 := contentTokens(q2)
	if len(t1) == 0 || len(t2) == 0 {
		return 0
	}

	shared := 0
	for tok := range t1 {
		if _, ok := t2[tok]; ok {
			shared++
		}
	}
	union := len(t1) + len(t2) - shared
	score := float64(shared) / float64(union)

	for _, g := range intentGroups {
		if containsAnyWord(q1, g.words) && containsAnyWord(q2, g.words) {
			score += g.weight
		}
	}

	if score > 1 {
		return 1
	}
	return score
}

func contentTokens(q string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(q) {
		if _, stop := similarityStopwords[tok]; stop {
			continue
		}
		tokens[tok] = struct{}{}
	}
	return tokens
}

func containsAnyWord(q string, words []string) bool {
	for _, w := range words {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}

// rankBySimilarity filters entries below the threshold and returns the top
// scorers, best first. Order among equal scores follows the input order, so
// callers passing newest-first entries get the newest of the ties.
func rankBySimilarity(question string, entries []*Entry, limit int) []*Entry {
	type scored struct {
		score float64
		entry *Entry
	}

	var kept []scored
	for _, e := range entries {
		if s := similarity(question, e.Question); s >= similarityThreshold {
			kept = append(kept, scored{score: s, entry: e})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})

	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	out := make([]*Entry, len(kept))
	for i, s := range kept {
		out[i] = s.entry
	}
	return out
}
