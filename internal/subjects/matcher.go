package subjects

import (
	"sort"
	"strings"
)

const (
	// BrowseLimit is how many labels an empty query shows.
	BrowseLimit = 10
	// MaxSuggestions caps a ranked result.
	MaxSuggestions = 8
	// MinSimilarity is the threshold a non-substring candidate must beat.
	MinSimilarity = 0.3
)

// Candidate is one scored catalog label for a query.
type Candidate struct {
	Label      string  `json:"label"`
	Similarity float64 `json:"similarity"`
	Substring  bool    `json:"substring"`
	Prefix     bool    `json:"prefix"`
}

// Rank returns at most MaxSuggestions labels ordered best-first. An empty
// query returns the first BrowseLimit labels in catalog order.
func Rank(query string, labels []string) []string {
	if strings.TrimSpace(query) == "" {
		n := min(BrowseLimit, len(labels))
		out := make([]string, n)
		copy(out, labels[:n])
		return out
	}

	matches := Match(query, labels)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Label
	}
	return out
}

// Match scores, filters, sorts and truncates candidates for a non-empty
// query. Substring and prefix checks use the original case while similarity
// is computed on lowercased text.
func Match(query string, labels []string) []Candidate {
	candidates := make([]Candidate, 0, len(labels))
	for _, label := range labels {
		c := Candidate{
			Label:      label,
			Similarity: Similarity(query, label),
			Substring:  strings.Contains(label, query),
			Prefix:     strings.HasPrefix(label, query),
		}
		if c.Similarity > MinSimilarity || c.Substring {
			candidates = append(candidates, c)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Substring != b.Substring {
			return a.Substring
		}
		if a.Prefix != b.Prefix {
			return a.Prefix
		}
		return a.Similarity > b.Similarity
	})

	if len(candidates) > MaxSuggestions {
		candidates = candidates[:MaxSuggestions]
	}
	return candidates
}

// Similarity is 1 - lev(a, b) / max(len(a), len(b)) over lowercased code
// points. Two empty strings are identical.
func Similarity(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// Distance is the Levenshtein distance between a and b in code points.
func Distance(a, b string) int {
	return levenshtein([]rune(a), []rune(b))
}

func levenshtein(a, b []rune) int {
	matrix := make([][]int, len(b)+1)
	for j := range matrix {
		matrix[j] = make([]int, len(a)+1)
		matrix[j][0] = j
	}
	for i := 0; i <= len(a); i++ {
		matrix[0][i] = i
	}

	for j := 1; j <= len(b); j++ {
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[j][i] = min(
				matrix[j][i-1]+1,
				matrix[j-1][i]+1,
				matrix[j-1][i-1]+cost,
			)
		}
	}
	return matrix[len(b)][len(a)]
}
