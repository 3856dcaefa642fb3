package projection

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggest returns up to limit catalogue entries close to query: those
// containing it, then those within maxDistance edits, nearest first.
// Matching ignores case. An empty query suggests nothing.
func Suggest(query string, catalogue []string, maxDistance, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return nil
	}
	type match struct {
		entry string
		dist  int
	}
	var matches []match
	seen := map[string]struct{}{}
	for _, entry := range catalogue {
		e := strings.ToLower(strings.TrimSpace(entry))
		if e == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		dist := levenshtein.ComputeDistance(q, e)
		if strings.Contains(e, q) {
			dist = 0
		}
		if dist > maxDistance {
			continue
		}
		matches = append(matches, match{entry: entry, dist: dist})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].entry < matches[j].entry
	})
	if len(matches) == 0 {
		return nil
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.entry
	}
	return out
}
