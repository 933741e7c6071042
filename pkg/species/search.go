package species

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Match is one search result.
type Match struct {
	Code     uint16 `json:"code"`
	Name     string `json:"name"`
	Distance int    `json:"distance"`
}

const (
	matchExact = iota
	matchPrefix
	matchFuzzy
)

// Search ranks cached names against a query: exact hits, then prefix hits,
// then close edit-distance matches. limit <= 0 means 5 results.
func (r *Resolver) Search(query string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 5
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	names, err := r.CachedNames()
	if err != nil {
		return nil, err
	}

	type scored struct {
		match Match
		rank  int
	}
	var hits []scored
	for code, name := range names {
		lower := strings.ToLower(name)
		dist := levenshtein.ComputeDistance(q, lower)

		var rank int
		switch {
		case lower == q:
			rank = matchExact
		case strings.HasPrefix(lower, q):
			rank = matchPrefix
		case dist <= distanceLimit(len(lower)):
			rank = matchFuzzy
		default:
			continue
		}
		hits = append(hits, scored{
			match: Match{Code: code, Name: name, Distance: dist},
			rank:  rank,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank < hits[j].rank
		}
		if hits[i].match.Distance != hits[j].match.Distance {
			return hits[i].match.Distance < hits[j].match.Distance
		}
		return hits[i].match.Name < hits[j].match.Name
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]Match, len(hits))
	for i, h := range hits {
		out[i] = h.match
	}
	return out, nil
}

// distanceLimit scales the acceptable edit distance with the name length, so
// short names do not fuzzy-match everything.
func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
