package match

import (
	"sort"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/guestlist-ops/ticket-reconciler/internal/entity"
)

// Candidate pairs a registry guest with its similarity score (0-100).
type Candidate struct {
	Guest entity.Guest
	Score int
}

// Outcome is the resolution policy consumed by reconciliation.
type Outcome int

const (
	NoMatch Outcome = iota
	Matched
	// Duplicate means the top two candidates score within the tie band and
	// cannot be told apart automatically; a human has to resolve the row.
	Duplicate
)

// Matcher scores query names against normalized registry names.
type Matcher struct {
	Threshold int // minimum score to become a candidate
	TieBand   int // top-two gap at or under this is ambiguous
}

func NewMatcher(threshold, tieBand int) *Matcher {
	if threshold <= 0 {
		threshold = 85
	}
	if tieBand < 0 {
		tieBand = 3
	}
	return &Matcher{Threshold: threshold, TieBand: tieBand}
}

// Against scores name against every guest, returning candidates at or above
// the threshold sorted by descending score, plus the best raw score seen.
// The partial ratio tolerates substrings (short registry names inside long
// ticket names); the token-sort ratio tolerates word reordering. Each
// guest's score is the max of the two.
func (m *Matcher) Against(name string, guests []entity.Guest) ([]Candidate, int) {
	if name == "" || len(guests) == 0 {
		return nil, 0
	}
	norm := Normalize(name)

	var candidates []Candidate
	best := 0
	for _, g := range guests {
		partial := fuzzy.PartialRatio(norm, g.Norm)
		tokenSort := fuzzy.TokenSortRatio(norm, g.Norm)
		score := partial
		if tokenSort > score {
			score = tokenSort
		}
		if score >= m.Threshold {
			candidates = append(candidates, Candidate{Guest: g, Score: score})
			if score > best {
				best = score
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates, best
}

// Resolve applies the ambiguity policy to a candidate list.
func (m *Matcher) Resolve(candidates []Candidate) Outcome {
	switch {
	case len(candidates) == 0:
		return NoMatch
	case len(candidates) == 1:
		return Matched
	case candidates[0].Score-candidates[1].Score <= m.TieBand:
		return Duplicate
	default:
		return Matched
	}
}
