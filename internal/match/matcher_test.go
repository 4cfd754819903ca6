package match

import (
	"testing"

	"github.com/guestlist-ops/ticket-reconciler/internal/entity"
)

func guest(name string, row int) entity.Guest {
	return entity.Guest{Name: name, Norm: Normalize(name), RowNo: row}
}

func TestAgainstSingleMatch(t *testing.T) {
	m := NewMatcher(85, 3)
	registry := []entity.Guest{
		guest("RAHUL SHARMA", 2),
		guest("PRIYA NAIR", 3),
	}

	candidates, best := m.Against("Mr Rahul Sharma", registry)

	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1: %v", len(candidates), candidates)
	}
	if candidates[0].Guest.RowNo != 2 {
		t.Errorf("matched row %d, want 2", candidates[0].Guest.RowNo)
	}
	if best < 85 {
		t.Errorf("best score %d, want >= 85", best)
	}
	if got := m.Resolve(candidates); got != Matched {
		t.Errorf("Resolve = %v, want Matched", got)
	}
}

func TestAgainstSubstringTolerance(t *testing.T) {
	m := NewMatcher(85, 3)
	// Short canonical registry name inside a longer extracted name.
	registry := []entity.Guest{guest("SONAL", 5)}

	candidates, _ := m.Against("Sonal Sharma", registry)
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
}

func TestAgainstTokenReorder(t *testing.T) {
	m := NewMatcher(85, 3)
	registry := []entity.Guest{guest("SHARMA RAHUL", 4)}

	candidates, best := m.Against("Rahul Sharma", registry)
	if len(candidates) != 1 || best != 100 {
		t.Fatalf("candidates=%d best=%d, want 1/100", len(candidates), best)
	}
}

func TestAgainstNoMatch(t *testing.T) {
	m := NewMatcher(85, 3)
	registry := []entity.Guest{guest("PRIYA NAIR", 3)}

	candidates, _ := m.Against("Rahul Sharma", registry)
	if len(candidates) != 0 {
		t.Fatalf("got %d candidates, want 0", len(candidates))
	}
	if got := m.Resolve(candidates); got != NoMatch {
		t.Errorf("Resolve = %v, want NoMatch", got)
	}
}

func TestAgainstDuplicateRegistryEntries(t *testing.T) {
	m := NewMatcher(85, 3)
	// Two registry rows normalizing to the same name must be flagged, not
	// auto-resolved.
	registry := []entity.Guest{
		guest("RAHUL SHARMA", 2),
		guest("Rahul Sharma", 9),
	}

	candidates, _ := m.Against("Rahul Sharma", registry)
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}
	if got := m.Resolve(candidates); got != Duplicate {
		t.Errorf("Resolve = %v, want Duplicate", got)
	}
}

func TestResolvePolicy(t *testing.T) {
	m := NewMatcher(85, 3)
	g := entity.Guest{}

	tests := []struct {
		name       string
		candidates []Candidate
		want       Outcome
	}{
		{"none", nil, NoMatch},
		{"single", []Candidate{{g, 91}}, Matched},
		{"tie band ambiguous", []Candidate{{g, 92}, {g, 90}}, Duplicate},
		{"exact tie ambiguous", []Candidate{{g, 88}, {g, 88}}, Duplicate},
		{"clear winner", []Candidate{{g, 97}, {g, 86}}, Matched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Resolve(tt.candidates); got != tt.want {
				t.Errorf("Resolve = %v, want %v", got, tt.want)
			}
		})
	}
}
