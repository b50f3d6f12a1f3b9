package hierarchy

import (
	"sort"

	"github.com/aussiebroadwan/flagtree/internal/flags/domain"
)

// Snapshot is an immutable, id- and name-indexed view over a flat record set.
// Relationships are resolved by id lookup at traversal time; no record holds
// a live reference to another.
type Snapshot struct {
	byID   map[string]domain.Flag
	byName map[string]string // name -> id
	sorted []domain.Flag     // ordered by name
}

// NewSnapshot indexes flags. When ids repeat, the last record wins.
func NewSnapshot(flags []domain.Flag) *Snapshot {
	s := &Snapshot{
		byID:   make(map[string]domain.Flag, len(flags)),
		byName: make(map[string]string, len(flags)),
	}
	for _, f := range flags {
		if prev, ok := s.byID[f.ID]; ok {
			delete(s.byName, prev.Name)
		}
		s.byID[f.ID] = f
		s.byName[f.Name] = f.ID
	}

	s.sorted = make([]domain.Flag, 0, len(s.byID))
	for _, f := range s.byID {
		s.sorted = append(s.sorted, f)
	}
	sort.Slice(s.sorted, func(i, j int) bool { return s.sorted[i].Name < s.sorted[j].Name })
	return s
}

// ByID returns the record with the given id.
func (s *Snapshot) ByID(id string) (domain.Flag, bool) {
	f, ok := s.byID[id]
	return f, ok
}

// ByName returns the record with the given name.
func (s *Snapshot) ByName(name string) (domain.Flag, bool) {
	id, ok := s.byName[name]
	if !ok {
		return domain.Flag{}, false
	}
	return s.ByID(id)
}

// Flags returns the records ordered by name. The slice must not be mutated.
func (s *Snapshot) Flags() []domain.Flag { return s.sorted }

// Len returns the number of distinct records.
func (s *Snapshot) Len() int { return len(s.byID) }
