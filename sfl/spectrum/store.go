// Package spectrum accumulates per-requirement coverage counts across a test
// session.
package spectrum

import (
	"fmt"
	"sort"
	"sync"

	"github.com/example/sfl-lite/sfl/domain"
)

// Store maps requirement keys to their accumulated spectrum. Records are
// created lazily on the first covering observation and only ever grow.
// Update is the single synchronized mutation point.
type Store struct {
	mu           sync.RWMutex
	requirements map[string]*domain.Requirement
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{requirements: make(map[string]*domain.Requirement)}
}

// Update records that element was covered by a test with the given outcome.
// Callers must call it once per covering observation; the store does not
// deduplicate.
func (s *Store) Update(element domain.Element, failed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLocked(element); err != nil {
		return err
	}
	s.observeLocked(element, failed)
	return nil
}

// UpdateAll records one covering test outcome for every element. Either all
// elements are applied or, on a metadata conflict, none is. Elements must
// have distinct keys.
func (s *Store) UpdateAll(elements []domain.Element, failed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range elements {
		if err := s.checkLocked(e); err != nil {
			return err
		}
	}
	for _, e := range elements {
		s.observeLocked(e, failed)
	}
	return nil
}

func (s *Store) checkLocked(element domain.Element) error {
	req, ok := s.requirements[element.Key()]
	if ok && req.Element != element {
		return conflict(req.Element, element)
	}
	return nil
}

func (s *Store) observeLocked(element domain.Element, failed bool) {
	key := element.Key()
	req, ok := s.requirements[key]
	if !ok {
		req = domain.NewRequirement(element)
		s.requirements[key] = req
	}
	req.Observe(failed)
}

func conflict(seen, now domain.Element) error {
	return fmt.Errorf("%w: key %s seen as {%s}, now {%s}",
		domain.ErrRequirementConflict, seen.Key(), metadata(seen), metadata(now))
}

// metadata formats the display fields that are not part of the key.
func metadata(e domain.Element) string {
	return fmt.Sprintf("line=%d def=%d use=%d target=%d var=%q", e.Line, e.Def, e.Use, e.Target, e.Var)
}

// Get returns a copy of the requirement stored under key.
func (s *Store) Get(key string) (domain.Requirement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requirements[key]
	if !ok {
		return domain.Requirement{}, false
	}
	return *req, true
}

// Len returns the number of requirements.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.requirements)
}

// All returns a snapshot of every requirement ordered by key.
func (s *Store) All() []domain.Requirement {
	s.mu.RLock()
	out := make([]domain.Requirement, 0, len(s.requirements))
	for _, req := range s.requirements {
		out = append(out, *req)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Key() < out[j].Key()
	})
	return out
}

// Load restores previously accumulated requirements, for example from
// persisted history. Counts of existing keys are added together.
func (s *Store) Load(reqs []domain.Requirement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range reqs {
		key := r.Key()
		existing, ok := s.requirements[key]
		if !ok {
			copied := r
			s.requirements[key] = &copied
			continue
		}
		if existing.Element != r.Element {
			return conflict(existing.Element, r.Element)
		}
		existing.CoveredByPassed += r.CoveredByPassed
		existing.CoveredByFailed += r.CoveredByFailed
	}
	return nil
}
