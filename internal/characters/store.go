package characters

import (
	"sync"

	"charhub/pkg/models"
)

// Store is the service's scratch list of characters. It lives as long as the
// process and starts empty.
type Store struct {
	mu    sync.RWMutex
	items []models.Character
}

func NewStore() *Store {
	return &Store{items: make([]models.Character, 0)}
}

// List returns a copy of the list in insertion order.
func (s *Store) List() []models.Character {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Character, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Create appends a record built from p. The id is the list length plus one;
// nothing is ever removed, so ids stay unique.
func (s *Store) Create(p models.CharacterPatch) models.Character {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := p.Apply(models.Character{ID: int64(len(s.items) + 1)})
	s.items = append(s.items, c)
	return c
}

// Update merges p over the record with the given id. It reports false when
// no such record exists.
func (s *Store) Update(id int64, p models.CharacterPatch) (models.Character, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		merged := p.Apply(s.items[i])
		merged.ID = id
		s.items[i] = merged
		return merged, true
	}
	return models.Character{}, false
}
