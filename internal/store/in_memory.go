package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	catalogerrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/store/db"
)

var _ ProductStore = (*InMemoryStore)(nil)

// InMemoryStore implements ProductStore using an in-memory map.
// Deleted products stay in the map with DeletedAt set.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[int64]db.Product
	nextID   int64
	now      func() time.Time
}

// NewInMemoryStore creates a new empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		products: make(map[int64]db.Product),
		nextID:   1,
		now:      time.Now,
	}
}

func (s *InMemoryStore) FindByID(_ context.Context, id int64) (*db.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok || p.IsDeleted() {
		return nil, catalogerrors.ErrProductNotFound
	}
	return &p, nil
}

func (s *InMemoryStore) FindAll(_ context.Context) ([]db.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]db.Product, 0, len(s.products))
	for _, p := range s.products {
		if !p.IsDeleted() {
			list = append(list, p)
		}
	}
	slices.SortFunc(list, func(a, b db.Product) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return list, nil
}

func (s *InMemoryStore) ExistsByCode(_ context.Context, code string, excludeID *int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exclude int64
	if excludeID != nil {
		exclude = *excludeID
	}
	return s.codeTaken(code, exclude), nil
}

func (s *InMemoryStore) Save(_ context.Context, p *db.Product) (*db.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.codeTaken(p.Code, p.ID) {
		return nil, catalogerrors.ErrConflict
	}

	now := s.now()
	saved := *p
	if saved.ID == 0 {
		saved.ID = s.nextID
		s.nextID++
		saved.CreatedAt = now
	} else {
		existing, ok := s.products[saved.ID]
		if !ok || existing.IsDeleted() {
			return nil, catalogerrors.ErrProductNotFound
		}
		saved.CreatedAt = existing.CreatedAt
	}
	saved.UpdatedAt = now
	saved.DeletedAt = nil
	s.products[saved.ID] = saved
	return &saved, nil
}

func (s *InMemoryStore) SoftDelete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok || p.IsDeleted() {
		return catalogerrors.ErrProductNotFound
	}
	now := s.now()
	p.DeletedAt = &now
	p.UpdatedAt = now
	s.products[id] = p
	return nil
}

// codeTaken must be called with mu held. exclude == 0 excludes nothing.
func (s *InMemoryStore) codeTaken(code string, exclude int64) bool {
	for id, p := range s.products {
		if id != exclude && !p.IsDeleted() && p.Code == code {
			return true
		}
	}
	return false
}
