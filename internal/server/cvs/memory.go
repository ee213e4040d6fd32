package cvs

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/cvgenius/internal/common"
)

// MemoryRepository is used when no database DSN is configured.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]CVRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]CVRecord)}
}

func (m *MemoryRepository) Upsert(_ context.Context, rec CVRecord) error {
	rec.Document = append([]byte(nil), rec.Document...)

	m.mu.Lock()
	m.records[rec.ID] = rec
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, id string) (*CVRecord, error) {
	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &rec, nil
}
