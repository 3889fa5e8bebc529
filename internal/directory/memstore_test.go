package directory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/active-heroes/directory-cli/internal/model"
)

// memStore is an in-memory Store for resolver and ingest tests.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]*model.Business
	ingests map[string]*IngestEntry

	failInsert error
	failFind   error
}

func newMemStore() *memStore {
	return &memStore{
		rows:    make(map[int64]*model.Business),
		ingests: make(map[string]*IngestEntry),
	}
}

func (m *memStore) Migrate(context.Context) error { return nil }
func (m *memStore) Close() error                  { return nil }

func (m *memStore) Insert(_ context.Context, b *model.Business) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsert != nil {
		return m.failInsert
	}
	m.nextID++
	b.ID = m.nextID
	cp := *b
	m.rows[b.ID] = &cp
	return nil
}

func (m *memStore) Update(_ context.Context, id int64, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return eris.Errorf("mem: business not found: %d", id)
	}
	for name, v := range fields {
		if name == "date_updated" {
			if ts, ok := v.(time.Time); ok {
				b.DateUpdated = ts
			}
			continue
		}
		if !model.SetField(b, name, v) {
			return eris.Errorf("mem: bad field %q", name)
		}
	}
	return nil
}

func (m *memStore) Get(_ context.Context, id int64) (*model.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return eris.Errorf("mem: business not found: %d", id)
	}
	delete(m.rows, id)
	return nil
}

func (m *memStore) FindByUEI(_ context.Context, uei string) (*model.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFind != nil {
		return nil, m.failFind
	}
	for _, id := range m.sortedIDs() {
		if m.rows[id].UEI == uei {
			cp := *m.rows[id]
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByZipPrefix(_ context.Context, prefix string) ([]model.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFind != nil {
		return nil, m.failFind
	}
	var out []model.Business
	for _, id := range m.sortedIDs() {
		if strings.HasPrefix(m.rows[id].ZipCode, prefix) {
			out = append(out, *m.rows[id])
		}
	}
	return out, nil
}

func (m *memStore) sortedIDs() []int64 {
	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *memStore) Search(context.Context, SearchFilter) (*SearchResult, error) {
	return &SearchResult{}, nil
}

func (m *memStore) ListAll(_ context.Context) ([]model.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Business
	for _, id := range m.sortedIDs() {
		out = append(out, *m.rows[id])
	}
	return out, nil
}

func (m *memStore) Stats(_ context.Context) (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &Stats{Total: len(m.rows)}, nil
}

func (m *memStore) StartIngest(_ context.Context, source string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.ingests[id] = &IngestEntry{
		ID:        id,
		Source:    source,
		Status:    IngestStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	return id, nil
}

func (m *memStore) CompleteIngest(_ context.Context, id, status string, rep *model.IngestReport, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.ingests[id]
	if !ok {
		return eris.Errorf("mem: ingest run not found: %s", id)
	}
	now := time.Now().UTC()
	e.Status = status
	e.Report = rep
	e.Error = errMsg
	e.CompletedAt = &now
	return nil
}

func (m *memStore) ListIngests(_ context.Context, limit int) ([]IngestEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []IngestEntry
	for _, e := range m.ingests {
		out = append(out, *e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

var _ Store = (*memStore)(nil)
