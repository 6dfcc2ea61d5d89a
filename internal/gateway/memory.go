package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"kyri56xcaesar/teamops/internal/utils"
)

// Memory is the in-memory backend, used by tests and the dev profile.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string]map[string]any)}
}

func (m *Memory) collection(name string) map[string]map[string]any {
	col, ok := m.collections[name]
	if !ok {
		col = make(map[string]map[string]any)
		m.collections[name] = col
	}
	return col
}

// copyFields deep-copies a field map through a JSON round trip so callers and
// the store never share nested structures.
func copyFields(fields map[string]any) map[string]any {
	if fields == nil {
		return map[string]any{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		// field maps originate from DocOf output and are always marshalable
		panic(fmt.Sprintf("unmarshalable field map: %v", err))
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("copy field map: %v", err))
	}
	return out
}

// normalize passes a value through JSON so equality checks see the same
// representation the stored fields use (e.g. all numbers as float64).
func normalize(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

func (m *Memory) GetCollection(_ context.Context, collection string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	col := m.collections[collection]
	out := make([]Record, 0, len(col))
	for id, fields := range col {
		out = append(out, Record{ID: id, Fields: copyFields(fields)})
	}
	return out, nil
}

func (m *Memory) SetDocument(_ context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.collection(collection)[id] = copyFields(fields)
	return nil
}

func (m *Memory) UpdateDocument(_ context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.collection(collection)
	existing, ok := col[id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	merged := copyFields(existing)
	for k, v := range copyFields(fields) {
		merged[k] = v
	}
	col[id] = merged
	return nil
}

func (m *Memory) DeleteDocument(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.collection(collection), id)
	return nil
}

func (m *Memory) BatchWrite(_ context.Context, collection string, records []Record) error {
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("batch write to %s: record without id", collection)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.collection(collection)
	for _, r := range records {
		col[r.ID] = copyFields(r.Fields)
	}
	return nil
}

func (m *Memory) BatchDelete(_ context.Context, collection string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.collection(collection)
	for _, id := range ids {
		delete(col, id)
	}
	return nil
}

func (m *Memory) DeleteByQuery(_ context.Context, collection, field string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	want := normalize(value)
	col := m.collection(collection)
	for id, fields := range col {
		if reflect.DeepEqual(fields[field], want) {
			delete(col, id)
		}
	}
	return nil
}

func (m *Memory) AddDocument(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id, err := utils.GenerateRandomString(assignedIDLength)
	if err != nil {
		return "", err
	}
	return id, m.SetDocument(ctx, collection, id, fields)
}
