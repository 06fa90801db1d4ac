package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/stencilproject/stencil/internal/domain/items"
)

// ItemTable is a mutex-guarded item store with insertion-ordered iteration.
type ItemTable struct {
	mu      sync.RWMutex
	records map[string]items.Item
	order   []string
}

func newItemTable() *ItemTable {
	return &ItemTable{records: make(map[string]items.Item)}
}

func (t *ItemTable) Insert(_ context.Context, item items.Item) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.records[item.ID]; exists {
		return fmt.Errorf("%w: id %s already exists", items.ErrConflict, item.ID)
	}
	t.records[item.ID] = cloneItem(item)
	t.order = append(t.order, item.ID)
	return nil
}

func (t *ItemTable) Get(_ context.Context, id string) (items.Item, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	item, ok := t.records[id]
	if !ok {
		return items.Item{}, items.ErrNotFound
	}
	return cloneItem(item), nil
}

func (t *ItemTable) List(_ context.Context, filters items.Filters, pagination items.Pagination) (items.ListResult, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	matched := make([]items.Item, 0, len(t.order))
	for _, id := range t.order {
		item := t.records[id]
		if filters.Category != "" && item.Category != filters.Category {
			continue
		}
		if filters.AvailableOnly && !item.IsAvailable {
			continue
		}
		matched = append(matched, cloneItem(item))
	}

	total := len(matched)
	if pagination.Offset >= len(matched) {
		matched = nil
	} else {
		matched = matched[pagination.Offset:]
	}
	if pagination.Limit > 0 && len(matched) > pagination.Limit {
		matched = matched[:pagination.Limit]
	}
	return items.ListResult{Items: matched, Total: total}, nil
}

func (t *ItemTable) All(_ context.Context) ([]items.Item, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]items.Item, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, cloneItem(t.records[id]))
	}
	return out, nil
}

// Mutate applies fn to the record under the write lock so read-modify-write
// cycles from concurrent callers cannot interleave.
func (t *ItemTable) Mutate(_ context.Context, id string, fn func(*items.Item)) (items.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	item, ok := t.records[id]
	if !ok {
		return items.Item{}, items.ErrNotFound
	}

	updated := cloneItem(item)
	fn(&updated)
	updated.ID = item.ID // the identifier is immutable
	t.records[id] = updated
	return cloneItem(updated), nil
}

func (t *ItemTable) Delete(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.records[id]; !ok {
		return items.ErrNotFound
	}
	delete(t.records, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

func (t *ItemTable) Count(_ context.Context) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records), nil
}

func cloneItem(item items.Item) items.Item {
	out := item
	if item.Tags != nil {
		out.Tags = append([]string(nil), item.Tags...)
	}
	return out
}
