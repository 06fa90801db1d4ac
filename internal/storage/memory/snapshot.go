package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stencilproject/stencil/internal/domain/items"
	"github.com/stencilproject/stencil/internal/domain/users"
)

// Snapshot is a point-in-time JSON export of every table. It is the payload
// of the export_database tool and can be fed back through Restore.
type Snapshot struct {
	Items      []items.Item `json:"items"`
	Users      []users.User `json:"users"`
	ExportedAt time.Time    `json:"exported_at"`
}

// Snapshot copies all tables. Each table is read under its own lock; the
// snapshot is consistent per table, not across tables.
func (r *Repository) Snapshot(ctx context.Context) (Snapshot, error) {
	allItems, err := r.items.All(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	allUsers, err := r.users.All(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Items:      allItems,
		Users:      allUsers,
		ExportedAt: time.Now().UTC(),
	}, nil
}

// ExportJSON serializes a snapshot as indented JSON.
func (r *Repository) ExportJSON(ctx context.Context) ([]byte, error) {
	snapshot, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// Restore replaces all table contents with the snapshot's records.
func (r *Repository) Restore(ctx context.Context, snapshot Snapshot) error {
	r.items.mu.Lock()
	r.items.records = make(map[string]items.Item, len(snapshot.Items))
	r.items.order = r.items.order[:0]
	for _, item := range snapshot.Items {
		r.items.records[item.ID] = cloneItem(item)
		r.items.order = append(r.items.order, item.ID)
	}
	r.items.mu.Unlock()

	r.users.mu.Lock()
	r.users.records = make(map[string]users.User, len(snapshot.Users))
	r.users.order = r.users.order[:0]
	for _, user := range snapshot.Users {
		r.users.records[user.ID] = user
		r.users.order = append(r.users.order, user.ID)
	}
	r.users.mu.Unlock()

	return nil
}

// ImportJSON restores tables from a JSON snapshot produced by ExportJSON.
func (r *Repository) ImportJSON(ctx context.Context, data []byte) error {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}
	return r.Restore(ctx, snapshot)
}
