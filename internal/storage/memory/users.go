package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/stencilproject/stencil/internal/domain/users"
)

// UserTable is a mutex-guarded user store. Username and email uniqueness is
// checked under the write lock, so two concurrent creates for the same
// username cannot both succeed.
type UserTable struct {
	mu      sync.RWMutex
	records map[string]users.User
	order   []string
}

func newUserTable() *UserTable {
	return &UserTable{records: make(map[string]users.User)}
}

var _ users.Repository = (*UserTable)(nil)

func (t *UserTable) Insert(_ context.Context, user users.User) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.records[user.ID]; exists {
		return fmt.Errorf("%w: id %s already exists", users.ErrConflict, user.ID)
	}
	if err := t.checkUnique(user); err != nil {
		return err
	}
	t.records[user.ID] = user
	t.order = append(t.order, user.ID)
	return nil
}

func (t *UserTable) Get(_ context.Context, id string) (users.User, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	user, ok := t.records[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return user, nil
}

func (t *UserTable) GetByUsername(_ context.Context, username string) (users.User, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, id := range t.order {
		if strings.EqualFold(t.records[id].Username, username) {
			return t.records[id], nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (t *UserTable) GetByEmail(_ context.Context, email string) (users.User, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, id := range t.order {
		if strings.EqualFold(t.records[id].Email, email) {
			return t.records[id], nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (t *UserTable) List(_ context.Context, filters users.Filters, pagination users.Pagination) (users.ListResult, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	matched := make([]users.User, 0, len(t.order))
	for _, id := range t.order {
		user := t.records[id]
		if filters.ActiveOnly && !user.IsActive {
			continue
		}
		matched = append(matched, user)
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
	return users.ListResult{Users: matched, Total: total}, nil
}

func (t *UserTable) All(_ context.Context) ([]users.User, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]users.User, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.records[id])
	}
	return out, nil
}

func (t *UserTable) Mutate(_ context.Context, id string, fn func(*users.User)) (users.User, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	user, ok := t.records[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}

	updated := user
	fn(&updated)
	updated.ID = user.ID
	if err := t.checkUnique(updated); err != nil {
		return users.User{}, err
	}
	t.records[id] = updated
	return updated, nil
}

func (t *UserTable) Delete(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.records[id]; !ok {
		return users.ErrNotFound
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

func (t *UserTable) Count(_ context.Context) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records), nil
}

// checkUnique must be called with the write lock held.
func (t *UserTable) checkUnique(candidate users.User) error {
	for _, id := range t.order {
		existing := t.records[id]
		if existing.ID == candidate.ID {
			continue
		}
		if strings.EqualFold(existing.Username, candidate.Username) {
			return fmt.Errorf("%w: username %q already taken", users.ErrConflict, candidate.Username)
		}
		if strings.EqualFold(existing.Email, candidate.Email) {
			return fmt.Errorf("%w: email %q already taken", users.ErrConflict, candidate.Email)
		}
	}
	return nil
}
