// Package memory implements the in-process system of record for the scaffold.
// Tables are guarded by RWMutexes so concurrent handlers on either front end
// cannot interleave partial writes; nothing is persisted across restarts.
package memory

import "github.com/stencilproject/stencil/internal/domain/items"

type Repository struct {
	items *ItemTable
	users *UserTable
}

func NewRepository() *Repository {
	return &Repository{
		items: newItemTable(),
		users: newUserTable(),
	}
}

func (r *Repository) Items() *ItemTable {
	return r.items
}

func (r *Repository) Users() *UserTable {
	return r.users
}

var _ items.Repository = (*ItemTable)(nil)
