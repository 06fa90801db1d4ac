package users

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("user not found")
	// ErrConflict is returned when a username or email is already taken.
	ErrConflict = errors.New("user conflict")
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateParams struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"max=200"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
	IsActive *bool  `json:"is_active"`
}

type UpdateParams struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"full_name" validate:"omitempty,max=200"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin user"`
	IsActive *bool   `json:"is_active"`
}

func (p UpdateParams) IsEmpty() bool {
	return p.Username == nil && p.Email == nil && p.FullName == nil &&
		p.Role == nil && p.IsActive == nil
}

type Filters struct {
	ActiveOnly bool
}

type Pagination struct {
	Offset int
	Limit  int
}

type ListResult struct {
	Users []User
	Total int
}

// Stats aggregates the user table for the stats endpoint and MCP surface.
type Stats struct {
	Total    int            `json:"total_users"`
	Active   int            `json:"active_users"`
	Inactive int            `json:"inactive_users"`
	Roles    map[string]int `json:"roles"`
}

type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Repository is the storage contract for users. Insert and Mutate enforce
// username/email uniqueness under the table lock and return ErrConflict on
// violation.
type Repository interface {
	Insert(ctx context.Context, user User) error
	Get(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error)
	All(ctx context.Context) ([]User, error)
	Mutate(ctx context.Context, id string, fn func(*User)) (User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
