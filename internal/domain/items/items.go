package items

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("item not found")
	ErrConflict = errors.New("item conflict")
)

// Item is a catalog record managed by the CRUD surface.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	IsAvailable bool      `json:"is_available"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateParams is the validated input for creating an item.
type CreateParams struct {
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Category    string   `json:"category" validate:"max=100"`
	IsAvailable *bool    `json:"is_available"`
	Tags        []string `json:"tags" validate:"max=20,dive,min=1,max=50"`
}

// UpdateParams is the partial-merge input for updating an item.
// Nil fields are left untouched.
type UpdateParams struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	IsAvailable *bool    `json:"is_available"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,min=1,max=50"`
}

// IsEmpty reports whether the update carries no changes at all.
func (p UpdateParams) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.Category == nil && p.IsAvailable == nil && p.Tags == nil
}

type Filters struct {
	Category      string
	AvailableOnly bool
}

type Pagination struct {
	Offset int
	Limit  int
}

type ListResult struct {
	Items []Item
	Total int
}

// Stats aggregates the item table for the stats endpoints and MCP tools.
type Stats struct {
	Total       int            `json:"total_items"`
	Available   int            `json:"available_items"`
	Unavailable int            `json:"unavailable_items"`
	Categories  map[string]int `json:"categories"`
	Pricing     PricingStats   `json:"pricing"`
}

type PricingStats struct {
	TotalValue   float64 `json:"total_value"`
	AveragePrice float64 `json:"average_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
}

// SearchField names an item field the search operation can match against.
type SearchField string

const (
	SearchByName        SearchField = "name"
	SearchByCategory    SearchField = "category"
	SearchByDescription SearchField = "description"
)

// ValidSearchFields lists the accepted search_field values, for error messages.
func ValidSearchFields() []string {
	return []string{string(SearchByName), string(SearchByCategory), string(SearchByDescription)}
}

// FilterError reports an invalid query parameter.
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

// Repository is the storage contract the item service runs against.
// Mutate applies fn to the stored record under the table lock so partial
// updates cannot interleave with concurrent writers.
type Repository interface {
	Insert(ctx context.Context, item Item) error
	Get(ctx context.Context, id string) (Item, error)
	List(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error)
	All(ctx context.Context) ([]Item, error)
	Mutate(ctx context.Context, id string, fn func(*Item)) (Item, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
