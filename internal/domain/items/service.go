package items

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stencilproject/stencil/internal/domain/ids"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000

	defaultCategory = "uncategorized"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ValidationError wraps validator failures with per-field messages so the
// transport layers can render them without depending on validator directly.
type ValidationError struct {
	Fields map[string]string
}

func (e ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return ValidationError{Fields: fields}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (Item, error) {
	if err := validate.Struct(params); err != nil {
		return Item{}, newValidationError(err)
	}

	now := time.Now().UTC()
	item := Item{
		ID:          ids.MustNewULID(),
		Name:        strings.TrimSpace(params.Name),
		Description: strings.TrimSpace(params.Description),
		Price:       params.Price,
		Category:    normalizeCategory(params.Category),
		IsAvailable: true,
		Tags:        params.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if params.IsAvailable != nil {
		item.IsAvailable = *params.IsAvailable
	}

	if err := s.repo.Insert(ctx, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// CreateBulk creates items atomically per record: each input is validated
// before any insert happens, so a bad record rejects the whole batch.
func (s *Service) CreateBulk(ctx context.Context, batch []CreateParams) ([]Item, error) {
	for _, params := range batch {
		if err := validate.Struct(params); err != nil {
			return nil, newValidationError(err)
		}
	}

	created := make([]Item, 0, len(batch))
	for _, params := range batch {
		item, err := s.Create(ctx, params)
		if err != nil {
			return nil, err
		}
		created = append(created, item)
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (Item, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error) {
	return s.repo.List(ctx, filters, pagination)
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (Item, error) {
	if err := validate.Struct(params); err != nil {
		return Item{}, newValidationError(err)
	}
	if params.IsEmpty() {
		return Item{}, ValidationError{Fields: map[string]string{"body": "no update fields provided"}}
	}

	return s.repo.Mutate(ctx, id, func(item *Item) {
		if params.Name != nil {
			item.Name = strings.TrimSpace(*params.Name)
		}
		if params.Description != nil {
			item.Description = strings.TrimSpace(*params.Description)
		}
		if params.Price != nil {
			item.Price = *params.Price
		}
		if params.Category != nil {
			item.Category = normalizeCategory(*params.Category)
		}
		if params.IsAvailable != nil {
			item.IsAvailable = *params.IsAvailable
		}
		if params.Tags != nil {
			item.Tags = params.Tags
		}
		item.UpdatedAt = time.Now().UTC()
	})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Search scans items for a case-insensitive substring match on the chosen field.
func (s *Service) Search(ctx context.Context, query string, field SearchField) ([]Item, error) {
	switch field {
	case SearchByName, SearchByCategory, SearchByDescription:
	default:
		return nil, FilterError{Field: "search_field", Message: "must be one of " + strings.Join(ValidSearchFields(), ", ")}
	}

	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	matches := make([]Item, 0)
	for _, item := range all {
		var haystack string
		switch field {
		case SearchByName:
			haystack = item.Name
		case SearchByCategory:
			haystack = item.Category
		case SearchByDescription:
			haystack = item.Description
		}
		if strings.Contains(strings.ToLower(haystack), needle) {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

// FindByCategory returns items whose category matches exactly.
func (s *Service) FindByCategory(ctx context.Context, category string) ([]Item, error) {
	result, err := s.repo.List(ctx, Filters{Category: category}, Pagination{Limit: MaxLimit})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Total:      len(all),
		Categories: make(map[string]int),
	}
	for i, item := range all {
		if item.IsAvailable {
			stats.Available++
		}
		stats.Categories[item.Category]++
		stats.Pricing.TotalValue += item.Price
		if i == 0 || item.Price < stats.Pricing.MinPrice {
			stats.Pricing.MinPrice = item.Price
		}
		if item.Price > stats.Pricing.MaxPrice {
			stats.Pricing.MaxPrice = item.Price
		}
	}
	stats.Unavailable = stats.Total - stats.Available
	if stats.Total > 0 {
		stats.Pricing.AveragePrice = stats.Pricing.TotalValue / float64(stats.Total)
	}
	return stats, nil
}

// ParseFilters extracts list filters and pagination bounds from query values.
func ParseFilters(values url.Values) (Filters, Pagination, error) {
	filters := Filters{
		Category: strings.TrimSpace(values.Get("category")),
	}
	pagination := Pagination{Limit: DefaultLimit}

	if raw := strings.TrimSpace(values.Get("available_only")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, pagination, FilterError{Field: "available_only", Message: "must be a boolean"}
		}
		filters.AvailableOnly = parsed
	}

	if raw := strings.TrimSpace(values.Get("offset")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return filters, pagination, FilterError{Field: "offset", Message: "must be a non-negative number"}
		}
		pagination.Offset = parsed
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return filters, pagination, FilterError{Field: "limit", Message: "must be a number"}
		}
		if parsed < 1 || parsed > MaxLimit {
			return filters, pagination, FilterError{Field: "limit", Message: "must be between 1 and 1000"}
		}
		pagination.Limit = parsed
	}

	return filters, pagination, nil
}

func normalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return defaultCategory
	}
	return category
}
