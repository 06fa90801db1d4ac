package users

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
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

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

func (s *Service) Create(ctx context.Context, params CreateParams) (User, error) {
	if err := validate.Struct(params); err != nil {
		return User{}, newValidationError(err)
	}

	now := time.Now().UTC()
	user := User{
		ID:        ids.MustNewULID(),
		Username:  strings.TrimSpace(params.Username),
		Email:     strings.ToLower(strings.TrimSpace(params.Email)),
		FullName:  strings.TrimSpace(params.FullName),
		Role:      params.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	if params.IsActive != nil {
		user.IsActive = *params.IsActive
	}

	if err := s.repo.Insert(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	return s.repo.GetByUsername(ctx, strings.TrimSpace(username))
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Service) List(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error) {
	return s.repo.List(ctx, filters, pagination)
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (User, error) {
	if err := validate.Struct(params); err != nil {
		return User{}, newValidationError(err)
	}
	if params.IsEmpty() {
		return User{}, ValidationError{Fields: map[string]string{"body": "no update fields provided"}}
	}

	return s.repo.Mutate(ctx, id, func(user *User) {
		if params.Username != nil {
			user.Username = strings.TrimSpace(*params.Username)
		}
		if params.Email != nil {
			user.Email = strings.ToLower(strings.TrimSpace(*params.Email))
		}
		if params.FullName != nil {
			user.FullName = strings.TrimSpace(*params.FullName)
		}
		if params.Role != nil {
			user.Role = *params.Role
		}
		if params.IsActive != nil {
			user.IsActive = *params.IsActive
		}
		user.UpdatedAt = time.Now().UTC()
	})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (User, error) {
	return s.repo.Mutate(ctx, id, func(user *User) {
		user.IsActive = active
		user.UpdatedAt = time.Now().UTC()
	})
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Total: len(all),
		Roles: make(map[string]int),
	}
	for _, user := range all {
		if user.IsActive {
			stats.Active++
		}
		stats.Roles[user.Role]++
	}
	stats.Inactive = stats.Total - stats.Active
	return stats, nil
}

// ParsePagination extracts pagination bounds from query values.
func ParsePagination(values url.Values) (Pagination, error) {
	pagination := Pagination{Limit: DefaultLimit}

	if raw := strings.TrimSpace(values.Get("offset")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return pagination, FilterError{Field: "offset", Message: "must be a non-negative number"}
		}
		pagination.Offset = parsed
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return pagination, FilterError{Field: "limit", Message: "must be a number"}
		}
		if parsed < 1 || parsed > MaxLimit {
			return pagination, FilterError{Field: "limit", Message: "must be between 1 and 1000"}
		}
		pagination.Limit = parsed
	}

	return pagination, nil
}
