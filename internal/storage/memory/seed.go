package memory

import (
	"context"
	"fmt"

	"github.com/stencilproject/stencil/internal/domain/items"
	"github.com/stencilproject/stencil/internal/domain/users"
)

// Seed loads demonstration records so a fresh checkout has data to serve.
// Disable with SEED_SAMPLE_DATA=false.
func Seed(ctx context.Context, repo *Repository) error {
	itemsService := items.NewService(repo.Items())
	usersService := users.NewService(repo.Users())

	available := true
	unavailable := false

	sampleItems := []items.CreateParams{
		{
			Name:        "Sample Product 1",
			Description: "This is a sample product for demonstration",
			Price:       29.99,
			Category:    "electronics",
			IsAvailable: &available,
			Tags:        []string{"sample", "demo", "electronics"},
		},
		{
			Name:        "Sample Service 1",
			Description: "This is a sample service for demonstration",
			Price:       99.99,
			Category:    "services",
			IsAvailable: &available,
			Tags:        []string{"sample", "demo", "services"},
		},
		{
			Name:        "Sample Product 2",
			Description: "Another sample product",
			Price:       49.99,
			Category:    "books",
			IsAvailable: &unavailable,
			Tags:        []string{"sample", "demo", "books"},
		},
	}

	sampleUsers := []users.CreateParams{
		{Username: "admin", Email: "admin@example.com", FullName: "Admin User", Role: users.RoleAdmin},
		{Username: "demo_user", Email: "demo@example.com", FullName: "Demo User"},
	}

	for _, params := range sampleItems {
		if _, err := itemsService.Create(ctx, params); err != nil {
			return fmt.Errorf("seed item %q: %w", params.Name, err)
		}
	}
	for _, params := range sampleUsers {
		if _, err := usersService.Create(ctx, params); err != nil {
			return fmt.Errorf("seed user %q: %w", params.Username, err)
		}
	}
	return nil
}
