package items

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// stubItemsRepo is a minimal map-backed repository for service tests.
// The production implementation lives in internal/storage/memory.
type stubItemsRepo struct {
	records map[string]Item
	order   []string
}

func newStubItemsRepo() *stubItemsRepo {
	return &stubItemsRepo{records: make(map[string]Item)}
}

func (s *stubItemsRepo) Insert(_ context.Context, item Item) error {
	if _, ok := s.records[item.ID]; ok {
		return ErrConflict
	}
	s.records[item.ID] = item
	s.order = append(s.order, item.ID)
	return nil
}

func (s *stubItemsRepo) Get(_ context.Context, id string) (Item, error) {
	item, ok := s.records[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	return item, nil
}

func (s *stubItemsRepo) List(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error) {
	all, _ := s.All(ctx)
	matched := make([]Item, 0, len(all))
	for _, item := range all {
		if filters.Category != "" && item.Category != filters.Category {
			continue
		}
		if filters.AvailableOnly && !item.IsAvailable {
			continue
		}
		matched = append(matched, item)
	}
	total := len(matched)
	if pagination.Offset > len(matched) {
		matched = nil
	} else {
		matched = matched[pagination.Offset:]
	}
	if pagination.Limit > 0 && len(matched) > pagination.Limit {
		matched = matched[:pagination.Limit]
	}
	return ListResult{Items: matched, Total: total}, nil
}

func (s *stubItemsRepo) All(_ context.Context) ([]Item, error) {
	out := make([]Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out, nil
}

func (s *stubItemsRepo) Mutate(_ context.Context, id string, fn func(*Item)) (Item, error) {
	item, ok := s.records[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	fn(&item)
	s.records[id] = item
	return item, nil
}

func (s *stubItemsRepo) Delete(_ context.Context, id string) error {
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *stubItemsRepo) Count(_ context.Context) (int, error) {
	return len(s.records), nil
}

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	svc := NewService(newStubItemsRepo())

	item, err := svc.Create(context.Background(), CreateParams{Name: "Laptop", Price: 1200000, Category: "electronics"})
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
	require.Equal(t, "Laptop", item.Name)
	require.Equal(t, float64(1200000), item.Price)
	require.True(t, item.IsAvailable)
	require.False(t, item.CreatedAt.IsZero())
	require.Equal(t, item.CreatedAt, item.UpdatedAt)

	fetched, err := svc.Get(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, item, fetched)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := NewService(newStubItemsRepo())

	_, err := svc.Create(context.Background(), CreateParams{Name: "", Price: 10})
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "name")

	_, err = svc.Create(context.Background(), CreateParams{Name: "Free", Price: 0})
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "price")

	_, err = svc.Create(context.Background(), CreateParams{Name: "Negative", Price: -5})
	require.ErrorAs(t, err, &verr)
}

func TestCreateDefaultsCategory(t *testing.T) {
	svc := NewService(newStubItemsRepo())

	item, err := svc.Create(context.Background(), CreateParams{Name: "Widget", Price: 9.99})
	require.NoError(t, err)
	require.Equal(t, "uncategorized", item.Category)
}

func TestCreateIDsAreUnique(t *testing.T) {
	svc := NewService(newStubItemsRepo())
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		item, err := svc.Create(context.Background(), CreateParams{Name: "Widget", Price: 1})
		require.NoError(t, err)
		require.False(t, seen[item.ID])
		seen[item.ID] = true
	}
}

func TestUpdateMergesPartialFields(t *testing.T) {
	svc := NewService(newStubItemsRepo())
	item, err := svc.Create(context.Background(), CreateParams{Name: "Lamp", Price: 30, Category: "home"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), item.ID, UpdateParams{Price: floatPtr(25), IsAvailable: boolPtr(false)})
	require.NoError(t, err)
	require.Equal(t, "Lamp", updated.Name)
	require.Equal(t, "home", updated.Category)
	require.Equal(t, float64(25), updated.Price)
	require.False(t, updated.IsAvailable)
	require.False(t, updated.UpdatedAt.Before(item.UpdatedAt))
}

func TestUpdateMissingItem(t *testing.T) {
	repo := newStubItemsRepo()
	svc := NewService(repo)

	_, err := svc.Update(context.Background(), "01J0KXMQZ8RPXJPN8J9Q6TK0WP", UpdateParams{Name: strPtr("Ghost")})
	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, repo.records)
}

func TestUpdateRejectsEmptyParams(t *testing.T) {
	svc := NewService(newStubItemsRepo())
	item, err := svc.Create(context.Background(), CreateParams{Name: "Lamp", Price: 30})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), item.ID, UpdateParams{})
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDeleteThenGet(t *testing.T) {
	svc := NewService(newStubItemsRepo())
	item, err := svc.Create(context.Background(), CreateParams{Name: "Lamp", Price: 30})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), item.ID))
	_, err = svc.Get(context.Background(), item.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, svc.Delete(context.Background(), item.ID), ErrNotFound)
}

func TestSearchFields(t *testing.T) {
	svc := NewService(newStubItemsRepo())
	_, err := svc.Create(context.Background(), CreateParams{Name: "Standing Desk", Price: 400, Category: "furniture", Description: "Adjustable height"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateParams{Name: "Desk Lamp", Price: 35, Category: "lighting"})
	require.NoError(t, err)

	byName, err := svc.Search(context.Background(), "desk", SearchByName)
	require.NoError(t, err)
	require.Len(t, byName, 2)

	byCategory, err := svc.Search(context.Background(), "furn", SearchByCategory)
	require.NoError(t, err)
	require.Len(t, byCategory, 1)

	byDescription, err := svc.Search(context.Background(), "adjustable", SearchByDescription)
	require.NoError(t, err)
	require.Len(t, byDescription, 1)

	_, err = svc.Search(context.Background(), "desk", SearchField("tags"))
	var ferr FilterError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, "search_field", ferr.Field)
}

func TestStats(t *testing.T) {
	svc := NewService(newStubItemsRepo())
	_, err := svc.Create(context.Background(), CreateParams{Name: "A", Price: 10, Category: "books"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateParams{Name: "B", Price: 30, Category: "books", IsAvailable: boolPtr(false)})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateParams{Name: "C", Price: 20, Category: "games"})
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, stats.Total)
	require.Equal(t, 2, stats.Available)
	require.Equal(t, 1, stats.Unavailable)
	require.Equal(t, map[string]int{"books": 2, "games": 1}, stats.Categories)
	require.Equal(t, float64(60), stats.Pricing.TotalValue)
	require.Equal(t, float64(20), stats.Pricing.AveragePrice)
	require.Equal(t, float64(10), stats.Pricing.MinPrice)
	require.Equal(t, float64(30), stats.Pricing.MaxPrice)
}

func TestParseFilters(t *testing.T) {
	values := map[string][]string{
		"category":       {"electronics"},
		"available_only": {"true"},
		"offset":         {"5"},
		"limit":          {"50"},
	}
	filters, pagination, err := ParseFilters(values)
	require.NoError(t, err)
	require.Equal(t, "electronics", filters.Category)
	require.True(t, filters.AvailableOnly)
	require.Equal(t, 5, pagination.Offset)
	require.Equal(t, 50, pagination.Limit)

	_, _, err = ParseFilters(map[string][]string{"limit": {"0"}})
	require.Error(t, err)
	_, _, err = ParseFilters(map[string][]string{"limit": {"1001"}})
	require.Error(t, err)
	_, _, err = ParseFilters(map[string][]string{"offset": {"-1"}})
	require.Error(t, err)
	_, _, err = ParseFilters(map[string][]string{"available_only": {"maybe"}})
	require.Error(t, err)
}
