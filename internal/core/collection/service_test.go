package collection

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/eventstock/eventstock/internal/core/pricing"
	"github.com/eventstock/eventstock/internal/core/query"
	"github.com/eventstock/eventstock/internal/core/validation"
	"github.com/eventstock/eventstock/internal/core/view"
	"github.com/eventstock/eventstock/internal/storage"
)

// MockStore implements storage.Store in memory for testing
type MockStore struct {
	mu      sync.Mutex
	data    map[string][]query.Record
	loadErr error
	saveErr error
	loads   int
	saves   int
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string][]query.Record)}
}

func (m *MockStore) Load(ctx context.Context, name string) ([]query.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	records, ok := m.data[name]
	if !ok {
		return nil, storage.ErrCollectionNotFound
	}
	return records, nil
}

func (m *MockStore) Save(ctx context.Context, name string, records []query.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[name] = records
	return nil
}

func newTestService(store storage.Store) *Service {
	views := view.NewRegistry(language.Polish, view.Builtin()...)
	return NewService(store, views, validation.NewValidator(), nil)
}

func seededStore() *MockStore {
	store := NewMockStore()
	store.data[view.Flowers] = []query.Record{
		{"id": float64(1), "nazwa": "Róża", "cena": float64(10)},
		{"id": float64(2), "nazwa": "Tulipan", "cena": float64(5)},
		{"id": float64(3), "nazwa": "Stokrotka", "cena": float64(5)},
	}
	return store
}

func names(records []query.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = query.Format(r["nazwa"])
	}
	return out
}

func TestList_SortsThroughViewEngine(t *testing.T) {
	svc := newTestService(seededStore())

	resp, err := svc.List(context.Background(), view.Flowers,
		query.Query{SortKey: "cena", Direction: query.Ascending}, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"Tulipan", "Stokrotka", "Róża"}, names(resp.Records))
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, DefaultLimit, resp.Limit)
}

func TestList_UnknownCollection(t *testing.T) {
	svc := newTestService(NewMockStore())

	_, err := svc.List(context.Background(), "kwiatki", query.Query{}, 0, 0)
	assert.ErrorIs(t, err, view.ErrUnknownCollection)
}

func TestLoadFailureServesEmpty(t *testing.T) {
	store := seededStore()
	store.loadErr = errors.New("connection refused")
	svc := newTestService(store)

	resp, err := svc.List(context.Background(), view.Flowers, query.Query{}, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, resp.Records)

	store.loadErr = nil
	n, err := svc.Reload(context.Background(), view.Flowers)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestLoadsOnce(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.All(ctx, view.Flowers)
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, view.Flowers, query.Record{"nazwa": "Mak"})
	require.NoError(t, err)

	assert.Equal(t, 1, store.loads)
}

func TestCreate_AssignsNextID(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)

	res, err := svc.Create(context.Background(), view.Flowers, query.Record{"nazwa": "Mak"})
	require.NoError(t, err)

	assert.True(t, res.Persisted)
	assert.Equal(t, float64(4), res.Record["id"])
	assert.Len(t, store.data[view.Flowers], 4)
}

func TestCreate_RejectsDuplicateAndInvalid(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, view.Flowers, query.Record{"id": "2", "nazwa": "Mak"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = svc.Create(ctx, view.Flowers, query.Record{"kolor": "czerwony"})
	assert.True(t, validation.IsValidationError(err))

	assert.Equal(t, 0, store.saves, "rejected mutations must not save")
}

func TestSaveFailureKeepsMemory(t *testing.T) {
	store := seededStore()
	store.saveErr = errors.New("disk full")
	svc := newTestService(store)
	ctx := context.Background()

	res, err := svc.Create(ctx, view.Flowers, query.Record{"nazwa": "Mak"})
	require.NoError(t, err)
	assert.False(t, res.Persisted)

	got, err := svc.Get(ctx, view.Flowers, "4")
	require.NoError(t, err)
	assert.Equal(t, "Mak", got["nazwa"])
}

func TestUpdate_MergesAndKeepsID(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)
	ctx := context.Background()

	before, err := svc.All(ctx, view.Flowers)
	require.NoError(t, err)

	res, err := svc.Update(ctx, view.Flowers, "2", query.Record{"id": float64(99), "kolor": "żółty"})
	require.NoError(t, err)

	assert.Equal(t, float64(2), res.Record["id"])
	assert.Equal(t, "Tulipan", res.Record["nazwa"])
	assert.Equal(t, "żółty", res.Record["kolor"])
	assert.NotContains(t, before[1], "kolor", "earlier snapshots are not mutated")

	_, err = svc.Update(ctx, view.Flowers, "2", query.Record{"cena": "tanio"})
	assert.True(t, validation.IsValidationError(err))

	_, err = svc.Update(ctx, view.Flowers, "42", query.Record{"kolor": "biały"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModify_RejectsIDChange(t *testing.T) {
	svc := newTestService(seededStore())

	_, err := svc.Modify(context.Background(), view.Flowers, "1", func(r query.Record) (query.Record, error) {
		r["id"] = "inne"
		return r, nil
	})
	assert.ErrorIs(t, err, ErrImmutableID)
}

func TestDelete(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)
	ctx := context.Background()

	res, err := svc.Delete(ctx, view.Flowers, "1")
	require.NoError(t, err)
	assert.Equal(t, "Róża", res.Record["nazwa"])
	assert.Equal(t, []string{"Tulipan", "Stokrotka"}, names(store.data[view.Flowers]))

	_, err = svc.Delete(ctx, view.Flowers, "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplace(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)
	ctx := context.Background()

	res, err := svc.Replace(ctx, view.Flowers, []query.Record{
		{"id": float64(7), "nazwa": "Lilia"},
		{"nazwa": "Mak"},
	})
	require.NoError(t, err)
	assert.True(t, res.Persisted)
	assert.Equal(t, float64(8), res.Records[1]["id"])

	_, err = svc.Replace(ctx, view.Flowers, []query.Record{
		{"id": float64(1), "nazwa": "A"},
		{"id": "1", "nazwa": "B"},
	})
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = svc.Replace(ctx, view.Flowers, []query.Record{{"cena": float64(1)}})
	assert.True(t, validation.IsValidationError(err))

	all, err := svc.All(ctx, view.Flowers)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lilia", "Mak"}, names(all))
}

func TestMissingCollectionStartsEmpty(t *testing.T) {
	svc := newTestService(NewMockStore())

	all, err := svc.All(context.Background(), view.Suppliers)
	require.NoError(t, err)
	assert.Empty(t, all)

	res, err := svc.Create(context.Background(), view.Suppliers, query.Record{"nazwa": "Holland Flowers"})
	require.NoError(t, err)
	assert.Equal(t, float64(1), res.Record["id"])
}

func TestConcurrentCreates(t *testing.T) {
	store := NewMockStore()
	svc := newTestService(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, view.Suppliers, query.Record{"nazwa": "Dostawca"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := svc.All(ctx, view.Suppliers)
	require.NoError(t, err)
	assert.Len(t, all, 20)

	ids := make(map[string]bool)
	for _, r := range all {
		ids[r.ID()] = true
	}
	assert.Len(t, ids, 20)
}

func TestCreate_CountsNumericTextIDs(t *testing.T) {
	store := NewMockStore()
	store.data[view.Suppliers] = []query.Record{
		{"id": "1", "nazwa": "Hurtownia"},
		{"id": " 7 ", "nazwa": "Ogrodnik"},
		{"id": "dst-a", "nazwa": "Import"},
	}
	svc := newTestService(store)

	res, err := svc.Create(context.Background(), view.Suppliers, query.Record{"nazwa": "Giełda"})
	require.NoError(t, err)
	assert.Equal(t, float64(8), res.Record["id"])
}

func TestCreateWith_SeesCurrentRecords(t *testing.T) {
	store := seededStore()
	svc := newTestService(store)

	res, err := svc.CreateWith(context.Background(), view.Flowers, func(existing []query.Record) (query.Record, error) {
		return query.Record{"nazwa": names(existing)[0] + " bis"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Róża bis", res.Record["nazwa"])

	_, err = svc.CreateWith(context.Background(), view.Flowers, func([]query.Record) (query.Record, error) {
		return nil, errors.New("no number left")
	})
	assert.EqualError(t, err, "no number left")
	assert.Equal(t, 1, store.saves)
}

func TestUpdate_ReportsOnlyPatchedFields(t *testing.T) {
	store := seededStore()
	// A stored record that already breaks the schema.
	store.data[view.Flowers] = append(store.data[view.Flowers], query.Record{"id": float64(4), "nazwa": "Mak", "cena": "stara"})
	svc := newTestService(store)

	_, err := svc.Update(context.Background(), view.Flowers, "4", query.Record{"kolor": float64(5)})
	require.True(t, validation.IsValidationError(err))
	details := validation.GetValidationErrors(err)
	require.Len(t, details.Errors, 1)
	assert.Equal(t, "kolor", details.Errors[0].Field)
}

func TestOrderRecordsFollowPricingRules(t *testing.T) {
	store := NewMockStore()
	store.data[view.Orders] = []query.Record{
		{"id": "o1", "orderNumber": "ZAM/1", "status": "new", "lineItems": []any{}},
	}
	svc := newTestService(store)
	ctx := context.Background()

	tier := func(from, to float64, qty int) map[string]any {
		return map[string]any{"priceFrom": from, "priceTo": to, "quantity": float64(qty)}
	}
	item := func(ref any, tiers ...any) map[string]any {
		if tiers == nil {
			tiers = []any{}
		}
		return map[string]any{"productRef": ref, "tiers": tiers}
	}

	tests := []struct {
		name  string
		items []any
		err   error
	}{
		{"inverted tier", []any{item(float64(1), tier(10, 5, 3))}, pricing.ErrInvertedRange},
		{"duplicate product", []any{item(float64(1)), item("1")}, pricing.ErrDuplicateLineItem},
		{"unreadable product", []any{item(map[string]any{"x": float64(1)})}, pricing.ErrMalformedOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, view.Orders, "o1", query.Record{"lineItems": tt.items})
			assert.ErrorIs(t, err, tt.err)

			_, err = svc.Create(ctx, view.Orders, query.Record{"orderNumber": "ZAM/2", "status": "new", "lineItems": tt.items})
			assert.ErrorIs(t, err, tt.err)

			_, err = svc.Replace(ctx, view.Orders, []query.Record{{"id": "o9", "orderNumber": "ZAM/9", "status": "new", "lineItems": tt.items}})
			assert.ErrorIs(t, err, tt.err)
		})
	}
	assert.Equal(t, 0, store.saves)

	res, err := svc.Update(ctx, view.Orders, "o1", query.Record{"lineItems": []any{item(float64(1), tier(5, 10, 3)), item(float64(2))}})
	require.NoError(t, err)
	assert.True(t, res.Persisted)
}
