package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/eventstock/eventstock/internal/core/collection"
	"github.com/eventstock/eventstock/internal/core/pricing"
	"github.com/eventstock/eventstock/internal/core/query"
	"github.com/eventstock/eventstock/internal/core/validation"
	"github.com/eventstock/eventstock/internal/core/view"
	"github.com/eventstock/eventstock/internal/storage"
)

type memStore map[string][]query.Record

func (m memStore) Load(ctx context.Context, name string) ([]query.Record, error) {
	records, ok := m[name]
	if !ok {
		return nil, storage.ErrCollectionNotFound
	}
	return records, nil
}

func (m memStore) Save(ctx context.Context, name string, records []query.Record) error {
	m[name] = records
	return nil
}

func newTestService(t *testing.T) (*Service, memStore) {
	t.Helper()
	store := memStore{
		view.Flowers: {
			{"id": float64(1), "nazwa": "Róża", "odmiana": "Avalanche", "kolor": "biały", "wysokosc": float64(60)},
			{"id": float64(2), "nazwa": "Tulipan", "kolor": "żółty"},
		},
		view.Orders: {
			{"id": float64(7), "orderNumber": "ZAM/2023/014", "status": "completed", "legacy": "keep me"},
		},
	}
	views := view.NewRegistry(language.Polish, view.Builtin()...)
	collections := collection.NewService(store, views, validation.NewValidator(), nil)

	svc := NewService(collections)
	svc.now = func() time.Time { return time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestCreate_Defaults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, &CreateOrderRequest{Supplier: "Hurtownia Kwiat"})
	require.NoError(t, err)

	o := res.Order
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "ZAM/2024/001", o.OrderNumber)
	assert.Equal(t, pricing.StatusNew, o.Status)
	assert.Equal(t, "2024-05-20", o.CreatedDate)
	assert.Empty(t, o.LineItems)
	assert.True(t, res.Persisted)

	second, err := svc.Create(ctx, &CreateOrderRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ZAM/2024/002", second.Order.OrderNumber)
}

func TestCreate_UnknownStatus(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), &CreateOrderRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, pricing.ErrUnknownStatus)
}

func TestLineItemsAndTiers(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, &CreateOrderRequest{OrderNumber: "ZAM/X"})
	require.NoError(t, err)
	id := res.Order.ID

	_, err = svc.AddLineItem(ctx, id, "1")
	require.NoError(t, err)
	_, err = svc.AddLineItem(ctx, id, "1")
	assert.ErrorIs(t, err, pricing.ErrDuplicateLineItem)

	_, err = svc.AddTier(ctx, id, 0, pricing.NewPriceTier(5, 10, 3))
	require.NoError(t, err)
	_, err = svc.AddTier(ctx, id, 0, pricing.NewPriceTier(10, 5, 1))
	assert.ErrorIs(t, err, pricing.ErrInvalidTier)
	_, err = svc.AddTier(ctx, id, 3, pricing.NewPriceTier(1, 2, 1))
	assert.ErrorIs(t, err, pricing.ErrIndexOutOfRange)

	res, err = svc.ReplaceTier(ctx, id, 0, 0, pricing.NewPriceTier(6, 10, 4))
	require.NoError(t, err)
	require.Len(t, res.Order.LineItems[0].Tiers, 1)
	assert.Equal(t, "6 - 10 / 4", res.Order.LineItems[0].Tiers[0].String())

	stored, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, res.Order, stored)
	assert.Len(t, store[view.Orders], 2)

	res, err = svc.RemoveTier(ctx, id, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Order.LineItems[0].Tiers)

	res, err = svc.RemoveLineItem(ctx, id, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Order.LineItems)
}

func TestUpdateDetails_PreservesUnknownFields(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	notes := "Odbiór osobisty"
	status := "in_progress"
	res, err := svc.UpdateDetails(ctx, "7", &UpdateOrderRequest{Notes: &notes, Status: &status})
	require.NoError(t, err)

	assert.Equal(t, pricing.StatusInProgress, res.Order.Status)
	assert.Equal(t, "7", res.Order.ID)

	raw := store[view.Orders][0]
	assert.Equal(t, "keep me", raw["legacy"])
	assert.Equal(t, float64(7), raw["id"], "numeric ids stay numeric")
	assert.Equal(t, "Odbiór osobisty", raw["notes"])

	bad := "archived"
	_, err = svc.UpdateDetails(ctx, "7", &UpdateOrderRequest{Status: &bad})
	assert.ErrorIs(t, err, pricing.ErrUnknownStatus)
}

func TestExport_ResolvesCatalog(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, &CreateOrderRequest{OrderNumber: "ZAM/E"})
	require.NoError(t, err)
	id := res.Order.ID

	for _, ref := range []pricing.ProductRef{"1", "404"} {
		_, err := svc.AddLineItem(ctx, id, ref)
		require.NoError(t, err)
	}
	_, err = svc.AddTier(ctx, id, 1, pricing.NewPriceTier(1, 2, 4))
	require.NoError(t, err)

	payload, err := svc.Export(ctx, id)
	require.NoError(t, err)

	require.Len(t, payload.Rows, 2)
	assert.Equal(t, "Róża", payload.Rows[0].Name)
	assert.Equal(t, "60", payload.Rows[0].Height)
	assert.False(t, payload.Rows[1].Resolved)
	assert.Equal(t, pricing.Placeholder, payload.Rows[1].Name)
	assert.Equal(t, []string{"1 - 2 / 4"}, payload.Rows[1].Tiers)
	assert.Equal(t, 4, payload.TotalQuantity)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, collection.ErrNotFound)
}

func TestCreate_ConcurrentNumbersAreUnique(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = map[string]bool{}
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Create(ctx, &CreateOrderRequest{})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			numbers[res.Order.OrderNumber] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, numbers, 10)
	assert.True(t, numbers["ZAM/2024/010"])
}

func TestNextOrderNumber(t *testing.T) {
	records := []query.Record{
		{"orderNumber": "ZAM/2024/004"},
		{"orderNumber": "ZAM/2023/120"},
		{"orderNumber": "inny"},
	}
	assert.Equal(t, "ZAM/2024/005", nextOrderNumber(records, 2024))
	assert.Equal(t, "ZAM/2025/001", nextOrderNumber(records, 2025))
}

func TestGet_MalformedStoredOrder(t *testing.T) {
	svc, store := newTestService(t)
	store[view.Orders] = append(store[view.Orders], query.Record{
		"id": "bad", "orderNumber": "ZAM/B", "status": "new",
		"lineItems": []any{map[string]any{"productRef": map[string]any{"x": float64(1)}}},
	})

	_, err := svc.Get(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrMalformedOrder)
}
