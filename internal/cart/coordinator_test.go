package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/greenline-goods/storefront/internal/sanity"
	"github.com/greenline-goods/storefront/internal/shopify"
	"github.com/greenline-goods/storefront/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCartService struct {
	mu sync.Mutex

	createCalls int
	fetchCalls  int
	addCalls    int

	created   *shopify.Cart
	fetched   *shopify.Cart
	fetchErr  error
	addResult *shopify.Cart
	addErr    error
	updated   *shopify.Cart
	removed   *shopify.Cart

	lastAdd    []shopify.LineInput
	lastUpdate []shopify.LineUpdate
	lastRemove []string
}

func (f *fakeCartService) CreateCart(_ context.Context) (*shopify.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.created == nil {
		return nil, errors.New("no cart configured")
	}
	return f.created, nil
}

func (f *fakeCartService) FetchCart(_ context.Context, _ string) (*shopify.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	return f.fetched, f.fetchErr
}

func (f *fakeCartService) AddLines(_ context.Context, _ string, lines []shopify.LineInput) (*shopify.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	f.lastAdd = lines
	return f.addResult, f.addErr
}

func (f *fakeCartService) UpdateLines(_ context.Context, _ string, lines []shopify.LineUpdate) (*shopify.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpdate = lines
	return f.updated, nil
}

func (f *fakeCartService) RemoveLines(_ context.Context, _ string, lineIDs []string) (*shopify.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastRemove = lineIDs
	return f.removed, nil
}

type fakeCatalog struct {
	variants map[int64]*sanity.Variant
}

func (f *fakeCatalog) Variant(_ context.Context, id int64) (*sanity.Variant, error) {
	return f.variants[id], nil
}

func catalogVariant(id int64, title string, priceCents int64) *sanity.Variant {
	v := &sanity.Variant{ID: id, Title: title, PriceCents: priceCents}
	v.Product.Title = gofakeit.ProductName()
	v.Product.Slug = gofakeit.Word()
	return v
}

func emptyCart(id string) *shopify.Cart {
	cart := &shopify.Cart{ID: id, CheckoutURL: "https://checkout.example/" + id}
	cart.EstimatedCost.SubtotalAmount = shopify.Money{Amount: "0.0", CurrencyCode: "USD"}
	return cart
}

func cartWithLine(id, lineID string, variantID int64, quantity int, subtotal string) *shopify.Cart {
	cart := emptyCart(id)
	cart.EstimatedCost.SubtotalAmount = shopify.Money{Amount: subtotal, CurrencyCode: "USD"}
	cart.Lines.Edges = []shopify.LineEdge{{
		Node: shopify.Line{
			ID:       lineID,
			Quantity: quantity,
			Merchandise: shopify.Merchandise{
				ID: shopify.EncodeVariantGID(variantID),
			},
		},
	}}
	return cart
}

func newTestCoordinator(svc CartService, catalog Catalog, kv storage.KV) *Coordinator {
	return NewCoordinator(svc, catalog, kv, "shopper-1", nil)
}

func TestInitCreatesCartWhenNoneStored(t *testing.T) {
	svc := &fakeCartService{created: emptyCart("cart-new")}
	kv := storage.NewMemory()
	coord := newTestCoordinator(svc, &fakeCatalog{}, kv)

	require.NoError(t, coord.Init(context.Background()))

	snapshot := coord.Snapshot()
	assert.Equal(t, "cart-new", snapshot.CartID)
	assert.False(t, snapshot.IsLoading)
	assert.Equal(t, 1, svc.createCalls)
	assert.Equal(t, 0, svc.fetchCalls)

	stored, err := kv.Get(context.Background(), "shopper-1", storage.CartIDKey)
	require.NoError(t, err)
	assert.Equal(t, "cart-new", stored)
}

func TestInitResumesStoredCart(t *testing.T) {
	catalog := &fakeCatalog{variants: map[int64]*sanity.Variant{
		10: catalogVariant(10, "Standard", 2500),
	}}
	svc := &fakeCartService{fetched: cartWithLine("cart-old", "line-1", 10, 2, "50.0")}
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(context.Background(), "shopper-1", storage.CartIDKey, "cart-old"))

	coord := newTestCoordinator(svc, catalog, kv)
	require.NoError(t, coord.Init(context.Background()))

	snapshot := coord.Snapshot()
	assert.Equal(t, "cart-old", snapshot.CartID)
	assert.Equal(t, int64(5000), snapshot.SubtotalCents)
	assert.Equal(t, 2, snapshot.Count())
	assert.Equal(t, 0, svc.createCalls)
}

func TestInitRunsOnce(t *testing.T) {
	svc := &fakeCartService{created: emptyCart("cart-new")}
	coord := newTestCoordinator(svc, &fakeCatalog{}, storage.NewMemory())

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = coord.Init(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, svc.createCalls)
}

func TestInitDiscardsCompletedCart(t *testing.T) {
	completed := emptyCart("cart-done")
	completedAt := time.Now().Add(-time.Hour)
	completed.CompletedAt = &completedAt

	svc := &fakeCartService{fetched: completed, created: emptyCart("cart-new")}
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(context.Background(), "shopper-1", storage.CartIDKey, "cart-done"))

	coord := newTestCoordinator(svc, &fakeCatalog{}, kv)
	require.NoError(t, coord.Init(context.Background()))

	assert.Equal(t, "cart-new", coord.Snapshot().CartID)
	assert.Equal(t, 1, svc.createCalls)

	stored, err := kv.Get(context.Background(), "shopper-1", storage.CartIDKey)
	require.NoError(t, err)
	assert.Equal(t, "cart-new", stored)
}

func TestInitDiscardsGoneCart(t *testing.T) {
	svc := &fakeCartService{fetched: nil, created: emptyCart("cart-new")}
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(context.Background(), "shopper-1", storage.CartIDKey, "cart-gone"))

	coord := newTestCoordinator(svc, &fakeCatalog{}, kv)
	require.NoError(t, coord.Init(context.Background()))

	assert.Equal(t, "cart-new", coord.Snapshot().CartID)
	assert.Equal(t, 1, svc.fetchCalls)
	assert.Equal(t, 1, svc.createCalls)
}

func TestInitRetriesAfterFailure(t *testing.T) {
	svc := &fakeCartService{}
	coord := newTestCoordinator(svc, &fakeCatalog{}, storage.NewMemory())

	// A failed attempt must not poison the coordinator for its lifetime.
	require.Error(t, coord.Init(context.Background()))
	require.Error(t, coord.Init(context.Background()))
	assert.Equal(t, 2, svc.createCalls)

	svc.created = emptyCart("cart-new")
	require.NoError(t, coord.Init(context.Background()))
	assert.Equal(t, "cart-new", coord.Snapshot().CartID)

	// Success latches; no further creates.
	require.NoError(t, coord.Init(context.Background()))
	assert.Equal(t, 3, svc.createCalls)
}

func TestInitDiscardsCartWithEmptyMerchandise(t *testing.T) {
	damaged := emptyCart("cart-damaged")
	damaged.Lines.Edges = []shopify.LineEdge{{Node: shopify.Line{ID: "line-1", Quantity: 1}}}

	svc := &fakeCartService{fetched: damaged, created: emptyCart("cart-new")}
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(context.Background(), "shopper-1", storage.CartIDKey, "cart-damaged"))

	coord := newTestCoordinator(svc, &fakeCatalog{}, kv)
	require.NoError(t, coord.Init(context.Background()))

	assert.Equal(t, "cart-new", coord.Snapshot().CartID)
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	svc := &fakeCartService{created: emptyCart("cart-new")}
	coord := newTestCoordinator(svc, &fakeCatalog{}, storage.NewMemory())

	tests := []struct {
		name  string
		input AddInput
	}{
		{"zero variant", AddInput{VariantID: 0, Quantity: 1}},
		{"zero quantity", AddInput{VariantID: 10, Quantity: 0}},
		{"negative quantity", AddInput{VariantID: 10, Quantity: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := coord.AddItem(context.Background(), tt.input)
			assert.True(t, errors.Is(err, ErrInvalidArgument))
		})
	}

	// Rejected input never reaches the remote service.
	assert.Equal(t, 0, svc.addCalls)
	assert.Equal(t, 0, svc.createCalls)
}

func TestAddItemReplacesSession(t *testing.T) {
	catalog := &fakeCatalog{variants: map[int64]*sanity.Variant{
		10: catalogVariant(10, "Standard", 2500),
	}}
	svc := &fakeCartService{
		created:   emptyCart("cart-1"),
		addResult: cartWithLine("cart-1", "line-1", 10, 2, "50.0"),
	}
	coord := newTestCoordinator(svc, catalog, storage.NewMemory())

	require.NoError(t, coord.AddItem(context.Background(), AddInput{VariantID: 10, Quantity: 2}))

	snapshot := coord.Snapshot()
	require.Len(t, snapshot.LineItems, 1)
	line := snapshot.LineItems[0]
	assert.Equal(t, "line-1", line.LineID)
	assert.Equal(t, int64(10), line.VariantID)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, int64(2500), line.UnitPriceCents)
	assert.Equal(t, int64(5000), snapshot.SubtotalCents)
	assert.False(t, snapshot.IsAdding)
	assert.False(t, snapshot.IsLoading)

	require.Len(t, svc.lastAdd, 1)
	assert.Equal(t, shopify.EncodeVariantGID(10), svc.lastAdd[0].MerchandiseID)
	assert.Empty(t, svc.lastAdd[0].SellingPlanID)
}

func TestAddItemSubscription(t *testing.T) {
	catalog := &fakeCatalog{variants: map[int64]*sanity.Variant{
		10: catalogVariant(10, "Standard", 2500),
	}}
	svc := &fakeCartService{
		created:   emptyCart("cart-1"),
		addResult: cartWithLine("cart-1", "line-1", 10, 1, "25.0"),
	}
	coord := newTestCoordinator(svc, catalog, storage.NewMemory())

	require.NoError(t, coord.AddItem(context.Background(), AddInput{
		VariantID:     10,
		Quantity:      1,
		Subscribe:     true,
		SellingPlanID: 4242,
	}))

	require.Len(t, svc.lastAdd, 1)
	assert.Equal(t, shopify.EncodeSellingPlanGID(4242), svc.lastAdd[0].SellingPlanID)
}

func TestAddItemWithoutSubscribeIgnoresPlan(t *testing.T) {
	catalog := &fakeCatalog{variants: map[int64]*sanity.Variant{
		10: catalogVariant(10, "Standard", 2500),
	}}
	svc := &fakeCartService{
		created:   emptyCart("cart-1"),
		addResult: cartWithLine("cart-1", "line-1", 10, 1, "25.0"),
	}
	coord := newTestCoordinator(svc, catalog, storage.NewMemory())

	require.NoError(t, coord.AddItem(context.Background(), AddInput{
		VariantID:     10,
		Quantity:      1,
		SellingPlanID: 4242,
	}))

	assert.Empty(t, svc.lastAdd[0].SellingPlanID)
}

func TestAddItemUserErrorClearsFlags(t *testing.T) {
	svc := &fakeCartService{
		created: emptyCart("cart-1"),
		addErr:  shopify.UserErrors{{Code: "INVALID", Message: "sold out"}},
	}
	coord := newTestCoordinator(svc, &fakeCatalog{}, storage.NewMemory())

	err := coord.AddItem(context.Background(), AddInput{VariantID: 10, Quantity: 1})
	require.Error(t, err)

	var userErrs shopify.UserErrors
	assert.True(t, errors.As(err, &userErrs))

	snapshot := coord.Snapshot()
	assert.False(t, snapshot.IsAdding, "failed mutation must not leave the flag stuck")
	assert.Empty(t, snapshot.LineItems, "failed mutation must not change the session")
}

func TestUpdateItemRejectsInvalidInput(t *testing.T) {
	coord := newTestCoordinator(&fakeCartService{}, &fakeCatalog{}, storage.NewMemory())

	assert.True(t, errors.Is(coord.UpdateItem(context.Background(), "", 1), ErrInvalidArgument))
	assert.True(t, errors.Is(coord.UpdateItem(context.Background(), "line-1", 0), ErrInvalidArgument))
}

func TestUpdateItemReplacesSession(t *testing.T) {
	catalog := &fakeCatalog{variants: map[int64]*sanity.Variant{
		10: catalogVariant(10, "Standard", 2500),
	}}
	svc := &fakeCartService{
		created: emptyCart("cart-1"),
		updated: cartWithLine("cart-1", "line-1", 10, 5, "125.0"),
	}
	coord := newTestCoordinator(svc, catalog, storage.NewMemory())

	require.NoError(t, coord.UpdateItem(context.Background(), "line-1", 5))

	snapshot := coord.Snapshot()
	assert.Equal(t, 5, snapshot.Count())
	assert.Equal(t, int64(12500), snapshot.SubtotalCents)
	require.Len(t, svc.lastUpdate, 1)
	assert.Equal(t, 5, svc.lastUpdate[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	svc := &fakeCartService{
		created: emptyCart("cart-1"),
		removed: emptyCart("cart-1"),
	}
	coord := newTestCoordinator(svc, &fakeCatalog{}, storage.NewMemory())

	require.NoError(t, coord.RemoveItem(context.Background(), LineItem{LineID: "line-1"}))
	assert.Equal(t, []string{"line-1"}, svc.lastRemove)
	assert.Empty(t, coord.Snapshot().LineItems)

	err := coord.RemoveItem(context.Background(), LineItem{})
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestReconcileUnknownVariantFailsPublish(t *testing.T) {
	svc := &fakeCartService{
		created:   emptyCart("cart-1"),
		addResult: cartWithLine("cart-1", "line-1", 999, 1, "25.0"),
	}
	coord := newTestCoordinator(svc, &fakeCatalog{}, storage.NewMemory())

	err := coord.AddItem(context.Background(), AddInput{VariantID: 999, Quantity: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVariantNotInCatalog))

	// The torn cart never becomes visible.
	assert.Empty(t, coord.Snapshot().LineItems)
}

func TestReconcileSellingPlanPriceOverride(t *testing.T) {
	catalog := &fakeCatalog{variants: map[int64]*sanity.Variant{
		10: catalogVariant(10, "Standard", 2500),
	}}

	remote := cartWithLine("cart-1", "line-1", 10, 1, "21.25")
	remote.Lines.Edges[0].Node.SellingPlanAllocation = &shopify.SellingPlanAllocation{
		SellingPlan: shopify.SellingPlan{
			ID:   shopify.EncodeSellingPlanGID(4242),
			Name: "Subscribe & Save",
		},
		PriceAdjustments: []shopify.PriceAdjustment{
			{Price: shopify.Money{Amount: "21.25", CurrencyCode: "USD"}},
		},
	}

	svc := &fakeCartService{created: emptyCart("cart-1"), addResult: remote}
	coord := newTestCoordinator(svc, catalog, storage.NewMemory())

	require.NoError(t, coord.AddItem(context.Background(), AddInput{VariantID: 10, Quantity: 1}))

	line := coord.Snapshot().LineItems[0]
	require.NotNil(t, line.SellingPlan)
	assert.Equal(t, int64(4242), line.SellingPlan.ID)
	assert.Equal(t, "Subscribe & Save", line.SellingPlan.Name)
	assert.Equal(t, int64(2125), line.UnitPriceCents, "plan price overrides the catalog price")
}

func TestReconcileSiblingVariants(t *testing.T) {
	catalog := &fakeCatalog{variants: map[int64]*sanity.Variant{
		10: catalogVariant(10, "Standard", 2500),
	}}

	remote := cartWithLine("cart-1", "line-1", 10, 1, "25.0")
	remote.Lines.Edges[0].Node.Merchandise.Product.Variants.Edges = []shopify.VariantEdge{
		{Node: shopify.VariantNode{ID: shopify.EncodeVariantGID(10), Title: "Standard", SKU: "WG-STD"}},
		{Node: shopify.VariantNode{ID: shopify.EncodeVariantGID(11), Title: "Large", SKU: "WG-LRG"}},
	}

	svc := &fakeCartService{created: emptyCart("cart-1"), addResult: remote}
	coord := newTestCoordinator(svc, catalog, storage.NewMemory())

	require.NoError(t, coord.AddItem(context.Background(), AddInput{VariantID: 10, Quantity: 1}))

	siblings := coord.Snapshot().LineItems[0].Product.Siblings
	require.Len(t, siblings, 2)
	assert.Equal(t, int64(11), siblings[1].ID)
	assert.Equal(t, "WG-LRG", siblings[1].SKU)
}

type opLog struct {
	mu     sync.Mutex
	events []string
}

func (l *opLog) add(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *opLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

func (l *opLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// slowCartService holds each remote mutation open long enough for an
// unserialized second call to overlap.
type slowCartService struct {
	*fakeCartService
	log *opLog
}

func (s *slowCartService) AddLines(ctx context.Context, cartID string, lines []shopify.LineInput) (*shopify.Cart, error) {
	s.log.add("remote")
	time.Sleep(20 * time.Millisecond)
	return s.fakeCartService.AddLines(ctx, cartID, lines)
}

// loggingKV marks each cart-id persist, the last step before the session
// swap inside a publish.
type loggingKV struct {
	inner storage.KV
	log   *opLog
}

func (k *loggingKV) Get(ctx context.Context, shopperID, key string) (string, error) {
	return k.inner.Get(ctx, shopperID, key)
}

func (k *loggingKV) Set(ctx context.Context, shopperID, key, value string) error {
	if key == storage.CartIDKey {
		k.log.add("publish")
	}
	return k.inner.Set(ctx, shopperID, key, value)
}

func (k *loggingKV) Delete(ctx context.Context, shopperID, key string) error {
	return k.inner.Delete(ctx, shopperID, key)
}

func TestConcurrentMutationsDoNotInterleave(t *testing.T) {
	log := &opLog{}
	catalog := &fakeCatalog{variants: map[int64]*sanity.Variant{
		10: catalogVariant(10, "Standard", 2500),
	}}
	svc := &slowCartService{
		fakeCartService: &fakeCartService{
			created:   emptyCart("cart-1"),
			addResult: cartWithLine("cart-1", "line-1", 10, 1, "25.0"),
		},
		log: log,
	}
	kv := &loggingKV{inner: storage.NewMemory(), log: log}
	coord := NewCoordinator(svc, catalog, kv, "shopper-1", nil)

	require.NoError(t, coord.Init(context.Background()))
	log.reset()

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = coord.AddItem(context.Background(), AddInput{VariantID: 10, Quantity: 1})
		}()
	}
	wg.Wait()

	// Each remote call completes its publish before the next one starts.
	assert.Equal(t, []string{"remote", "publish", "remote", "publish"}, log.snapshot())
}

func TestSnapshotIsDetached(t *testing.T) {
	catalog := &fakeCatalog{variants: map[int64]*sanity.Variant{
		10: catalogVariant(10, "Standard", 2500),
	}}
	svc := &fakeCartService{
		created:   emptyCart("cart-1"),
		addResult: cartWithLine("cart-1", "line-1", 10, 1, "25.0"),
	}
	svc.addResult.Lines.Edges[0].Node.Merchandise.Product.Variants.Edges = []shopify.VariantEdge{
		{Node: shopify.VariantNode{ID: shopify.EncodeVariantGID(10), Title: "Standard", SKU: "WG-STD"}},
	}

	coord := newTestCoordinator(svc, catalog, storage.NewMemory())
	require.NoError(t, coord.AddItem(context.Background(), AddInput{VariantID: 10, Quantity: 1}))

	snapshot := coord.Snapshot()
	snapshot.LineItems[0].Quantity = 99
	snapshot.LineItems[0].Product.Siblings[0].Title = "tampered"

	published := coord.Snapshot()
	assert.Equal(t, 1, published.LineItems[0].Quantity)
	assert.Equal(t, "Standard", published.LineItems[0].Product.Siblings[0].Title)
}
