package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/greenline-goods/storefront/internal/sanity"
	"github.com/greenline-goods/storefront/internal/shopify"
	"github.com/greenline-goods/storefront/storage"
	"golang.org/x/sync/errgroup"
)

// CartService is the remote cart backend. It owns authoritative cart
// state; the coordinator only mirrors it.
type CartService interface {
	CreateCart(ctx context.Context) (*shopify.Cart, error)
	FetchCart(ctx context.Context, cartID string) (*shopify.Cart, error)
	AddLines(ctx context.Context, cartID string, lines []shopify.LineInput) (*shopify.Cart, error)
	UpdateLines(ctx context.Context, cartID string, lines []shopify.LineUpdate) (*shopify.Cart, error)
	RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*shopify.Cart, error)
}

// Catalog resolves a variant id to its display record.
type Catalog interface {
	Variant(ctx context.Context, variantID int64) (*sanity.Variant, error)
}

// AddInput describes one add-to-cart request.
type AddInput struct {
	VariantID     int64
	Quantity      int
	Subscribe     bool
	SellingPlanID int64
}

// Coordinator owns exactly one shopper's Session and mediates every
// read and write between the view and the remote services. Mutations are
// serialized through a single mutex so two racing calls can never
// interleave their publishes.
type Coordinator struct {
	cartSvc   CartService
	catalog   Catalog
	kv        storage.KV
	shopperID string
	logger    *slog.Logger

	// initMu guards initialization; only success latches, so a failed
	// attempt is retried by the next caller.
	initMu      sync.Mutex
	initialized bool

	// opMu serializes mutating operations; mu guards publication.
	opMu sync.Mutex
	mu   sync.RWMutex

	session Session
}

func NewCoordinator(cartSvc CartService, catalog Catalog, kv storage.KV, shopperID string, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		cartSvc:   cartSvc,
		catalog:   catalog,
		kv:        kv,
		shopperID: shopperID,
		logger:    logger.With("shopper_id", shopperID),
		session:   Session{IsLoading: true},
	}
}

// Snapshot returns the most recently published session state. The copy
// is detached: callers never observe a torn or in-progress update.
func (c *Coordinator) Snapshot() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.clone()
}

// Init brings the session to Ready: resume the persisted cart when the
// stored id still resolves to a usable cart, otherwise create a fresh
// one. Concurrent callers produce at most one created cart; a failed
// attempt does not latch, the next call runs the sequence again.
func (c *Coordinator) Init(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if c.initialized {
		return nil
	}
	if err := c.initialize(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

func (c *Coordinator) initialize(ctx context.Context) error {
	storedID, err := c.kv.Get(ctx, c.shopperID, storage.CartIDKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("read stored cart id: %w", err)
	}

	if storedID != "" {
		resumeErr := c.resume(ctx, storedID)
		if resumeErr == nil {
			return nil
		}
		// Recoverable: discard the stored id and start over.
		c.logger.Warn("discarding stored cart", "cart_id", storedID, "error", resumeErr)
		if delErr := c.kv.Delete(ctx, c.shopperID, storage.CartIDKey); delErr != nil {
			c.logger.Error("failed to clear stored cart id", "error", delErr)
		}
	}

	remote, err := c.cartSvc.CreateCart(ctx)
	if err != nil {
		return fmt.Errorf("create cart: %w", err)
	}
	if err := c.publish(ctx, remote); err != nil {
		return fmt.Errorf("publish created cart: %w", err)
	}
	c.logger.Info("cart created", "cart_id", remote.ID)
	return nil
}

func (c *Coordinator) resume(ctx context.Context, cartID string) error {
	remote, err := c.cartSvc.FetchCart(ctx, cartID)
	if err != nil {
		return fmt.Errorf("fetch cart: %w", err)
	}
	if remote == nil {
		return fmt.Errorf("cart %s no longer exists", cartID)
	}

	for _, edge := range remote.Lines.Edges {
		if edge.Node.Merchandise.ID == "" {
			return ErrMissingMerchandise
		}
	}

	// A completed cart must not be reused. The wire carries an explicit
	// completion timestamp; checkoutUrl presence proves nothing since
	// every cart has one.
	if remote.CompletedAt != nil {
		return fmt.Errorf("cart %s already completed at %s", cartID, remote.CompletedAt)
	}

	if err := c.publish(ctx, remote); err != nil {
		return fmt.Errorf("publish resumed cart: %w", err)
	}
	c.logger.Info("cart resumed", "cart_id", remote.ID, "lines", len(remote.Lines.Edges))
	return nil
}

// AddItem adds a variant to the cart, optionally on its subscription
// plan, and replaces the session from the authoritative response.
func (c *Coordinator) AddItem(ctx context.Context, in AddInput) error {
	if in.VariantID == 0 || in.Quantity <= 0 {
		return fmt.Errorf("%w: variant id and positive quantity required", ErrInvalidArgument)
	}
	if err := c.Init(ctx); err != nil {
		return err
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.setFlag(func(s *Session) { s.IsAdding = true })
	defer c.clearFlags()

	line := shopify.LineInput{
		MerchandiseID: shopify.EncodeVariantGID(in.VariantID),
		Quantity:      in.Quantity,
	}
	if in.Subscribe && in.SellingPlanID != 0 {
		line.SellingPlanID = shopify.EncodeSellingPlanGID(in.SellingPlanID)
	}

	remote, err := c.cartSvc.AddLines(ctx, c.cartID(), []shopify.LineInput{line})
	if err != nil {
		return fmt.Errorf("add lines: %w", err)
	}
	return c.publish(ctx, remote)
}

// UpdateItem rewrites one line's quantity.
func (c *Coordinator) UpdateItem(ctx context.Context, lineID string, quantity int) error {
	if lineID == "" || quantity <= 0 {
		return fmt.Errorf("%w: line id and positive quantity required", ErrInvalidArgument)
	}
	if err := c.Init(ctx); err != nil {
		return err
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.setFlag(func(s *Session) { s.IsUpdating = true })
	defer c.clearFlags()

	lines := []shopify.LineUpdate{{ID: lineID, Quantity: quantity}}
	remote, err := c.cartSvc.UpdateLines(ctx, c.cartID(), lines)
	if err != nil {
		return fmt.Errorf("update lines: %w", err)
	}
	return c.publish(ctx, remote)
}

// RemoveItem deletes a line from the cart.
func (c *Coordinator) RemoveItem(ctx context.Context, line LineItem) error {
	if line.LineID == "" {
		return fmt.Errorf("%w: line id required", ErrInvalidArgument)
	}
	if err := c.Init(ctx); err != nil {
		return err
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.setFlag(func(s *Session) { s.IsUpdating = true })
	defer c.clearFlags()

	remote, err := c.cartSvc.RemoveLines(ctx, c.cartID(), []string{line.LineID})
	if err != nil {
		return fmt.Errorf("remove lines: %w", err)
	}
	return c.publish(ctx, remote)
}

func (c *Coordinator) cartID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.CartID
}

func (c *Coordinator) setFlag(set func(*Session)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set(&c.session)
}

// clearFlags guarantees no flag stays stuck after a failed remote call.
func (c *Coordinator) clearFlags() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.IsLoading = false
	c.session.IsAdding = false
	c.session.IsUpdating = false
}

// publish reconciles every line against the catalog in parallel, then
// atomically replaces the session from the authoritative cart. All
// lookups must succeed before anything is published; one failure fails
// the whole refresh.
func (c *Coordinator) publish(ctx context.Context, remote *shopify.Cart) error {
	lineItems := make([]LineItem, len(remote.Lines.Edges))

	g, gctx := errgroup.WithContext(ctx)
	for i, edge := range remote.Lines.Edges {
		g.Go(func() error {
			item, err := c.reconcileLine(gctx, edge.Node)
			if err != nil {
				return err
			}
			lineItems[i] = *item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("reconcile lines: %w", err)
	}

	subtotal, err := remote.EstimatedCost.SubtotalAmount.Cents()
	if err != nil {
		return fmt.Errorf("parse subtotal: %w", err)
	}

	if err := c.kv.Set(ctx, c.shopperID, storage.CartIDKey, remote.ID); err != nil {
		return fmt.Errorf("persist cart id: %w", err)
	}

	next := Session{
		CartID:        remote.ID,
		CheckoutURL:   remote.CheckoutURL,
		SubtotalCents: subtotal,
		LineItems:     lineItems,
	}

	c.mu.Lock()
	c.session = next
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) reconcileLine(ctx context.Context, line shopify.Line) (*LineItem, error) {
	if line.Merchandise.ID == "" {
		return nil, ErrMissingMerchandise
	}

	variantID, err := shopify.DecodeVariantGID(line.Merchandise.ID)
	if err != nil {
		return nil, fmt.Errorf("decode merchandise id: %w", err)
	}

	display, err := c.catalog.Variant(ctx, variantID)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup for variant %d: %w", variantID, err)
	}
	if display == nil {
		return nil, fmt.Errorf("%w: %d", ErrVariantNotInCatalog, variantID)
	}

	item := &LineItem{
		LineID:         line.ID,
		VariantID:      variantID,
		Quantity:       line.Quantity,
		UnitPriceCents: display.PriceCents,
		Product: ProductSnapshot{
			ProductTitle: display.Product.Title,
			Slug:         display.Product.Slug,
			VariantTitle: display.Title,
			CartPhotoURL: display.CartPhotoURL,
			PriceCents:   display.PriceCents,
		},
	}

	// A subscription allocation adjusts the unit price.
	if alloc := line.SellingPlanAllocation; alloc != nil {
		planID, err := shopify.DecodeSellingPlanGID(alloc.SellingPlan.ID)
		if err != nil {
			return nil, fmt.Errorf("decode selling plan id: %w", err)
		}
		item.SellingPlan = &SellingPlan{ID: planID, Name: alloc.SellingPlan.Name}

		if len(alloc.PriceAdjustments) > 0 {
			cents, err := alloc.PriceAdjustments[0].Price.Cents()
			if err != nil {
				return nil, fmt.Errorf("parse plan price: %w", err)
			}
			item.UnitPriceCents = cents
		}
	}

	for _, sibling := range line.Merchandise.Product.Variants.Edges {
		siblingID, err := shopify.DecodeVariantGID(sibling.Node.ID)
		if err != nil {
			return nil, fmt.Errorf("decode sibling variant id: %w", err)
		}
		item.Product.Siblings = append(item.Product.Siblings, SiblingVariant{
			ID:    siblingID,
			Title: sibling.Node.Title,
			SKU:   sibling.Node.SKU,
		})
	}

	return item, nil
}
