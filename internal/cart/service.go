// Package cart owns the per-customer cart snapshot and the operations that
// mutate it. Every mutation produces a new immutable snapshot; the previous
// one is never edited in place. Persistence is a fire-and-forget mirror so a
// broken store can never corrupt the in-memory cart.
package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nabilnabti/tapeat-cart/internal/domain"
	"github.com/nabilnabti/tapeat-cart/internal/identity"
	"github.com/nabilnabti/tapeat-cart/internal/pricing"
	"github.com/nabilnabti/tapeat-cart/internal/promo"
	"github.com/nabilnabti/tapeat-cart/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PromotionSource supplies the active promotion set at mutation time.
// An unloaded or failed feed yields an empty set, never an error.
type PromotionSource interface {
	Active() []domain.Promotion
}

// ReorderMode controls the bulk-add path used by "order again" flows.
type ReorderMode string

const (
	// ReorderAsIs appends the given lines verbatim, skipping identity
	// merging and promotion pricing. This is the historical behavior.
	ReorderAsIs ReorderMode = "as-is"
	// ReorderRepriced routes every line through the normal add path so it
	// gets merged and priced against current promotions.
	ReorderRepriced ReorderMode = "repriced"
)

func ParseReorderMode(s string) ReorderMode {
	if s == string(ReorderRepriced) {
		return ReorderRepriced
	}
	return ReorderAsIs
}

// AddItemInput is one item being added to the cart. Price is the catalog's
// current unit price, supplied by the caller; the service never looks prices
// up itself.
type AddItemInput struct {
	ProductID           string
	Name                string
	Image               string
	Price               decimal.Decimal
	Quantity            int
	ExcludedIngredients []string
	MenuOptions         *domain.MenuOptions
}

type Service struct {
	store       storage.CartStore
	promos      PromotionSource
	reorderMode ReorderMode
	logger      *zap.Logger
	sfg         singleflight.Group // collapses concurrent restores per customer

	mu     sync.Mutex
	carts  map[string]*domain.Cart
	writes map[string]*cartWriter
}

// cartWriter orders the background writes for one customer. Tickets are
// issued under the service mutex; the writer mutex serializes the store
// calls so an older snapshot can never overwrite a newer one.
type cartWriter struct {
	issued uint64 // guarded by Service.mu

	mu   sync.Mutex
	done uint64 // guarded by mu
}

func NewService(store storage.CartStore, promos PromotionSource, mode ReorderMode, logger *zap.Logger) *Service {
	return &Service{
		store:       store,
		promos:      promos,
		reorderMode: mode,
		logger:      logger,
		carts:       make(map[string]*domain.Cart),
		writes:      make(map[string]*cartWriter),
	}
}

// Get returns the current snapshot, restoring it from the persistence bridge
// on first access. A missing or malformed persisted payload becomes an empty
// cart; restore problems are logged, never surfaced.
func (s *Service) Get(ctx context.Context, customerID string) *domain.Cart {
	s.mu.Lock()
	if c, ok := s.carts[customerID]; ok {
		s.mu.Unlock()
		return c
	}
	s.mu.Unlock()

	v, _, _ := s.sfg.Do(customerID, func() (interface{}, error) {
		cart, err := s.store.Load(ctx, customerID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				s.logger.Warn("cart restore failed, starting empty",
					zap.String("customer_id", customerID),
					zap.Error(err))
			}
			cart = newCart(customerID)
		} else {
			restoreCart(cart, customerID)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if existing, ok := s.carts[customerID]; ok {
			return existing, nil
		}
		s.carts[customerID] = cart
		return cart, nil
	})
	return v.(*domain.Cart)
}

// AddItem resolves the line identity, matches a promotion and prices the
// resulting quantity. An add targeting an existing identity merges into that
// line; the merged line takes the freshly computed pricing. Quantity is
// clamped to at least one.
func (s *Service) AddItem(ctx context.Context, customerID string, in AddItemInput) *domain.Cart {
	return s.mutate(ctx, customerID, func(cur *domain.Cart) *domain.Cart {
		return s.applyAdd(cur, in)
	})
}

// AddItems is the bulk path used by reorder flows. Behavior depends on the
// configured ReorderMode.
func (s *Service) AddItems(ctx context.Context, customerID string, lines []domain.CartLine) *domain.Cart {
	if s.reorderMode == ReorderRepriced {
		return s.mutate(ctx, customerID, func(cur *domain.Cart) *domain.Cart {
			next := cur
			for _, l := range lines {
				next = s.applyAdd(next, AddItemInput{
					ProductID:           l.ProductID,
					Name:                l.Name,
					Image:               l.Image,
					Price:               catalogPrice(l),
					Quantity:            l.Quantity,
					ExcludedIngredients: l.ExcludedIngredients,
					MenuOptions:         l.MenuOptions,
				})
			}
			return next
		})
	}

	return s.mutate(ctx, customerID, func(cur *domain.Cart) *domain.Cart {
		if len(lines) == 0 {
			return cur
		}
		next := cloneLines(cur)
		for _, l := range lines {
			if l.ProductID == "" {
				continue
			}
			if l.Quantity < 1 {
				l.Quantity = 1
			}
			// prices are kept verbatim, but a billing mode is only honored
			// when an active promotion for the product backs it
			if !s.modeBacked(l.ProductID, l.PricingMode) {
				l.PricingMode = domain.PricingStandard
				l.PromotionLabel = ""
			}
			next.Lines = append(next.Lines, l)
		}
		return next
	})
}

// UpdateQuantity locates the line by product id and, when given, structurally
// equal options. A missing line is a no-op; a quantity of zero or less
// removes the line; anything else reprices it against current promotions.
func (s *Service) UpdateQuantity(ctx context.Context, customerID, productID string, quantity int, opts *domain.MenuOptions) *domain.Cart {
	return s.mutate(ctx, customerID, func(cur *domain.Cart) *domain.Cart {
		idx := findLine(cur.Lines, productID, opts)
		if idx < 0 {
			return cur
		}
		if quantity <= 0 {
			next := cloneLines(cur)
			next.Lines = append(next.Lines[:idx], next.Lines[idx+1:]...)
			return next
		}

		line := cur.Lines[idx]
		catalog := catalogPrice(line)

		matched, ok := promo.Match(s.promos.Active(), productID)
		in := pricing.LineInput{CatalogPrice: catalog, Quantity: quantity}
		var p *domain.Promotion
		if ok {
			p = &matched
			switch matched.Type {
			case domain.PromotionFree:
				if productID == matched.Conditions.FreeProductID {
					in.MainQuantity = quantityOf(cur.Lines, matched.Conditions.ProductID)
				}
			case domain.PromotionSecondItemDiscount:
				in.CombinedQuantity = quantityOfExcept(cur.Lines, productID, idx) + quantity
			}
		}
		priced := pricing.PriceLine(p, productID, in)

		line.Quantity = quantity
		line.UnitPrice = priced.UnitPrice
		line.OriginalPrice = priced.OriginalPrice
		line.PromotionLabel = priced.Label
		line.PricingMode = priced.Mode

		next := cloneLines(cur)
		next.Lines[idx] = line
		return next
	})
}

// RemoveItem deletes lines by product id. With options supplied only the
// structurally matching line goes; with options omitted every line carrying
// the product id goes. A miss is a no-op.
func (s *Service) RemoveItem(ctx context.Context, customerID, productID string, opts *domain.MenuOptions) *domain.Cart {
	return s.mutate(ctx, customerID, func(cur *domain.Cart) *domain.Cart {
		kept := make([]domain.CartLine, 0, len(cur.Lines))
		for _, l := range cur.Lines {
			if l.ProductID == productID && (opts == nil || identity.OptionsEqual(l.MenuOptions, opts)) {
				continue
			}
			kept = append(kept, l)
		}
		if len(kept) == len(cur.Lines) {
			return cur
		}
		next := *cur
		next.Lines = kept
		return &next
	})
}

// Clear empties the cart and drops the scheduled time. The persisted copy is
// deleted rather than overwritten.
func (s *Service) Clear(ctx context.Context, customerID string) *domain.Cart {
	s.Get(ctx, customerID)

	s.mu.Lock()
	cur := s.carts[customerID]
	next := newCart(customerID)
	next.CreatedAt = cur.CreatedAt
	s.carts[customerID] = next
	w, ticket := s.issueWrite(customerID)
	s.mu.Unlock()

	go func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if ticket <= w.done {
			return
		}
		w.done = ticket

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := s.store.Delete(ctx, customerID); err != nil {
			s.logger.Warn("cart delete failed",
				zap.String("customer_id", customerID),
				zap.Error(err))
		}
	}()

	return next
}

func (s *Service) SetScheduledTime(ctx context.Context, customerID string, st *domain.ScheduledTime) *domain.Cart {
	return s.mutate(ctx, customerID, func(cur *domain.Cart) *domain.Cart {
		next := *cur
		next.ScheduledTime = st
		return &next
	})
}

// Total computes the cart total at full precision. Callers round for
// presentation.
func (s *Service) Total(ctx context.Context, customerID string) decimal.Decimal {
	return pricing.Total(s.Get(ctx, customerID).Lines)
}

// Checkout exposes the read-only view the checkout flow consumes: flat lines
// stripped of promotion bookkeeping, the total and the scheduled time.
func (s *Service) Checkout(ctx context.Context, customerID string) domain.CheckoutView {
	cart := s.Get(ctx, customerID)
	lines := make([]domain.CheckoutLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, domain.CheckoutLine{
			ProductID:   l.ProductID,
			Name:        l.Name,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			Image:       l.Image,
			MenuOptions: l.MenuOptions,
		})
	}
	return domain.CheckoutView{
		Lines:         lines,
		Total:         pricing.Total(cart.Lines),
		ScheduledTime: cart.ScheduledTime,
	}
}

// mutate serializes operations: one runs to completion before the next is
// observed. fn returns its input unchanged to signal a no-op.
func (s *Service) mutate(ctx context.Context, customerID string, fn func(*domain.Cart) *domain.Cart) *domain.Cart {
	s.Get(ctx, customerID)

	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.carts[customerID]
	next := fn(cur)
	if next == cur {
		return cur
	}
	next.UpdatedAt = time.Now()
	s.carts[customerID] = next
	s.persist(customerID, next)
	return next
}

func (s *Service) applyAdd(cur *domain.Cart, in AddItemInput) *domain.Cart {
	if in.ProductID == "" {
		s.logger.Warn("add without product id ignored", zap.String("customer_id", cur.CustomerID))
		return cur
	}
	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}

	key := identity.Key(in.ProductID, in.MenuOptions, in.ExcludedIngredients)
	idx := -1
	existingQty := 0
	for i, l := range cur.Lines {
		if identity.LineKey(l) == key {
			idx = i
			existingQty = l.Quantity
			break
		}
	}
	resultQty := existingQty + qty

	matched, ok := promo.Match(s.promos.Active(), in.ProductID)
	pin := pricing.LineInput{CatalogPrice: in.Price, Quantity: resultQty}
	var p *domain.Promotion
	if ok {
		p = &matched
		switch matched.Type {
		case domain.PromotionFree:
			if in.ProductID == matched.Conditions.FreeProductID {
				pin.MainQuantity = quantityOf(cur.Lines, matched.Conditions.ProductID)
			}
		case domain.PromotionSecondItemDiscount:
			pin.CombinedQuantity = quantityOf(cur.Lines, in.ProductID) + qty
		}
	}
	priced := pricing.PriceLine(p, in.ProductID, pin)

	line := domain.CartLine{
		ProductID:           in.ProductID,
		Name:                in.Name,
		Image:               in.Image,
		Quantity:            resultQty,
		UnitPrice:           priced.UnitPrice,
		OriginalPrice:       priced.OriginalPrice,
		PromotionLabel:      priced.Label,
		PricingMode:         priced.Mode,
		ExcludedIngredients: in.ExcludedIngredients,
		MenuOptions:         in.MenuOptions,
	}

	next := cloneLines(cur)
	if idx >= 0 {
		next.Lines[idx] = line
	} else {
		next.Lines = append(next.Lines, line)
	}
	return next
}

// modeBacked reports whether an active promotion for the product can produce
// the given billing mode. Standard always passes.
func (s *Service) modeBacked(productID string, mode domain.PricingMode) bool {
	if mode == domain.PricingStandard {
		return true
	}
	p, ok := promo.Match(s.promos.Active(), productID)
	if !ok {
		return false
	}
	switch mode {
	case domain.PricingBuyOneGetOne:
		return p.Type == domain.PromotionDouble || p.Type == domain.PromotionFree
	case domain.PricingPairDiscount:
		return p.Type == domain.PromotionSecondItemDiscount
	}
	return false
}

// issueWrite hands out the next write ticket for the customer. Callers must
// hold s.mu.
func (s *Service) issueWrite(customerID string) (*cartWriter, uint64) {
	w, ok := s.writes[customerID]
	if !ok {
		w = &cartWriter{}
		s.writes[customerID] = w
	}
	w.issued++
	return w, w.issued
}

// persist mirrors the snapshot to the store without blocking the operation.
// Writes for the same customer run in ticket order; one that was overtaken
// while waiting is dropped.
func (s *Service) persist(customerID string, cart *domain.Cart) {
	w, ticket := s.issueWrite(customerID)
	go func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if ticket <= w.done {
			return
		}
		w.done = ticket

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := s.store.Save(ctx, customerID, cart); err != nil {
			s.logger.Warn("cart persist failed",
				zap.String("customer_id", customerID),
				zap.Error(err))
		}
	}()
}

func newCart(customerID string) *domain.Cart {
	now := time.Now()
	return &domain.Cart{
		CustomerID: customerID,
		Lines:      []domain.CartLine{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// restoreCart sanitizes a persisted snapshot: the customer id is rebound to
// the storage key and lines that violate the quantity invariant are dropped.
func restoreCart(cart *domain.Cart, customerID string) {
	cart.CustomerID = customerID
	kept := cart.Lines[:0]
	for _, l := range cart.Lines {
		if l.Quantity < 1 || l.ProductID == "" {
			continue
		}
		if l.PricingMode == "" {
			l.PricingMode = domain.PricingStandard
		}
		kept = append(kept, l)
	}
	cart.Lines = kept
}

func cloneLines(cur *domain.Cart) *domain.Cart {
	next := *cur
	next.Lines = make([]domain.CartLine, len(cur.Lines))
	copy(next.Lines, cur.Lines)
	return &next
}

func catalogPrice(l domain.CartLine) decimal.Decimal {
	if l.OriginalPrice != nil {
		return *l.OriginalPrice
	}
	return l.UnitPrice
}

func findLine(lines []domain.CartLine, productID string, opts *domain.MenuOptions) int {
	for i, l := range lines {
		if l.ProductID != productID {
			continue
		}
		if opts == nil || identity.OptionsEqual(l.MenuOptions, opts) {
			return i
		}
	}
	return -1
}

func quantityOf(lines []domain.CartLine, productID string) int {
	total := 0
	for _, l := range lines {
		if l.ProductID == productID {
			total += l.Quantity
		}
	}
	return total
}

func quantityOfExcept(lines []domain.CartLine, productID string, skip int) int {
	total := 0
	for i, l := range lines {
		if i == skip {
			continue
		}
		if l.ProductID == productID {
			total += l.Quantity
		}
	}
	return total
}
