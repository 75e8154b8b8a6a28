package cart

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nabilnabti/tapeat-cart/internal/domain"
	"github.com/nabilnabti/tapeat-cart/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockStore struct {
	m       sync.RWMutex
	carts   map[string]*domain.Cart
	loadErr error
	saveErr error
}

func newMockStore() *mockStore {
	return &mockStore{carts: make(map[string]*domain.Cart)}
}

func (m *mockStore) Load(_ context.Context, customerID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	c, ok := m.carts[customerID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return c, nil
}

func (m *mockStore) Save(_ context.Context, customerID string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.carts[customerID] = cart
	return nil
}

func (m *mockStore) Delete(_ context.Context, customerID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.carts, customerID)
	return nil
}

func (m *mockStore) saved(customerID string) *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.carts[customerID]
}

// slowStore delays every Save so background writes pile up.
type slowStore struct {
	*mockStore
	saveDelay time.Duration
}

func (s *slowStore) Save(ctx context.Context, customerID string, cart *domain.Cart) error {
	time.Sleep(s.saveDelay)
	return s.mockStore.Save(ctx, customerID, cart)
}

type staticPromos []domain.Promotion

func (s staticPromos) Active() []domain.Promotion { return s }

func newTestService(store storage.CartStore, promos PromotionSource) *Service {
	return NewService(store, promos, ReorderAsIs, zap.NewNop())
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func burger(qty int) AddItemInput {
	return AddItemInput{ProductID: "burger-1", Name: "Cheeseburger", Price: price("5.00"), Quantity: qty}
}

func TestAddItem_IdentityMerge(t *testing.T) {
	sut := newTestService(newMockStore(), staticPromos(nil))
	ctx := context.Background()

	sut.AddItem(ctx, "cust-1", burger(1))
	cart := sut.AddItem(ctx, "cust-1", burger(1))

	require.Len(t, cart.Lines, 1, "identical adds must merge into one line")
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, "10.00", sut.Total(ctx, "cust-1").StringFixed(2))
}

func TestAddItem_DifferentOptionsAreSeparateLines(t *testing.T) {
	sut := newTestService(newMockStore(), staticPromos(nil))
	ctx := context.Background()

	in := burger(1)
	in.MenuOptions = &domain.MenuOptions{Drink: "cola"}
	sut.AddItem(ctx, "cust-1", in)

	in2 := burger(1)
	in2.MenuOptions = &domain.MenuOptions{Drink: "water"}
	cart := sut.AddItem(ctx, "cust-1", in2)

	assert.Len(t, cart.Lines, 2)
}

func TestAddItem_SauceOrderStillMerges(t *testing.T) {
	sut := newTestService(newMockStore(), staticPromos(nil))
	ctx := context.Background()

	in := burger(1)
	in.MenuOptions = &domain.MenuOptions{Sauces: []string{"ketchup", "mayo"}}
	sut.AddItem(ctx, "cust-1", in)

	in2 := burger(1)
	in2.MenuOptions = &domain.MenuOptions{Sauces: []string{"mayo", "ketchup"}}
	cart := sut.AddItem(ctx, "cust-1", in2)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
}

func TestAddItem_ClampsQuantity(t *testing.T) {
	sut := newTestService(newMockStore(), staticPromos(nil))

	cart := sut.AddItem(context.Background(), "cust-1", burger(0))

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, cart.Lines[0].Quantity, "zero quantity must be clamped, not stored")
}

func TestAddItem_EmptyProductIDIsNoOp(t *testing.T) {
	sut := newTestService(newMockStore(), staticPromos(nil))

	cart := sut.AddItem(context.Background(), "cust-1", AddItemInput{Price: price("5.00"), Quantity: 1})

	assert.Empty(t, cart.Lines)
}

func TestDoublePromotion(t *testing.T) {
	promos := staticPromos{{ID: "p1", Type: domain.PromotionDouble, Conditions: domain.PromotionConditions{ProductID: "burger-1"}}}
	sut := newTestService(newMockStore(), promos)
	ctx := context.Background()

	cart := sut.AddItem(ctx, "cust-1", burger(1))
	assert.Empty(t, cart.Lines[0].PromotionLabel)
	assert.Equal(t, "5.00", sut.Total(ctx, "cust-1").StringFixed(2))

	cart = sut.AddItem(ctx, "cust-1", burger(1))
	assert.Equal(t, "1 offert", cart.Lines[0].PromotionLabel)
	assert.Equal(t, "5.00", cart.Lines[0].UnitPrice.StringFixed(2), "unit price stays at catalog")
	assert.Equal(t, "5.00", sut.Total(ctx, "cust-1").StringFixed(2), "one paid, one free")
}

func TestDiscountPromotion(t *testing.T) {
	promos := staticPromos{{ID: "p1", Type: domain.PromotionDiscount, Conditions: domain.PromotionConditions{ProductID: "pizza-2", DiscountPercent: 20}}}
	sut := newTestService(newMockStore(), promos)
	ctx := context.Background()

	cart := sut.AddItem(ctx, "cust-1", AddItemInput{ProductID: "pizza-2", Name: "Margherita", Price: price("10.00"), Quantity: 1})

	line := cart.Lines[0]
	assert.Equal(t, "8.00", line.UnitPrice.StringFixed(2))
	require.NotNil(t, line.OriginalPrice)
	assert.Equal(t, "10.00", line.OriginalPrice.StringFixed(2))
	assert.Equal(t, "-20%", line.PromotionLabel)
	assert.Equal(t, "8.00", sut.Total(ctx, "cust-1").StringFixed(2))
}

func freePromo() staticPromos {
	return staticPromos{{ID: "p1", Type: domain.PromotionFree, Conditions: domain.PromotionConditions{ProductID: "menu-1", FreeProductID: "drink-1"}}}
}

func TestFreePromotion_MainPresent(t *testing.T) {
	sut := newTestService(newMockStore(), freePromo())
	ctx := context.Background()

	sut.AddItem(ctx, "cust-1", AddItemInput{ProductID: "menu-1", Name: "Menu Tacos", Price: price("5.00"), Quantity: 1})
	cart := sut.AddItem(ctx, "cust-1", AddItemInput{ProductID: "drink-1", Name: "Limonade", Price: price("3.00"), Quantity: 1})

	reward := cart.Lines[1]
	assert.True(t, reward.UnitPrice.IsZero())
	require.NotNil(t, reward.OriginalPrice)
	assert.Equal(t, "3.00", reward.OriginalPrice.StringFixed(2))
	assert.Equal(t, "1 offert", reward.PromotionLabel)
	assert.Equal(t, "5.00", sut.Total(ctx, "cust-1").StringFixed(2), "the free unit contributes nothing")
}

func TestFreePromotion_MainAbsent(t *testing.T) {
	sut := newTestService(newMockStore(), freePromo())
	ctx := context.Background()

	cart := sut.AddItem(ctx, "cust-1", AddItemInput{ProductID: "drink-1", Name: "Limonade", Price: price("3.00"), Quantity: 1})

	reward := cart.Lines[0]
	assert.Equal(t, "3.00", reward.UnitPrice.StringFixed(2))
	assert.Nil(t, reward.OriginalPrice)
	assert.Empty(t, reward.PromotionLabel)
	assert.Equal(t, "3.00", sut.Total(ctx, "cust-1").StringFixed(2))
}

func TestFreePromotion_SecondRewardUnitBilled(t *testing.T) {
	sut := newTestService(newMockStore(), freePromo())
	ctx := context.Background()

	sut.AddItem(ctx, "cust-1", AddItemInput{ProductID: "menu-1", Price: price("5.00"), Quantity: 1})
	sut.AddItem(ctx, "cust-1", AddItemInput{ProductID: "drink-1", Price: price("3.00"), Quantity: 1})
	cart := sut.AddItem(ctx, "cust-1", AddItemInput{ProductID: "drink-1", Price: price("3.00"), Quantity: 1})

	reward := cart.Lines[1]
	assert.Equal(t, 2, reward.Quantity)
	assert.Equal(t, "3.00", reward.UnitPrice.StringFixed(2), "beyond the allotment the line bills at catalog")
	// 5.00 (menu) + ceil(2/2)*3.00 (one billed, one free)
	assert.Equal(t, "8.00", sut.Total(ctx, "cust-1").StringFixed(2))
}

func secondItemPromo() staticPromos {
	return staticPromos{{ID: "p1", Type: domain.PromotionSecondItemDiscount, Conditions: domain.PromotionConditions{ProductID: "tacos-3", DiscountPercent: 50}}}
}

func TestSecondItemDiscount_Progression(t *testing.T) {
	sut := newTestService(newMockStore(), secondItemPromo())
	ctx := context.Background()
	tacos := AddItemInput{ProductID: "tacos-3", Name: "Tacos", Price: price("6.00"), Quantity: 1}

	cart := sut.AddItem(ctx, "cust-1", tacos)
	assert.Equal(t, "6.00", cart.Lines[0].UnitPrice.StringFixed(2))
	assert.Empty(t, cart.Lines[0].PromotionLabel)
	assert.Equal(t, "6.00", sut.Total(ctx, "cust-1").StringFixed(2))

	cart = sut.AddItem(ctx, "cust-1", tacos)
	assert.Equal(t, "3.00", cart.Lines[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "-50% sur le 2ème", cart.Lines[0].PromotionLabel)
	assert.Equal(t, "9.00", sut.Total(ctx, "cust-1").StringFixed(2), "one at 6.00 + one at 3.00")

	cart = sut.AddItem(ctx, "cust-1", tacos)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.Equal(t, "15.00", sut.Total(ctx, "cust-1").StringFixed(2), "pair + leftover at full price")
}

func TestUpdateQuantity_Reprices(t *testing.T) {
	promos := staticPromos{{ID: "p1", Type: domain.PromotionDouble, Conditions: domain.PromotionConditions{ProductID: "burger-1"}}}
	sut := newTestService(newMockStore(), promos)
	ctx := context.Background()

	sut.AddItem(ctx, "cust-1", burger(1))
	cart := sut.UpdateQuantity(ctx, "cust-1", "burger-1", 2, nil)

	assert.Equal(t, "1 offert", cart.Lines[0].PromotionLabel)
	assert.Equal(t, "5.00", sut.Total(ctx, "cust-1").StringFixed(2))

	cart = sut.UpdateQuantity(ctx, "cust-1", "burger-1", 3, nil)
	assert.Empty(t, cart.Lines[0].PromotionLabel, "odd quantity loses the label")
	assert.Equal(t, "15.00", sut.Total(ctx, "cust-1").StringFixed(2))
}

func TestUpdateQuantity_ZeroRemoves(t *testing.T) {
	sut := newTestService(newMockStore(), staticPromos(nil))
	ctx := context.Background()

	sut.AddItem(ctx, "cust-1", burger(2))
	cart := sut.UpdateQuantity(ctx, "cust-1", "burger-1", 0, nil)

	assert.Empty(t, cart.Lines)
}

func TestUpdateQuantity_MissingLineIsNoOp(t *testing.T) {
	sut := newTestService(newMockStore(), staticPromos(nil))
	ctx := context.Background()

	sut.AddItem(ctx, "cust-1", burger(1))
	cart := sut.UpdateQuantity(ctx, "cust-1", "ghost-9", 5, nil)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, cart.Lines[0].Quantity)
}

func TestUpdateQuantity_KeepsDiscountRepricing(t *testing.T) {
	promos := staticPromos{{ID: "p1", Type: domain.PromotionDiscount, Conditions: domain.PromotionConditions{ProductID: "pizza-2", DiscountPercent: 20}}}
	sut := newTestService(newMockStore(), promos)
	ctx := context.Background()

	sut.AddItem(ctx, "cust-1", AddItemInput{ProductID: "pizza-2", Price: price("10.00"), Quantity: 1})
	cart := sut.UpdateQuantity(ctx, "cust-1", "pizza-2", 3, nil)

	line := cart.Lines[0]
	assert.Equal(t, "8.00", line.UnitPrice.StringFixed(2), "catalog price recovered from original price on update")
	assert.Equal(t, "24.00", sut.Total(ctx, "cust-1").StringFixed(2))
}

func TestRemoveItem_ExactOptionsMatch(t *testing.T) {
	sut := newTestService(newMockStore(), staticPromos(nil))
	ctx := context.Background()

	cola := burger(1)
	cola.MenuOptions = &domain.MenuOptions{Drink: "cola"}
	water := burger(1)
	water.MenuOptions = &domain.MenuOptions{Drink: "water"}
	sut.AddItem(ctx, "cust-1", cola)
	sut.AddItem(ctx, "cust-1", water)

	cart := sut.RemoveItem(ctx, "cust-1", "burger-1", &domain.MenuOptions{Drink: "cola"})

	require.Len(t, cart.Lines, 1, "only the matching line is deleted")
	assert.Equal(t, "water", cart.Lines[0].MenuOptions.Drink)
}

func TestRemoveItem_OmittedOptionsMatchAny(t *testing.T) {
	sut := newTestService(newMockStore(), staticPromos(nil))
	ctx := context.Background()

	cola := burger(1)
	cola.MenuOptions = &domain.MenuOptions{Drink: "cola"}
	water := burger(1)
	water.MenuOptions = &domain.MenuOptions{Drink: "water"}
	sut.AddItem(ctx, "cust-1", cola)
	sut.AddItem(ctx, "cust-1", water)

	cart := sut.RemoveItem(ctx, "cust-1", "burger-1", nil)

	assert.Empty(t, cart.Lines)
}

func TestRemoveItem_MissIsNoOp(t *testing.T) {
	sut := newTestService(newMockStore(), staticPromos(nil))
	ctx := context.Background()

	sut.AddItem(ctx, "cust-1", burger(1))
	cart := sut.RemoveItem(ctx, "cust-1", "ghost-9", nil)

	assert.Len(t, cart.Lines, 1)
}

func TestAddItems_AsIsAppendsVerbatim(t *testing.T) {
	sut := newTestService(newMockStore(), staticPromos(nil))
	ctx := context.Background()

	sut.AddItem(ctx, "cust-1", burger(1))
	cart := sut.AddItems(ctx, "cust-1", []domain.CartLine{
		{ProductID: "burger-1", Name: "Cheeseburger", Quantity: 1, UnitPrice: price("5.00")},
	})

	assert.Len(t, cart.Lines, 2, "as-is mode never merges")
	assert.Equal(t, domain.PricingStandard, cart.Lines[1].PricingMode)
}

func TestAddItems_AsIsDropsUnbackedBillingMode(t *testing.T) {
	sut := newTestService(newMockStore(), staticPromos(nil))
	ctx := context.Background()

	cart := sut.AddItems(ctx, "cust-1", []domain.CartLine{
		{ProductID: "burger-1", Quantity: 2, UnitPrice: price("5.00"),
			PricingMode: domain.PricingBuyOneGetOne, PromotionLabel: "1 offert"},
	})

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, domain.PricingStandard, cart.Lines[0].PricingMode)
	assert.Empty(t, cart.Lines[0].PromotionLabel)
	assert.Equal(t, "10.00", sut.Total(ctx, "cust-1").StringFixed(2), "no promotion backs the mode, both units bill")
}

func TestAddItems_AsIsKeepsBackedBillingMode(t *testing.T) {
	promos := staticPromos{{ID: "p1", Type: domain.PromotionDouble, Conditions: domain.PromotionConditions{ProductID: "burger-1"}}}
	sut := newTestService(newMockStore(), promos)
	ctx := context.Background()

	cart := sut.AddItems(ctx, "cust-1", []domain.CartLine{
		{ProductID: "burger-1", Quantity: 2, UnitPrice: price("5.00"),
			PricingMode: domain.PricingBuyOneGetOne, PromotionLabel: "1 offert"},
	})

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, domain.PricingBuyOneGetOne, cart.Lines[0].PricingMode)
	assert.Equal(t, "5.00", sut.Total(ctx, "cust-1").StringFixed(2))
}

func TestAddItems_RepricedMergesAndPrices(t *testing.T) {
	promos := staticPromos{{ID: "p1", Type: domain.PromotionDouble, Conditions: domain.PromotionConditions{ProductID: "burger-1"}}}
	sut := NewService(newMockStore(), promos, ReorderRepriced, zap.NewNop())
	ctx := context.Background()

	sut.AddItem(ctx, "cust-1", burger(1))
	cart := sut.AddItems(ctx, "cust-1", []domain.CartLine{
		{ProductID: "burger-1", Name: "Cheeseburger", Quantity: 1, UnitPrice: price("5.00")},
	})

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, "1 offert", cart.Lines[0].PromotionLabel)
}

func TestClear(t *testing.T) {
	store := newMockStore()
	sut := newTestService(store, staticPromos(nil))
	ctx := context.Background()

	sut.AddItem(ctx, "cust-1", burger(2))
	sut.SetScheduledTime(ctx, "cust-1", &domain.ScheduledTime{Date: "2026-09-01", Time: "12:30"})
	require.Eventually(t, func() bool {
		return store.saved("cust-1") != nil
	}, 100*time.Millisecond, 10*time.Millisecond)

	cart := sut.Clear(ctx, "cust-1")

	assert.Empty(t, cart.Lines)
	assert.Nil(t, cart.ScheduledTime)
	assert.True(t, sut.Total(ctx, "cust-1").IsZero())

	require.Eventually(t, func() bool {
		return store.saved("cust-1") == nil
	}, 100*time.Millisecond, 10*time.Millisecond, "persisted copy was not deleted")
}

func TestSetScheduledTime(t *testing.T) {
	sut := newTestService(newMockStore(), staticPromos(nil))
	ctx := context.Background()

	cart := sut.SetScheduledTime(ctx, "cust-1", &domain.ScheduledTime{Date: "2026-09-01", Time: "19:00"})
	require.NotNil(t, cart.ScheduledTime)
	assert.Equal(t, "19:00", cart.ScheduledTime.Time)

	cart = sut.SetScheduledTime(ctx, "cust-1", nil)
	assert.Nil(t, cart.ScheduledTime)
}

func TestGet_RestoresFromStore(t *testing.T) {
	store := newMockStore()
	store.carts["cust-1"] = &domain.Cart{
		CustomerID: "cust-1",
		Lines: []domain.CartLine{
			{ProductID: "burger-1", Quantity: 2, UnitPrice: price("5.00"), PricingMode: domain.PricingStandard},
		},
	}
	sut := newTestService(store, staticPromos(nil))

	cart := sut.Get(context.Background(), "cust-1")

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, "10.00", sut.Total(context.Background(), "cust-1").StringFixed(2))
}

func TestGet_CorruptStoreYieldsEmptyCart(t *testing.T) {
	store := newMockStore()
	store.loadErr = fmt.Errorf("unmarshal cart failed: unexpected end of JSON input")
	sut := newTestService(store, staticPromos(nil))

	cart := sut.Get(context.Background(), "cust-1")

	assert.Empty(t, cart.Lines)
	assert.Equal(t, "cust-1", cart.CustomerID)
}

func TestGet_RestoredGhostLinesDropped(t *testing.T) {
	store := newMockStore()
	store.carts["cust-1"] = &domain.Cart{
		Lines: []domain.CartLine{
			{ProductID: "burger-1", Quantity: 0, UnitPrice: price("5.00")},
			{ProductID: "pizza-2", Quantity: 1, UnitPrice: price("10.00")},
		},
	}
	sut := newTestService(store, staticPromos(nil))

	cart := sut.Get(context.Background(), "cust-1")

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "pizza-2", cart.Lines[0].ProductID)
}

func TestMutations_PersistFireAndForget(t *testing.T) {
	store := newMockStore()
	sut := newTestService(store, staticPromos(nil))

	sut.AddItem(context.Background(), "cust-1", burger(1))

	require.Eventually(t, func() bool {
		saved := store.saved("cust-1")
		return saved != nil && len(saved.Lines) == 1
	}, 100*time.Millisecond, 10*time.Millisecond, "snapshot was not mirrored to the store")
}

func TestPersist_SlowSaveCannotResurrectClearedCart(t *testing.T) {
	store := &slowStore{mockStore: newMockStore(), saveDelay: 50 * time.Millisecond}
	sut := newTestService(store, staticPromos(nil))
	ctx := context.Background()

	sut.AddItem(ctx, "cust-1", burger(1))
	sut.Clear(ctx, "cust-1")

	// let the delayed save land if it is ever going to
	time.Sleep(200 * time.Millisecond)
	assert.Nil(t, store.saved("cust-1"), "a save issued before the clear must not outlive it")
}

func TestPersist_LatestSnapshotWinsDurably(t *testing.T) {
	store := &slowStore{mockStore: newMockStore(), saveDelay: 20 * time.Millisecond}
	sut := newTestService(store, staticPromos(nil))
	ctx := context.Background()

	sut.AddItem(ctx, "cust-1", burger(1))
	sut.AddItem(ctx, "cust-1", burger(1))

	require.Eventually(t, func() bool {
		saved := store.saved("cust-1")
		return saved != nil && saved.Lines[0].Quantity == 2
	}, time.Second, 10*time.Millisecond)

	// and the older snapshot never lands afterwards
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 2, store.saved("cust-1").Lines[0].Quantity)
}

func TestMutations_SurviveStoreFailure(t *testing.T) {
	store := newMockStore()
	store.saveErr = fmt.Errorf("redis set failed: connection refused")
	sut := newTestService(store, staticPromos(nil))
	ctx := context.Background()

	cart := sut.AddItem(ctx, "cust-1", burger(2))

	require.Len(t, cart.Lines, 1, "a broken store must not affect the in-memory cart")
	assert.Equal(t, "10.00", sut.Total(ctx, "cust-1").StringFixed(2))
}

func TestSnapshots_AreImmutable(t *testing.T) {
	sut := newTestService(newMockStore(), staticPromos(nil))
	ctx := context.Background()

	before := sut.AddItem(ctx, "cust-1", burger(1))
	sut.AddItem(ctx, "cust-1", burger(1))

	assert.Equal(t, 1, before.Lines[0].Quantity, "earlier snapshot must not change")
}

func TestTotal_Idempotent(t *testing.T) {
	promos := staticPromos{{ID: "p1", Type: domain.PromotionDouble, Conditions: domain.PromotionConditions{ProductID: "burger-1"}}}
	sut := newTestService(newMockStore(), promos)
	ctx := context.Background()

	sut.AddItem(ctx, "cust-1", burger(2))

	first := sut.Total(ctx, "cust-1")
	second := sut.Total(ctx, "cust-1")
	assert.True(t, first.Equal(second))
}

func TestCheckout_FlatView(t *testing.T) {
	promos := staticPromos{{ID: "p1", Type: domain.PromotionDiscount, Conditions: domain.PromotionConditions{ProductID: "pizza-2", DiscountPercent: 20}}}
	sut := newTestService(newMockStore(), promos)
	ctx := context.Background()

	sut.AddItem(ctx, "cust-1", AddItemInput{ProductID: "pizza-2", Name: "Margherita", Image: "pizza.jpg", Price: price("10.00"), Quantity: 2,
		MenuOptions: &domain.MenuOptions{Side: "salad"}})
	sut.SetScheduledTime(ctx, "cust-1", &domain.ScheduledTime{Date: "2026-09-01", Time: "20:00"})

	view := sut.Checkout(ctx, "cust-1")

	require.Len(t, view.Lines, 1)
	line := view.Lines[0]
	assert.Equal(t, "pizza-2", line.ProductID)
	assert.Equal(t, "Margherita", line.Name)
	assert.Equal(t, "pizza.jpg", line.Image)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, "8.00", line.UnitPrice.StringFixed(2))
	require.NotNil(t, line.MenuOptions)
	assert.Equal(t, "salad", line.MenuOptions.Side)
	assert.Equal(t, "16.00", view.Total.StringFixed(2))
	require.NotNil(t, view.ScheduledTime)
	assert.Equal(t, "20:00", view.ScheduledTime.Time)
}
