package promo

import (
	"context"
	"sync"
	"time"

	"github.com/nabilnabti/tapeat-cart/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Provider owns the active-promotion set for the current restaurant context.
// Loading is asynchronous and best-effort: until a load succeeds, Active
// returns an empty set and pricing proceeds at catalog prices. Fetch errors
// are swallowed. A circuit breaker keeps a broken feed from being hammered
// and singleflight collapses concurrent refreshes for the same restaurant.
type Provider struct {
	feed    Feed
	breaker *gobreaker.CircuitBreaker[[]domain.Promotion]
	logger  *zap.Logger
	sfg     singleflight.Group

	mu           sync.RWMutex
	restaurantID string
	promos       []domain.Promotion
	loaded       bool
}

func NewProvider(feed Feed, logger *zap.Logger) *Provider {
	breaker := gobreaker.NewCircuitBreaker[[]domain.Promotion](gobreaker.Settings{
		Name:        "promotion-feed",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &Provider{
		feed:    feed,
		breaker: breaker,
		logger:  logger,
	}
}

// Active returns the promotions loaded for the current restaurant, or an
// empty slice while no load has completed.
func (p *Provider) Active() []domain.Promotion {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.promos
}

// Loaded reports whether a fetch for the current restaurant has completed
// successfully.
func (p *Provider) Loaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loaded
}

// Refresh switches the provider to the given restaurant and fetches its
// active promotions. Changing restaurant empties the set immediately; lines
// priced before the fetch resolves see no promotions and are not repriced
// afterwards.
func (p *Provider) Refresh(ctx context.Context, restaurantID string) {
	p.mu.Lock()
	if p.restaurantID != restaurantID {
		p.restaurantID = restaurantID
		p.promos = nil
		p.loaded = false
	}
	p.mu.Unlock()

	if p.feed == nil {
		return
	}

	promos, err, _ := p.sfg.Do(restaurantID, func() (interface{}, error) {
		return p.breaker.Execute(func() ([]domain.Promotion, error) {
			return p.feed.ActivePromotions(ctx, restaurantID)
		})
	})
	if err != nil {
		p.logger.Warn("promotion fetch failed, pricing without promotions",
			zap.String("restaurant_id", restaurantID),
			zap.Error(err))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.restaurantID != restaurantID {
		// restaurant changed while the fetch was in flight
		return
	}
	p.promos = promos.([]domain.Promotion)
	p.loaded = true
}
