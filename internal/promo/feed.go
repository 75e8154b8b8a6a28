package promo

import (
	"context"

	"github.com/nabilnabti/tapeat-cart/internal/domain"
)

// Feed supplies the currently-active promotion list for a restaurant.
// Filtering by status and date window belongs to the feed; the pricing
// engine never sees an inactive or expired promotion.
type Feed interface {
	ActivePromotions(ctx context.Context, restaurantID string) ([]domain.Promotion, error)
}
