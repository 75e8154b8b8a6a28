package promo

import "github.com/nabilnabti/tapeat-cart/internal/domain"

// Match returns the first promotion whose conditions reference the product,
// either as the triggering product or as the rewarded (free) product. At most
// one promotion applies to a line at a time; list order is the tie-break.
func Match(promos []domain.Promotion, productID string) (domain.Promotion, bool) {
	if productID == "" {
		return domain.Promotion{}, false
	}
	for _, p := range promos {
		if p.Conditions.ProductID == productID || p.Conditions.FreeProductID == productID {
			return p, true
		}
	}
	return domain.Promotion{}, false
}
