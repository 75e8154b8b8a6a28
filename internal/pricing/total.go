package pricing

import (
	"github.com/nabilnabti/tapeat-cart/internal/domain"
	"github.com/shopspring/decimal"
)

// Total sums the contribution of every line. Summation happens at full
// precision; callers round to two decimals at presentation time only.
func Total(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(Contribution(l))
	}
	return total
}

// Contribution is what one line adds to the cart total under its billing
// mode:
//   - bogo: every second unit is free, ceil(q/2) units are billed.
//   - pair_discount: each full pair bills one unit at the original price and
//     one at the discounted price; a leftover unit bills at the original.
//   - standard: quantity times unit price.
func Contribution(l domain.CartLine) decimal.Decimal {
	qty := int64(l.Quantity)
	if qty <= 0 {
		return decimal.Zero
	}

	switch l.PricingMode {
	case domain.PricingBuyOneGetOne:
		paid := (qty + 1) / 2
		return l.UnitPrice.Mul(decimal.NewFromInt(paid))

	case domain.PricingPairDiscount:
		pairs := qty / 2
		remainder := qty % 2
		orig := l.UnitPrice
		if l.OriginalPrice != nil {
			orig = *l.OriginalPrice
		}
		return orig.Add(l.UnitPrice).Mul(decimal.NewFromInt(pairs)).
			Add(orig.Mul(decimal.NewFromInt(remainder)))

	default:
		return l.UnitPrice.Mul(decimal.NewFromInt(qty))
	}
}
