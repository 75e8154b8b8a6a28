// Package pricing derives the effective price of a cart line under the four
// promotion policies and aggregates line contributions into the cart total.
package pricing

import (
	"fmt"
	"strconv"

	"github.com/nabilnabti/tapeat-cart/internal/domain"
	"github.com/shopspring/decimal"
)

// LineInput carries the quantities the calculator needs besides the line
// itself. Quantity is the resulting quantity of the line after the mutation.
type LineInput struct {
	CatalogPrice decimal.Decimal
	Quantity     int
	// MainQuantity is the cart-wide quantity of the qualifying product for a
	// free promotion; zero when the main product is absent.
	MainQuantity int
	// CombinedQuantity is the cart-wide quantity of the product across all
	// lines, including the change being applied, for second_item_discount.
	CombinedQuantity int
}

// LinePricing is what the calculator decides for a line: the effective unit
// price, the pre-promotion price when one applies, the display label and the
// billing mode the total aggregator dispatches on.
type LinePricing struct {
	UnitPrice     decimal.Decimal
	OriginalPrice *decimal.Decimal
	Label         string
	Mode          domain.PricingMode
}

// PriceLine computes the pricing of a line for the given matched promotion.
// A nil promotion, or one whose conditions are not met, yields the plain
// catalog price with no label.
//
// Policy summary:
//   - double: unit price stays at catalog; even quantities get the "1 offert"
//     label and bill every second unit free at totals time.
//   - discount: always repriced, unit = round2(catalog * (1 - pct/100)).
//   - free: only the rewarded product line changes, and only while the
//     qualifying product is in the cart; at most one unit is free.
//   - second_item_discount: needs a combined quantity of at least two; each
//     full pair bills one unit at catalog and one discounted.
func PriceLine(p *domain.Promotion, productID string, in LineInput) LinePricing {
	if p == nil {
		return standard(in.CatalogPrice)
	}

	switch p.Type {
	case domain.PromotionDouble:
		out := standard(in.CatalogPrice)
		if in.Quantity > 0 && in.Quantity%2 == 0 {
			out.Label = freeLabel(1)
			out.Mode = domain.PricingBuyOneGetOne
		}
		return out

	case domain.PromotionDiscount:
		orig := in.CatalogPrice
		return LinePricing{
			UnitPrice:     discounted(in.CatalogPrice, p.Conditions.DiscountPercent).Round(2),
			OriginalPrice: &orig,
			Label:         "-" + formatPercent(p.Conditions.DiscountPercent) + "%",
			Mode:          domain.PricingStandard,
		}

	case domain.PromotionFree:
		if productID != p.Conditions.FreeProductID || in.MainQuantity < 1 {
			return standard(in.CatalogPrice)
		}
		freeUnits := 1 // at most one free unit per qualifying main line
		orig := in.CatalogPrice
		unit := in.CatalogPrice
		if in.Quantity <= freeUnits {
			unit = decimal.Zero
		}
		return LinePricing{
			UnitPrice:     unit,
			OriginalPrice: &orig,
			Label:         freeLabel(freeUnits),
			Mode:          domain.PricingBuyOneGetOne,
		}

	case domain.PromotionSecondItemDiscount:
		if in.CombinedQuantity < 2 {
			return standard(in.CatalogPrice)
		}
		orig := in.CatalogPrice
		return LinePricing{
			UnitPrice:     discounted(in.CatalogPrice, p.Conditions.DiscountPercent),
			OriginalPrice: &orig,
			Label:         "-" + formatPercent(p.Conditions.DiscountPercent) + "% sur le 2ème",
			Mode:          domain.PricingPairDiscount,
		}
	}

	return standard(in.CatalogPrice)
}

func standard(catalog decimal.Decimal) LinePricing {
	return LinePricing{
		UnitPrice: catalog,
		Mode:      domain.PricingStandard,
	}
}

func discounted(catalog decimal.Decimal, percent float64) decimal.Decimal {
	factor := decimal.NewFromInt(100).Sub(decimal.NewFromFloat(percent)).Div(decimal.NewFromInt(100))
	return catalog.Mul(factor)
}

func formatPercent(percent float64) string {
	return strconv.FormatFloat(percent, 'f', -1, 64)
}

func freeLabel(n int) string {
	if n > 1 {
		return fmt.Sprintf("%d offerts", n)
	}
	return fmt.Sprintf("%d offert", n)
}
