package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingMode tells the total aggregator which billing formula a line follows.
// It is derived together with the promotion label and travels with the line,
// so totals never depend on parsing display text.
type PricingMode string

const (
	PricingStandard     PricingMode = "standard"
	PricingBuyOneGetOne PricingMode = "bogo"
	PricingPairDiscount PricingMode = "pair_discount"
)

// MenuOptions records the structured choices made for a composite menu item.
type MenuOptions struct {
	Drink  string   `json:"drink,omitempty"`
	Side   string   `json:"side,omitempty"`
	Sauces []string `json:"sauces,omitempty"`
}

// CartLine is one priced entry in a customer's cart. UnitPrice is the
// effective (post-promotion) price; OriginalPrice is only present when a
// promotion changed what the customer pays.
type CartLine struct {
	ProductID           string           `json:"product_id"`
	Name                string           `json:"name"`
	Image               string           `json:"image,omitempty"`
	Quantity            int              `json:"quantity"`
	UnitPrice           decimal.Decimal  `json:"unit_price"`
	OriginalPrice       *decimal.Decimal `json:"original_price,omitempty"`
	PromotionLabel      string           `json:"promotion_label,omitempty"`
	PricingMode         PricingMode      `json:"pricing_mode"`
	ExcludedIngredients []string         `json:"excluded_ingredients,omitempty"`
	MenuOptions         *MenuOptions     `json:"menu_options,omitempty"`
}

// ScheduledTime is an optional pickup/delivery slot carried through checkout.
// It is orthogonal to pricing.
type ScheduledTime struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type Cart struct {
	CustomerID    string         `json:"customer_id"`
	Lines         []CartLine     `json:"lines"`
	ScheduledTime *ScheduledTime `json:"scheduled_time,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// CheckoutLine is the flat, promotion-bookkeeping-free shape the checkout
// flow submits as an order line.
type CheckoutLine struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Image       string          `json:"image,omitempty"`
	MenuOptions *MenuOptions    `json:"menu_options,omitempty"`
}

type CheckoutView struct {
	Lines         []CheckoutLine  `json:"lines"`
	Total         decimal.Decimal `json:"total"`
	ScheduledTime *ScheduledTime  `json:"scheduled_time,omitempty"`
}
