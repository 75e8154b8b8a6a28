package domain

import "time"

type PromotionType string

const (
	PromotionDouble             PromotionType = "double"
	PromotionDiscount           PromotionType = "discount"
	PromotionFree               PromotionType = "free"
	PromotionSecondItemDiscount PromotionType = "second_item_discount"
)

type PromotionStatus string

const (
	PromotionActive   PromotionStatus = "active"
	PromotionInactive PromotionStatus = "inactive"
	PromotionExpired  PromotionStatus = "expired"
)

// PromotionConditions carries the per-type parameters. Which fields matter
// depends on Type: double uses ProductID only, discount and
// second_item_discount use ProductID + DiscountPercent, free uses ProductID
// (the qualifying product) + FreeProductID (the rewarded one).
type PromotionConditions struct {
	ProductID       string  `json:"product_id,omitempty" bson:"product_id,omitempty"`
	DiscountPercent float64 `json:"discount_percent,omitempty" bson:"discount_percent,omitempty"`
	FreeProductID   string  `json:"free_product_id,omitempty" bson:"free_product_id,omitempty"`
}

type Promotion struct {
	ID           string              `json:"id" bson:"_id,omitempty"`
	RestaurantID string              `json:"restaurant_id" bson:"restaurant_id"`
	Type         PromotionType       `json:"type" bson:"type"`
	Status       PromotionStatus     `json:"status" bson:"status"`
	Conditions   PromotionConditions `json:"conditions" bson:"conditions"`
	StartsAt     *time.Time          `json:"starts_at,omitempty" bson:"starts_at,omitempty"`
	EndsAt       *time.Time          `json:"ends_at,omitempty" bson:"ends_at,omitempty"`
}
