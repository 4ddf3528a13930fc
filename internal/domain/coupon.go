package domain

import (
	"math"
	"strings"
	"time"
)

type DiscountType string

const (
	DiscountFixed        DiscountType = "fixed"
	DiscountPercentage   DiscountType = "percentage"
	DiscountFreeShipping DiscountType = "free_shipping"
)

type Coupon struct {
	Base          `bson:",inline"`
	Code          string       `json:"code" bson:"code" validate:"required,min=3,max=32"`
	ExpiryDate    time.Time    `json:"expiryDate" bson:"expiryDate" validate:"required"`
	DiscountValue float64      `json:"discountValue" bson:"discountValue" validate:"gte=0"`
	DiscountType  DiscountType `json:"discountType" bson:"discountType" validate:"required,oneof=fixed percentage free_shipping"`
	MaxUses       *int         `json:"maxUses,omitempty" bson:"maxUses,omitempty" validate:"omitempty,min=1"`
	UsedCount     int          `json:"usedCount" bson:"usedCount"`
	IsActive      bool         `json:"isActive" bson:"isActive"`
}

// NormalizeCouponCode is the stored form of a coupon code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Exhausted reports whether the coupon reached its usage limit.
func (c *Coupon) Exhausted() bool {
	return c.MaxUses != nil && c.UsedCount >= *c.MaxUses
}

// Discount returns the amount taken off amount, never more than amount.
func (c *Coupon) Discount(amount float64) float64 {
	var d float64
	switch c.DiscountType {
	case DiscountFixed:
		d = c.DiscountValue
	case DiscountPercentage:
		d = amount * c.DiscountValue / 100
	}
	d = math.Min(d, amount)
	return math.Round(d*100) / 100
}

var (
	CouponCreatable   = []string{"code", "expiryDate", "discountValue", "discountType", "maxUses", "isActive"}
	CouponSearchable  = []string{"code"}
	CouponExactFields = []string{"code", "discountType"}
)
