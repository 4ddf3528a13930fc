package domain

import (
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlanType string

const (
	PlanBasic    PlanType = "basic"
	PlanStandard PlanType = "standard"
	PlanPremium  PlanType = "premium"
	PlanCustom   PlanType = "custom"
)

type PlanOption struct {
	ID                primitive.ObjectID   `json:"_id" bson:"_id"`
	Duration          int                  `json:"duration" bson:"duration" validate:"required,min=1"`
	Price             float64              `json:"price" bson:"price" validate:"gte=0"`
	Discount          float64              `json:"discount" bson:"discount" validate:"gte=0,lte=100"`
	FinalPrice        float64              `json:"finalPrice" bson:"finalPrice"`
	AdsQuota          int                  `json:"adsQuota" bson:"adsQuota" validate:"gte=0"`
	AllowedCategories []primitive.ObjectID `json:"allowedCategories,omitempty" bson:"allowedCategories,omitempty"`
}

// Price after the percentage discount, rounded to cents.
func (o *PlanOption) ComputeFinalPrice() float64 {
	return math.Round(o.Price*(100-o.Discount)) / 100
}

// AllowsCategory reports whether ads in categoryID are covered. An empty list allows all.
func (o *PlanOption) AllowsCategory(categoryID primitive.ObjectID) bool {
	if len(o.AllowedCategories) == 0 {
		return true
	}
	for _, id := range o.AllowedCategories {
		if id == categoryID {
			return true
		}
	}
	return false
}

type Plan struct {
	Base     `bson:",inline"`
	Name     string       `json:"name" bson:"name" validate:"required,min=2,max=64"`
	Code     string       `json:"code" bson:"code" validate:"required,min=2,max=32"`
	Type     PlanType     `json:"type" bson:"type" validate:"required,oneof=basic standard premium custom"`
	Options  []PlanOption `json:"options" bson:"options" validate:"required,min=1,dive"`
	Features []string     `json:"features,omitempty" bson:"features,omitempty"`
	IsActive bool         `json:"isActive" bson:"isActive"`
}

// Option finds an option by id.
func (p *Plan) Option(id primitive.ObjectID) (*PlanOption, bool) {
	for i := range p.Options {
		if p.Options[i].ID == id {
			return &p.Options[i], true
		}
	}
	return nil, false
}

var (
	PlanCreatable   = []string{"name", "code", "type", "options", "features", "isActive"}
	PlanSearchable  = []string{"name", "code"}
	PlanExactFields = []string{"type", "code"}
)
