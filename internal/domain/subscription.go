package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubscriptionStatus string

const (
	SubscriptionActive           SubscriptionStatus = "active"
	SubscriptionPartiallyExpired SubscriptionStatus = "partially_expired"
	SubscriptionExpired          SubscriptionStatus = "expired"
	SubscriptionCanceled         SubscriptionStatus = "canceled"
)

type Subscription struct {
	Base                  `bson:",inline"`
	UserID                primitive.ObjectID `json:"userId" bson:"userId" validate:"required"`
	PlanID                primitive.ObjectID `json:"planId" bson:"planId" validate:"required"`
	OptionID              primitive.ObjectID `json:"optionId" bson:"optionId" validate:"required"`
	PaymentSubscriptionID string             `json:"paymentSubscriptionId,omitempty" bson:"paymentSubscriptionId,omitempty"`
	Status                SubscriptionStatus `json:"status" bson:"status" validate:"required,oneof=active partially_expired expired canceled"`
	StartedAt             time.Time          `json:"startedAt" bson:"startedAt"`
	ExpiresAt             time.Time          `json:"expiresAt" bson:"expiresAt" validate:"required"`
	Notified              bool               `json:"notified" bson:"notified"`

	User Ref `json:"user,omitempty" bson:"user,omitempty"`
	Plan Ref `json:"plan,omitempty" bson:"plan,omitempty"`
}

var (
	SubscriptionExactFields = []string{"status", "paymentSubscriptionId"}
)

// Payment provider event types.
const (
	PaymentSubscriptionCreated  = "subscription.created"
	PaymentSubscriptionCanceled = "subscription.canceled"
)

// PaymentEvent is a verified notification from the payment provider.
type PaymentEvent struct {
	ID   string           `json:"id"`
	Type string           `json:"type"`
	Data PaymentEventData `json:"data"`
}

type PaymentEventData struct {
	PaymentSubscriptionID string `json:"subscriptionId"`
	UserID                string `json:"userId"`
	PlanID                string `json:"planId"`
	OptionID              string `json:"optionId"`
}
