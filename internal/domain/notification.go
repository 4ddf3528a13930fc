package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

type Notification struct {
	Base    `bson:",inline"`
	UserID  primitive.ObjectID `json:"userId" bson:"userId" validate:"required"`
	Title   string             `json:"title" bson:"title" validate:"required,max=200"`
	Message string             `json:"message" bson:"message" validate:"max=2000"`
	Type    string             `json:"type" bson:"type" validate:"required"`
	IsRead  bool               `json:"isRead" bson:"isRead"`
	Link    string             `json:"link,omitempty" bson:"link,omitempty"`
}

// Notification types.
const (
	NotifyCompanyCreated      = "company_created"
	NotifyCompanyApproved     = "company_approved"
	NotifyCompanyRejected     = "company_rejected"
	NotifyReviewCreated       = "review_created"
	NotifySubscriptionActive  = "subscription_activated"
	NotifySubscriptionExpiry  = "subscription_expiring"
	NotifySubscriptionExpired = "subscription_expired"
	NotifyGeneral             = "general"
)

var (
	NotificationCreatable   = []string{"userId", "title", "message", "type", "link"}
	NotificationExactFields = []string{"type"}
)
