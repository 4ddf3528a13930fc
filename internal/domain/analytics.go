package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

type AnalyticsEvent string

const (
	EventView     AnalyticsEvent = "view"
	EventClick    AnalyticsEvent = "click"
	EventCall     AnalyticsEvent = "call"
	EventWhatsapp AnalyticsEvent = "whatsapp"
	EventShare    AnalyticsEvent = "share"
)

type AnalyticsRecord struct {
	Base      `bson:",inline"`
	CompanyID primitive.ObjectID  `json:"companyId" bson:"companyId" validate:"required"`
	Event     AnalyticsEvent      `json:"event" bson:"event" validate:"required,oneof=view click call whatsapp share"`
	UserID    *primitive.ObjectID `json:"userId,omitempty" bson:"userId,omitempty"`
	Meta      map[string]string   `json:"meta,omitempty" bson:"meta,omitempty" validate:"max=20"`
}

// AnalyticsSummary is the per-event count for one company.
type AnalyticsSummary struct {
	CompanyID primitive.ObjectID `json:"companyId"`
	Total     int64              `json:"total"`
	Events    map[string]int64   `json:"events"`
}

var AnalyticsCreatable = []string{"companyId", "event", "meta"}
