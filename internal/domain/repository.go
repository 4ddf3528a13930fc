package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The interfaces below cover what the generic store cannot express.
// Lookups by id return ErrNotFound when no document matches.

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByResetCode(ctx context.Context, hashedCode string, now time.Time) (*User, error)
	FindAdmins(ctx context.Context) ([]User, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error
	// ConsumeAdQuota increments adsUsed when the snapshot still allows an ad and
	// returns the updated snapshot, or ErrQuotaExhausted.
	ConsumeAdQuota(ctx context.Context, userID primitive.ObjectID, now time.Time) (*SubscriptionSnapshot, error)
	// RefundAdQuota gives back an ad consumed for a post that failed to persist.
	RefundAdQuota(ctx context.Context, userID primitive.ObjectID) error
	SetSubscription(ctx context.Context, userID primitive.ObjectID, snapshot *SubscriptionSnapshot) error
	DeactivateSubscription(ctx context.Context, userID primitive.ObjectID) error
}

type CompanyRepository interface {
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	SetRating(ctx context.Context, id primitive.ObjectID, average float64, quantity int) error
	SetApproval(ctx context.Context, id primitive.ObjectID, approved bool) error
	SetMedia(ctx context.Context, id primitive.ObjectID, field, url string) error
}

type ReviewRepository interface {
	// RatingStats averages the ratings of approved reviews for a company.
	RatingStats(ctx context.Context, companyID primitive.ObjectID) (average float64, count int, err error)
	ExistsForUser(ctx context.Context, userID, companyID primitive.ObjectID) (bool, error)
	SetApproval(ctx context.Context, id primitive.ObjectID, approved bool) error
	DeleteByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error)
}

type CategoryRepository interface {
	SetImage(ctx context.Context, id primitive.ObjectID, url string) error
}

type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	// Redeem increments usedCount of an active, unexpired coupon with remaining
	// uses in a single conditional update. It returns ErrCouponUnavailable when
	// the guard does not match.
	Redeem(ctx context.Context, code string, now time.Time) (*Coupon, error)
	DeactivateExhausted(ctx context.Context, id primitive.ObjectID) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type SubscriptionRepository interface {
	FindByPaymentID(ctx context.Context, paymentSubscriptionID string) (*Subscription, error)
	FindCurrentByUser(ctx context.Context, userID primitive.ObjectID) (*Subscription, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status SubscriptionStatus) error
	MarkPartiallyExpired(ctx context.Context, id primitive.ObjectID) error
	// Due lists active subscriptions whose expiresAt is before t.
	Due(ctx context.Context, t time.Time) ([]Subscription, error)
	// DueForNotice lists active, not yet notified subscriptions expiring before t.
	DueForNotice(ctx context.Context, t time.Time) ([]Subscription, error)
	MarkNotified(ctx context.Context, id primitive.ObjectID) error
}

type NotificationRepository interface {
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type AnalyticsRepository interface {
	CountByEvent(ctx context.Context, companyID primitive.ObjectID) (map[string]int64, error)
}

// FileStorage persists uploaded media and returns its public URL.
type FileStorage interface {
	Upload(ctx context.Context, folder, fileName, contentType string, data []byte) (string, error)
}

// EventPublisher emits domain events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Mailer delivers e-mail.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// Event subjects.
const (
	SubjectCompanyCreated        = "adwall.company.created"
	SubjectCompanyApproved       = "adwall.company.approved"
	SubjectReviewCreated         = "adwall.review.created"
	SubjectCouponRedeemed        = "adwall.coupon.redeemed"
	SubjectSubscriptionCreated   = "adwall.subscription.created"
	SubjectSubscriptionCanceled  = "adwall.subscription.canceled"
	SubjectSubscriptionExpired   = "adwall.subscription.expired"
	SubjectAnalyticsEventTracked = "adwall.analytics.tracked"
)
