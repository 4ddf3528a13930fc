package mongodb

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var liveStatuses = bson.A{domain.SubscriptionActive, domain.SubscriptionPartiallyExpired}

// subscriptionCollection embeds Collection[domain.Subscription] under a name that does not hide its Collection method.
type subscriptionCollection = Collection[domain.Subscription]

type SubscriptionRepository struct {
	*subscriptionCollection
}

func NewSubscriptionRepository(db *mongo.Database, log *logger.Logger) *SubscriptionRepository {
	return &SubscriptionRepository{subscriptionCollection: NewCollection[domain.Subscription](db, SubscriptionsCollection, log)}
}

func (r *SubscriptionRepository) FindByPaymentID(ctx context.Context, paymentSubscriptionID string) (*domain.Subscription, error) {
	return r.FindOne(ctx, bson.M{"paymentSubscriptionId": paymentSubscriptionID})
}

// FindCurrentByUser returns the live subscription expiring last.
func (r *SubscriptionRepository) FindCurrentByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Subscription, error) {
	return r.FindOne(ctx,
		bson.M{"userId": userID, "status": bson.M{"$in": liveStatuses}},
		options.FindOne().SetSort(bson.D{{Key: "expiresAt", Value: -1}}),
	)
}

func (r *SubscriptionRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.SubscriptionStatus) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}})
}

func (r *SubscriptionRepository) MarkPartiallyExpired(ctx context.Context, id primitive.ObjectID) error {
	return r.updateOne(ctx,
		bson.M{"_id": id, "status": domain.SubscriptionActive},
		bson.M{"$set": bson.M{"status": domain.SubscriptionPartiallyExpired, "updatedAt": time.Now().UTC()}},
	)
}

func (r *SubscriptionRepository) Due(ctx context.Context, t time.Time) ([]domain.Subscription, error) {
	return r.findMany(ctx, bson.M{
		"status":    bson.M{"$in": liveStatuses},
		"expiresAt": bson.M{"$lte": t},
	})
}

func (r *SubscriptionRepository) DueForNotice(ctx context.Context, t time.Time) ([]domain.Subscription, error) {
	return r.findMany(ctx, bson.M{
		"status":    bson.M{"$in": liveStatuses},
		"notified":  false,
		"expiresAt": bson.M{"$lte": t},
	})
}

func (r *SubscriptionRepository) MarkNotified(ctx context.Context, id primitive.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"notified": true, "updatedAt": time.Now().UTC()}})
}
