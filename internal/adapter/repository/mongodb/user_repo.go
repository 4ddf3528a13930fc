package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// userCollection embeds Collection[domain.User] under a name that does not hide its Collection method.
type userCollection = Collection[domain.User]

// UserRepository stores users. It is both the generic store and domain.UserRepository.
type UserRepository struct {
	*userCollection
}

func NewUserRepository(db *mongo.Database, log *logger.Logger) *UserRepository {
	return &UserRepository{userCollection: NewCollection[domain.User](db, UsersCollection, log)}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *UserRepository) FindByResetCode(ctx context.Context, hashedCode string, now time.Time) (*domain.User, error) {
	return r.FindOne(ctx, bson.M{
		"passwordResetCode":    hashedCode,
		"passwordResetExpires": bson.M{"$gt": now},
	})
}

func (r *UserRepository) FindAdmins(ctx context.Context) ([]domain.User, error) {
	return r.findMany(ctx, bson.M{"role": domain.RoleAdmin, "active": true})
}

func (r *UserRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M(fields)})
}

func (r *UserRepository) ConsumeAdQuota(ctx context.Context, userID primitive.ObjectID, now time.Time) (*domain.SubscriptionSnapshot, error) {
	ctx, span := r.startSpan(ctx, "consumeAdQuota")
	defer span.End()

	filter := bson.M{
		"_id":                   userID,
		"subscription.isActive": true,
		"subscription.endDate":  bson.M{"$gt": now},
		"$expr": bson.M{"$lt": bson.A{"$subscription.adsUsed", "$subscription.adsQuota"}},
	}
	update := bson.M{
		"$inc": bson.M{"subscription.adsUsed": 1},
		"$set": bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user domain.User
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrQuotaExhausted
		}
		return nil, r.fail(span, "consumeAdQuota", err)
	}
	return user.Subscription, nil
}

func (r *UserRepository) RefundAdQuota(ctx context.Context, userID primitive.ObjectID) error {
	return r.updateOne(ctx,
		bson.M{"_id": userID, "subscription.adsUsed": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"subscription.adsUsed": -1}},
	)
}

func (r *UserRepository) SetSubscription(ctx context.Context, userID primitive.ObjectID, snapshot *domain.SubscriptionSnapshot) error {
	return r.updateByID(ctx, userID, bson.M{"$set": bson.M{
		"subscription": snapshot,
		"updatedAt":    time.Now().UTC(),
	}})
}

func (r *UserRepository) DeactivateSubscription(ctx context.Context, userID primitive.ObjectID) error {
	return r.updateByID(ctx, userID, bson.M{"$set": bson.M{
		"subscription.isActive": false,
		"updatedAt":             time.Now().UTC(),
	}})
}
