package mongodb

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names.
const (
	UsersCollection         = "users"
	CategoriesCollection    = "categories"
	CompaniesCollection     = "companies"
	ReviewsCollection       = "reviews"
	CouponsCollection       = "coupons"
	PlansCollection         = "plans"
	SubscriptionsCollection = "subscriptions"
	CampaignsCollection     = "campaigns"
	NotificationsCollection = "notifications"
	AnalyticsCollection     = "analytics"
	MiaCollection           = "mia"
)

func unique(keys ...string) mongo.IndexModel {
	d := bson.D{}
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: 1})
	}
	return mongo.IndexModel{Keys: d, Options: options.Index().SetUnique(true)}
}

func index(keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys}
}

var collectionIndexes = map[string][]mongo.IndexModel{
	UsersCollection: {
		unique("email"),
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		index(bson.D{{Key: "role", Value: 1}}),
	},
	CategoriesCollection: {
		unique("nameAr"),
		unique("nameEn"),
		unique("nameTr"),
	},
	CompaniesCollection: {
		index(bson.D{{Key: "categoryId", Value: 1}, {Key: "isApproved", Value: 1}}),
		index(bson.D{{Key: "userId", Value: 1}}),
		index(bson.D{{Key: "slug", Value: 1}}),
	},
	ReviewsCollection: {
		unique("userId", "companyId"),
		index(bson.D{{Key: "companyId", Value: 1}, {Key: "isApproved", Value: 1}}),
	},
	CouponsCollection: {
		unique("code"),
	},
	PlansCollection: {
		unique("code"),
	},
	SubscriptionsCollection: {
		{Keys: bson.D{{Key: "paymentSubscriptionId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		index(bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}}),
		index(bson.D{{Key: "status", Value: 1}, {Key: "expiresAt", Value: 1}}),
	},
	CampaignsCollection: {
		index(bson.D{{Key: "userId", Value: 1}}),
		index(bson.D{{Key: "companyId", Value: 1}}),
	},
	NotificationsCollection: {
		index(bson.D{{Key: "userId", Value: 1}, {Key: "isRead", Value: 1}, {Key: "createdAt", Value: -1}}),
	},
	AnalyticsCollection: {
		index(bson.D{{Key: "companyId", Value: 1}, {Key: "event", Value: 1}}),
	},
}

// EnsureIndexes creates the indexes every collection relies on. Failures are
// logged and the first one returned; existing indexes are left alone.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var firstErr error
	for name, models := range collectionIndexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			log.Error("Failed to create indexes", zap.String("collection", name), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		log.Debug("Ensured indexes", zap.String("collection", name))
	}
	return firstErr
}
