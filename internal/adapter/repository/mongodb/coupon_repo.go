package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// couponCollection embeds Collection[domain.Coupon] under a name that does not hide its Collection method.
type couponCollection = Collection[domain.Coupon]

type CouponRepository struct {
	*couponCollection
}

func NewCouponRepository(db *mongo.Database, log *logger.Logger) *CouponRepository {
	return &CouponRepository{couponCollection: NewCollection[domain.Coupon](db, CouponsCollection, log)}
}

func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return r.FindOne(ctx, bson.M{"code": domain.NormalizeCouponCode(code)})
}

// Redeem claims one use. The guard and the increment are a single
// findAndModify, so concurrent redemptions never exceed maxUses.
func (r *CouponRepository) Redeem(ctx context.Context, code string, now time.Time) (*domain.Coupon, error) {
	ctx, span := r.startSpan(ctx, "redeem")
	defer span.End()

	filter := bson.M{
		"code":       domain.NormalizeCouponCode(code),
		"isActive":   true,
		"expiryDate": bson.M{"$gt": now},
		"$or": bson.A{
			bson.M{"maxUses": nil},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$usedCount", "$maxUses"}}},
		},
	}
	update := bson.M{
		"$inc": bson.M{"usedCount": 1},
		"$set": bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var coupon domain.Coupon
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&coupon); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCouponUnavailable
		}
		return nil, r.fail(span, "redeem", err)
	}
	return &coupon, nil
}

func (r *CouponRepository) DeactivateExhausted(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.updateMany(ctx, bson.M{
		"_id":      id,
		"isActive": true,
		"maxUses":  bson.M{"$ne": nil},
		"$expr":    bson.M{"$gte": bson.A{"$usedCount", "$maxUses"}},
	}, bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}})
	return err
}

func (r *CouponRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.updateMany(ctx, bson.M{
		"isActive":   true,
		"expiryDate": bson.M{"$lte": now},
	}, bson.M{"$set": bson.M{"isActive": false, "updatedAt": now}})
}
