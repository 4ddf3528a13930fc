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
	"go.uber.org/zap"
)

// reviewCollection embeds Collection[domain.Review] under a name that does not hide its Collection method.
type reviewCollection = Collection[domain.Review]

type ReviewRepository struct {
	*reviewCollection
}

func NewReviewRepository(db *mongo.Database, log *logger.Logger) *ReviewRepository {
	return &ReviewRepository{reviewCollection: NewCollection[domain.Review](db, ReviewsCollection, log)}
}

// RatingStats averages ratings over the approved reviews of a company.
func (r *ReviewRepository) RatingStats(ctx context.Context, companyID primitive.ObjectID) (float64, int, error) {
	ctx, span := r.startSpan(ctx, "ratingStats")
	defer span.End()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "companyId", Value: companyID},
			{Key: "isApproved", Value: true},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$companyId"},
			{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: "$ratings"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, r.fail(span, "ratingStats", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		AvgRating float64 `bson:"avgRating"`
		Count     int     `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, r.fail(span, "ratingStats", err)
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	r.logger.Debug("Computed rating stats",
		zap.String("company_id", companyID.Hex()),
		zap.Float64("average", results[0].AvgRating),
		zap.Int("count", results[0].Count),
	)
	return results[0].AvgRating, results[0].Count, nil
}

func (r *ReviewRepository) ExistsForUser(ctx context.Context, userID, companyID primitive.ObjectID) (bool, error) {
	ctx, span := r.startSpan(ctx, "existsForUser")
	defer span.End()

	n, err := r.coll.CountDocuments(ctx,
		bson.M{"userId": userID, "companyId": companyID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, r.fail(span, "existsForUser", err)
	}
	return n > 0, nil
}

func (r *ReviewRepository) SetApproval(ctx context.Context, id primitive.ObjectID, approved bool) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"isApproved": approved,
		"updatedAt":  time.Now().UTC(),
	}})
}

func (r *ReviewRepository) DeleteByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	ctx, span := r.startSpan(ctx, "deleteByCompany")
	defer span.End()

	res, err := r.coll.DeleteMany(ctx, bson.M{"companyId": companyID})
	if err != nil {
		return 0, r.fail(span, "deleteByCompany", err)
	}
	return res.DeletedCount, nil
}
