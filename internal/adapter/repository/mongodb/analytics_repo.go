package mongodb

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// analyticsCollection embeds Collection[domain.AnalyticsRecord] under a name that does not hide its Collection method.
type analyticsCollection = Collection[domain.AnalyticsRecord]

type AnalyticsRepository struct {
	*analyticsCollection
}

func NewAnalyticsRepository(db *mongo.Database, log *logger.Logger) *AnalyticsRepository {
	return &AnalyticsRepository{analyticsCollection: NewCollection[domain.AnalyticsRecord](db, AnalyticsCollection, log)}
}

func (r *AnalyticsRepository) CountByEvent(ctx context.Context, companyID primitive.ObjectID) (map[string]int64, error) {
	ctx, span := r.startSpan(ctx, "countByEvent")
	defer span.End()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "companyId", Value: companyID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$event"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, r.fail(span, "countByEvent", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Event string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, r.fail(span, "countByEvent", err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Event] = row.Count
	}
	return out, nil
}
