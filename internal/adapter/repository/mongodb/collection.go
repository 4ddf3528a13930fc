package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("adwall-service/mongodb")

// Collection implements crud.Store for documents of type T.
type Collection[T any] struct {
	coll   *mongo.Collection
	logger *logger.Logger
}

func NewCollection[T any](db *mongo.Database, name string, log *logger.Logger) *Collection[T] {
	return &Collection[T]{
		coll:   db.Collection(name),
		logger: log.Named("mongodb").With(zap.String("collection", name)),
	}
}

func (c *Collection[T]) Collection() string { return c.coll.Name() }

func (c *Collection[T]) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "mongodb."+c.coll.Name()+"."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "mongodb"),
			attribute.String("db.mongodb.collection", c.coll.Name()),
			attribute.String("db.operation", op),
		),
	)
}

func (c *Collection[T]) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	var dup *domain.DuplicateKeyError
	if errors.As(err, &dup) {
		c.logger.Warn("Duplicate key", zap.String("op", op), zap.String("field", dup.Field))
		return err
	}
	c.logger.Error("MongoDB operation failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("mongodb %s %s: %w", c.coll.Name(), op, err)
}

func (c *Collection[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, span := c.startSpan(ctx, "count")
	defer span.End()

	if filter == nil {
		filter = bson.M{}
	}
	n, err := c.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, c.fail(span, "count", err)
	}
	return n, nil
}

func (c *Collection[T]) Find(ctx context.Context, opts crud.FindOptions) ([]T, error) {
	ctx, span := c.startSpan(ctx, "find")
	defer span.End()

	if len(opts.Populate) > 0 {
		out, err := c.aggregate(ctx, opts)
		if err != nil {
			return nil, c.fail(span, "find", err)
		}
		return out, nil
	}

	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		findOpts.SetSort(opts.Sort)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	if opts.Projection != nil {
		findOpts.SetProjection(opts.Projection)
	}

	filter := opts.Filter
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := c.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, c.fail(span, "find", err)
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, c.fail(span, "find", err)
	}
	span.SetAttributes(attribute.Int("db.result.count", len(out)))
	return out, nil
}

func (c *Collection[T]) FindByID(ctx context.Context, id primitive.ObjectID, populate ...crud.Populate) (*T, error) {
	ctx, span := c.startSpan(ctx, "findById")
	defer span.End()

	if len(populate) > 0 {
		out, err := c.aggregate(ctx, crud.FindOptions{Filter: bson.M{"_id": id}, Limit: 1, Populate: populate})
		if err != nil {
			return nil, c.fail(span, "findById", err)
		}
		if len(out) == 0 {
			return nil, domain.ErrNotFound
		}
		return &out[0], nil
	}

	var doc T
	if err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, c.fail(span, "findById", err)
	}
	return &doc, nil
}

// FindOne returns the first document matching filter.
func (c *Collection[T]) FindOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*T, error) {
	ctx, span := c.startSpan(ctx, "findOne")
	defer span.End()

	var doc T
	if err := c.coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, c.fail(span, "findOne", err)
	}
	return &doc, nil
}

func (c *Collection[T]) Insert(ctx context.Context, doc *T) error {
	ctx, span := c.startSpan(ctx, "insert")
	defer span.End()

	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return c.fail(span, "insert", duplicateKeyError(err))
	}
	return nil
}

func (c *Collection[T]) Replace(ctx context.Context, id primitive.ObjectID, doc *T) error {
	ctx, span := c.startSpan(ctx, "replace")
	defer span.End()

	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return c.fail(span, "replace", duplicateKeyError(err))
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := c.startSpan(ctx, "delete")
	defer span.End()

	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return c.fail(span, "delete", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// updateByID applies update to one document, ErrNotFound when nothing matched.
func (c *Collection[T]) updateByID(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	return c.updateOne(ctx, bson.M{"_id": id}, update)
}

func (c *Collection[T]) updateOne(ctx context.Context, filter, update bson.M) error {
	ctx, span := c.startSpan(ctx, "updateOne")
	defer span.End()

	res, err := c.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return c.fail(span, "updateOne", duplicateKeyError(err))
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (c *Collection[T]) updateMany(ctx context.Context, filter, update bson.M) (int64, error) {
	ctx, span := c.startSpan(ctx, "updateMany")
	defer span.End()

	res, err := c.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, c.fail(span, "updateMany", err)
	}
	return res.ModifiedCount, nil
}

func (c *Collection[T]) findMany(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	ctx, span := c.startSpan(ctx, "findMany")
	defer span.End()

	cursor, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, c.fail(span, "findMany", err)
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, c.fail(span, "findMany", err)
	}
	return out, nil
}

// aggregate runs a list read with $lookup population.
func (c *Collection[T]) aggregate(ctx context.Context, opts crud.FindOptions) ([]T, error) {
	filter := opts.Filter
	if filter == nil {
		filter = bson.M{}
	}

	pipeline := mongo.Pipeline{{{Key: "$match", Value: filter}}}
	if len(opts.Sort) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: opts.Sort}})
	}
	if opts.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: opts.Skip}})
	}
	if opts.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: opts.Limit}})
	}
	pipeline = append(pipeline, lookupStages(opts.Populate)...)
	if projection := populatedProjection(opts.Projection, opts.Populate); projection != nil {
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: projection}})
	}

	cursor, err := c.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func lookupStages(populate []crud.Populate) []bson.D {
	stages := make([]bson.D, 0, 2*len(populate))
	for _, p := range populate {
		lookup := bson.D{
			{Key: "from", Value: p.Collection},
			{Key: "localField", Value: p.Field},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: p.As},
		}
		if len(p.Select) > 0 {
			fields := bson.D{}
			for _, f := range p.Select {
				fields = append(fields, bson.E{Key: f, Value: 1})
			}
			lookup = append(lookup, bson.E{Key: "pipeline", Value: bson.A{bson.D{{Key: "$project", Value: fields}}}})
		}
		stages = append(stages,
			bson.D{{Key: "$lookup", Value: lookup}},
			bson.D{{Key: "$unwind", Value: bson.D{
				{Key: "path", Value: "$" + p.As},
				{Key: "preserveNullAndEmptyArrays", Value: true},
			}}},
		)
	}
	return stages
}

// populatedProjection keeps populated fields visible in inclusion projections.
func populatedProjection(projection bson.M, populate []crud.Populate) bson.M {
	if projection == nil {
		return nil
	}
	inclusive := false
	for k, v := range projection {
		if k != "_id" && v == 1 {
			inclusive = true
			break
		}
	}
	if !inclusive {
		return projection
	}
	out := make(bson.M, len(projection)+len(populate))
	for k, v := range projection {
		out[k] = v
	}
	for _, p := range populate {
		out[p.As] = 1
	}
	return out
}

var (
	dupKeyField = regexp.MustCompile(`dup key: \{ ?([A-Za-z0-9_.]+):`)
	dupKeyIndex = regexp.MustCompile(`index: ([A-Za-z0-9_.]+)`)
)

// duplicateKeyError turns a unique index violation into a DuplicateKeyError
// naming the first key of the violated index.
func duplicateKeyError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	field := "value"
	if m := dupKeyField.FindStringSubmatch(err.Error()); m != nil {
		field = m[1]
	} else if m := dupKeyIndex.FindStringSubmatch(err.Error()); m != nil {
		field = strings.SplitN(m[1], "_", 2)[0]
	}
	return &domain.DuplicateKeyError{Field: field, Err: err}
}
