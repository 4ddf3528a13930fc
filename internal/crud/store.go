// Package crud provides the generic list/get/create/update/delete operations
// shared by every resource, on top of a document store capability.
package crud

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Populate resolves Field (an ObjectID reference) into As, copying the Select
// fields of the matching document in Collection.
type Populate struct {
	Field      string
	As         string
	Collection string
	Select     []string
}

// FindOptions is one fully shaped list read.
type FindOptions struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.M
	Skip       int64
	Limit      int64
	Populate   []Populate
}

// Store is the persistence capability the factory needs from a collection.
// FindByID and Delete return domain.ErrNotFound for a missing document and
// Insert and Replace return *domain.DuplicateKeyError on unique violations.
type Store[T any] interface {
	Collection() string
	Count(ctx context.Context, filter bson.M) (int64, error)
	Find(ctx context.Context, opts FindOptions) ([]T, error)
	FindByID(ctx context.Context, id primitive.ObjectID, populate ...Populate) (*T, error)
	Insert(ctx context.Context, doc *T) error
	Replace(ctx context.Context, id primitive.ObjectID, doc *T) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ErrCacheMiss is returned by ListCache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// ListCache stores encoded list responses.
type ListCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Document is implemented by pointers to entities embedding domain.Base.
type Document[T any] interface {
	*T
	GetID() primitive.ObjectID
	SetID(primitive.ObjectID)
	Stamp(time.Time)
}
