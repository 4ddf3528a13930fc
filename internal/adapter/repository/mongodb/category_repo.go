package mongodb

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// categoryCollection embeds Collection[domain.Category] under a name that does not hide its Collection method.
type categoryCollection = Collection[domain.Category]

type CategoryRepository struct {
	*categoryCollection
}

func NewCategoryRepository(db *mongo.Database, log *logger.Logger) *CategoryRepository {
	return &CategoryRepository{categoryCollection: NewCollection[domain.Category](db, CategoriesCollection, log)}
}

func (r *CategoryRepository) SetImage(ctx context.Context, id primitive.ObjectID, url string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"image": url, "updatedAt": time.Now().UTC()}})
}
