package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// companyCollection embeds Collection[domain.Company] under a name that does not hide its Collection method.
type companyCollection = Collection[domain.Company]

type CompanyRepository struct {
	*companyCollection
}

func NewCompanyRepository(db *mongo.Database, log *logger.Logger) *CompanyRepository {
	return &CompanyRepository{companyCollection: NewCollection[domain.Company](db, CompaniesCollection, log)}
}

func (r *CompanyRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
}

func (r *CompanyRepository) SetRating(ctx context.Context, id primitive.ObjectID, average float64, quantity int) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"ratingsAverage":  average,
		"ratingsQuantity": quantity,
	}})
}

func (r *CompanyRepository) SetApproval(ctx context.Context, id primitive.ObjectID, approved bool) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"isApproved": approved,
		"updatedAt":  time.Now().UTC(),
	}})
}

func (r *CompanyRepository) SetMedia(ctx context.Context, id primitive.ObjectID, field, url string) error {
	if field != "logo" && field != "video" {
		return fmt.Errorf("unsupported media field %q", field)
	}
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		field:       url,
		"updatedAt": time.Now().UTC(),
	}})
}
