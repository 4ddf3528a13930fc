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

// notificationCollection embeds Collection[domain.Notification] under a name that does not hide its Collection method.
type notificationCollection = Collection[domain.Notification]

type NotificationRepository struct {
	*notificationCollection
}

func NewNotificationRepository(db *mongo.Database, log *logger.Logger) *NotificationRepository {
	return &NotificationRepository{notificationCollection: NewCollection[domain.Notification](db, NotificationsCollection, log)}
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	return r.updateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"isRead": true, "updatedAt": time.Now().UTC()}},
	)
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.updateMany(ctx,
		bson.M{"userId": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "updatedAt": time.Now().UTC()}},
	)
}
