package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/newrise0410/piano-academy-app-sub002/core/notification"
)

type NotificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

var _ notification.Repository = (*NotificationRepository)(nil)

func (repo *NotificationRepository) col() *mongo.Collection {
	return repo.db.collection(colNotifications)
}

func (repo *NotificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	n.ID = uuid.NewString()
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}
	if _, err := repo.col().InsertOne(ctx, n); err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return n, nil
}

func (repo *NotificationRepository) QueryNotifications(ctx context.Context, targetID string) ([]notification.Notification, error) {
	cur, err := repo.col().Find(ctx, bson.M{"targetId": targetID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	var notifications []notification.Notification
	if err = cur.All(ctx, &notifications); err != nil {
		return nil, errors.Wrap(err, "decoding notifications")
	}
	return notifications, nil
}

func (repo *NotificationRepository) MarkNotificationRead(ctx context.Context, id string) (notification.Notification, error) {
	var n notification.Notification
	err := repo.col().FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"isRead": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "marking notification read")
	}
	return n, nil
}

func (repo *NotificationRepository) MarkAllNotificationsRead(ctx context.Context, targetID string) error {
	_, err := repo.col().UpdateMany(ctx,
		bson.M{"targetId": targetID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}})
	return errors.Wrap(err, "marking all notifications read")
}

func (repo *NotificationRepository) DeleteNotification(ctx context.Context, id string) error {
	res, err := repo.col().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	if res.DeletedCount == 0 {
		return notification.ErrNotFound
	}
	return nil
}

// Watch streams feed refreshes for one recipient.
func (repo *NotificationRepository) Watch(ctx context.Context, targetID string, onChange func([]notification.Notification)) (*Subscription, error) {
	return repo.db.watch(ctx, colNotifications, bson.M{"targetId": targetID}, func(ctx context.Context) {
		notifications, err := repo.QueryNotifications(ctx, targetID)
		if err != nil {
			repo.db.logger.Warn("mongodb: refreshing notifications after change: " + err.Error())
			return
		}
		onChange(notifications)
	})
}
