package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/newrise0410/piano-academy-app-sub002/core/activity"
)

type activityRepository struct {
	db *DB
}

func NewActivityRepository(db *DB) activity.Repository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) CreateEntry(ctx context.Context, e activity.Entry) (activity.Entry, error) {
	e.ID = uuid.NewString()
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if _, err := repo.db.collection(colActivities).InsertOne(ctx, e); err != nil {
		return activity.Entry{}, errors.Wrap(err, "inserting activity entry")
	}
	return e, nil
}

func (repo *activityRepository) QueryRecentEntries(ctx context.Context, teacherID string, limit int) ([]activity.Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := repo.db.collection(colActivities).Find(ctx, bson.M{"teacherId": teacherID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying activity entries")
	}
	var entries []activity.Entry
	if err = cur.All(ctx, &entries); err != nil {
		return nil, errors.Wrap(err, "decoding activity entries")
	}
	return entries, nil
}
