// Package mongodb is the document backend. Every academy document carries a
// teacherId for tenant scoping, tuition records are partitioned into
// per-month collections, and write timestamps are stamped by the server via
// $currentDate so clocks stay consistent across devices.
package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

// Collection names.
const (
	colUsers            = "users"
	colStudents         = "students"
	colAttendance       = "attendance"
	colNotices          = "notices"
	colLessonNotes      = "lessonNotes"
	colActivities       = "activities"
	colNotifications    = "notifications"
	colScheduleRequests = "scheduleRequests"
	colExpenses         = "expenses"
	colGallery          = "gallery"

	// tuition collections are sharded by month: payments_2025-01, ...
	tuitionPrefix = "payments_"
)

// maxBatchSize caps one bulk write; larger inputs are chunked.
const maxBatchSize = 500

type DB struct {
	client *mongo.Client
	db     *mongo.Database
	logger core.Logger
}

func Open(ctx context.Context, conf *core.Config, logger core.Logger) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Mongo.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "pinging mongodb")
	}
	return &DB{client: client, db: client.Database(conf.Mongo.Database), logger: logger}, nil
}

func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

func (d *DB) collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}

func tuitionCollection(month string) string {
	return tuitionPrefix + month
}

// bulkWrite applies models to col in chunks so no single batch exceeds the
// backend's write ceiling.
func (d *DB) bulkWrite(ctx context.Context, col string, models []mongo.WriteModel) error {
	for start := 0; start < len(models); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(models) {
			end = len(models)
		}
		if _, err := d.collection(col).BulkWrite(ctx, models[start:end]); err != nil {
			return errors.Wrapf(err, "bulk write to %s", col)
		}
	}
	return nil
}
