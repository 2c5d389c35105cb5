package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/newrise0410/piano-academy-app-sub002/core/schedule"
)

type scheduleRepository struct {
	db *DB
}

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

func (repo *scheduleRepository) col() *mongo.Collection {
	return repo.db.collection(colScheduleRequests)
}

func (repo *scheduleRepository) CreateRequest(ctx context.Context, r schedule.ChangeRequest) (schedule.ChangeRequest, error) {
	r.ID = uuid.NewString()
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	if _, err := repo.col().InsertOne(ctx, r); err != nil {
		return schedule.ChangeRequest{}, errors.Wrap(err, "inserting schedule request")
	}
	return r, nil
}

func (repo *scheduleRepository) QueryRequests(ctx context.Context, teacherID string) ([]schedule.ChangeRequest, error) {
	return repo.find(ctx, bson.M{"teacherId": teacherID})
}

func (repo *scheduleRepository) QueryRequestsByParent(ctx context.Context, parentID string) ([]schedule.ChangeRequest, error) {
	return repo.find(ctx, bson.M{"parentId": parentID})
}

func (repo *scheduleRepository) GetRequestByID(ctx context.Context, id string) (schedule.ChangeRequest, error) {
	var r schedule.ChangeRequest
	if err := repo.col().FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return schedule.ChangeRequest{}, schedule.ErrNotFound
		}
		return schedule.ChangeRequest{}, errors.Wrap(err, "getting schedule request")
	}
	return r, nil
}

func (repo *scheduleRepository) SetRequestStatus(ctx context.Context, id, status, rejectionReason string) (schedule.ChangeRequest, error) {
	set := bson.M{"status": status}
	if status == schedule.StatusRejected {
		set["rejectionReason"] = rejectionReason
	} else {
		set["rejectionReason"] = ""
	}

	var r schedule.ChangeRequest
	update := bson.M{"$set": set, "$currentDate": bson.M{"updatedAt": true}}
	err := repo.col().FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return schedule.ChangeRequest{}, schedule.ErrNotFound
		}
		return schedule.ChangeRequest{}, errors.Wrap(err, "updating schedule request")
	}
	return r, nil
}

func (repo *scheduleRepository) find(ctx context.Context, filter bson.M) ([]schedule.ChangeRequest, error) {
	cur, err := repo.col().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying schedule requests")
	}
	var requests []schedule.ChangeRequest
	if err = cur.All(ctx, &requests); err != nil {
		return nil, errors.Wrap(err, "decoding schedule requests")
	}
	return requests, nil
}
