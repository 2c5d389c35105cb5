package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/newrise0410/piano-academy-app-sub002/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) col() *mongo.Collection { return repo.db.collection(colAttendance) }

func (repo *attendanceRepository) CreateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	r.ID = uuid.NewString()
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	if _, err := repo.col().InsertOne(ctx, r); err != nil {
		return attendance.Record{}, errors.Wrap(err, "inserting attendance record")
	}
	return r, nil
}

func (repo *attendanceRepository) QueryAllRecords(ctx context.Context, teacherID string) ([]attendance.Record, error) {
	return repo.find(ctx, bson.M{"teacherId": teacherID})
}

func (repo *attendanceRepository) GetRecordByID(ctx context.Context, id string) (attendance.Record, error) {
	var r attendance.Record
	if err := repo.col().FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return attendance.Record{}, attendance.ErrNotFound
		}
		return attendance.Record{}, errors.Wrap(err, "getting attendance record")
	}
	return r, nil
}

func (repo *attendanceRepository) QueryRecordsByStudent(ctx context.Context, studentID string) ([]attendance.Record, error) {
	return repo.find(ctx, bson.M{"studentId": studentID})
}

func (repo *attendanceRepository) QueryRecordsByDateRange(ctx context.Context, teacherID string, from, to time.Time) ([]attendance.Record, error) {
	return repo.find(ctx, bson.M{
		"teacherId": teacherID,
		"date":      bson.M{"$gte": from, "$lte": to},
	})
}

func (repo *attendanceRepository) UpdateRecord(ctx context.Context, id string, up attendance.UpdateRecord) (attendance.Record, error) {
	set := bson.M{}
	if up.Status != "" {
		set["status"] = up.Status
	}
	if up.Note != "" {
		set["note"] = up.Note
	}

	var r attendance.Record
	update := bson.M{"$set": set, "$currentDate": bson.M{"updatedAt": true}}
	err := repo.col().FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return attendance.Record{}, attendance.ErrNotFound
		}
		return attendance.Record{}, errors.Wrap(err, "updating attendance record")
	}
	return r, nil
}

func (repo *attendanceRepository) DeleteRecord(ctx context.Context, id string) error {
	res, err := repo.col().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting attendance record")
	}
	if res.DeletedCount == 0 {
		return attendance.ErrNotFound
	}
	return nil
}

func (repo *attendanceRepository) find(ctx context.Context, filter bson.M) ([]attendance.Record, error) {
	cur, err := repo.col().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	var records []attendance.Record
	if err = cur.All(ctx, &records); err != nil {
		return nil, errors.Wrap(err, "decoding attendance records")
	}
	return records, nil
}
