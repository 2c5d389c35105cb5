package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/newrise0410/piano-academy-app-sub002/core/student"
)

type StudentRepository struct {
	db *DB
}

func NewStudentRepository(db *DB) *StudentRepository {
	return &StudentRepository{db: db}
}

var _ student.Repository = (*StudentRepository)(nil)

func (repo *StudentRepository) col() *mongo.Collection { return repo.db.collection(colStudents) }

func (repo *StudentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	s.ID = uuid.NewString()
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if _, err := repo.col().InsertOne(ctx, s); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo *StudentRepository) QueryAllStudents(ctx context.Context, teacherID string) ([]student.Student, error) {
	return repo.find(ctx, bson.M{"teacherId": teacherID})
}

func (repo *StudentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var s student.Student
	if err := repo.col().FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return s, nil
}

func (repo *StudentRepository) FilterStudents(ctx context.Context, f student.QueryFilter) ([]student.Student, error) {
	filter := bson.M{}
	if f.TeacherID != "" {
		filter["teacherId"] = f.TeacherID
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Unpaid != nil {
		filter["unpaid"] = *f.Unpaid
	}
	if f.Search != "" {
		filter["name"] = bson.M{"$regex": primitive.Regex{Pattern: f.Search, Options: "i"}}
	}
	return repo.find(ctx, filter)
}

func (repo *StudentRepository) UpdateStudent(ctx context.Context, id string, up student.UpdateStudent) (student.Student, error) {
	set := bson.M{}
	if up.Name != "" {
		set["name"] = up.Name
	}
	if up.Category != "" {
		set["category"] = up.Category
	}
	if up.Level != "" {
		set["level"] = up.Level
	}
	if up.Schedule != "" {
		set["schedule"] = up.Schedule
	}
	if up.Book != "" {
		set["book"] = up.Book
	}
	if up.Ticket != nil {
		set["ticket"] = *up.Ticket
	}
	if up.Unpaid != nil {
		set["unpaid"] = *up.Unpaid
	}
	if up.ParentID != "" {
		set["parentId"] = up.ParentID
	}
	return repo.findOneAndUpdate(ctx, id, set)
}

func (repo *StudentRepository) DeleteStudent(ctx context.Context, id string) error {
	res, err := repo.col().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if res.DeletedCount == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo *StudentRepository) UpdateStudentSchedule(ctx context.Context, id, schedule string) (student.Student, error) {
	return repo.findOneAndUpdate(ctx, id, bson.M{"schedule": schedule})
}

// Watch streams list refreshes for a teacher's roster: after every backend
// change the full list is re-queried and handed to onChange. The caller owns
// the returned Subscription and must Close it.
func (repo *StudentRepository) Watch(ctx context.Context, teacherID string, onChange func([]student.Student)) (*Subscription, error) {
	return repo.db.watch(ctx, colStudents, bson.M{"teacherId": teacherID}, func(ctx context.Context) {
		students, err := repo.QueryAllStudents(ctx, teacherID)
		if err != nil {
			repo.db.logger.Warn("mongodb: refreshing students after change: " + err.Error())
			return
		}
		onChange(students)
	})
}

// InsertStudents bulk-loads a roster, chunked under the batch write ceiling.
func (repo *StudentRepository) InsertStudents(ctx context.Context, students []student.Student) error {
	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(students))
	for _, s := range students {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		s.UpdatedAt = now
		models = append(models, mongo.NewInsertOneModel().SetDocument(s))
	}
	return repo.db.bulkWrite(ctx, colStudents, models)
}

func (repo *StudentRepository) find(ctx context.Context, filter bson.M) ([]student.Student, error) {
	cur, err := repo.col().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	var students []student.Student
	if err = cur.All(ctx, &students); err != nil {
		return nil, errors.Wrap(err, "decoding students")
	}
	return students, nil
}

func (repo *StudentRepository) findOneAndUpdate(ctx context.Context, id string, set bson.M) (student.Student, error) {
	var s student.Student
	update := bson.M{"$set": set, "$currentDate": bson.M{"updatedAt": true}}
	err := repo.col().FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return s, nil
}
