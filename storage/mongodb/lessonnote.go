package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/newrise0410/piano-academy-app-sub002/core/lessonnote"
)

type lessonNoteRepository struct {
	db *DB
}

func NewLessonNoteRepository(db *DB) lessonnote.Repository {
	return &lessonNoteRepository{db: db}
}

func (repo *lessonNoteRepository) col() *mongo.Collection { return repo.db.collection(colLessonNotes) }

func (repo *lessonNoteRepository) CreateNote(ctx context.Context, n lessonnote.Note) (lessonnote.Note, error) {
	n.ID = uuid.NewString()
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	if _, err := repo.col().InsertOne(ctx, n); err != nil {
		return lessonnote.Note{}, errors.Wrap(err, "inserting lesson note")
	}
	return n, nil
}

func (repo *lessonNoteRepository) QueryAllNotes(ctx context.Context, teacherID string) ([]lessonnote.Note, error) {
	return repo.find(ctx, bson.M{"teacherId": teacherID})
}

func (repo *lessonNoteRepository) GetNoteByID(ctx context.Context, id string) (lessonnote.Note, error) {
	var n lessonnote.Note
	if err := repo.col().FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return lessonnote.Note{}, lessonnote.ErrNotFound
		}
		return lessonnote.Note{}, errors.Wrap(err, "getting lesson note")
	}
	return n, nil
}

func (repo *lessonNoteRepository) QueryNotesByStudent(ctx context.Context, studentID string) ([]lessonnote.Note, error) {
	return repo.find(ctx, bson.M{"studentId": studentID})
}

func (repo *lessonNoteRepository) UpdateNote(ctx context.Context, id string, up lessonnote.UpdateNote) (lessonnote.Note, error) {
	set := bson.M{}
	if up.Progress != "" {
		set["progress"] = up.Progress
	}
	if up.Homework != "" {
		set["homework"] = up.Homework
	}
	if up.Memo != "" {
		set["memo"] = up.Memo
	}
	if up.Strengths != "" {
		set["strengths"] = up.Strengths
	}
	if up.Improvements != "" {
		set["improvements"] = up.Improvements
	}
	if up.IsPublic != nil {
		set["isPublic"] = *up.IsPublic
	}

	var n lessonnote.Note
	update := bson.M{"$set": set, "$currentDate": bson.M{"updatedAt": true}}
	err := repo.col().FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return lessonnote.Note{}, lessonnote.ErrNotFound
		}
		return lessonnote.Note{}, errors.Wrap(err, "updating lesson note")
	}
	return n, nil
}

func (repo *lessonNoteRepository) DeleteNote(ctx context.Context, id string) error {
	res, err := repo.col().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting lesson note")
	}
	if res.DeletedCount == 0 {
		return lessonnote.ErrNotFound
	}
	return nil
}

func (repo *lessonNoteRepository) find(ctx context.Context, filter bson.M) ([]lessonnote.Note, error) {
	cur, err := repo.col().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying lesson notes")
	}
	var notes []lessonnote.Note
	if err = cur.All(ctx, &notes); err != nil {
		return nil, errors.Wrap(err, "decoding lesson notes")
	}
	return notes, nil
}
