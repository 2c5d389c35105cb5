package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/newrise0410/piano-academy-app-sub002/core/gallery"
)

type galleryRepository struct {
	db *DB
}

func NewGalleryRepository(db *DB) gallery.Repository {
	return &galleryRepository{db: db}
}

func (repo *galleryRepository) col() *mongo.Collection { return repo.db.collection(colGallery) }

func (repo *galleryRepository) CreatePhoto(ctx context.Context, p gallery.Photo) (gallery.Photo, error) {
	p.ID = uuid.NewString()
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if _, err := repo.col().InsertOne(ctx, p); err != nil {
		return gallery.Photo{}, errors.Wrap(err, "inserting photo")
	}
	return p, nil
}

func (repo *galleryRepository) QueryAllPhotos(ctx context.Context, teacherID string) ([]gallery.Photo, error) {
	return repo.find(ctx, bson.M{"teacherId": teacherID})
}

func (repo *galleryRepository) GetPhotoByID(ctx context.Context, id string) (gallery.Photo, error) {
	var p gallery.Photo
	if err := repo.col().FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return gallery.Photo{}, gallery.ErrNotFound
		}
		return gallery.Photo{}, errors.Wrap(err, "getting photo")
	}
	return p, nil
}

func (repo *galleryRepository) QueryPhotosByStudent(ctx context.Context, studentID string) ([]gallery.Photo, error) {
	return repo.find(ctx, bson.M{"studentId": studentID})
}

func (repo *galleryRepository) UpdatePhoto(ctx context.Context, id string, up gallery.UpdatePhoto) (gallery.Photo, error) {
	set := bson.M{}
	if up.Caption != "" {
		set["caption"] = up.Caption
	}
	if up.StudentID != "" {
		set["studentId"] = up.StudentID
	}

	var p gallery.Photo
	update := bson.M{"$set": set, "$currentDate": bson.M{"updatedAt": true}}
	err := repo.col().FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return gallery.Photo{}, gallery.ErrNotFound
		}
		return gallery.Photo{}, errors.Wrap(err, "updating photo")
	}
	return p, nil
}

func (repo *galleryRepository) DeletePhoto(ctx context.Context, id string) error {
	res, err := repo.col().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting photo")
	}
	if res.DeletedCount == 0 {
		return gallery.ErrNotFound
	}
	return nil
}

func (repo *galleryRepository) find(ctx context.Context, filter bson.M) ([]gallery.Photo, error) {
	cur, err := repo.col().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "takenAt", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying photos")
	}
	var photos []gallery.Photo
	if err = cur.All(ctx, &photos); err != nil {
		return nil, errors.Wrap(err, "decoding photos")
	}
	return photos, nil
}
