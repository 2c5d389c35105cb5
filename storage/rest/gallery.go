package restdb

import (
	"context"
	"net/http"
	"net/url"

	"github.com/newrise0410/piano-academy-app-sub002/core/gallery"
)

type galleryRepository struct {
	client *Client
}

func NewGalleryRepository(client *Client) gallery.Repository {
	return &galleryRepository{client: client}
}

func (repo *galleryRepository) CreatePhoto(ctx context.Context, p gallery.Photo) (gallery.Photo, error) {
	var created gallery.Photo
	err := repo.client.do(ctx, http.MethodPost, "/gallery", nil, p, &created)
	return created, err
}

func (repo *galleryRepository) QueryAllPhotos(ctx context.Context, teacherID string) ([]gallery.Photo, error) {
	params := url.Values{"teacherId": {teacherID}}
	var photos []gallery.Photo
	err := repo.client.do(ctx, http.MethodGet, "/gallery", params, nil, &photos)
	return photos, err
}

func (repo *galleryRepository) GetPhotoByID(ctx context.Context, id string) (gallery.Photo, error) {
	var p gallery.Photo
	if err := repo.client.do(ctx, http.MethodGet, "/gallery/"+id, nil, nil, &p); err != nil {
		return gallery.Photo{}, mapNotFound(err, gallery.ErrNotFound)
	}
	return p, nil
}

func (repo *galleryRepository) QueryPhotosByStudent(ctx context.Context, studentID string) ([]gallery.Photo, error) {
	params := url.Values{"studentId": {studentID}}
	var photos []gallery.Photo
	err := repo.client.do(ctx, http.MethodGet, "/gallery", params, nil, &photos)
	return photos, err
}

func (repo *galleryRepository) UpdatePhoto(ctx context.Context, id string, up gallery.UpdatePhoto) (gallery.Photo, error) {
	var p gallery.Photo
	if err := repo.client.do(ctx, http.MethodPatch, "/gallery/"+id, nil, up, &p); err != nil {
		return gallery.Photo{}, mapNotFound(err, gallery.ErrNotFound)
	}
	return p, nil
}

func (repo *galleryRepository) DeletePhoto(ctx context.Context, id string) error {
	err := repo.client.do(ctx, http.MethodDelete, "/gallery/"+id, nil, nil, nil)
	return mapNotFound(err, gallery.ErrNotFound)
}
