package mockdb

import (
	"context"
	"sort"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core/gallery"
)

type galleryRepository struct {
	db *DB
}

func NewGalleryRepository(db *DB) gallery.Repository {
	return &galleryRepository{db: db}
}

func (repo *galleryRepository) CreatePhoto(ctx context.Context, p gallery.Photo) (gallery.Photo, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return gallery.Photo{}, err
	}
	t := repo.db.gallery
	t.mutex.Lock()
	defer t.mutex.Unlock()

	p.ID = nextID("photo")
	t.table[p.ID] = &p
	return p, nil
}

func (repo *galleryRepository) QueryAllPhotos(ctx context.Context, teacherID string) ([]gallery.Photo, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.gallery
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var photos []gallery.Photo
	for _, p := range t.table {
		if p.TeacherID == teacherID {
			photos = append(photos, *p)
		}
	}
	sortPhotosByTakenDesc(photos)
	return photos, nil
}

func (repo *galleryRepository) GetPhotoByID(ctx context.Context, id string) (gallery.Photo, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return gallery.Photo{}, err
	}
	t := repo.db.gallery
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if p, ok := t.table[id]; ok {
		return *p, nil
	}
	return gallery.Photo{}, gallery.ErrNotFound
}

func (repo *galleryRepository) QueryPhotosByStudent(ctx context.Context, studentID string) ([]gallery.Photo, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.gallery
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var photos []gallery.Photo
	for _, p := range t.table {
		if p.StudentID == studentID {
			photos = append(photos, *p)
		}
	}
	sortPhotosByTakenDesc(photos)
	return photos, nil
}

func (repo *galleryRepository) UpdatePhoto(ctx context.Context, id string, up gallery.UpdatePhoto) (gallery.Photo, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return gallery.Photo{}, err
	}
	t := repo.db.gallery
	t.mutex.Lock()
	defer t.mutex.Unlock()

	p, ok := t.table[id]
	if !ok {
		return gallery.Photo{}, gallery.ErrNotFound
	}
	if up.Caption != "" {
		p.Caption = up.Caption
	}
	if up.StudentID != "" {
		p.StudentID = up.StudentID
	}
	p.UpdatedAt = time.Now().UTC()
	return *p, nil
}

func (repo *galleryRepository) DeletePhoto(ctx context.Context, id string) error {
	if err := repo.db.sleep(ctx); err != nil {
		return err
	}
	t := repo.db.gallery
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.table[id]; !ok {
		return gallery.ErrNotFound
	}
	delete(t.table, id)
	return nil
}

func sortPhotosByTakenDesc(photos []gallery.Photo) {
	sort.Slice(photos, func(i, j int) bool { return photos[i].TakenAt.After(photos[j].TakenAt) })
}
