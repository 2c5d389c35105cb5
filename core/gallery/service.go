package gallery

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

var ErrNotFound = errors.New("photo not found")

type (
	Repository interface {
		CreatePhoto(ctx context.Context, p Photo) (Photo, error)
		QueryAllPhotos(ctx context.Context, teacherID string) ([]Photo, error)
		GetPhotoByID(ctx context.Context, id string) (Photo, error)
		QueryPhotosByStudent(ctx context.Context, studentID string) ([]Photo, error)
		UpdatePhoto(ctx context.Context, id string, up UpdatePhoto) (Photo, error)
		DeletePhoto(ctx context.Context, id string) error
	}

	ActivityLogger interface {
		LogAsync(teacherID, entryType, action, title, description, studentID, relatedID string)
	}

	// album is one teacher's cached photos; freshness is per teacher since the
	// service instance is shared across API users.
	album struct {
		photos      []Photo
		lastFetched time.Time
	}

	Service struct {
		repo       Repository
		logger     core.Logger
		activities ActivityLogger
		ttl        time.Duration

		mu      sync.RWMutex
		cache   map[string]*album // keyed by teacher id
		loading bool
		lastErr string
	}
)

func NewService(repo Repository, logger core.Logger, activities ActivityLogger, ttl time.Duration) *Service {
	return &Service{repo: repo, logger: logger, activities: activities, ttl: ttl, cache: make(map[string]*album)}
}

func (svc *Service) Fetch(ctx context.Context, teacherID string, force bool) ([]Photo, error) {
	svc.mu.RLock()
	if a, ok := svc.cache[teacherID]; ok && !force && time.Since(a.lastFetched) < svc.ttl {
		cached := append([]Photo(nil), a.photos...)
		svc.mu.RUnlock()
		return cached, nil
	}
	svc.mu.RUnlock()

	svc.setLoading()
	photos, err := svc.repo.QueryAllPhotos(ctx, teacherID)
	if err != nil {
		svc.setError(err)
		return nil, err
	}

	svc.mu.Lock()
	svc.cache[teacherID] = &album{photos: photos, lastFetched: time.Now()}
	svc.loading = false
	svc.lastErr = ""
	cached := append([]Photo(nil), photos...)
	svc.mu.Unlock()
	return cached, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Photo, error) {
	return svc.repo.GetPhotoByID(ctx, id)
}

func (svc *Service) ForStudent(ctx context.Context, studentID string) ([]Photo, error) {
	return svc.repo.QueryPhotosByStudent(ctx, studentID)
}

func (svc *Service) Add(ctx context.Context, np NewPhoto) (Photo, error) {
	if err := np.Validate(); err != nil {
		return Photo{}, err
	}

	now := time.Now().UTC()
	if np.TakenAt.IsZero() {
		np.TakenAt = now
	}
	photo := Photo{
		TeacherID: np.TeacherID,
		StudentID: np.StudentID,
		URL:       np.URL,
		Caption:   np.Caption,
		TakenAt:   np.TakenAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	svc.setLoading()
	photo, err := svc.repo.CreatePhoto(ctx, photo)
	if err != nil {
		svc.setError(err)
		return Photo{}, err
	}

	svc.mu.Lock()
	if a := svc.cache[photo.TeacherID]; a != nil {
		a.photos = append(a.photos, photo)
	}
	svc.loading = false
	svc.lastErr = ""
	svc.mu.Unlock()

	svc.activities.LogAsync(photo.TeacherID, "gallery", "create", "Photo added",
		photo.Caption, photo.StudentID, photo.ID)
	return photo, nil
}

func (svc *Service) Update(ctx context.Context, id string, up UpdatePhoto) (Photo, error) {
	svc.setLoading()
	photo, err := svc.repo.UpdatePhoto(ctx, id, up)
	if err != nil {
		svc.setError(err)
		return Photo{}, err
	}

	svc.mu.Lock()
	if a := svc.cache[photo.TeacherID]; a != nil {
		for i, p := range a.photos {
			if p.ID == photo.ID {
				a.photos[i] = photo
				break
			}
		}
	}
	svc.loading = false
	svc.lastErr = ""
	svc.mu.Unlock()
	return photo, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	svc.setLoading()
	if err := svc.repo.DeletePhoto(ctx, id); err != nil {
		svc.setError(err)
		return err
	}

	svc.mu.Lock()
	for _, a := range svc.cache {
		for i, p := range a.photos {
			if p.ID == id {
				a.photos = append(a.photos[:i], a.photos[i+1:]...)
				break
			}
		}
	}
	svc.loading = false
	svc.lastErr = ""
	svc.mu.Unlock()
	return nil
}

func (svc *Service) State() (loading bool, lastErr string) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.loading, svc.lastErr
}

func (svc *Service) setLoading() {
	svc.mu.Lock()
	svc.loading = true
	svc.mu.Unlock()
}

func (svc *Service) setError(err error) {
	svc.mu.Lock()
	svc.loading = false
	svc.lastErr = err.Error()
	svc.mu.Unlock()
}
