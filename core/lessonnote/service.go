package lessonnote

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

var ErrNotFound = errors.New("lesson note not found")

type (
	Repository interface {
		CreateNote(ctx context.Context, n Note) (Note, error)
		QueryAllNotes(ctx context.Context, teacherID string) ([]Note, error)
		GetNoteByID(ctx context.Context, id string) (Note, error)
		QueryNotesByStudent(ctx context.Context, studentID string) ([]Note, error)
		UpdateNote(ctx context.Context, id string, up UpdateNote) (Note, error)
		DeleteNote(ctx context.Context, id string) error
	}

	ActivityLogger interface {
		LogAsync(teacherID, entryType, action, title, description, studentID, relatedID string)
	}

	// notebook is one teacher's cached notes with the per-student index;
	// freshness is per teacher since the service instance is shared.
	notebook struct {
		notes       []Note
		byStudent   map[string][]Note
		lastFetched time.Time
	}

	Service struct {
		repo       Repository
		logger     core.Logger
		activities ActivityLogger
		ttl        time.Duration

		mu      sync.RWMutex
		cache   map[string]*notebook // keyed by teacher id
		loading bool
		lastErr string
	}
)

func NewService(repo Repository, logger core.Logger, activities ActivityLogger, ttl time.Duration) *Service {
	return &Service{repo: repo, logger: logger, activities: activities, ttl: ttl, cache: make(map[string]*notebook)}
}

func (svc *Service) Fetch(ctx context.Context, teacherID string, force bool) ([]Note, error) {
	svc.mu.RLock()
	if nb, ok := svc.cache[teacherID]; ok && !force && time.Since(nb.lastFetched) < svc.ttl {
		cached := append([]Note(nil), nb.notes...)
		svc.mu.RUnlock()
		return cached, nil
	}
	svc.mu.RUnlock()

	svc.setLoading()
	notes, err := svc.repo.QueryAllNotes(ctx, teacherID)
	if err != nil {
		svc.setError(err)
		return nil, err
	}

	nb := &notebook{notes: notes, byStudent: make(map[string][]Note, len(notes)), lastFetched: time.Now()}
	for _, n := range notes {
		nb.byStudent[n.StudentID] = append(nb.byStudent[n.StudentID], n)
	}

	svc.mu.Lock()
	svc.cache[teacherID] = nb
	svc.loading = false
	svc.lastErr = ""
	cached := append([]Note(nil), notes...)
	svc.mu.Unlock()
	return cached, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Note, error) {
	return svc.repo.GetNoteByID(ctx, id)
}

func (svc *Service) ForStudent(ctx context.Context, studentID string) ([]Note, error) {
	svc.mu.RLock()
	for _, nb := range svc.cache {
		if time.Since(nb.lastFetched) >= svc.ttl {
			continue
		}
		if cached, ok := nb.byStudent[studentID]; ok {
			out := append([]Note(nil), cached...)
			svc.mu.RUnlock()
			return out, nil
		}
	}
	svc.mu.RUnlock()
	return svc.repo.QueryNotesByStudent(ctx, studentID)
}

// PublicForStudent is the parent-facing view: only notes the teacher marked
// public.
func (svc *Service) PublicForStudent(ctx context.Context, studentID string) ([]Note, error) {
	notes, err := svc.ForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	public := make([]Note, 0, len(notes))
	for _, n := range notes {
		if n.IsPublic {
			public = append(public, n)
		}
	}
	return public, nil
}

func (svc *Service) Add(ctx context.Context, nn NewNote) (Note, error) {
	if err := nn.Validate(); err != nil {
		return Note{}, err
	}

	now := time.Now().UTC()
	note := Note{
		StudentID:    nn.StudentID,
		TeacherID:    nn.TeacherID,
		Date:         nn.Date,
		Progress:     nn.Progress,
		Homework:     nn.Homework,
		Memo:         nn.Memo,
		Strengths:    nn.Strengths,
		Improvements: nn.Improvements,
		IsPublic:     nn.IsPublic,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	svc.setLoading()
	note, err := svc.repo.CreateNote(ctx, note)
	if err != nil {
		svc.setError(err)
		return Note{}, err
	}

	svc.mu.Lock()
	if nb := svc.cache[note.TeacherID]; nb != nil {
		nb.notes = append(nb.notes, note)
		nb.byStudent[note.StudentID] = append(nb.byStudent[note.StudentID], note)
	}
	svc.loading = false
	svc.lastErr = ""
	svc.mu.Unlock()

	svc.activities.LogAsync(note.TeacherID, "lessonNote", "create", "Lesson note written",
		note.Date.Format("2006-01-02"), note.StudentID, note.ID)
	return note, nil
}

func (svc *Service) Update(ctx context.Context, id string, un UpdateNote) (Note, error) {
	svc.setLoading()
	note, err := svc.repo.UpdateNote(ctx, id, un)
	if err != nil {
		svc.setError(err)
		return Note{}, err
	}

	svc.mu.Lock()
	if nb := svc.cache[note.TeacherID]; nb != nil {
		for i, n := range nb.notes {
			if n.ID == note.ID {
				nb.notes[i] = note
				break
			}
		}
		notes := nb.byStudent[note.StudentID]
		for i, n := range notes {
			if n.ID == note.ID {
				notes[i] = note
				break
			}
		}
	}
	svc.loading = false
	svc.lastErr = ""
	svc.mu.Unlock()
	return note, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	svc.setLoading()
	note, err := svc.repo.GetNoteByID(ctx, id)
	if err != nil {
		svc.setError(err)
		return err
	}
	if err = svc.repo.DeleteNote(ctx, id); err != nil {
		svc.setError(err)
		return err
	}

	svc.mu.Lock()
	if nb := svc.cache[note.TeacherID]; nb != nil {
		for i, n := range nb.notes {
			if n.ID == id {
				nb.notes = append(nb.notes[:i], nb.notes[i+1:]...)
				break
			}
		}
		notes := nb.byStudent[note.StudentID]
		for i, n := range notes {
			if n.ID == id {
				nb.byStudent[note.StudentID] = append(notes[:i], notes[i+1:]...)
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
