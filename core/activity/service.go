package activity

import (
	"context"
	"sync"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/core/dispatch"
)

type (
	Repository interface {
		CreateEntry(ctx context.Context, e Entry) (Entry, error)
		// QueryRecentEntries returns entries for a teacher, newest first,
		// capped at limit.
		QueryRecentEntries(ctx context.Context, teacherID string, limit int) ([]Entry, error)
	}

	// Service is the academy's append-only activity feed. Log writes run
	// through the dispatcher so primary mutations never wait on, or fail
	// because of, bookkeeping.
	Service struct {
		repo       Repository
		logger     core.Logger
		dispatcher *dispatch.Dispatcher

		mu      sync.RWMutex
		entries []Entry
	}
)

func NewService(repo Repository, logger core.Logger, dispatcher *dispatch.Dispatcher) *Service {
	return &Service{repo: repo, logger: logger, dispatcher: dispatcher}
}

// LogAsync enqueues an entry append; it never blocks and never reports
// failure to the caller.
func (svc *Service) LogAsync(teacherID, entryType, action, title, description, studentID, relatedID string) {
	entry := Entry{
		TeacherID:   teacherID,
		Type:        entryType,
		Action:      action,
		Title:       title,
		Description: description,
		StudentID:   studentID,
		RelatedID:   relatedID,
		Timestamp:   time.Now().UTC(),
	}
	svc.dispatcher.Enqueue(dispatch.Task{
		Name: "activity.log",
		Run: func(ctx context.Context) error {
			_, err := svc.repo.CreateEntry(ctx, entry)
			return err
		},
	})
}

// Recent returns the newest entries for a teacher, capped at limit
// (default 20).
func (svc *Service) Recent(ctx context.Context, teacherID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	entries, err := svc.repo.QueryRecentEntries(ctx, teacherID, limit)
	if err != nil {
		return nil, err
	}

	svc.mu.Lock()
	svc.entries = entries
	svc.mu.Unlock()
	return entries, nil
}
