package notice

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

var ErrNotFound = errors.New("notice not found")

type (
	Repository interface {
		CreateNotice(ctx context.Context, n Notice) (Notice, error)
		QueryAllNotices(ctx context.Context, teacherID string) ([]Notice, error)
		GetNoticeByID(ctx context.Context, id string) (Notice, error)
		UpdateNotice(ctx context.Context, id string, up UpdateNotice) (Notice, error)
		DeleteNotice(ctx context.Context, id string) error
		// ConfirmNotice appends parentID to the confirmed set; it is
		// idempotent per parent.
		ConfirmNotice(ctx context.Context, id, parentID string) (Notice, error)
	}

	Notifier interface {
		PushAsync(ntype, title, message, targetID string)
	}

	// board is one teacher's cached notices; freshness is per teacher since
	// the service instance is shared across API users.
	board struct {
		notices     []Notice
		lastFetched time.Time
	}

	Service struct {
		repo     Repository
		logger   core.Logger
		notifier Notifier
		ttl      time.Duration

		mu      sync.RWMutex
		cache   map[string]*board // keyed by teacher id
		loading bool
		lastErr string
	}
)

func NewService(repo Repository, logger core.Logger, notifier Notifier, ttl time.Duration) *Service {
	return &Service{repo: repo, logger: logger, notifier: notifier, ttl: ttl, cache: make(map[string]*board)}
}

func (svc *Service) Fetch(ctx context.Context, teacherID string, force bool) ([]Notice, error) {
	svc.mu.RLock()
	if b, ok := svc.cache[teacherID]; ok && !force && time.Since(b.lastFetched) < svc.ttl {
		cached := append([]Notice(nil), b.notices...)
		svc.mu.RUnlock()
		return cached, nil
	}
	svc.mu.RUnlock()

	svc.setLoading()
	notices, err := svc.repo.QueryAllNotices(ctx, teacherID)
	if err != nil {
		svc.setError(err)
		return nil, err
	}

	svc.mu.Lock()
	svc.cache[teacherID] = &board{notices: notices, lastFetched: time.Now()}
	svc.loading = false
	svc.lastErr = ""
	cached := append([]Notice(nil), notices...)
	svc.mu.Unlock()
	return cached, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Notice, error) {
	return svc.repo.GetNoticeByID(ctx, id)
}

func (svc *Service) Create(ctx context.Context, nn NewNotice) (Notice, error) {
	if err := nn.Validate(); err != nil {
		return Notice{}, err
	}

	now := time.Now().UTC()
	date := nn.Date
	if date.IsZero() {
		date = now
	}
	ntc := Notice{
		TeacherID:       nn.TeacherID,
		Title:           core.CleanString(nn.Title),
		Content:         nn.Content,
		Template:        nn.Template,
		Date:            date,
		TotalRecipients: nn.TotalRecipients,
		ConfirmedBy:     []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	svc.setLoading()
	ntc, err := svc.repo.CreateNotice(ctx, ntc)
	if err != nil {
		svc.setError(err)
		return Notice{}, err
	}

	svc.mu.Lock()
	if b := svc.cache[ntc.TeacherID]; b != nil {
		b.notices = append([]Notice{ntc}, b.notices...)
	}
	svc.loading = false
	svc.lastErr = ""
	svc.mu.Unlock()

	svc.notifier.PushAsync("notice", ntc.Title, ntc.Content, ntc.TeacherID)
	return ntc, nil
}

func (svc *Service) Update(ctx context.Context, id string, un UpdateNotice) (Notice, error) {
	svc.setLoading()
	ntc, err := svc.repo.UpdateNotice(ctx, id, un)
	if err != nil {
		svc.setError(err)
		return Notice{}, err
	}
	svc.patch(ntc)
	return ntc, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	svc.setLoading()
	if err := svc.repo.DeleteNotice(ctx, id); err != nil {
		svc.setError(err)
		return err
	}

	svc.mu.Lock()
	for _, b := range svc.cache {
		for i, n := range b.notices {
			if n.ID == id {
				b.notices = append(b.notices[:i], b.notices[i+1:]...)
				break
			}
		}
	}
	svc.loading = false
	svc.lastErr = ""
	svc.mu.Unlock()
	return nil
}

// Confirm records a parent's read confirmation. Confirming twice is a no-op.
func (svc *Service) Confirm(ctx context.Context, id, parentID string) (Notice, error) {
	ntc, err := svc.repo.ConfirmNotice(ctx, id, parentID)
	if err != nil {
		svc.setError(err)
		return Notice{}, err
	}
	svc.patch(ntc)
	return ntc, nil
}

// UnconfirmedFor lists the teacher's cached notices the given parent has not
// confirmed yet.
func (svc *Service) UnconfirmedFor(teacherID, parentID string) []Notice {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	b := svc.cache[teacherID]
	if b == nil {
		return nil
	}
	var out []Notice
	for _, n := range b.notices {
		if !n.ConfirmedByParent(parentID) {
			out = append(out, n)
		}
	}
	return out
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

func (svc *Service) patch(ntc Notice) {
	svc.mu.Lock()
	if b := svc.cache[ntc.TeacherID]; b != nil {
		for i, n := range b.notices {
			if n.ID == ntc.ID {
				b.notices[i] = ntc
				break
			}
		}
	}
	svc.loading = false
	svc.lastErr = ""
	svc.mu.Unlock()
}
