package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/core/dispatch"
)

var ErrNotFound = errors.New("notification not found")

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		QueryNotifications(ctx context.Context, targetID string) ([]Notification, error)
		MarkNotificationRead(ctx context.Context, id string) (Notification, error)
		MarkAllNotificationsRead(ctx context.Context, targetID string) error
		DeleteNotification(ctx context.Context, id string) error
	}

	// Pusher delivers a device push for a feed entry; it is best-effort and
	// may be a no-op.
	Pusher interface {
		Push(ctx context.Context, targetID, title, body string, data map[string]string) error
	}

	// feed is one target's cached entries; freshness is per target since the
	// service instance is shared across API users.
	feed struct {
		notifications []Notification
		lastFetched   time.Time
	}

	Service struct {
		repo       Repository
		logger     core.Logger
		dispatcher *dispatch.Dispatcher
		pusher     Pusher

		mu    sync.RWMutex
		cache map[string]*feed // keyed by target id
	}
)

func NewService(repo Repository, logger core.Logger, dispatcher *dispatch.Dispatcher, pusher Pusher) *Service {
	return &Service{repo: repo, logger: logger, dispatcher: dispatcher, pusher: pusher, cache: make(map[string]*feed)}
}

// PushAsync appends a feed entry and fans out a device push, both through the
// dispatcher; the caller never waits and never sees a failure.
func (svc *Service) PushAsync(ntype, title, message, targetID string) {
	n := Notification{
		Type:      ntype,
		Title:     title,
		Message:   message,
		TargetID:  targetID,
		Timestamp: time.Now().UTC(),
	}
	svc.dispatcher.Enqueue(dispatch.Task{
		Name: "notification.push",
		Run: func(ctx context.Context) error {
			created, err := svc.repo.CreateNotification(ctx, n)
			if err != nil {
				return err
			}
			svc.mu.Lock()
			if f := svc.cache[created.TargetID]; f != nil {
				f.notifications = append([]Notification{created}, f.notifications...)
			}
			svc.mu.Unlock()

			if svc.pusher != nil {
				if perr := svc.pusher.Push(ctx, n.TargetID, n.Title, n.Message, map[string]string{"type": n.Type}); perr != nil {
					svc.logger.Warn("notification: device push failed: " + perr.Error())
				}
			}
			return nil
		},
	})
}

func (svc *Service) Fetch(ctx context.Context, targetID string, force bool) ([]Notification, error) {
	svc.mu.RLock()
	if f, ok := svc.cache[targetID]; ok && !force && time.Since(f.lastFetched) < 3*time.Minute {
		cached := append([]Notification(nil), f.notifications...)
		svc.mu.RUnlock()
		return cached, nil
	}
	svc.mu.RUnlock()

	notifications, err := svc.repo.QueryNotifications(ctx, targetID)
	if err != nil {
		return nil, err
	}

	svc.mu.Lock()
	svc.cache[targetID] = &feed{notifications: notifications, lastFetched: time.Now()}
	cached := append([]Notification(nil), notifications...)
	svc.mu.Unlock()
	return cached, nil
}

func (svc *Service) MarkRead(ctx context.Context, id string) (Notification, error) {
	n, err := svc.repo.MarkNotificationRead(ctx, id)
	if err != nil {
		return Notification{}, err
	}

	svc.mu.Lock()
	if f := svc.cache[n.TargetID]; f != nil {
		for i, cached := range f.notifications {
			if cached.ID == n.ID {
				f.notifications[i] = n
				break
			}
		}
	}
	svc.mu.Unlock()
	return n, nil
}

func (svc *Service) MarkAllRead(ctx context.Context, targetID string) error {
	if err := svc.repo.MarkAllNotificationsRead(ctx, targetID); err != nil {
		return err
	}

	svc.mu.Lock()
	if f := svc.cache[targetID]; f != nil {
		for i := range f.notifications {
			f.notifications[i].IsRead = true
		}
	}
	svc.mu.Unlock()
	return nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if err := svc.repo.DeleteNotification(ctx, id); err != nil {
		return err
	}

	svc.mu.Lock()
	for _, f := range svc.cache {
		for i, n := range f.notifications {
			if n.ID == id {
				f.notifications = append(f.notifications[:i], f.notifications[i+1:]...)
				break
			}
		}
	}
	svc.mu.Unlock()
	return nil
}

// UnreadCount counts the target's cached unread entries.
func (svc *Service) UnreadCount(targetID string) int {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	f := svc.cache[targetID]
	if f == nil {
		return 0
	}
	var n int
	for _, ntf := range f.notifications {
		if !ntf.IsRead {
			n++
		}
	}
	return n
}
