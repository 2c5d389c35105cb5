package mockdb

import (
	"context"
	"sort"

	"github.com/newrise0410/piano-academy-app-sub002/core/notification"
)

type notificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return notification.Notification{}, err
	}
	t := repo.db.notification
	t.mutex.Lock()
	defer t.mutex.Unlock()

	n.ID = nextID("ntf")
	t.table[n.ID] = &n
	return n, nil
}

func (repo *notificationRepository) QueryNotifications(ctx context.Context, targetID string) ([]notification.Notification, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.notification
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var notifications []notification.Notification
	for _, n := range t.table {
		if n.TargetID == targetID {
			notifications = append(notifications, *n)
		}
	}
	sort.Slice(notifications, func(i, j int) bool { return notifications[i].Timestamp.After(notifications[j].Timestamp) })
	return notifications, nil
}

func (repo *notificationRepository) MarkNotificationRead(ctx context.Context, id string) (notification.Notification, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return notification.Notification{}, err
	}
	t := repo.db.notification
	t.mutex.Lock()
	defer t.mutex.Unlock()

	n, ok := t.table[id]
	if !ok {
		return notification.Notification{}, notification.ErrNotFound
	}
	n.IsRead = true
	return *n, nil
}

func (repo *notificationRepository) MarkAllNotificationsRead(ctx context.Context, targetID string) error {
	if err := repo.db.sleep(ctx); err != nil {
		return err
	}
	t := repo.db.notification
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for _, n := range t.table {
		if n.TargetID == targetID {
			n.IsRead = true
		}
	}
	return nil
}

func (repo *notificationRepository) DeleteNotification(ctx context.Context, id string) error {
	if err := repo.db.sleep(ctx); err != nil {
		return err
	}
	t := repo.db.notification
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.table[id]; !ok {
		return notification.ErrNotFound
	}
	delete(t.table, id)
	return nil
}
