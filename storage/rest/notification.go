package restdb

import (
	"context"
	"net/http"
	"net/url"

	"github.com/newrise0410/piano-academy-app-sub002/core/notification"
)

type notificationRepository struct {
	client *Client
}

func NewNotificationRepository(client *Client) notification.Repository {
	return &notificationRepository{client: client}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	var created notification.Notification
	err := repo.client.do(ctx, http.MethodPost, "/notifications", nil, n, &created)
	return created, err
}

func (repo *notificationRepository) QueryNotifications(ctx context.Context, targetID string) ([]notification.Notification, error) {
	params := url.Values{"targetId": {targetID}}
	var notifications []notification.Notification
	err := repo.client.do(ctx, http.MethodGet, "/notifications", params, nil, &notifications)
	return notifications, err
}

func (repo *notificationRepository) MarkNotificationRead(ctx context.Context, id string) (notification.Notification, error) {
	var n notification.Notification
	if err := repo.client.do(ctx, http.MethodPost, "/notifications/"+id+"/read", nil, nil, &n); err != nil {
		return notification.Notification{}, mapNotFound(err, notification.ErrNotFound)
	}
	return n, nil
}

func (repo *notificationRepository) MarkAllNotificationsRead(ctx context.Context, targetID string) error {
	body := map[string]string{"targetId": targetID}
	return repo.client.do(ctx, http.MethodPost, "/notifications/read-all", nil, body, nil)
}

func (repo *notificationRepository) DeleteNotification(ctx context.Context, id string) error {
	err := repo.client.do(ctx, http.MethodDelete, "/notifications/"+id, nil, nil, nil)
	return mapNotFound(err, notification.ErrNotFound)
}
