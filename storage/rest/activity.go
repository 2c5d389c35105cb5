package restdb

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/newrise0410/piano-academy-app-sub002/core/activity"
)

type activityRepository struct {
	client *Client
}

func NewActivityRepository(client *Client) activity.Repository {
	return &activityRepository{client: client}
}

func (repo *activityRepository) CreateEntry(ctx context.Context, e activity.Entry) (activity.Entry, error) {
	var created activity.Entry
	err := repo.client.do(ctx, http.MethodPost, "/activities", nil, e, &created)
	return created, err
}

func (repo *activityRepository) QueryRecentEntries(ctx context.Context, teacherID string, limit int) ([]activity.Entry, error) {
	params := url.Values{"teacherId": {teacherID}, "limit": {strconv.Itoa(limit)}}
	var entries []activity.Entry
	err := repo.client.do(ctx, http.MethodGet, "/activities", params, nil, &entries)
	return entries, err
}
