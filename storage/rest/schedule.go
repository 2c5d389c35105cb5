package restdb

import (
	"context"
	"net/http"
	"net/url"

	"github.com/newrise0410/piano-academy-app-sub002/core/schedule"
)

type scheduleRepository struct {
	client *Client
}

func NewScheduleRepository(client *Client) schedule.Repository {
	return &scheduleRepository{client: client}
}

func (repo *scheduleRepository) CreateRequest(ctx context.Context, r schedule.ChangeRequest) (schedule.ChangeRequest, error) {
	var created schedule.ChangeRequest
	err := repo.client.do(ctx, http.MethodPost, "/schedule-requests", nil, r, &created)
	return created, err
}

func (repo *scheduleRepository) QueryRequests(ctx context.Context, teacherID string) ([]schedule.ChangeRequest, error) {
	params := url.Values{"teacherId": {teacherID}}
	var requests []schedule.ChangeRequest
	err := repo.client.do(ctx, http.MethodGet, "/schedule-requests", params, nil, &requests)
	return requests, err
}

func (repo *scheduleRepository) QueryRequestsByParent(ctx context.Context, parentID string) ([]schedule.ChangeRequest, error) {
	params := url.Values{"parentId": {parentID}}
	var requests []schedule.ChangeRequest
	err := repo.client.do(ctx, http.MethodGet, "/schedule-requests", params, nil, &requests)
	return requests, err
}

func (repo *scheduleRepository) GetRequestByID(ctx context.Context, id string) (schedule.ChangeRequest, error) {
	var r schedule.ChangeRequest
	if err := repo.client.do(ctx, http.MethodGet, "/schedule-requests/"+id, nil, nil, &r); err != nil {
		return schedule.ChangeRequest{}, mapNotFound(err, schedule.ErrNotFound)
	}
	return r, nil
}

func (repo *scheduleRepository) SetRequestStatus(ctx context.Context, id, status, rejectionReason string) (schedule.ChangeRequest, error) {
	var r schedule.ChangeRequest
	body := map[string]string{"status": status, "rejectionReason": rejectionReason}
	if err := repo.client.do(ctx, http.MethodPut, "/schedule-requests/"+id+"/status", nil, body, &r); err != nil {
		return schedule.ChangeRequest{}, mapNotFound(err, schedule.ErrNotFound)
	}
	return r, nil
}
