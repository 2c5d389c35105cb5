package restdb

import (
	"context"
	"net/http"
	"net/url"

	"github.com/newrise0410/piano-academy-app-sub002/core/notice"
)

type noticeRepository struct {
	client *Client
}

func NewNoticeRepository(client *Client) notice.Repository {
	return &noticeRepository{client: client}
}

func (repo *noticeRepository) CreateNotice(ctx context.Context, n notice.Notice) (notice.Notice, error) {
	var created notice.Notice
	err := repo.client.do(ctx, http.MethodPost, "/notices", nil, n, &created)
	return created, err
}

func (repo *noticeRepository) QueryAllNotices(ctx context.Context, teacherID string) ([]notice.Notice, error) {
	params := url.Values{"teacherId": {teacherID}}
	var notices []notice.Notice
	err := repo.client.do(ctx, http.MethodGet, "/notices", params, nil, &notices)
	return notices, err
}

func (repo *noticeRepository) GetNoticeByID(ctx context.Context, id string) (notice.Notice, error) {
	var n notice.Notice
	if err := repo.client.do(ctx, http.MethodGet, "/notices/"+id, nil, nil, &n); err != nil {
		return notice.Notice{}, mapNotFound(err, notice.ErrNotFound)
	}
	return n, nil
}

func (repo *noticeRepository) UpdateNotice(ctx context.Context, id string, up notice.UpdateNotice) (notice.Notice, error) {
	var n notice.Notice
	if err := repo.client.do(ctx, http.MethodPatch, "/notices/"+id, nil, up, &n); err != nil {
		return notice.Notice{}, mapNotFound(err, notice.ErrNotFound)
	}
	return n, nil
}

func (repo *noticeRepository) DeleteNotice(ctx context.Context, id string) error {
	err := repo.client.do(ctx, http.MethodDelete, "/notices/"+id, nil, nil, nil)
	return mapNotFound(err, notice.ErrNotFound)
}

func (repo *noticeRepository) ConfirmNotice(ctx context.Context, id, parentID string) (notice.Notice, error) {
	var n notice.Notice
	body := map[string]string{"parentId": parentID}
	if err := repo.client.do(ctx, http.MethodPost, "/notices/"+id+"/confirm", nil, body, &n); err != nil {
		return notice.Notice{}, mapNotFound(err, notice.ErrNotFound)
	}
	return n, nil
}
