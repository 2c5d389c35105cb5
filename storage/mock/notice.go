package mockdb

import (
	"context"
	"sort"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core/notice"
)

type noticeRepository struct {
	db *DB
}

func NewNoticeRepository(db *DB) notice.Repository {
	return &noticeRepository{db: db}
}

func (repo *noticeRepository) CreateNotice(ctx context.Context, n notice.Notice) (notice.Notice, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return notice.Notice{}, err
	}
	t := repo.db.notice
	t.mutex.Lock()
	defer t.mutex.Unlock()

	n.ID = nextID("ntc")
	if n.ConfirmedBy == nil {
		n.ConfirmedBy = []string{}
	}
	t.table[n.ID] = &n
	return n, nil
}

func (repo *noticeRepository) QueryAllNotices(ctx context.Context, teacherID string) ([]notice.Notice, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.notice
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var notices []notice.Notice
	for _, n := range t.table {
		if n.TeacherID == teacherID {
			notices = append(notices, *n)
		}
	}
	// newest first, feed order
	sort.Slice(notices, func(i, j int) bool { return notices[i].CreatedAt.After(notices[j].CreatedAt) })
	return notices, nil
}

func (repo *noticeRepository) GetNoticeByID(ctx context.Context, id string) (notice.Notice, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return notice.Notice{}, err
	}
	t := repo.db.notice
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if n, ok := t.table[id]; ok {
		return *n, nil
	}
	return notice.Notice{}, notice.ErrNotFound
}

func (repo *noticeRepository) UpdateNotice(ctx context.Context, id string, up notice.UpdateNotice) (notice.Notice, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return notice.Notice{}, err
	}
	t := repo.db.notice
	t.mutex.Lock()
	defer t.mutex.Unlock()

	n, ok := t.table[id]
	if !ok {
		return notice.Notice{}, notice.ErrNotFound
	}
	if up.Title != "" {
		n.Title = up.Title
	}
	if up.Content != "" {
		n.Content = up.Content
	}
	n.UpdatedAt = time.Now().UTC()
	return *n, nil
}

func (repo *noticeRepository) DeleteNotice(ctx context.Context, id string) error {
	if err := repo.db.sleep(ctx); err != nil {
		return err
	}
	t := repo.db.notice
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.table[id]; !ok {
		return notice.ErrNotFound
	}
	delete(t.table, id)
	return nil
}

func (repo *noticeRepository) ConfirmNotice(ctx context.Context, id, parentID string) (notice.Notice, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return notice.Notice{}, err
	}
	t := repo.db.notice
	t.mutex.Lock()
	defer t.mutex.Unlock()

	n, ok := t.table[id]
	if !ok {
		return notice.Notice{}, notice.ErrNotFound
	}
	if !n.ConfirmedByParent(parentID) {
		n.ConfirmedBy = append(n.ConfirmedBy, parentID)
		n.UpdatedAt = time.Now().UTC()
	}
	return *n, nil
}
