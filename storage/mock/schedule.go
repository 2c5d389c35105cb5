package mockdb

import (
	"context"
	"sort"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core/schedule"
)

type scheduleRepository struct {
	db *DB
}

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

func (repo *scheduleRepository) CreateRequest(ctx context.Context, r schedule.ChangeRequest) (schedule.ChangeRequest, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return schedule.ChangeRequest{}, err
	}
	t := repo.db.schedule
	t.mutex.Lock()
	defer t.mutex.Unlock()

	r.ID = nextID("sch")
	t.table[r.ID] = &r
	return r, nil
}

func (repo *scheduleRepository) QueryRequests(ctx context.Context, teacherID string) ([]schedule.ChangeRequest, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.schedule
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var requests []schedule.ChangeRequest
	for _, r := range t.table {
		if r.TeacherID == teacherID {
			requests = append(requests, *r)
		}
	}
	sortRequestsByCreatedDesc(requests)
	return requests, nil
}

func (repo *scheduleRepository) QueryRequestsByParent(ctx context.Context, parentID string) ([]schedule.ChangeRequest, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.schedule
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var requests []schedule.ChangeRequest
	for _, r := range t.table {
		if r.ParentID == parentID {
			requests = append(requests, *r)
		}
	}
	sortRequestsByCreatedDesc(requests)
	return requests, nil
}

func (repo *scheduleRepository) GetRequestByID(ctx context.Context, id string) (schedule.ChangeRequest, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return schedule.ChangeRequest{}, err
	}
	t := repo.db.schedule
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if r, ok := t.table[id]; ok {
		return *r, nil
	}
	return schedule.ChangeRequest{}, schedule.ErrNotFound
}

func (repo *scheduleRepository) SetRequestStatus(ctx context.Context, id, status, rejectionReason string) (schedule.ChangeRequest, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return schedule.ChangeRequest{}, err
	}
	t := repo.db.schedule
	t.mutex.Lock()
	defer t.mutex.Unlock()

	r, ok := t.table[id]
	if !ok {
		return schedule.ChangeRequest{}, schedule.ErrNotFound
	}
	r.Status = status
	if status == schedule.StatusRejected {
		r.RejectionReason = rejectionReason
	} else {
		r.RejectionReason = ""
	}
	r.UpdatedAt = time.Now().UTC()
	return *r, nil
}

func sortRequestsByCreatedDesc(requests []schedule.ChangeRequest) {
	sort.Slice(requests, func(i, j int) bool { return requests[i].CreatedAt.After(requests[j].CreatedAt) })
}
