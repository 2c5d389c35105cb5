package mockdb

import (
	"context"
	"sort"

	"github.com/newrise0410/piano-academy-app-sub002/core/activity"
)

type activityRepository struct {
	db *DB
}

func NewActivityRepository(db *DB) activity.Repository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) CreateEntry(ctx context.Context, e activity.Entry) (activity.Entry, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return activity.Entry{}, err
	}
	t := repo.db.activity
	t.mutex.Lock()
	defer t.mutex.Unlock()

	e.ID = nextID("act")
	t.table[e.ID] = &e
	return e, nil
}

func (repo *activityRepository) QueryRecentEntries(ctx context.Context, teacherID string, limit int) ([]activity.Entry, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.activity
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var entries []activity.Entry
	for _, e := range t.table {
		if e.TeacherID == teacherID {
			entries = append(entries, *e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
