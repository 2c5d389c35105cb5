package mockdb

import (
	"context"
	"sort"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return attendance.Record{}, err
	}
	t := repo.db.attendance
	t.mutex.Lock()
	defer t.mutex.Unlock()

	r.ID = nextID("att")
	t.table[r.ID] = &r
	return r, nil
}

func (repo *attendanceRepository) QueryAllRecords(ctx context.Context, teacherID string) ([]attendance.Record, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.attendance
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var records []attendance.Record
	for _, r := range t.table {
		if r.TeacherID == teacherID {
			records = append(records, *r)
		}
	}
	sortRecordsByDateDesc(records)
	return records, nil
}

func (repo *attendanceRepository) GetRecordByID(ctx context.Context, id string) (attendance.Record, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return attendance.Record{}, err
	}
	t := repo.db.attendance
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if r, ok := t.table[id]; ok {
		return *r, nil
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) QueryRecordsByStudent(ctx context.Context, studentID string) ([]attendance.Record, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.attendance
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var records []attendance.Record
	for _, r := range t.table {
		if r.StudentID == studentID {
			records = append(records, *r)
		}
	}
	sortRecordsByDateDesc(records)
	return records, nil
}

func (repo *attendanceRepository) QueryRecordsByDateRange(ctx context.Context, teacherID string, from, to time.Time) ([]attendance.Record, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.attendance
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var records []attendance.Record
	for _, r := range t.table {
		if r.TeacherID != teacherID {
			continue
		}
		if r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		records = append(records, *r)
	}
	sortRecordsByDateDesc(records)
	return records, nil
}

func (repo *attendanceRepository) UpdateRecord(ctx context.Context, id string, up attendance.UpdateRecord) (attendance.Record, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return attendance.Record{}, err
	}
	t := repo.db.attendance
	t.mutex.Lock()
	defer t.mutex.Unlock()

	r, ok := t.table[id]
	if !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	if up.Status != "" {
		r.Status = up.Status
	}
	if up.Note != "" {
		r.Note = up.Note
	}
	r.UpdatedAt = time.Now().UTC()
	return *r, nil
}

func (repo *attendanceRepository) DeleteRecord(ctx context.Context, id string) error {
	if err := repo.db.sleep(ctx); err != nil {
		return err
	}
	t := repo.db.attendance
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.table[id]; !ok {
		return attendance.ErrNotFound
	}
	delete(t.table, id)
	return nil
}

func sortRecordsByDateDesc(records []attendance.Record) {
	sort.Slice(records, func(i, j int) bool { return records[i].Date.After(records[j].Date) })
}
