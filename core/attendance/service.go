package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

var ErrNotFound = errors.New("attendance record not found")

type (
	Repository interface {
		CreateRecord(ctx context.Context, r Record) (Record, error)
		QueryAllRecords(ctx context.Context, teacherID string) ([]Record, error)
		GetRecordByID(ctx context.Context, id string) (Record, error)
		QueryRecordsByStudent(ctx context.Context, studentID string) ([]Record, error)
		// QueryRecordsByDateRange uses inclusive boundaries on both ends.
		QueryRecordsByDateRange(ctx context.Context, teacherID string, from, to time.Time) ([]Record, error)
		UpdateRecord(ctx context.Context, id string, up UpdateRecord) (Record, error)
		DeleteRecord(ctx context.Context, id string) error
	}

	ActivityLogger interface {
		LogAsync(teacherID, entryType, action, title, description, studentID, relatedID string)
	}

	// register is one teacher's cached records with the per-student index;
	// freshness is per teacher since the service instance is shared.
	register struct {
		records     []Record
		byStudent   map[string][]Record
		lastFetched time.Time
	}

	Service struct {
		repo       Repository
		logger     core.Logger
		activities ActivityLogger
		ttl        time.Duration

		mu      sync.RWMutex
		cache   map[string]*register // keyed by teacher id
		loading bool
		lastErr string
	}
)

func NewService(repo Repository, logger core.Logger, activities ActivityLogger, ttl time.Duration) *Service {
	return &Service{repo: repo, logger: logger, activities: activities, ttl: ttl, cache: make(map[string]*register)}
}

func (svc *Service) Fetch(ctx context.Context, teacherID string, force bool) ([]Record, error) {
	svc.mu.RLock()
	if reg, ok := svc.cache[teacherID]; ok && !force && time.Since(reg.lastFetched) < svc.ttl {
		cached := append([]Record(nil), reg.records...)
		svc.mu.RUnlock()
		return cached, nil
	}
	svc.mu.RUnlock()

	svc.setLoading()
	records, err := svc.repo.QueryAllRecords(ctx, teacherID)
	if err != nil {
		svc.setError(err)
		return nil, err
	}

	reg := &register{records: records, byStudent: make(map[string][]Record, len(records)), lastFetched: time.Now()}
	for _, r := range records {
		reg.byStudent[r.StudentID] = append(reg.byStudent[r.StudentID], r)
	}

	svc.mu.Lock()
	svc.cache[teacherID] = reg
	svc.loading = false
	svc.lastErr = ""
	cached := append([]Record(nil), records...)
	svc.mu.Unlock()
	return cached, nil
}

func (svc *Service) ForStudent(ctx context.Context, studentID string) ([]Record, error) {
	svc.mu.RLock()
	for _, reg := range svc.cache {
		if time.Since(reg.lastFetched) >= svc.ttl {
			continue
		}
		if cached, ok := reg.byStudent[studentID]; ok {
			out := append([]Record(nil), cached...)
			svc.mu.RUnlock()
			return out, nil
		}
	}
	svc.mu.RUnlock()

	records, err := svc.repo.QueryRecordsByStudent(ctx, studentID)
	if err != nil {
		svc.setError(err)
		return nil, err
	}
	if len(records) > 0 {
		svc.mu.Lock()
		if reg := svc.cache[records[0].TeacherID]; reg != nil {
			reg.byStudent[studentID] = records
		}
		svc.mu.Unlock()
	}
	return records, nil
}

func (svc *Service) ForDateRange(ctx context.Context, teacherID string, from, to time.Time) ([]Record, error) {
	return svc.repo.QueryRecordsByDateRange(ctx, teacherID, from, to)
}

// Mark records attendance for a student on a date. One record per student per
// date is a convention, not an enforced constraint; corrections go through
// Correct.
func (svc *Service) Mark(ctx context.Context, nr NewRecord) (Record, error) {
	if err := nr.Validate(); err != nil {
		return Record{}, err
	}

	now := time.Now().UTC()
	rec := Record{
		StudentID: nr.StudentID,
		TeacherID: nr.TeacherID,
		Date:      core.Midnight(nr.Date),
		Status:    nr.Status,
		Note:      nr.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}

	svc.setLoading()
	rec, err := svc.repo.CreateRecord(ctx, rec)
	if err != nil {
		svc.setError(err)
		return Record{}, err
	}

	svc.mu.Lock()
	if reg := svc.cache[rec.TeacherID]; reg != nil {
		reg.records = append(reg.records, rec)
		reg.byStudent[rec.StudentID] = append(reg.byStudent[rec.StudentID], rec)
	}
	svc.loading = false
	svc.lastErr = ""
	svc.mu.Unlock()

	svc.activities.LogAsync(rec.TeacherID, "attendance", "create", "Attendance marked",
		fmt.Sprintf("%s on %s", rec.Status, rec.Date.Format("2006-01-02")), rec.StudentID, rec.ID)
	return rec, nil
}

// Correct amends an existing record.
func (svc *Service) Correct(ctx context.Context, id string, ur UpdateRecord) (Record, error) {
	if err := ur.Validate(); err != nil {
		return Record{}, err
	}

	svc.setLoading()
	rec, err := svc.repo.UpdateRecord(ctx, id, ur)
	if err != nil {
		svc.setError(err)
		return Record{}, err
	}

	svc.mu.Lock()
	if reg := svc.cache[rec.TeacherID]; reg != nil {
		for i, r := range reg.records {
			if r.ID == rec.ID {
				reg.records[i] = rec
				break
			}
		}
		recs := reg.byStudent[rec.StudentID]
		for i, r := range recs {
			if r.ID == rec.ID {
				recs[i] = rec
				break
			}
		}
	}
	svc.loading = false
	svc.lastErr = ""
	svc.mu.Unlock()

	svc.activities.LogAsync(rec.TeacherID, "attendance", "update", "Attendance corrected", rec.Status, rec.StudentID, rec.ID)
	return rec, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	svc.setLoading()
	rec, err := svc.repo.GetRecordByID(ctx, id)
	if err != nil {
		svc.setError(err)
		return err
	}
	if err = svc.repo.DeleteRecord(ctx, id); err != nil {
		svc.setError(err)
		return err
	}

	svc.mu.Lock()
	if reg := svc.cache[rec.TeacherID]; reg != nil {
		for i, r := range reg.records {
			if r.ID == id {
				reg.records = append(reg.records[:i], reg.records[i+1:]...)
				break
			}
		}
		recs := reg.byStudent[rec.StudentID]
		for i, r := range recs {
			if r.ID == id {
				reg.byStudent[rec.StudentID] = append(recs[:i], recs[i+1:]...)
				break
			}
		}
	}
	svc.loading = false
	svc.lastErr = ""
	svc.mu.Unlock()
	return nil
}

// StatsForStudent derives the attendance summary from that student's cached
// records, fetching them when stale.
func (svc *Service) StatsForStudent(ctx context.Context, studentID string) (Stats, error) {
	records, err := svc.ForStudent(ctx, studentID)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(records), nil
}

func (svc *Service) State() (loading bool, lastErr string) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.loading, svc.lastErr
}

func (svc *Service) setLoading() {
	svc.mu.Lock()
	svc.loading = true
	svc.mu.Unlock()
}

func (svc *Service) setError(err error) {
	svc.mu.Lock()
	svc.loading = false
	svc.lastErr = err.Error()
	svc.mu.Unlock()
}
