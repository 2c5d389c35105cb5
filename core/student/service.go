package student

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

var ErrNotFound = errors.New("student not found")

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		QueryAllStudents(ctx context.Context, teacherID string) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// FilterStudents applies AND semantics on the set QueryFilter fields.
		FilterStudents(ctx context.Context, f QueryFilter) ([]Student, error)
		UpdateStudent(ctx context.Context, id string, up UpdateStudent) (Student, error)
		DeleteStudent(ctx context.Context, id string) error
		// UpdateStudentSchedule is the single-field write used by
		// schedule-change approval and its compensating rollback.
		UpdateStudentSchedule(ctx context.Context, id, schedule string) (Student, error)
	}

	// ActivityLogger and Notifier are the best-effort side-effect sinks; both
	// are async and never fail the caller.
	ActivityLogger interface {
		LogAsync(teacherID, entryType, action, title, description, studentID, relatedID string)
	}

	Notifier interface {
		PushAsync(ntype, title, message, targetID string)
	}

	// roster is one teacher's cached collection. The service is shared by
	// every API user, so freshness is tracked per teacher.
	roster struct {
		students    []Student
		lastFetched time.Time
	}

	// Service fronts the repository with a tenant-keyed read-through cache
	// and derived views. Safe for concurrent use.
	Service struct {
		repo       Repository
		logger     core.Logger
		activities ActivityLogger
		notifier   Notifier
		ttl        time.Duration

		mu      sync.RWMutex
		cache   map[string]*roster // keyed by teacher id
		loading bool
		lastErr string
	}
)

func NewService(repo Repository, logger core.Logger, activities ActivityLogger, notifier Notifier, ttl time.Duration) *Service {
	return &Service{repo: repo, logger: logger, activities: activities, notifier: notifier, ttl: ttl, cache: make(map[string]*roster)}
}

// Fetch returns the teacher's cached collection when it is fresher than the
// TTL, unless force is set. A stale or forced call performs exactly one
// repository query for that teacher.
func (svc *Service) Fetch(ctx context.Context, teacherID string, force bool) ([]Student, error) {
	svc.mu.RLock()
	if r, ok := svc.cache[teacherID]; ok && !force && time.Since(r.lastFetched) < svc.ttl {
		cached := append([]Student(nil), r.students...)
		svc.mu.RUnlock()
		return cached, nil
	}
	svc.mu.RUnlock()

	svc.setLoading()
	students, err := svc.repo.QueryAllStudents(ctx, teacherID)
	if err != nil {
		svc.setError(err)
		return nil, err
	}

	svc.mu.Lock()
	svc.cache[teacherID] = &roster{students: students, lastFetched: time.Now()}
	svc.loading = false
	svc.lastErr = ""
	cached := append([]Student(nil), students...)
	svc.mu.Unlock()
	return cached, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, f QueryFilter) ([]Student, error) {
	return svc.repo.FilterStudents(ctx, f)
}

func (svc *Service) Add(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}

	now := time.Now().UTC()
	stu := Student{
		Name:      core.CleanString(ns.Name),
		Category:  ns.Category,
		Level:     ns.Level,
		Schedule:  ns.Schedule,
		Book:      ns.Book,
		Ticket:    ns.Ticket,
		TeacherID: ns.TeacherID,
		ParentID:  ns.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	svc.setLoading()
	stu, err := svc.repo.CreateStudent(ctx, stu)
	if err != nil {
		svc.setError(err)
		return Student{}, err
	}

	svc.mu.Lock()
	if r := svc.cache[stu.TeacherID]; r != nil {
		r.students = append(r.students, stu)
	}
	svc.loading = false
	svc.lastErr = ""
	svc.mu.Unlock()

	svc.activities.LogAsync(stu.TeacherID, "student", "create", "New student", fmt.Sprintf("%s registered", stu.Name), stu.ID, "")
	svc.notifier.PushAsync("student", "New student", fmt.Sprintf("%s joined the academy", stu.Name), stu.TeacherID)
	return stu, nil
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	if err := us.Validate(); err != nil {
		return Student{}, err
	}

	svc.setLoading()
	stu, err := svc.repo.UpdateStudent(ctx, id, us)
	if err != nil {
		svc.setError(err)
		return Student{}, err
	}

	svc.patch(stu)
	svc.activities.LogAsync(stu.TeacherID, "student", "update", "Student updated", fmt.Sprintf("%s's record changed", stu.Name), stu.ID, "")
	return stu, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	svc.setLoading()
	stu, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		svc.setError(err)
		return err
	}
	if err = svc.repo.DeleteStudent(ctx, id); err != nil {
		svc.setError(err)
		return err
	}

	svc.mu.Lock()
	if r := svc.cache[stu.TeacherID]; r != nil {
		for i, s := range r.students {
			if s.ID == id {
				r.students = append(r.students[:i], r.students[i+1:]...)
				break
			}
		}
	}
	svc.loading = false
	svc.lastErr = ""
	svc.mu.Unlock()

	svc.activities.LogAsync(stu.TeacherID, "student", "delete", "Student removed", stu.Name, id, "")
	return nil
}

// SetSchedule performs the single-field schedule write used by schedule
// change approvals; the cache entry is patched on success.
func (svc *Service) SetSchedule(ctx context.Context, id, schedule string) (Student, error) {
	stu, err := svc.repo.UpdateStudentSchedule(ctx, id, schedule)
	if err != nil {
		return Student{}, err
	}
	svc.patch(stu)
	return stu, nil
}

// SetUnpaid flips the unpaid flag; used by the payment workflow.
func (svc *Service) SetUnpaid(ctx context.Context, id string, unpaid bool) (Student, error) {
	return svc.Update(ctx, id, UpdateStudent{Unpaid: &unpaid})
}

// Writer adapts the Service to the narrow error-only write interfaces the
// payment and schedule workflows consume.
type Writer struct {
	Svc *Service
}

func (w Writer) SetSchedule(ctx context.Context, studentID, schedule string) error {
	_, err := w.Svc.SetSchedule(ctx, studentID, schedule)
	return err
}

func (w Writer) SetUnpaidFlag(ctx context.Context, studentID string, unpaid bool) error {
	_, err := w.Svc.SetUnpaid(ctx, studentID, unpaid)
	return err
}

// TicketAlerts returns the teacher's cached students whose ticket is critical
// or expired at `now`.
func (svc *Service) TicketAlerts(teacherID string, now time.Time) []Student {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	r := svc.cache[teacherID]
	if r == nil {
		return nil
	}
	var alerts []Student
	for _, s := range r.students {
		switch s.Ticket.Status(now) {
		case TicketCritical, TicketExpired:
			alerts = append(alerts, s)
		}
	}
	return alerts
}

// UnpaidCount counts the teacher's cached students flagged unpaid.
func (svc *Service) UnpaidCount(teacherID string) int {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	r := svc.cache[teacherID]
	if r == nil {
		return 0
	}
	var n int
	for _, s := range r.students {
		if s.Unpaid {
			n++
		}
	}
	return n
}

// State reports the loading flag and last error for presentation layers.
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

func (svc *Service) patch(stu Student) {
	svc.mu.Lock()
	if r := svc.cache[stu.TeacherID]; r != nil {
		for i, s := range r.students {
			if s.ID == stu.ID {
				r.students[i] = stu
				break
			}
		}
	}
	svc.loading = false
	svc.lastErr = ""
	svc.mu.Unlock()
}
