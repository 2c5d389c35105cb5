package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

var (
	ErrNotFound        = errors.New("payment record not found")
	ErrExpenseNotFound = errors.New("expense not found")
)

type (
	Repository interface {
		CreateRecord(ctx context.Context, r Record) (Record, error)
		QueryAllRecords(ctx context.Context, teacherID string) ([]Record, error)
		GetRecordByID(ctx context.Context, id string) (Record, error)
		QueryRecordsByStudent(ctx context.Context, studentID string) ([]Record, error)
		// QueryRecordsByMonth reads a single YYYY-MM shard; aggregate views
		// loop over shard keys themselves.
		QueryRecordsByMonth(ctx context.Context, teacherID, month string) ([]Record, error)
		QueryRecordsByDateRange(ctx context.Context, teacherID string, from, to time.Time) ([]Record, error)
		UpdateRecord(ctx context.Context, id string, up UpdateRecord) (Record, error)
		DeleteRecord(ctx context.Context, id string) error

		CreateExpense(ctx context.Context, e Expense) (Expense, error)
		QueryExpensesByDateRange(ctx context.Context, teacherID string, from, to time.Time) ([]Expense, error)
		DeleteExpense(ctx context.Context, id string) error
	}

	ActivityLogger interface {
		LogAsync(teacherID, entryType, action, title, description, studentID, relatedID string)
	}

	Notifier interface {
		PushAsync(ntype, title, message, targetID string)
	}

	// StudentFlagSetter clears/raises the per-student unpaid flag as payments
	// change state. Failures are logged, not propagated: the payment write is
	// the primary mutation.
	StudentFlagSetter interface {
		SetUnpaidFlag(ctx context.Context, studentID string, unpaid bool) error
	}

	// ledger is one teacher's cached records with the per-student index;
	// freshness is per teacher since the service instance is shared.
	ledger struct {
		records     []Record
		byStudent   map[string][]Record
		lastFetched time.Time
	}

	Service struct {
		repo       Repository
		logger     core.Logger
		activities ActivityLogger
		notifier   Notifier
		students   StudentFlagSetter
		ttl        time.Duration

		mu      sync.RWMutex
		cache   map[string]*ledger // keyed by teacher id
		loading bool
		lastErr string
	}
)

func NewService(repo Repository, logger core.Logger, activities ActivityLogger, notifier Notifier, students StudentFlagSetter, ttl time.Duration) *Service {
	return &Service{
		repo:       repo,
		logger:     logger,
		activities: activities,
		notifier:   notifier,
		students:   students,
		ttl:        ttl,
		cache:      make(map[string]*ledger),
	}
}

func newLedger(records []Record) *ledger {
	l := &ledger{records: records, byStudent: make(map[string][]Record, len(records)), lastFetched: time.Now()}
	for _, r := range records {
		l.byStudent[r.StudentID] = append(l.byStudent[r.StudentID], r)
	}
	return l
}

func (svc *Service) Fetch(ctx context.Context, teacherID string, force bool) ([]Record, error) {
	svc.mu.RLock()
	if l, ok := svc.cache[teacherID]; ok && !force && time.Since(l.lastFetched) < svc.ttl {
		cached := append([]Record(nil), l.records...)
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

	svc.mu.Lock()
	svc.cache[teacherID] = newLedger(records)
	svc.loading = false
	svc.lastErr = ""
	cached := append([]Record(nil), records...)
	svc.mu.Unlock()
	return cached, nil
}

// FetchAggregate reads the full 13-shard window (next month through eleven
// months back, inclusive) and concatenates the shards without deduplication.
func (svc *Service) FetchAggregate(ctx context.Context, teacherID string, today time.Time) ([]Record, error) {
	var all []Record
	for _, month := range AggregateMonths(today) {
		records, err := svc.repo.QueryRecordsByMonth(ctx, teacherID, month)
		if err != nil {
			svc.setError(err)
			return nil, err
		}
		all = append(all, records...)
	}

	svc.mu.Lock()
	svc.cache[teacherID] = newLedger(all)
	svc.loading = false
	svc.lastErr = ""
	svc.mu.Unlock()
	return all, nil
}

func (svc *Service) ForStudent(ctx context.Context, studentID string) ([]Record, error) {
	svc.mu.RLock()
	for _, l := range svc.cache {
		if time.Since(l.lastFetched) >= svc.ttl {
			continue
		}
		if cached, ok := l.byStudent[studentID]; ok {
			out := append([]Record(nil), cached...)
			svc.mu.RUnlock()
			return out, nil
		}
	}
	svc.mu.RUnlock()
	return svc.repo.QueryRecordsByStudent(ctx, studentID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Record, error) {
	return svc.repo.GetRecordByID(ctx, id)
}

func (svc *Service) Add(ctx context.Context, nr NewRecord) (Record, error) {
	if err := nr.Validate(); err != nil {
		return Record{}, err
	}

	now := time.Now().UTC()
	status := nr.Status
	if status == "" {
		status = StatusUnpaid
	}
	rec := Record{
		StudentID: nr.StudentID,
		TeacherID: nr.TeacherID,
		Amount:    nr.Amount,
		Month:     core.MonthKey(nr.Date),
		Date:      nr.Date,
		Type:      nr.Type,
		Method:    nr.Method,
		Status:    status,
		Ticket:    nr.Ticket,
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
	if l := svc.cache[rec.TeacherID]; l != nil {
		l.records = append(l.records, rec)
		l.byStudent[rec.StudentID] = append(l.byStudent[rec.StudentID], rec)
	}
	svc.loading = false
	svc.lastErr = ""
	svc.mu.Unlock()

	if rec.Status == StatusUnpaid {
		if err := svc.students.SetUnpaidFlag(ctx, rec.StudentID, true); err != nil {
			svc.logger.Warn(fmt.Sprintf("payment: raising unpaid flag for %s: %v", rec.StudentID, err))
		}
	}
	svc.activities.LogAsync(rec.TeacherID, "payment", "create", "Tuition recorded",
		fmt.Sprintf("%d due %s", rec.Amount, rec.Date.Format("2006-01-02")), rec.StudentID, rec.ID)
	return rec, nil
}

// MarkPaid flips a record to paid and clears the student's unpaid flag.
func (svc *Service) MarkPaid(ctx context.Context, id, method string) (Record, error) {
	up := UpdateRecord{Status: StatusPaid, Method: method}
	if err := up.Validate(); err != nil {
		return Record{}, err
	}

	svc.setLoading()
	rec, err := svc.repo.UpdateRecord(ctx, id, up)
	if err != nil {
		svc.setError(err)
		return Record{}, err
	}
	svc.patch(rec)

	if err := svc.students.SetUnpaidFlag(ctx, rec.StudentID, false); err != nil {
		svc.logger.Warn(fmt.Sprintf("payment: clearing unpaid flag for %s: %v", rec.StudentID, err))
	}
	svc.activities.LogAsync(rec.TeacherID, "payment", "update", "Tuition paid",
		fmt.Sprintf("%d received", rec.Amount), rec.StudentID, rec.ID)
	svc.notifier.PushAsync("payment", "Tuition paid", fmt.Sprintf("%d received", rec.Amount), rec.TeacherID)
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
	if l := svc.cache[rec.TeacherID]; l != nil {
		for i, r := range l.records {
			if r.ID == id {
				l.records = append(l.records[:i], l.records[i+1:]...)
				break
			}
		}
		recs := l.byStudent[rec.StudentID]
		for i, r := range recs {
			if r.ID == id {
				l.byStudent[rec.StudentID] = append(recs[:i], recs[i+1:]...)
				break
			}
		}
	}
	svc.loading = false
	svc.lastErr = ""
	svc.mu.Unlock()
	return nil
}

func (svc *Service) AddExpense(ctx context.Context, ne NewExpense) (Expense, error) {
	if err := ne.Validate(); err != nil {
		return Expense{}, err
	}

	exp := Expense{
		TeacherID:   ne.TeacherID,
		Category:    ne.Category,
		Amount:      ne.Amount,
		Description: ne.Description,
		Date:        ne.Date,
		CreatedAt:   time.Now().UTC(),
	}
	exp, err := svc.repo.CreateExpense(ctx, exp)
	if err != nil {
		svc.setError(err)
		return Expense{}, err
	}
	svc.activities.LogAsync(exp.TeacherID, "expense", "create", "Expense recorded", exp.Category, "", exp.ID)
	return exp, nil
}

func (svc *Service) DeleteExpense(ctx context.Context, id string) error {
	return svc.repo.DeleteExpense(ctx, id)
}

// FinanceSummary computes the settlement-period view: income from paid
// records vs total expense over the window anchored at settlementDay.
func (svc *Service) FinanceSummary(ctx context.Context, teacherID string, settlementDay int, today time.Time) (Summary, error) {
	start, end := SettlementPeriod(settlementDay, today)
	records, err := svc.repo.QueryRecordsByDateRange(ctx, teacherID, start, end)
	if err != nil {
		return Summary{}, err
	}
	expenses, err := svc.repo.QueryExpensesByDateRange(ctx, teacherID, start, end)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(start, end, records, expenses), nil
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

func (svc *Service) patch(rec Record) {
	svc.mu.Lock()
	if l := svc.cache[rec.TeacherID]; l != nil {
		for i, r := range l.records {
			if r.ID == rec.ID {
				l.records[i] = rec
				break
			}
		}
		recs := l.byStudent[rec.StudentID]
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
}
