package mockdb

import (
	"context"
	"sort"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core/payment"
)

type paymentRepository struct {
	db *DB
}

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreateRecord(ctx context.Context, r payment.Record) (payment.Record, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return payment.Record{}, err
	}
	t := repo.db.payment
	t.mutex.Lock()
	defer t.mutex.Unlock()

	r.ID = nextID("pay")
	t.records[r.ID] = &r
	return r, nil
}

func (repo *paymentRepository) QueryAllRecords(ctx context.Context, teacherID string) ([]payment.Record, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.payment
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var records []payment.Record
	for _, r := range t.records {
		if r.TeacherID == teacherID {
			records = append(records, *r)
		}
	}
	sortPaymentsByDateDesc(records)
	return records, nil
}

func (repo *paymentRepository) GetRecordByID(ctx context.Context, id string) (payment.Record, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return payment.Record{}, err
	}
	t := repo.db.payment
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if r, ok := t.records[id]; ok {
		return *r, nil
	}
	return payment.Record{}, payment.ErrNotFound
}

func (repo *paymentRepository) QueryRecordsByStudent(ctx context.Context, studentID string) ([]payment.Record, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.payment
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var records []payment.Record
	for _, r := range t.records {
		if r.StudentID == studentID {
			records = append(records, *r)
		}
	}
	sortPaymentsByDateDesc(records)
	return records, nil
}

func (repo *paymentRepository) QueryRecordsByMonth(ctx context.Context, teacherID, month string) ([]payment.Record, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.payment
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var records []payment.Record
	for _, r := range t.records {
		if r.TeacherID == teacherID && r.Month == month {
			records = append(records, *r)
		}
	}
	sortPaymentsByDateDesc(records)
	return records, nil
}

func (repo *paymentRepository) QueryRecordsByDateRange(ctx context.Context, teacherID string, from, to time.Time) ([]payment.Record, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.payment
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var records []payment.Record
	for _, r := range t.records {
		if r.TeacherID != teacherID {
			continue
		}
		if r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		records = append(records, *r)
	}
	sortPaymentsByDateDesc(records)
	return records, nil
}

func (repo *paymentRepository) UpdateRecord(ctx context.Context, id string, up payment.UpdateRecord) (payment.Record, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return payment.Record{}, err
	}
	t := repo.db.payment
	t.mutex.Lock()
	defer t.mutex.Unlock()

	r, ok := t.records[id]
	if !ok {
		return payment.Record{}, payment.ErrNotFound
	}
	if up.Status != "" {
		r.Status = up.Status
	}
	if up.Method != "" {
		r.Method = up.Method
	}
	r.UpdatedAt = time.Now().UTC()
	return *r, nil
}

func (repo *paymentRepository) DeleteRecord(ctx context.Context, id string) error {
	if err := repo.db.sleep(ctx); err != nil {
		return err
	}
	t := repo.db.payment
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.records[id]; !ok {
		return payment.ErrNotFound
	}
	delete(t.records, id)
	return nil
}

func (repo *paymentRepository) CreateExpense(ctx context.Context, e payment.Expense) (payment.Expense, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return payment.Expense{}, err
	}
	t := repo.db.payment
	t.mutex.Lock()
	defer t.mutex.Unlock()

	e.ID = nextID("exp")
	t.expenses[e.ID] = &e
	return e, nil
}

func (repo *paymentRepository) QueryExpensesByDateRange(ctx context.Context, teacherID string, from, to time.Time) ([]payment.Expense, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.payment
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var expenses []payment.Expense
	for _, e := range t.expenses {
		if e.TeacherID != teacherID {
			continue
		}
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		expenses = append(expenses, *e)
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].Date.After(expenses[j].Date) })
	return expenses, nil
}

func (repo *paymentRepository) DeleteExpense(ctx context.Context, id string) error {
	if err := repo.db.sleep(ctx); err != nil {
		return err
	}
	t := repo.db.payment
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.expenses[id]; !ok {
		return payment.ErrNotFound
	}
	delete(t.expenses, id)
	return nil
}

func sortPaymentsByDateDesc(records []payment.Record) {
	sort.Slice(records, func(i, j int) bool { return records[i].Date.After(records[j].Date) })
}
