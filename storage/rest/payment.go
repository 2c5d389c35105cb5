package restdb

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core/payment"
)

type paymentRepository struct {
	client *Client
}

func NewPaymentRepository(client *Client) payment.Repository {
	return &paymentRepository{client: client}
}

func (repo *paymentRepository) CreateRecord(ctx context.Context, r payment.Record) (payment.Record, error) {
	var created payment.Record
	err := repo.client.do(ctx, http.MethodPost, "/payments", nil, r, &created)
	return created, err
}

func (repo *paymentRepository) QueryAllRecords(ctx context.Context, teacherID string) ([]payment.Record, error) {
	params := url.Values{"teacherId": {teacherID}}
	var records []payment.Record
	err := repo.client.do(ctx, http.MethodGet, "/payments", params, nil, &records)
	return records, err
}

func (repo *paymentRepository) GetRecordByID(ctx context.Context, id string) (payment.Record, error) {
	var r payment.Record
	if err := repo.client.do(ctx, http.MethodGet, "/payments/"+id, nil, nil, &r); err != nil {
		return payment.Record{}, mapNotFound(err, payment.ErrNotFound)
	}
	return r, nil
}

func (repo *paymentRepository) QueryRecordsByStudent(ctx context.Context, studentID string) ([]payment.Record, error) {
	params := url.Values{"studentId": {studentID}}
	var records []payment.Record
	err := repo.client.do(ctx, http.MethodGet, "/payments", params, nil, &records)
	return records, err
}

func (repo *paymentRepository) QueryRecordsByMonth(ctx context.Context, teacherID, month string) ([]payment.Record, error) {
	params := url.Values{"teacherId": {teacherID}, "month": {month}}
	var records []payment.Record
	err := repo.client.do(ctx, http.MethodGet, "/payments", params, nil, &records)
	return records, err
}

func (repo *paymentRepository) QueryRecordsByDateRange(ctx context.Context, teacherID string, from, to time.Time) ([]payment.Record, error) {
	params := url.Values{
		"teacherId": {teacherID},
		"from":      {from.Format(time.RFC3339)},
		"to":        {to.Format(time.RFC3339)},
	}
	var records []payment.Record
	err := repo.client.do(ctx, http.MethodGet, "/payments", params, nil, &records)
	return records, err
}

func (repo *paymentRepository) UpdateRecord(ctx context.Context, id string, up payment.UpdateRecord) (payment.Record, error) {
	var r payment.Record
	if err := repo.client.do(ctx, http.MethodPatch, "/payments/"+id, nil, up, &r); err != nil {
		return payment.Record{}, mapNotFound(err, payment.ErrNotFound)
	}
	return r, nil
}

func (repo *paymentRepository) DeleteRecord(ctx context.Context, id string) error {
	err := repo.client.do(ctx, http.MethodDelete, "/payments/"+id, nil, nil, nil)
	return mapNotFound(err, payment.ErrNotFound)
}

func (repo *paymentRepository) CreateExpense(ctx context.Context, e payment.Expense) (payment.Expense, error) {
	var created payment.Expense
	err := repo.client.do(ctx, http.MethodPost, "/payments/expenses", nil, e, &created)
	return created, err
}

func (repo *paymentRepository) QueryExpensesByDateRange(ctx context.Context, teacherID string, from, to time.Time) ([]payment.Expense, error) {
	params := url.Values{
		"teacherId": {teacherID},
		"from":      {from.Format(time.RFC3339)},
		"to":        {to.Format(time.RFC3339)},
	}
	var expenses []payment.Expense
	err := repo.client.do(ctx, http.MethodGet, "/payments/expenses", params, nil, &expenses)
	return expenses, err
}

func (repo *paymentRepository) DeleteExpense(ctx context.Context, id string) error {
	err := repo.client.do(ctx, http.MethodDelete, "/payments/expenses/"+id, nil, nil, nil)
	return mapNotFound(err, payment.ErrNotFound)
}
