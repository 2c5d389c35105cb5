package restdb

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core/attendance"
)

type attendanceRepository struct {
	client *Client
}

func NewAttendanceRepository(client *Client) attendance.Repository {
	return &attendanceRepository{client: client}
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	var created attendance.Record
	err := repo.client.do(ctx, http.MethodPost, "/attendance", nil, r, &created)
	return created, err
}

func (repo *attendanceRepository) QueryAllRecords(ctx context.Context, teacherID string) ([]attendance.Record, error) {
	params := url.Values{"teacherId": {teacherID}}
	var records []attendance.Record
	err := repo.client.do(ctx, http.MethodGet, "/attendance", params, nil, &records)
	return records, err
}

func (repo *attendanceRepository) GetRecordByID(ctx context.Context, id string) (attendance.Record, error) {
	var r attendance.Record
	if err := repo.client.do(ctx, http.MethodGet, "/attendance/"+id, nil, nil, &r); err != nil {
		return attendance.Record{}, mapNotFound(err, attendance.ErrNotFound)
	}
	return r, nil
}

func (repo *attendanceRepository) QueryRecordsByStudent(ctx context.Context, studentID string) ([]attendance.Record, error) {
	params := url.Values{"studentId": {studentID}}
	var records []attendance.Record
	err := repo.client.do(ctx, http.MethodGet, "/attendance", params, nil, &records)
	return records, err
}

func (repo *attendanceRepository) QueryRecordsByDateRange(ctx context.Context, teacherID string, from, to time.Time) ([]attendance.Record, error) {
	params := url.Values{
		"teacherId": {teacherID},
		"from":      {from.Format(time.RFC3339)},
		"to":        {to.Format(time.RFC3339)},
	}
	var records []attendance.Record
	err := repo.client.do(ctx, http.MethodGet, "/attendance", params, nil, &records)
	return records, err
}

func (repo *attendanceRepository) UpdateRecord(ctx context.Context, id string, up attendance.UpdateRecord) (attendance.Record, error) {
	var r attendance.Record
	if err := repo.client.do(ctx, http.MethodPatch, "/attendance/"+id, nil, up, &r); err != nil {
		return attendance.Record{}, mapNotFound(err, attendance.ErrNotFound)
	}
	return r, nil
}

func (repo *attendanceRepository) DeleteRecord(ctx context.Context, id string) error {
	err := repo.client.do(ctx, http.MethodDelete, "/attendance/"+id, nil, nil, nil)
	return mapNotFound(err, attendance.ErrNotFound)
}
