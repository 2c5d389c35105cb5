package restdb

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/newrise0410/piano-academy-app-sub002/core/student"
)

type studentRepository struct {
	client *Client
}

func NewStudentRepository(client *Client) student.Repository {
	return &studentRepository{client: client}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	var created student.Student
	err := repo.client.do(ctx, http.MethodPost, "/students", nil, s, &created)
	return created, err
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context, teacherID string) ([]student.Student, error) {
	params := url.Values{"teacherId": {teacherID}}
	var students []student.Student
	err := repo.client.do(ctx, http.MethodGet, "/students", params, nil, &students)
	return students, err
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var s student.Student
	if err := repo.client.do(ctx, http.MethodGet, "/students/"+id, nil, nil, &s); err != nil {
		return student.Student{}, mapNotFound(err, student.ErrNotFound)
	}
	return s, nil
}

func (repo *studentRepository) FilterStudents(ctx context.Context, f student.QueryFilter) ([]student.Student, error) {
	params := url.Values{}
	if f.TeacherID != "" {
		params.Set("teacherId", f.TeacherID)
	}
	if f.Category != "" {
		params.Set("category", f.Category)
	}
	if f.Search != "" {
		params.Set("search", f.Search)
	}
	if f.Unpaid != nil {
		params.Set("unpaid", strconv.FormatBool(*f.Unpaid))
	}
	var students []student.Student
	err := repo.client.do(ctx, http.MethodGet, "/students", params, nil, &students)
	return students, err
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, id string, up student.UpdateStudent) (student.Student, error) {
	var s student.Student
	if err := repo.client.do(ctx, http.MethodPatch, "/students/"+id, nil, up, &s); err != nil {
		return student.Student{}, mapNotFound(err, student.ErrNotFound)
	}
	return s, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	err := repo.client.do(ctx, http.MethodDelete, "/students/"+id, nil, nil, nil)
	return mapNotFound(err, student.ErrNotFound)
}

func (repo *studentRepository) UpdateStudentSchedule(ctx context.Context, id, schedule string) (student.Student, error) {
	var s student.Student
	body := map[string]string{"schedule": schedule}
	if err := repo.client.do(ctx, http.MethodPut, "/students/"+id+"/schedule", nil, body, &s); err != nil {
		return student.Student{}, mapNotFound(err, student.ErrNotFound)
	}
	return s, nil
}
