package mockdb

import (
	"context"
	"sort"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core/student"
)

type studentRepository struct {
	db *DB
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return student.Student{}, err
	}
	t := repo.db.student
	t.mutex.Lock()
	defer t.mutex.Unlock()

	s.ID = nextID("stu")
	t.table[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context, teacherID string) ([]student.Student, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.student
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	students := make([]student.Student, 0, len(t.table))
	for _, s := range t.table {
		if s.TeacherID == teacherID {
			students = append(students, *s)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return student.Student{}, err
	}
	t := repo.db.student
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if s, ok := t.table[id]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterStudents(ctx context.Context, f student.QueryFilter) ([]student.Student, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.student
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var students []student.Student
	for _, s := range t.table {
		if f.Matches(*s) {
			students = append(students, *s)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, id string, up student.UpdateStudent) (student.Student, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return student.Student{}, err
	}
	t := repo.db.student
	t.mutex.Lock()
	defer t.mutex.Unlock()

	s, ok := t.table[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	// only save set fields
	if up.Name != "" {
		s.Name = up.Name
	}
	if up.Category != "" {
		s.Category = up.Category
	}
	if up.Level != "" {
		s.Level = up.Level
	}
	if up.Schedule != "" {
		s.Schedule = up.Schedule
	}
	if up.Book != "" {
		s.Book = up.Book
	}
	if up.Ticket != nil {
		s.Ticket = *up.Ticket
	}
	if up.Unpaid != nil {
		s.Unpaid = *up.Unpaid
	}
	if up.ParentID != "" {
		s.ParentID = up.ParentID
	}
	s.UpdatedAt = time.Now().UTC()
	return *s, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	if err := repo.db.sleep(ctx); err != nil {
		return err
	}
	t := repo.db.student
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.table[id]; !ok {
		return student.ErrNotFound
	}
	delete(t.table, id)
	return nil
}

func (repo *studentRepository) UpdateStudentSchedule(ctx context.Context, id, schedule string) (student.Student, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return student.Student{}, err
	}
	t := repo.db.student
	t.mutex.Lock()
	defer t.mutex.Unlock()

	s, ok := t.table[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	s.Schedule = schedule
	s.UpdatedAt = time.Now().UTC()
	return *s, nil
}
