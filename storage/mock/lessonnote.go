package mockdb

import (
	"context"
	"sort"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core/lessonnote"
)

type lessonNoteRepository struct {
	db *DB
}

func NewLessonNoteRepository(db *DB) lessonnote.Repository {
	return &lessonNoteRepository{db: db}
}

func (repo *lessonNoteRepository) CreateNote(ctx context.Context, n lessonnote.Note) (lessonnote.Note, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return lessonnote.Note{}, err
	}
	t := repo.db.lessonNote
	t.mutex.Lock()
	defer t.mutex.Unlock()

	n.ID = nextID("note")
	t.table[n.ID] = &n
	return n, nil
}

func (repo *lessonNoteRepository) QueryAllNotes(ctx context.Context, teacherID string) ([]lessonnote.Note, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.lessonNote
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var notes []lessonnote.Note
	for _, n := range t.table {
		if n.TeacherID == teacherID {
			notes = append(notes, *n)
		}
	}
	sortNotesByDateDesc(notes)
	return notes, nil
}

func (repo *lessonNoteRepository) GetNoteByID(ctx context.Context, id string) (lessonnote.Note, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return lessonnote.Note{}, err
	}
	t := repo.db.lessonNote
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if n, ok := t.table[id]; ok {
		return *n, nil
	}
	return lessonnote.Note{}, lessonnote.ErrNotFound
}

func (repo *lessonNoteRepository) QueryNotesByStudent(ctx context.Context, studentID string) ([]lessonnote.Note, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return nil, err
	}
	t := repo.db.lessonNote
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var notes []lessonnote.Note
	for _, n := range t.table {
		if n.StudentID == studentID {
			notes = append(notes, *n)
		}
	}
	sortNotesByDateDesc(notes)
	return notes, nil
}

func (repo *lessonNoteRepository) UpdateNote(ctx context.Context, id string, up lessonnote.UpdateNote) (lessonnote.Note, error) {
	if err := repo.db.sleep(ctx); err != nil {
		return lessonnote.Note{}, err
	}
	t := repo.db.lessonNote
	t.mutex.Lock()
	defer t.mutex.Unlock()

	n, ok := t.table[id]
	if !ok {
		return lessonnote.Note{}, lessonnote.ErrNotFound
	}
	if up.Progress != "" {
		n.Progress = up.Progress
	}
	if up.Homework != "" {
		n.Homework = up.Homework
	}
	if up.Memo != "" {
		n.Memo = up.Memo
	}
	if up.Strengths != "" {
		n.Strengths = up.Strengths
	}
	if up.Improvements != "" {
		n.Improvements = up.Improvements
	}
	if up.IsPublic != nil {
		n.IsPublic = *up.IsPublic
	}
	n.UpdatedAt = time.Now().UTC()
	return *n, nil
}

func (repo *lessonNoteRepository) DeleteNote(ctx context.Context, id string) error {
	if err := repo.db.sleep(ctx); err != nil {
		return err
	}
	t := repo.db.lessonNote
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.table[id]; !ok {
		return lessonnote.ErrNotFound
	}
	delete(t.table, id)
	return nil
}

func sortNotesByDateDesc(notes []lessonnote.Note) {
	sort.Slice(notes, func(i, j int) bool { return notes[i].Date.After(notes[j].Date) })
}
