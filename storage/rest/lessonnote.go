package restdb

import (
	"context"
	"net/http"
	"net/url"

	"github.com/newrise0410/piano-academy-app-sub002/core/lessonnote"
)

type lessonNoteRepository struct {
	client *Client
}

func NewLessonNoteRepository(client *Client) lessonnote.Repository {
	return &lessonNoteRepository{client: client}
}

func (repo *lessonNoteRepository) CreateNote(ctx context.Context, n lessonnote.Note) (lessonnote.Note, error) {
	var created lessonnote.Note
	err := repo.client.do(ctx, http.MethodPost, "/progress", nil, n, &created)
	return created, err
}

func (repo *lessonNoteRepository) QueryAllNotes(ctx context.Context, teacherID string) ([]lessonnote.Note, error) {
	params := url.Values{"teacherId": {teacherID}}
	var notes []lessonnote.Note
	err := repo.client.do(ctx, http.MethodGet, "/progress", params, nil, &notes)
	return notes, err
}

func (repo *lessonNoteRepository) GetNoteByID(ctx context.Context, id string) (lessonnote.Note, error) {
	var n lessonnote.Note
	if err := repo.client.do(ctx, http.MethodGet, "/progress/"+id, nil, nil, &n); err != nil {
		return lessonnote.Note{}, mapNotFound(err, lessonnote.ErrNotFound)
	}
	return n, nil
}

func (repo *lessonNoteRepository) QueryNotesByStudent(ctx context.Context, studentID string) ([]lessonnote.Note, error) {
	params := url.Values{"studentId": {studentID}}
	var notes []lessonnote.Note
	err := repo.client.do(ctx, http.MethodGet, "/progress", params, nil, &notes)
	return notes, err
}

func (repo *lessonNoteRepository) UpdateNote(ctx context.Context, id string, up lessonnote.UpdateNote) (lessonnote.Note, error) {
	var n lessonnote.Note
	if err := repo.client.do(ctx, http.MethodPatch, "/progress/"+id, nil, up, &n); err != nil {
		return lessonnote.Note{}, mapNotFound(err, lessonnote.ErrNotFound)
	}
	return n, nil
}

func (repo *lessonNoteRepository) DeleteNote(ctx context.Context, id string) error {
	err := repo.client.do(ctx, http.MethodDelete, "/progress/"+id, nil, nil, nil)
	return mapNotFound(err, lessonnote.ErrNotFound)
}
