package gallery

import (
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

type (
	// Photo is one gallery entry. Binary data lives wherever URL points;
	// only the reference and its captions are kept here.
	Photo struct {
		ID        string    `json:"id" bson:"_id,omitempty"`
		TeacherID string    `json:"teacherId" bson:"teacherId"`
		StudentID string    `json:"studentId,omitempty" bson:"studentId,omitempty"`
		URL       string    `json:"url" bson:"url"`
		Caption   string    `json:"caption,omitempty" bson:"caption,omitempty"`
		TakenAt   time.Time `json:"takenAt" bson:"takenAt"`
		CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
	}

	NewPhoto struct {
		TeacherID string    `json:"teacherId" validate:"required"`
		StudentID string    `json:"studentId"`
		URL       string    `json:"url" validate:"required,url"`
		Caption   string    `json:"caption"`
		TakenAt   time.Time `json:"takenAt"`
	}

	UpdatePhoto struct {
		Caption   string `json:"caption"`
		StudentID string `json:"studentId"`
	}
)

func (np NewPhoto) Validate() error { return core.Validate.Struct(np) }
