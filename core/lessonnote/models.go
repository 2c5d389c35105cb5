package lessonnote

import (
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

type (
	// Note is a per-lesson progress record. IsPublic gates parent visibility;
	// private notes never leave the teacher's view.
	Note struct {
		ID           string    `json:"id" bson:"_id,omitempty"`
		StudentID    string    `json:"studentId" bson:"studentId"`
		TeacherID    string    `json:"teacherId" bson:"teacherId"`
		Date         time.Time `json:"date" bson:"date"`
		Progress     string    `json:"progress,omitempty" bson:"progress,omitempty"`
		Homework     string    `json:"homework,omitempty" bson:"homework,omitempty"`
		Memo         string    `json:"memo,omitempty" bson:"memo,omitempty"`
		Strengths    string    `json:"strengths,omitempty" bson:"strengths,omitempty"`
		Improvements string    `json:"improvements,omitempty" bson:"improvements,omitempty"`
		IsPublic     bool      `json:"isPublic" bson:"isPublic"`
		CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
		UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
	}

	NewNote struct {
		StudentID    string    `json:"studentId" validate:"required"`
		TeacherID    string    `json:"teacherId" validate:"required"`
		Date         time.Time `json:"date" validate:"required"`
		Progress     string    `json:"progress"`
		Homework     string    `json:"homework"`
		Memo         string    `json:"memo"`
		Strengths    string    `json:"strengths"`
		Improvements string    `json:"improvements"`
		IsPublic     bool      `json:"isPublic"`
	}

	UpdateNote struct {
		Progress     string `json:"progress"`
		Homework     string `json:"homework"`
		Memo         string `json:"memo"`
		Strengths    string `json:"strengths"`
		Improvements string `json:"improvements"`
		IsPublic     *bool  `json:"isPublic"`
	}
)

func (nn NewNote) Validate() error { return core.Validate.Struct(nn) }
