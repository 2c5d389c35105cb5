package notice

import (
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

// Notice templates offered to teachers when composing.
const (
	TemplateGeneral  = "general"
	TemplateRecital  = "recital"
	TemplateHoliday  = "holiday"
	TemplateTuition  = "tuition"
	TemplateSchedule = "schedule"
)

type (
	Notice struct {
		ID              string    `json:"id" bson:"_id,omitempty"`
		TeacherID       string    `json:"teacherId" bson:"teacherId"`
		Title           string    `json:"title" bson:"title"`
		Content         string    `json:"content" bson:"content"`
		Template        string    `json:"template,omitempty" bson:"template,omitempty"`
		Date            time.Time `json:"date" bson:"date"`
		TotalRecipients int       `json:"totalRecipients" bson:"totalRecipients"`
		// ConfirmedBy holds the parent ids that confirmed; its length is the
		// confirmed count surfaced to teachers.
		ConfirmedBy []string  `json:"confirmedBy" bson:"confirmedBy"`
		CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
	}

	NewNotice struct {
		TeacherID       string    `json:"teacherId" validate:"required"`
		Title           string    `json:"title" validate:"required"`
		Content         string    `json:"content" validate:"required"`
		Template        string    `json:"template" validate:"omitempty,oneof=general recital holiday tuition schedule"`
		Date            time.Time `json:"date"`
		TotalRecipients int       `json:"totalRecipients" validate:"gte=0"`
	}

	UpdateNotice struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
)

func (nn NewNotice) Validate() error { return core.Validate.Struct(nn) }

// ConfirmedCount is the number of distinct parents that confirmed.
func (n Notice) ConfirmedCount() int { return len(n.ConfirmedBy) }

// ConfirmedByParent reports whether the given parent already confirmed.
func (n Notice) ConfirmedByParent(parentID string) bool {
	for _, id := range n.ConfirmedBy {
		if id == parentID {
			return true
		}
	}
	return false
}
