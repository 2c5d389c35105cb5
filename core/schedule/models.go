package schedule

import (
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

// Request statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type (
	// ChangeRequest is a parent's ask to move a student's lesson slot.
	ChangeRequest struct {
		ID                string    `json:"id" bson:"_id,omitempty"`
		StudentID         string    `json:"studentId" bson:"studentId"`
		ParentID          string    `json:"parentId" bson:"parentId"`
		TeacherID         string    `json:"teacherId" bson:"teacherId"`
		CurrentSchedule   string    `json:"currentSchedule" bson:"currentSchedule"`
		RequestedSchedule string    `json:"requestedSchedule" bson:"requestedSchedule"`
		Reason            string    `json:"reason,omitempty" bson:"reason,omitempty"`
		Status            string    `json:"status" bson:"status"`
		RejectionReason   string    `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
		CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
		UpdatedAt         time.Time `json:"updatedAt" bson:"updatedAt"`
	}

	NewChangeRequest struct {
		StudentID         string `json:"studentId" validate:"required"`
		ParentID          string `json:"parentId" validate:"required"`
		TeacherID         string `json:"teacherId" validate:"required"`
		CurrentSchedule   string `json:"currentSchedule" validate:"schedule"`
		RequestedSchedule string `json:"requestedSchedule" validate:"required,schedule"`
		Reason            string `json:"reason"`
	}
)

func (nc NewChangeRequest) Validate() error { return core.Validate.Struct(nc) }
