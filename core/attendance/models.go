package attendance

import (
	"math"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

// Attendance statuses. A makeup lesson counts as attended for rate purposes.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusMakeup  = "makeup"
)

type (
	Record struct {
		ID        string    `json:"id" bson:"_id,omitempty"`
		StudentID string    `json:"studentId" bson:"studentId"`
		TeacherID string    `json:"teacherId" bson:"teacherId"`
		Date      time.Time `json:"date" bson:"date"`
		Status    string    `json:"status" bson:"status"`
		Note      string    `json:"note,omitempty" bson:"note,omitempty"`
		CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
	}

	NewRecord struct {
		StudentID string    `json:"studentId" validate:"required"`
		TeacherID string    `json:"teacherId" validate:"required"`
		Date      time.Time `json:"date" validate:"required"`
		Status    string    `json:"status" validate:"required,oneof=present absent late makeup"`
		Note      string    `json:"note"`
	}

	// UpdateRecord corrects a marked record; zero fields are left untouched.
	UpdateRecord struct {
		Status string `json:"status" validate:"omitempty,oneof=present absent late makeup"`
		Note   string `json:"note"`
	}

	// Stats is the derived per-student attendance summary.
	Stats struct {
		Total   int `json:"total"`
		Present int `json:"present"`
		Absent  int `json:"absent"`
		Late    int `json:"late"`
		Makeup  int `json:"makeup"`
		Rate    int `json:"rate"` // round(100 * (present+makeup) / total)
	}
)

func (nr NewRecord) Validate() error { return core.Validate.Struct(nr) }

func (ur UpdateRecord) Validate() error { return core.Validate.Struct(ur) }

// ComputeStats tallies records and derives the attendance rate; the rate is 0
// when there are no records.
func ComputeStats(records []Record) Stats {
	st := Stats{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case StatusPresent:
			st.Present++
		case StatusAbsent:
			st.Absent++
		case StatusLate:
			st.Late++
		case StatusMakeup:
			st.Makeup++
		}
	}
	if st.Total > 0 {
		st.Rate = int(math.Round(100 * float64(st.Present+st.Makeup) / float64(st.Total)))
	}
	return st
}
