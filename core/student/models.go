package student

import (
	"strings"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

// Ticket types
const (
	TicketCount  = "count"
	TicketPeriod = "period"
)

// Ticket statuses, derived from the remaining balance or expiry distance.
const (
	TicketNormal   = "normal"
	TicketWarning  = "warning"
	TicketCritical = "critical"
	TicketExpired  = "expired"
)

type (
	TicketInfo struct {
		Type      string    `json:"type" bson:"type"` // count | period
		Remaining int       `json:"remaining,omitempty" bson:"remaining,omitempty"`
		Start     time.Time `json:"start,omitempty" bson:"start,omitempty"`
		End       time.Time `json:"end,omitempty" bson:"end,omitempty"`
	}

	Student struct {
		ID        string     `json:"id" bson:"_id,omitempty"`
		Name      string     `json:"name" bson:"name"`
		Category  string     `json:"category" bson:"category"` // grade tier
		Level     string     `json:"level" bson:"level"`
		Schedule  string     `json:"schedule" bson:"schedule"` // e.g. "Mon 14:00"
		Book      string     `json:"book" bson:"book"`
		Ticket    TicketInfo `json:"ticket" bson:"ticket"`
		Unpaid    bool       `json:"unpaid" bson:"unpaid"`
		TeacherID string     `json:"teacherId" bson:"teacherId"`
		ParentID  string     `json:"parentId,omitempty" bson:"parentId,omitempty"`
		CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
		UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
	}

	NewStudent struct {
		Name      string     `json:"name" validate:"required"`
		Category  string     `json:"category"`
		Level     string     `json:"level"`
		Schedule  string     `json:"schedule" validate:"schedule"`
		Book      string     `json:"book"`
		Ticket    TicketInfo `json:"ticket"`
		TeacherID string     `json:"teacherId" validate:"required"`
		ParentID  string     `json:"parentId"`
	}

	// UpdateStudent only carries set fields; zero values are left untouched.
	UpdateStudent struct {
		Name     string      `json:"name"`
		Category string      `json:"category"`
		Level    string      `json:"level"`
		Schedule string      `json:"schedule" validate:"schedule"`
		Book     string      `json:"book"`
		Ticket   *TicketInfo `json:"ticket"`
		Unpaid   *bool       `json:"unpaid"`
		ParentID string      `json:"parentId"`
	}

	QueryFilter struct {
		TeacherID string
		Category  string
		Search    string // case-insensitive match on Name
		Unpaid    *bool
	}
)

func (ns NewStudent) Validate() error { return core.Validate.Struct(ns) }

func (us UpdateStudent) Validate() error { return core.Validate.Struct(us) }

// Status derives the ticket state at `now`.
// Count tickets: 0 expired, 1 critical, 2 warning, otherwise normal.
// Period tickets: by days until expiry, 0 expired, <=3 critical, <=7 warning.
func (t TicketInfo) Status(now time.Time) string {
	switch t.Type {
	case TicketCount:
		switch {
		case t.Remaining <= 0:
			return TicketExpired
		case t.Remaining == 1:
			return TicketCritical
		case t.Remaining == 2:
			return TicketWarning
		}
		return TicketNormal
	case TicketPeriod:
		days := core.DaysUntil(t.End, now)
		switch {
		case days == 0:
			return TicketExpired
		case days <= 3:
			return TicketCritical
		case days <= 7:
			return TicketWarning
		}
		return TicketNormal
	}
	return TicketNormal
}

// Matches reports whether s satisfies every set field of f.
func (f QueryFilter) Matches(s Student) bool {
	if f.TeacherID != "" && s.TeacherID != f.TeacherID {
		return false
	}
	if f.Category != "" && s.Category != f.Category {
		return false
	}
	if f.Unpaid != nil && s.Unpaid != *f.Unpaid {
		return false
	}
	if f.Search != "" {
		if !strings.Contains(core.CleanString(s.Name, true), core.CleanString(f.Search, true)) {
			return false
		}
	}
	return true
}
