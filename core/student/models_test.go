package student

import (
	"testing"
	"time"
)

func TestTicketInfoStatus(t *testing.T) {
	now := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)
	endIn := func(days int) time.Time { return now.AddDate(0, 0, days) }

	tests := []struct {
		name   string
		ticket TicketInfo
		want   string
	}{
		{"count zero", TicketInfo{Type: TicketCount, Remaining: 0}, TicketExpired},
		{"count negative", TicketInfo{Type: TicketCount, Remaining: -1}, TicketExpired},
		{"count one", TicketInfo{Type: TicketCount, Remaining: 1}, TicketCritical},
		{"count two", TicketInfo{Type: TicketCount, Remaining: 2}, TicketWarning},
		{"count plenty", TicketInfo{Type: TicketCount, Remaining: 3}, TicketNormal},

		{"period ended", TicketInfo{Type: TicketPeriod, End: endIn(-1)}, TicketExpired},
		{"period ends today", TicketInfo{Type: TicketPeriod, End: now}, TicketExpired},
		{"period three days", TicketInfo{Type: TicketPeriod, End: endIn(3)}, TicketCritical},
		{"period one week", TicketInfo{Type: TicketPeriod, End: endIn(7)}, TicketWarning},
		{"period far out", TicketInfo{Type: TicketPeriod, End: endIn(30)}, TicketNormal},

		{"unknown type defaults to normal", TicketInfo{}, TicketNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ticket.Status(now); got != tt.want {
				t.Errorf("Status() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestQueryFilterMatches(t *testing.T) {
	bPtr := func(b bool) *bool { return &b }
	stu := Student{Name: "Milla Jung", Category: "elementary", TeacherID: "t1", Unpaid: true}

	tests := []struct {
		name   string
		filter QueryFilter
		want   bool
	}{
		{"empty filter", QueryFilter{}, true},
		{"all fields AND", QueryFilter{TeacherID: "t1", Category: "elementary", Search: "milla", Unpaid: bPtr(true)}, true},
		{"wrong teacher", QueryFilter{TeacherID: "t2"}, false},
		{"wrong category", QueryFilter{Category: "adult"}, false},
		{"search case-insensitive", QueryFilter{Search: "JUNG"}, true},
		{"search miss", QueryFilter{Search: "nadia"}, false},
		{"unpaid mismatch", QueryFilter{Unpaid: bPtr(false)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(stu); got != tt.want {
				t.Errorf("Matches() = %v; want %v", got, tt.want)
			}
		})
	}
}
