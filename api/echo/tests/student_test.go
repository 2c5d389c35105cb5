package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/newrise0410/piano-academy-app-sub002/core/student"
	"github.com/newrise0410/piano-academy-app-sub002/core/user"
	testutil "github.com/newrise0410/piano-academy-app-sub002/tests"
)

func Test_studentApi_crud(t *testing.T) {
	teacher := testutil.CreateUser(t, usrRepo, "Roster Owner", "roster@piano.test", "Sup3rSecret", user.RoleTeacher, true)
	parent := testutil.CreateUser(t, usrRepo, "Roster Parent", "roster.parent@piano.test", "Sup3rSecret", user.RoleParent, true)
	token := getToken(t, teacher)

	tests := []httpTest{
		{name: "Auth required", method: http.MethodGet, path: "/v1/students", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "Teacher required", method: http.MethodGet, path: "/v1/students", token: getToken(t, parent),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Create requires name", method: http.MethodPost, path: "/v1/students", token: token,
			body: marshallObj(t, student.NewStudent{Schedule: "Mon 14:00"}), wantCode: http.StatusBadRequest,
		},
		{
			name: "Create rejects bad schedule", method: http.MethodPost, path: "/v1/students", token: token,
			body: marshallObj(t, student.NewStudent{Name: "Milla", Schedule: "whenever"}), wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	var milla student.Student
	t.Run("Create", func(t *testing.T) {
		body := marshallObj(t, student.NewStudent{
			Name:     "Milla",
			Category: "elementary",
			Schedule: "Mon 14:00",
			Ticket:   student.TicketInfo{Type: student.TicketCount, Remaining: 4},
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", token, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &milla); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if milla.TeacherID != teacher.ID {
			t.Errorf("teacherId = %v; must be stamped from the token, want %v", milla.TeacherID, teacher.ID)
		}
	})

	t.Run("List", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students?force=true", token)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: marshallList(t, milla)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Search is case-insensitive", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students?search=MIL", token)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: marshallList(t, milla)}
		checkCodeAndData(t, tt, rec)

		req, rec = newAuthRequest(http.MethodGet, "/v1/students?search=zzz", token)
		app.ServeHTTP(rec, req)
		tt = httpTest{wantCode: http.StatusOK, wantData: marshallList(t)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Patch merges", func(t *testing.T) {
		body := marshallObj(t, student.UpdateStudent{Book: "Burgmuller 25"})
		req, rec := newAuthRequest(http.MethodPatch, "/v1/students/"+milla.ID, token, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var got student.Student
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Book != "Burgmuller 25" {
			t.Errorf("book = %q; want patch applied", got.Book)
		}
		if got.Name != "Milla" || got.Schedule != "Mon 14:00" {
			t.Errorf("unset fields changed: name=%q schedule=%q", got.Name, got.Schedule)
		}
		milla = got
	})

	t.Run("Unpaid flag", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/students/"+milla.ID+"/unpaid", token, []byte(`{"unpaid":true}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/students?unpaid=true", token)
		app.ServeHTTP(rec, req)
		var got []student.Student
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(got) != 1 || got[0].ID != milla.ID {
			t.Errorf("unpaid filter = %v; want [%v]", got, milla.ID)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/students/"+milla.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusNoContent, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/students/"+milla.ID, token)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "not found"})}
		checkCodeAndData(t, tt, rec)
	})
}

func Test_studentApi_ticketAlerts(t *testing.T) {
	teacher := testutil.CreateUser(t, usrRepo, "Alert Owner", "alerts@piano.test", "Sup3rSecret", user.RoleTeacher, true)
	token := getToken(t, teacher)

	add := func(name string, remaining int) student.Student {
		t.Helper()
		body := marshallObj(t, student.NewStudent{
			Name:   name,
			Ticket: student.TicketInfo{Type: student.TicketCount, Remaining: remaining},
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("add(%s): code = %v; body %s", name, rec.Code, rec.Body.String())
		}
		var stu student.Student
		if err := json.Unmarshal(rec.Body.Bytes(), &stu); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return stu
	}

	add("Plenty", 5)
	critical := add("LastTicket", 1)
	expired := add("OutOfTickets", 0)

	// refresh the cached roster for this teacher before reading the derived view
	req, rec := newAuthRequest(http.MethodGet, "/v1/students?force=true", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("warmup: code = %v; body %s", rec.Code, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/students/alerts", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var got []student.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string]bool{critical.ID: true, expired.ID: true}
	if len(got) != len(want) {
		t.Fatalf("alerts = %d students; want %d (%s)", len(got), len(want), rec.Body.String())
	}
	for _, stu := range got {
		if !want[stu.ID] {
			t.Errorf("unexpected alert for %s (%s)", stu.Name, fmt.Sprint(stu.Ticket))
		}
	}
}
