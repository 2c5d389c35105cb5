package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	. "github.com/newrise0410/piano-academy-app-sub002/api/echo"
	"github.com/newrise0410/piano-academy-app-sub002/core/schedule"
	"github.com/newrise0410/piano-academy-app-sub002/core/user"
	testutil "github.com/newrise0410/piano-academy-app-sub002/tests"
)

func Test_scheduleApi_workflow(t *testing.T) {
	teacher := testutil.CreateUser(t, usrRepo, "Slot Owner", "slots@piano.test", "Sup3rSecret", user.RoleTeacher, true)
	stu := testutil.CreateStudent(t, stuRepo, teacher.ID, "Nadia")
	parent := testutil.CreateUser(t, usrRepo, "Slot Parent", "slots.parent@piano.test", "Sup3rSecret", user.RoleParent, true, stu.ID)

	teacherToken := getToken(t, teacher)
	parentToken := getToken(t, parent)

	newReqBody := func(requested string) []byte {
		return marshallObj(t, schedule.NewChangeRequest{
			StudentID:         stu.ID,
			TeacherID:         teacher.ID,
			CurrentSchedule:   "Mon 14:00",
			RequestedSchedule: requested,
			Reason:            "school club moved",
		})
	}

	t.Run("Parent role required to create", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/schedule-requests", teacherToken, newReqBody("Wed 16:00"))
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Bad slot rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/schedule-requests", parentToken, newReqBody("4pm wednesday"))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})

	var created schedule.ChangeRequest
	t.Run("Create", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/schedule-requests", parentToken, newReqBody("Wed 16:00"))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if created.Status != schedule.StatusPending {
			t.Errorf("status = %v; want %v", created.Status, schedule.StatusPending)
		}
		if created.ParentID != parent.ID {
			t.Errorf("parentId = %v; must be stamped from the token, want %v", created.ParentID, parent.ID)
		}
	})

	t.Run("Both sides see it", func(t *testing.T) {
		for name, token := range map[string]string{"teacher": teacherToken, "parent": parentToken} {
			req, rec := newAuthRequest(http.MethodGet, "/v1/schedule-requests", token)
			app.ServeHTTP(rec, req)
			tt := httpTest{wantCode: http.StatusOK, wantData: marshallList(t, created)}
			checkCodeAndData(t, tt, rec)
			if t.Failed() {
				t.Logf("listing as %s", name)
			}
		}
	})

	t.Run("Approve applies the slot", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/schedule-requests/"+created.ID+"/approve", teacherToken)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var approved schedule.ChangeRequest
		if err := json.Unmarshal(rec.Body.Bytes(), &approved); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if approved.Status != schedule.StatusApproved {
			t.Errorf("status = %v; want %v", approved.Status, schedule.StatusApproved)
		}

		got, err := stuRepo.GetStudentByID(context.Background(), stu.ID)
		if err != nil {
			t.Fatalf("GetStudentByID(): %v", err)
		}
		if got.Schedule != "Wed 16:00" {
			t.Errorf("student schedule = %q; want %q", got.Schedule, "Wed 16:00")
		}
	})

	t.Run("Re-deciding conflicts", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/schedule-requests/"+created.ID+"/approve", teacherToken)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusConflict, wantData: marshallObj(t, httpErr{Error: "request already decided"})}
		checkCodeAndData(t, tt, rec)

		req, rec = newAuthRequest(http.MethodPost, "/v1/schedule-requests/"+created.ID+"/reject", teacherToken, marshallObj(t, RejectRequest{Reason: "too late"}))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Reject keeps the reason", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/schedule-requests", parentToken, newReqBody("Fri 10:00"))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create: code = %v; body %s", rec.Code, rec.Body.String())
		}
		var fresh schedule.ChangeRequest
		if err := json.Unmarshal(rec.Body.Bytes(), &fresh); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		req, rec = newAuthRequest(http.MethodPost, "/v1/schedule-requests/"+fresh.ID+"/reject", teacherToken, marshallObj(t, RejectRequest{Reason: "slot taken"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("reject: code = %v; body %s", rec.Code, rec.Body.String())
		}
		var rejected schedule.ChangeRequest
		if err := json.Unmarshal(rec.Body.Bytes(), &rejected); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if rejected.Status != schedule.StatusRejected || rejected.RejectionReason != "slot taken" {
			t.Errorf("status=%v reason=%q; want rejected with reason kept", rejected.Status, rejected.RejectionReason)
		}

		// the student keeps the approved slot
		got, err := stuRepo.GetStudentByID(context.Background(), stu.ID)
		if err != nil {
			t.Fatalf("GetStudentByID(): %v", err)
		}
		if got.Schedule != "Wed 16:00" {
			t.Errorf("student schedule = %q; want unchanged %q", got.Schedule, "Wed 16:00")
		}
	})

	t.Run("Unknown id", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/schedule-requests/nope/approve", teacherToken)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "not found"})}
		checkCodeAndData(t, tt, rec)
	})
}
