package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	. "github.com/newrise0410/piano-academy-app-sub002/api/echo"
	"github.com/newrise0410/piano-academy-app-sub002/core/user"
	testutil "github.com/newrise0410/piano-academy-app-sub002/tests"
)

func Test_authApi_login(t *testing.T) {
	teacher := testutil.CreateUser(t, usrRepo, "Dora Kanza", "dora@piano.test", "Sup3rSecret", user.RoleTeacher, true)
	testutil.CreateUser(t, usrRepo, "N Dog", "ndog@piano.test", "Sup3rSecret", user.RoleParent, false)

	tests := []httpTest{
		{
			name: "Invalid credentials", body: marshallObj(t, LoginRequest{Email: "dora@piano.test", Password: "nope"}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "Unknown email", body: marshallObj(t, LoginRequest{Email: "ghost@piano.test", Password: "Sup3rSecret"}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "Deactivated account", body: marshallObj(t, LoginRequest{Email: "ndog@piano.test", Password: "Sup3rSecret"}),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "Missing fields", body: marshallObj(t, LoginRequest{}), wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Login ok", func(t *testing.T) {
		body := marshallObj(t, LoginRequest{Email: "dora@piano.test", Password: "Sup3rSecret"})
		req, rec := newRequest(http.MethodPost, "/v1/auth/login", body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Token == "" {
			t.Error("token is empty")
		}
		if resp.User.ID != teacher.ID {
			t.Errorf("user.ID = %v; want %v", resp.User.ID, teacher.ID)
		}
	})

	t.Run("Case-insensitive email", func(t *testing.T) {
		body := marshallObj(t, LoginRequest{Email: "DORA@Piano.Test", Password: "Sup3rSecret"})
		req, rec := newRequest(http.MethodPost, "/v1/auth/login", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
	})
}

func Test_authApi_register(t *testing.T) {
	t.Run("Register teacher", func(t *testing.T) {
		body := marshallObj(t, user.NewUser{
			Name:            "Maya Lobo",
			Email:           "maya@piano.test",
			Password:        "Sup3rSecret",
			PasswordConfirm: "Sup3rSecret",
			Role:            user.RoleTeacher,
			AcademyName:     "Maya's Keys",
		})
		req, rec := newRequest(http.MethodPost, "/v1/auth/register", body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var usr user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !usr.IsTeacher() {
			t.Errorf("role = %v; want %v", usr.Role, user.RoleTeacher)
		}
	})

	t.Run("Duplicate email rejected", func(t *testing.T) {
		body := marshallObj(t, user.NewUser{
			Name:            "Maya Again",
			Email:           "maya@piano.test",
			Password:        "Sup3rSecret",
			PasswordConfirm: "Sup3rSecret",
			Role:            user.RoleTeacher,
		})
		req, rec := newRequest(http.MethodPost, "/v1/auth/register", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})

	t.Run("Password mismatch rejected", func(t *testing.T) {
		body := marshallObj(t, user.NewUser{
			Name:            "Bad Pair",
			Email:           "pair@piano.test",
			Password:        "Sup3rSecret",
			PasswordConfirm: "d1ff3rent!",
			Role:            user.RoleTeacher,
		})
		req, rec := newRequest(http.MethodPost, "/v1/auth/register", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})
}

func Test_authApi_me(t *testing.T) {
	teacher := testutil.CreateUser(t, usrRepo, "Profile Guy", "profile@piano.test", "Sup3rSecret", user.RoleTeacher, true)
	token := getToken(t, teacher)

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/me")
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Get profile", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/me", token)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: marshallObj(t, teacher)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Update profile", func(t *testing.T) {
		body := marshallObj(t, user.UpdateUser{Phone: "+243 81 000 0000"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/me", token, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var usr user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if usr.Phone != "+243 81 000 0000" {
			t.Errorf("phone = %q; want update applied", usr.Phone)
		}
		if usr.Name != teacher.Name {
			t.Errorf("name = %q; zero fields must keep their values", usr.Name)
		}
	})

	t.Run("Change password", func(t *testing.T) {
		body := marshallObj(t, user.ChangePassword{
			OldPassword:     "Sup3rSecret",
			NewPassword:     "Ev3nM0reSecret",
			PasswordConfirm: "Ev3nM0reSecret",
		})
		req, rec := newAuthRequest(http.MethodPut, "/v1/me/password", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		// old password no longer works
		loginBody := marshallObj(t, LoginRequest{Email: "profile@piano.test", Password: "Sup3rSecret"})
		req, rec = newRequest(http.MethodPost, "/v1/auth/login", loginBody)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("old password still accepted; code = %v", rec.Code)
		}
	})
}

func Test_authApi_selectedChild(t *testing.T) {
	teacher := testutil.CreateUser(t, usrRepo, "Owner", "owner@piano.test", "Sup3rSecret", user.RoleTeacher, true)
	stu1 := testutil.CreateStudent(t, stuRepo, teacher.ID, "Milla")
	stu2 := testutil.CreateStudent(t, stuRepo, teacher.ID, "Nuno")
	parent := testutil.CreateUser(t, usrRepo, "Parent", "parent@piano.test", "Sup3rSecret", user.RoleParent, true, stu1.ID, stu2.ID)
	parentToken := getToken(t, parent)

	t.Run("Parent role required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/me/selected-child", getToken(t, teacher))
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Defaults to first child", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/me/selected-child", parentToken)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: marshallObj(t, map[string]string{"studentId": stu1.ID})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Selection persists", func(t *testing.T) {
		body := marshallObj(t, SelectChildRequest{StudentID: stu2.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/me/selected-child", parentToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusNoContent, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/me/selected-child", parentToken)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: marshallObj(t, map[string]string{"studentId": stu2.ID})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Unlinked child rejected", func(t *testing.T) {
		stranger := testutil.CreateStudent(t, stuRepo, teacher.ID, "Stranger")
		body := marshallObj(t, SelectChildRequest{StudentID: stranger.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/me/selected-child", parentToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
	})
}
