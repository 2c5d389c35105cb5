package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/core/user"
	mockdb "github.com/newrise0410/piano-academy-app-sub002/storage/mock"
	testutil "github.com/newrise0410/piano-academy-app-sub002/tests"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()

	conf := &core.Config{Env: "TEST", TestMode: true}
	db := mockdb.Open(conf)
	usrRepo = mockdb.NewUserRepository(db)

	return &commandLine{
		usrRepo: usrRepo,
		stuRepo: mockdb.NewStudentRepository(db),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Awe Dia", "awe@test.kr", "mdr", user.RoleTeacher, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.kr"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.kr"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with email", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addTeacher(t *testing.T) {
	cli := setup(t)

	existing := testutil.CreateUser(t, usrRepo, "Taken Name", "taken@test.kr", "mdr", user.RoleTeacher, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"addteacher"}, wantErr: errHelp},
		{name: "email but no name", args: []string{"addteacher", "-email", "new@test.kr"}, wantErr: errHelp},
		{name: "no password", args: []string{"addteacher", "-email", "new@test.kr", "-name", "New Teacher"}, wantErr: errHelp},
		{name: "email taken", args: []string{"addteacher", "-email", existing.Email, "-name", "New Teacher"}, extra: extra{pwd: "lol"}, wantErr: user.ErrEmailExists},
		{name: "teacher created", args: []string{"addteacher", "-email", "new@test.kr", "-name", "New Teacher", "-academy", "New Academy"}, extra: extra{pwd: "s3cret"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				usr, err := usrRepo.GetUserByEmail(context.Background(), "new@test.kr")
				if err != nil {
					t.Fatalf("GetUserByEmail() failed, %v", err)
				}
				if !usr.IsTeacher() || !usr.IsActive || usr.AcademyName != "New Academy" {
					t.Errorf("created user = %+v; want an active teacher of New Academy", usr)
				}
				if usr.CheckPassword("s3cret") != nil {
					t.Error("prompted password was not set")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)

	if err := cli.run([]string{"admin", "seed"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}

	teacher, err := usrRepo.GetUserByEmail(context.Background(), "teacher@demo.test")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed, %v", err)
	}
	if !teacher.IsTeacher() {
		t.Errorf("seeded user role = %s; want teacher", teacher.Role)
	}

	students, err := cli.stuRepo.QueryAllStudents(context.Background(), teacher.ID)
	if err != nil {
		t.Fatalf("QueryAllStudents() failed, %v", err)
	}
	if len(students) != 3 {
		t.Errorf("seeded students = %d; want 3", len(students))
	}

	// re-seeding fails on the uniqueness check
	if err := cli.run([]string{"admin", "seed"}); err != user.ErrEmailExists {
		t.Errorf("second seed error = %v; want ErrEmailExists", err)
	}
}
