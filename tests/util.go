// Package testutil carries helpers shared by test suites across packages.
package testutil

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/core/student"
	"github.com/newrise0410/piano-academy-app-sub002/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	isActive bool,
	childIDs ...string,
) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		Name:            name,
		Email:           email,
		Role:            role,
		IsActive:        isActive,
		ChildStudentIDs: childIDs,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(t *testing.T, repo student.Repository, teacherID, name string) student.Student {
	t.Helper()

	stu, err := repo.CreateStudent(context.Background(), student.Student{
		TeacherID: teacherID,
		Name:      name,
		Ticket:    student.TicketInfo{Type: student.TicketCount, Remaining: 4},
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return stu
}

// Logger is a std logger wrapper for tests.
type Logger struct{}

var _ core.Logger = (*Logger)(nil)

func (l Logger) Debug(msg string, args ...interface{}) { log.Println("DEBUG", msg, args) }
func (l Logger) Info(msg string, args ...interface{})  { log.Println("INFO", msg, args) }
func (l Logger) Warn(msg string, args ...interface{})  { log.Println("WARN", msg, args) }
func (l Logger) Error(msg string, args ...interface{}) { log.Println("ERROR", msg, args) }
func (l Logger) Fatal(msg string, args ...interface{}) { log.Fatalln("FATAL", msg, args) }
