package main

import (
	"context"
	"fmt"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core/student"
	"github.com/newrise0410/piano-academy-app-sub002/core/user"
)

// seed loads a small demo academy through the repositories so it works
// against any configured source. Re-running against an already seeded
// backend fails on the teacher's email uniqueness check.
func (cli *commandLine) seed() error {
	ctx := context.Background()
	now := time.Now().UTC()

	teacher := user.User{
		Name:        "Demo Teacher",
		Email:       "teacher@demo.test",
		Role:        user.RoleTeacher,
		IsActive:    true,
		AcademyName: "Demo Piano Academy",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := cli.usrRepo.CheckEmailUniqueness(ctx, teacher.Email); err != nil {
		return err
	}
	if err := teacher.SetPassword("Sup3rSecret"); err != nil {
		return err
	}
	teacher, err := cli.usrRepo.CreateUser(ctx, teacher)
	if err != nil {
		return err
	}

	students := []student.Student{
		{
			Name: "Kim Minji", Category: "elementary", Level: "beginner",
			Schedule: "Mon 14:00", Book: "Bayer 1",
			Ticket:    student.TicketInfo{Type: student.TicketCount, Remaining: 5},
			TeacherID: teacher.ID,
			CreatedAt: now, UpdatedAt: now,
		},
		{
			Name: "Lee Junho", Category: "middle", Level: "intermediate",
			Schedule: "Wed 16:00", Book: "Czerny 30",
			Ticket:    student.TicketInfo{Type: student.TicketCount, Remaining: 1},
			TeacherID: teacher.ID,
			CreatedAt: now, UpdatedAt: now,
		},
		{
			Name: "Park Sora", Category: "adult", Level: "advanced",
			Schedule: "Fri 19:00", Book: "Chopin Etudes",
			Ticket:    student.TicketInfo{Type: student.TicketPeriod, End: now.AddDate(0, 1, 0)},
			TeacherID: teacher.ID,
			CreatedAt: now, UpdatedAt: now,
		},
	}
	created := make([]student.Student, 0, len(students))
	for _, stu := range students {
		out, err := cli.stuRepo.CreateStudent(ctx, stu)
		if err != nil {
			return err
		}
		created = append(created, out)
	}

	parent := user.User{
		Name:            "Demo Parent",
		Email:           "parent@demo.test",
		Role:            user.RoleParent,
		IsActive:        true,
		ChildStudentIDs: []string{created[0].ID},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := parent.SetPassword("Sup3rSecret"); err != nil {
		return err
	}
	if _, err := cli.usrRepo.CreateUser(ctx, parent); err != nil {
		return err
	}

	fmt.Printf("seeded: teacher %s, %d students\n", teacher.Email, len(created))
	return nil
}
