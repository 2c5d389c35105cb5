package mockdb

import (
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/core/attendance"
	"github.com/newrise0410/piano-academy-app-sub002/core/notice"
	"github.com/newrise0410/piano-academy-app-sub002/core/payment"
	"github.com/newrise0410/piano-academy-app-sub002/core/student"
	"github.com/newrise0410/piano-academy-app-sub002/core/user"
)

// Fixture ids are stable so demo clients can hardcode them.
const (
	FixtureTeacherID = "usr_teacher_demo"
	FixtureParentID  = "usr_parent_demo"
)

// Seed loads a small demo academy: one teacher, one parent, three students
// with tickets in different states, and a month of surrounding records.
func Seed(db *DB) error {
	now := time.Now().UTC()

	teacher := &user.User{
		ID:          FixtureTeacherID,
		Name:        "Demo Teacher",
		Email:       "teacher@demo.test",
		Role:        user.RoleTeacher,
		IsActive:    true,
		AcademyName: "Demo Piano Academy",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := teacher.SetPassword("Sup3rSecret"); err != nil {
		return err
	}
	parent := &user.User{
		ID:              FixtureParentID,
		Name:            "Demo Parent",
		Email:           "parent@demo.test",
		Role:            user.RoleParent,
		IsActive:        true,
		ChildStudentIDs: []string{"stu_demo_1"},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := parent.SetPassword("Sup3rSecret"); err != nil {
		return err
	}

	students := []*student.Student{
		{
			ID: "stu_demo_1", Name: "Kim Minji", Category: "elementary", Level: "beginner",
			Schedule: "Mon 14:00", Book: "Bayer 1",
			Ticket:    student.TicketInfo{Type: student.TicketCount, Remaining: 5},
			TeacherID: FixtureTeacherID, ParentID: FixtureParentID,
			CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "stu_demo_2", Name: "Lee Junho", Category: "middle", Level: "intermediate",
			Schedule: "Wed 16:30", Book: "Czerny 30",
			Ticket:    student.TicketInfo{Type: student.TicketCount, Remaining: 1},
			TeacherID: FixtureTeacherID,
			CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "stu_demo_3", Name: "Park Seoyeon", Category: "elementary", Level: "beginner",
			Schedule: "Fri 15:00", Book: "Bayer 2",
			Ticket: student.TicketInfo{
				Type:  student.TicketPeriod,
				Start: now.AddDate(0, -1, 0),
				End:   now.AddDate(0, 0, 3),
			},
			Unpaid:    true,
			TeacherID: FixtureTeacherID,
			CreatedAt: now, UpdatedAt: now,
		},
	}

	records := []*attendance.Record{
		{ID: "att_demo_1", StudentID: "stu_demo_1", TeacherID: FixtureTeacherID, Date: core.Midnight(now.AddDate(0, 0, -7)), Status: attendance.StatusPresent, CreatedAt: now, UpdatedAt: now},
		{ID: "att_demo_2", StudentID: "stu_demo_1", TeacherID: FixtureTeacherID, Date: core.Midnight(now.AddDate(0, 0, -3)), Status: attendance.StatusLate, CreatedAt: now, UpdatedAt: now},
		{ID: "att_demo_3", StudentID: "stu_demo_2", TeacherID: FixtureTeacherID, Date: core.Midnight(now.AddDate(0, 0, -2)), Status: attendance.StatusAbsent, Note: "sick", CreatedAt: now, UpdatedAt: now},
		{ID: "att_demo_4", StudentID: "stu_demo_3", TeacherID: FixtureTeacherID, Date: core.Midnight(now.AddDate(0, 0, -1)), Status: attendance.StatusMakeup, CreatedAt: now, UpdatedAt: now},
	}

	payDate := now.AddDate(0, 0, -5)
	payments := []*payment.Record{
		{
			ID: "pay_demo_1", StudentID: "stu_demo_1", TeacherID: FixtureTeacherID,
			Amount: 200000, Month: core.MonthKey(payDate), Date: payDate,
			Method: payment.MethodTransfer, Status: payment.StatusPaid,
			CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "pay_demo_2", StudentID: "stu_demo_3", TeacherID: FixtureTeacherID,
			Amount: 180000, Month: core.MonthKey(payDate), Date: payDate,
			Status:    payment.StatusUnpaid,
			CreatedAt: now, UpdatedAt: now,
		},
	}
	expenses := []*payment.Expense{
		{ID: "exp_demo_1", TeacherID: FixtureTeacherID, Category: payment.ExpenseRent, Amount: 500000, Date: now.AddDate(0, 0, -10), CreatedAt: now},
	}

	notices := []*notice.Notice{
		{
			ID: "ntc_demo_1", TeacherID: FixtureTeacherID, Title: "Spring recital",
			Content: "The spring recital is on the last Saturday of the month.", Template: notice.TemplateRecital,
			Date: now.AddDate(0, 0, 14), TotalRecipients: 3, ConfirmedBy: []string{},
			CreatedAt: now, UpdatedAt: now,
		},
	}

	db.user.mutex.Lock()
	db.user.table[teacher.ID] = teacher
	db.user.table[parent.ID] = parent
	db.user.mutex.Unlock()

	db.student.mutex.Lock()
	for _, s := range students {
		db.student.table[s.ID] = s
	}
	db.student.mutex.Unlock()

	db.attendance.mutex.Lock()
	for _, r := range records {
		db.attendance.table[r.ID] = r
	}
	db.attendance.mutex.Unlock()

	db.payment.mutex.Lock()
	for _, p := range payments {
		db.payment.records[p.ID] = p
	}
	for _, e := range expenses {
		db.payment.expenses[e.ID] = e
	}
	db.payment.mutex.Unlock()

	db.notice.mutex.Lock()
	for _, n := range notices {
		db.notice.table[n.ID] = n
	}
	db.notice.mutex.Unlock()
	return nil
}
