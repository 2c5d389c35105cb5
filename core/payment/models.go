package payment

import (
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/core/student"
)

// Payment statuses. unpaid -> paid is the dominant transition; amount and
// date are immutable by convention once recorded.
const (
	StatusPaid   = "paid"
	StatusUnpaid = "unpaid"
)

// Payment methods
const (
	MethodCash     = "cash"
	MethodCard     = "card"
	MethodTransfer = "transfer"
)

// Expense categories
const (
	ExpenseRent      = "rent"
	ExpenseSupplies  = "supplies"
	ExpenseUtilities = "utilities"
	ExpenseMarketing = "marketing"
	ExpenseSalary    = "salary"
	ExpenseOther     = "other"
)

type (
	Record struct {
		ID        string `json:"id" bson:"_id,omitempty"`
		StudentID string `json:"studentId" bson:"studentId"`
		TeacherID string `json:"teacherId" bson:"teacherId"`
		Amount    int64  `json:"amount" bson:"amount"`
		// Month is the YYYY-MM sharding key derived from Date; the document
		// backend partitions tuition records by it.
		Month     string             `json:"month" bson:"month"`
		Date      time.Time          `json:"date" bson:"date"`
		Type      string             `json:"type,omitempty" bson:"type,omitempty"`
		Method    string             `json:"method,omitempty" bson:"method,omitempty"`
		Status    string             `json:"status" bson:"status"`
		Ticket    student.TicketInfo `json:"ticket,omitempty" bson:"ticket,omitempty"`
		CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
		UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
	}

	NewRecord struct {
		StudentID string             `json:"studentId" validate:"required"`
		TeacherID string             `json:"teacherId" validate:"required"`
		Amount    int64              `json:"amount" validate:"required,gt=0"`
		Date      time.Time          `json:"date" validate:"required"`
		Type      string             `json:"type"`
		Method    string             `json:"method" validate:"omitempty,oneof=cash card transfer"`
		Status    string             `json:"status" validate:"omitempty,oneof=paid unpaid"`
		Ticket    student.TicketInfo `json:"ticket"`
	}

	UpdateRecord struct {
		Status string `json:"status" validate:"omitempty,oneof=paid unpaid"`
		Method string `json:"method" validate:"omitempty,oneof=cash card transfer"`
	}

	Expense struct {
		ID          string    `json:"id" bson:"_id,omitempty"`
		TeacherID   string    `json:"teacherId" bson:"teacherId"`
		Category    string    `json:"category" bson:"category"`
		Amount      int64     `json:"amount" bson:"amount"`
		Description string    `json:"description,omitempty" bson:"description,omitempty"`
		Date        time.Time `json:"date" bson:"date"`
		CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	}

	NewExpense struct {
		TeacherID   string    `json:"teacherId" validate:"required"`
		Category    string    `json:"category" validate:"required,oneof=rent supplies utilities marketing salary other"`
		Amount      int64     `json:"amount" validate:"required,gt=0"`
		Description string    `json:"description"`
		Date        time.Time `json:"date" validate:"required"`
	}
)

func (nr NewRecord) Validate() error { return core.Validate.Struct(nr) }

func (ur UpdateRecord) Validate() error { return core.Validate.Struct(ur) }

func (ne NewExpense) Validate() error { return core.Validate.Struct(ne) }
