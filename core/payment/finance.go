package payment

import (
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

// Summary is the settlement-period financial view shown to teachers.
type Summary struct {
	PeriodStart  time.Time `json:"periodStart"`
	PeriodEnd    time.Time `json:"periodEnd"`
	Income       int64     `json:"income"`
	TotalExpense int64     `json:"totalExpense"`
	NetIncome    int64     `json:"netIncome"`
	PaidCount    int       `json:"paidCount"`
	UnpaidCount  int       `json:"unpaidCount"`
}

// SettlementPeriod computes the active settlement window for a given
// settlement day-of-month. When today's day >= settlementDay the window runs
// from this month's settlement day to the day before next month's; otherwise
// from last month's settlement day to the day before this month's.
func SettlementPeriod(settlementDay int, today time.Time) (start, end time.Time) {
	if settlementDay < 1 {
		settlementDay = 1
	}
	anchor := time.Date(today.Year(), today.Month(), settlementDay, 0, 0, 0, 0, today.Location())
	if today.Day() >= settlementDay {
		start = anchor
		end = core.AddMonths(anchor, 1).AddDate(0, 0, -1)
	} else {
		start = core.AddMonths(anchor, -1)
		end = anchor.AddDate(0, 0, -1)
	}
	return start, end
}

// NetIncome is the absolute difference between income and expense.
func NetIncome(income, expense int64) int64 {
	net := income - expense
	if net < 0 {
		net = -net
	}
	return net
}

// Summarize derives the settlement-period view from records and expenses that
// already fall within the window.
func Summarize(start, end time.Time, records []Record, expenses []Expense) Summary {
	s := Summary{PeriodStart: start, PeriodEnd: end}
	for _, r := range records {
		switch r.Status {
		case StatusPaid:
			s.Income += r.Amount
			s.PaidCount++
		case StatusUnpaid:
			s.UnpaidCount++
		}
	}
	for _, e := range expenses {
		s.TotalExpense += e.Amount
	}
	s.NetIncome = NetIncome(s.Income, s.TotalExpense)
	return s
}

// AggregateMonths lists the 13 YYYY-MM shard keys an aggregate fetch spans:
// one month in the future through eleven months in the past, inclusive,
// relative to `today`.
func AggregateMonths(today time.Time) []string {
	months := make([]string, 0, 13)
	for i := 1; i >= -11; i-- {
		months = append(months, core.MonthKey(core.AddMonths(today, i)))
	}
	return months
}
