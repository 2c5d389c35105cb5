package payment

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSettlementPeriod(t *testing.T) {
	tests := []struct {
		name          string
		settlementDay int
		today         time.Time
		wantStart     time.Time
		wantEnd       time.Time
	}{
		{
			name:          "on or after settlement day",
			settlementDay: 10, today: date(2025, time.January, 15),
			wantStart: date(2025, time.January, 10), wantEnd: date(2025, time.February, 9),
		},
		{
			name:          "before settlement day",
			settlementDay: 10, today: date(2025, time.January, 5),
			wantStart: date(2024, time.December, 10), wantEnd: date(2025, time.January, 9),
		},
		{
			name:          "exactly on settlement day",
			settlementDay: 10, today: date(2025, time.January, 10),
			wantStart: date(2025, time.January, 10), wantEnd: date(2025, time.February, 9),
		},
		{
			name:          "first of month settlement",
			settlementDay: 1, today: date(2025, time.March, 20),
			wantStart: date(2025, time.March, 1), wantEnd: date(2025, time.March, 31),
		},
		{
			name:          "zero day treated as first",
			settlementDay: 0, today: date(2025, time.March, 20),
			wantStart: date(2025, time.March, 1), wantEnd: date(2025, time.March, 31),
		},
		{
			name:          "window crossing a year boundary",
			settlementDay: 25, today: date(2024, time.December, 26),
			wantStart: date(2024, time.December, 25), wantEnd: date(2025, time.January, 24),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := SettlementPeriod(tt.settlementDay, tt.today)
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %v; want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("end = %v; want %v", end, tt.wantEnd)
			}
		})
	}
}

func TestAggregateMonths(t *testing.T) {
	months := AggregateMonths(date(2025, time.January, 15))

	if len(months) != 13 {
		t.Fatalf("len = %d; want 13", len(months))
	}
	if months[0] != "2025-02" {
		t.Errorf("first = %q; want next month %q", months[0], "2025-02")
	}
	if months[12] != "2024-02" {
		t.Errorf("last = %q; want eleven months back %q", months[12], "2024-02")
	}

	// day-of-month must not skew the keys near short months
	months = AggregateMonths(date(2025, time.March, 31))
	if months[1] != "2025-03" || months[2] != "2025-02" {
		t.Errorf("months = %v; want stable keys from Mar 31", months[:3])
	}
}

func TestSummarize(t *testing.T) {
	start, end := date(2025, time.January, 10), date(2025, time.February, 9)
	records := []Record{
		{Amount: 200_000, Status: StatusPaid},
		{Amount: 150_000, Status: StatusPaid},
		{Amount: 180_000, Status: StatusUnpaid},
	}
	expenses := []Expense{
		{Amount: 90_000, Category: ExpenseRent},
		{Amount: 10_000, Category: ExpenseSupplies},
	}

	s := Summarize(start, end, records, expenses)
	if s.Income != 350_000 {
		t.Errorf("income = %d; want %d; unpaid records must not count", s.Income, 350_000)
	}
	if s.TotalExpense != 100_000 {
		t.Errorf("totalExpense = %d; want %d", s.TotalExpense, 100_000)
	}
	if s.NetIncome != 250_000 {
		t.Errorf("netIncome = %d; want %d", s.NetIncome, 250_000)
	}
	if s.PaidCount != 2 || s.UnpaidCount != 1 {
		t.Errorf("counts = %d/%d; want 2/1", s.PaidCount, s.UnpaidCount)
	}
}

func TestNetIncome(t *testing.T) {
	if got := NetIncome(100, 300); got != 200 {
		t.Errorf("NetIncome(100, 300) = %d; want absolute 200", got)
	}
	if got := NetIncome(300, 100); got != 200 {
		t.Errorf("NetIncome(300, 100) = %d; want 200", got)
	}
}
