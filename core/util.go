package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Midnight normalizes t to 00:00:00 in its own location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysUntil returns the number of whole days from today until end, both
// normalized to midnight, floored at 0.
func DaysUntil(end, today time.Time) int {
	d := Midnight(end).Sub(Midnight(today))
	if d <= 0 {
		return 0
	}
	days := int(d.Hours() / 24)
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// MonthKey renders the YYYY-MM sharding key used by month-partitioned
// collections.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// AddMonths shifts t by n calendar months keeping its day clamped to the
// target month's length (time.AddDate overflows 2021-01-31 +1m to 2021-03-03).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

// Getwd walks up from the working directory until a go.mod is found so
// relative paths (templates, .env files) resolve the same from tests and
// binaries. go-test changes the working directory to the package being run.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err = os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			log.Fatal("project root not found")
		}
		currDir = newDir
	}
}
