// Package mockdb is the in-process backend used for demos and tests. It
// mirrors the remote backends' behavior, including latency: every call
// sleeps for a configurable delay so loading states stay observable.
package mockdb

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/core/activity"
	"github.com/newrise0410/piano-academy-app-sub002/core/attendance"
	"github.com/newrise0410/piano-academy-app-sub002/core/gallery"
	"github.com/newrise0410/piano-academy-app-sub002/core/lessonnote"
	"github.com/newrise0410/piano-academy-app-sub002/core/notice"
	"github.com/newrise0410/piano-academy-app-sub002/core/notification"
	"github.com/newrise0410/piano-academy-app-sub002/core/payment"
	"github.com/newrise0410/piano-academy-app-sub002/core/schedule"
	"github.com/newrise0410/piano-academy-app-sub002/core/student"
	"github.com/newrise0410/piano-academy-app-sub002/core/user"
)

type (
	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}
	studentTable struct {
		mutex sync.RWMutex
		table map[string]*student.Student
	}
	attendanceTable struct {
		mutex sync.RWMutex
		table map[string]*attendance.Record
	}
	noticeTable struct {
		mutex sync.RWMutex
		table map[string]*notice.Notice
	}
	paymentTable struct {
		mutex    sync.RWMutex
		records  map[string]*payment.Record
		expenses map[string]*payment.Expense
	}
	lessonNoteTable struct {
		mutex sync.RWMutex
		table map[string]*lessonnote.Note
	}
	galleryTable struct {
		mutex sync.RWMutex
		table map[string]*gallery.Photo
	}
	activityTable struct {
		mutex sync.RWMutex
		table map[string]*activity.Entry
	}
	notificationTable struct {
		mutex sync.RWMutex
		table map[string]*notification.Notification
	}
	scheduleTable struct {
		mutex sync.RWMutex
		table map[string]*schedule.ChangeRequest
	}

	DB struct {
		delay time.Duration

		user         *userTable
		student      *studentTable
		attendance   *attendanceTable
		notice       *noticeTable
		payment      *paymentTable
		lessonNote   *lessonNoteTable
		gallery      *galleryTable
		activity     *activityTable
		notification *notificationTable
		schedule     *scheduleTable
	}
)

func Open(conf *core.Config) *DB {
	var delay time.Duration
	if conf != nil {
		delay = conf.MockDelay
	}
	return &DB{
		delay:        delay,
		user:         &userTable{table: make(map[string]*user.User)},
		student:      &studentTable{table: make(map[string]*student.Student)},
		attendance:   &attendanceTable{table: make(map[string]*attendance.Record)},
		notice:       &noticeTable{table: make(map[string]*notice.Notice)},
		payment:      &paymentTable{records: make(map[string]*payment.Record), expenses: make(map[string]*payment.Expense)},
		lessonNote:   &lessonNoteTable{table: make(map[string]*lessonnote.Note)},
		gallery:      &galleryTable{table: make(map[string]*gallery.Photo)},
		activity:     &activityTable{table: make(map[string]*activity.Entry)},
		notification: &notificationTable{table: make(map[string]*notification.Notification)},
		schedule:     &scheduleTable{table: make(map[string]*schedule.ChangeRequest)},
	}
}

// sleep simulates backend latency; it returns early when ctx is canceled.
func (db *DB) sleep(ctx context.Context) error {
	if db.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(db.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var idSeq int64

// nextID derives an id from the wall clock the way the remote backends do;
// the sequence keeps ids unique within a millisecond.
func nextID(prefix string) string {
	return fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixMilli(), atomic.AddInt64(&idSeq, 1))
}
