// Package storage builds the repository set for the source selected in
// configuration. The source is resolved exactly once, at startup; services
// receive plain repository interfaces and never know which backend is live.
package storage

import (
	"context"

	"github.com/pkg/errors"

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
	"github.com/newrise0410/piano-academy-app-sub002/storage/kv"
	mockdb "github.com/newrise0410/piano-academy-app-sub002/storage/mock"
	"github.com/newrise0410/piano-academy-app-sub002/storage/mongodb"
	restdb "github.com/newrise0410/piano-academy-app-sub002/storage/rest"
)

type Repositories struct {
	Users            user.Repository
	Students         student.Repository
	Attendance       attendance.Repository
	Notices          notice.Repository
	Payments         payment.Repository
	LessonNotes      lessonnote.Repository
	Gallery          gallery.Repository
	Activities       activity.Repository
	Notifications    notification.Repository
	ScheduleRequests schedule.Repository

	// Set only in mongo mode: repositories with change-stream support.
	MongoStudents      *mongodb.StudentRepository
	MongoNotices       *mongodb.NoticeRepository
	MongoNotifications *mongodb.NotificationRepository

	closeFn func(ctx context.Context) error
}

// Close releases backend connections; it is a no-op for sources without any.
func (r *Repositories) Close(ctx context.Context) error {
	if r.closeFn == nil {
		return nil
	}
	return r.closeFn(ctx)
}

// NewRepositories wires the repository set for conf.Source. Mock mode also
// loads demo fixtures so a fresh process is immediately usable.
func NewRepositories(ctx context.Context, conf *core.Config, tokens kv.Store, logger core.Logger) (*Repositories, error) {
	switch conf.Source {
	case core.SourceMock, "":
		db := mockdb.Open(conf)
		if err := mockdb.Seed(db); err != nil {
			return nil, errors.Wrap(err, "seeding mock backend")
		}
		return &Repositories{
			Users:            mockdb.NewUserRepository(db),
			Students:         mockdb.NewStudentRepository(db),
			Attendance:       mockdb.NewAttendanceRepository(db),
			Notices:          mockdb.NewNoticeRepository(db),
			Payments:         mockdb.NewPaymentRepository(db),
			LessonNotes:      mockdb.NewLessonNoteRepository(db),
			Gallery:          mockdb.NewGalleryRepository(db),
			Activities:       mockdb.NewActivityRepository(db),
			Notifications:    mockdb.NewNotificationRepository(db),
			ScheduleRequests: mockdb.NewScheduleRepository(db),
		}, nil

	case core.SourceAPI:
		client := restdb.NewClient(conf, tokens, logger)
		return &Repositories{
			Users:            restdb.NewUserRepository(client),
			Students:         restdb.NewStudentRepository(client),
			Attendance:       restdb.NewAttendanceRepository(client),
			Notices:          restdb.NewNoticeRepository(client),
			Payments:         restdb.NewPaymentRepository(client),
			LessonNotes:      restdb.NewLessonNoteRepository(client),
			Gallery:          restdb.NewGalleryRepository(client),
			Activities:       restdb.NewActivityRepository(client),
			Notifications:    restdb.NewNotificationRepository(client),
			ScheduleRequests: restdb.NewScheduleRepository(client),
		}, nil

	case core.SourceMongo:
		db, err := mongodb.Open(ctx, conf, logger)
		if err != nil {
			return nil, err
		}
		students := mongodb.NewStudentRepository(db)
		notices := mongodb.NewNoticeRepository(db)
		notifications := mongodb.NewNotificationRepository(db)
		return &Repositories{
			Users:              mongodb.NewUserRepository(db),
			Students:           students,
			Attendance:         mongodb.NewAttendanceRepository(db),
			Notices:            notices,
			Payments:           mongodb.NewPaymentRepository(db),
			LessonNotes:        mongodb.NewLessonNoteRepository(db),
			Gallery:            mongodb.NewGalleryRepository(db),
			Activities:         mongodb.NewActivityRepository(db),
			Notifications:      notifications,
			ScheduleRequests:   mongodb.NewScheduleRepository(db),
			MongoStudents:      students,
			MongoNotices:       notices,
			MongoNotifications: notifications,
			closeFn:            db.Close,
		}, nil
	}
	return nil, errors.Errorf("unknown data source %q", conf.Source)
}
