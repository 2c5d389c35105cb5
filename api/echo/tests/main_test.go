package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/newrise0410/piano-academy-app-sub002/api/echo"
	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/core/activity"
	"github.com/newrise0410/piano-academy-app-sub002/core/attendance"
	"github.com/newrise0410/piano-academy-app-sub002/core/dispatch"
	"github.com/newrise0410/piano-academy-app-sub002/core/gallery"
	"github.com/newrise0410/piano-academy-app-sub002/core/lessonnote"
	"github.com/newrise0410/piano-academy-app-sub002/core/notice"
	"github.com/newrise0410/piano-academy-app-sub002/core/notification"
	"github.com/newrise0410/piano-academy-app-sub002/core/payment"
	"github.com/newrise0410/piano-academy-app-sub002/core/schedule"
	"github.com/newrise0410/piano-academy-app-sub002/core/student"
	"github.com/newrise0410/piano-academy-app-sub002/core/user"
	emailsvc "github.com/newrise0410/piano-academy-app-sub002/services/email"
	"github.com/newrise0410/piano-academy-app-sub002/storage/kv"
	mockdb "github.com/newrise0410/piano-academy-app-sub002/storage/mock"
	testutil "github.com/newrise0410/piano-academy-app-sub002/tests"
)

var (
	conf *core.Config
	app  Server

	usrRepo   user.Repository
	stuRepo   student.Repository
	schedRepo schedule.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	conf = &core.Config{
		AppName:                   "PianoAcademy",
		Env:                       "TEST",
		TestMode:                  true,
		SecretKey:                 "0v3rly-s3cr3t-t35t-k3y",
		Source:                    core.SourceMock,
		SettlementDay:             10,
		JWTExpirationDelta:        time.Hour,
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}
	logger := testutil.Logger{}
	core.InitValidators(validator.New(), newTranslator())

	// set up the mock backend & repos; MockDelay stays zero in tests
	db := mockdb.Open(conf)
	usrRepo = mockdb.NewUserRepository(db)
	stuRepo = mockdb.NewStudentRepository(db)
	attRepo := mockdb.NewAttendanceRepository(db)
	ntcRepo := mockdb.NewNoticeRepository(db)
	payRepo := mockdb.NewPaymentRepository(db)
	noteRepo := mockdb.NewLessonNoteRepository(db)
	galRepo := mockdb.NewGalleryRepository(db)
	actRepo := mockdb.NewActivityRepository(db)
	ntfRepo := mockdb.NewNotificationRepository(db)
	schedRepo = mockdb.NewScheduleRepository(db)

	// set up services
	dispatcher := dispatch.New(logger)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	keeper := kv.NewInmemStore()

	activitySvc := activity.NewService(actRepo, logger, dispatcher)
	notifSvc := notification.NewService(ntfRepo, logger, dispatcher, nil)
	stuSvc := student.NewService(stuRepo, logger, activitySvc, notifSvc, time.Minute)
	writer := student.Writer{Svc: stuSvc}

	svcs := Services{
		Users:         user.NewService(usrRepo, mailSvc, keeper, conf),
		Students:      stuSvc,
		Attendance:    attendance.NewService(attRepo, logger, activitySvc, time.Minute),
		Notices:       notice.NewService(ntcRepo, logger, notifSvc, time.Minute),
		Payments:      payment.NewService(payRepo, logger, activitySvc, notifSvc, writer, time.Minute),
		LessonNotes:   lessonnote.NewService(noteRepo, logger, activitySvc, time.Minute),
		Gallery:       gallery.NewService(galRepo, logger, activitySvc, time.Minute),
		Activities:    activitySvc,
		Notifications: notifSvc,
		Schedules:     schedule.NewService(schedRepo, writer, logger, activitySvc, notifSvc),
	}

	// set up server
	app = NewServer(&Options{
		DisableReqLogs: true,
		Conf:           conf,
		Logger:         logger,
		Services:       svcs,
	})

	// run tests
	code := m.Run()

	dispatcher.Close()
	os.Exit(code)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func marshallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marshallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
