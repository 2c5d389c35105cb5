package payment

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

func TestMain(m *testing.M) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validator.New(), translator)
	os.Exit(m.Run())
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type nopSinks struct{}

func (nopSinks) LogAsync(teacherID, entryType, action, title, description, studentID, relatedID string) {
}
func (nopSinks) PushAsync(ntype, title, message, targetID string) {}

// fakeRepo counts repository reads so cache behavior is observable.
type fakeRepo struct {
	Repository

	mu          sync.Mutex
	records     map[string]Record
	seq         int
	allQueries  int
	monthShards []string
	flagged     map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]Record), flagged: make(map[string]bool)}
}

func (r *fakeRepo) CreateRecord(_ context.Context, rec Record) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	rec.ID = fmt.Sprintf("pay_%d", r.seq)
	r.records[rec.ID] = rec
	return rec, nil
}

func (r *fakeRepo) QueryAllRecords(_ context.Context, teacherID string) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allQueries++
	var out []Record
	for _, rec := range r.records {
		if rec.TeacherID == teacherID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetRecordByID(_ context.Context, id string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *fakeRepo) QueryRecordsByMonth(_ context.Context, teacherID, month string) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.monthShards = append(r.monthShards, month)
	var out []Record
	for _, rec := range r.records {
		if rec.TeacherID == teacherID && rec.Month == month {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateRecord(_ context.Context, id string, up UpdateRecord) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	if up.Status != "" {
		rec.Status = up.Status
	}
	if up.Method != "" {
		rec.Method = up.Method
	}
	rec.UpdatedAt = time.Now().UTC()
	r.records[id] = rec
	return rec, nil
}

type fakeFlagSetter struct {
	mu    sync.Mutex
	flags map[string]bool
}

func (f *fakeFlagSetter) SetUnpaidFlag(_ context.Context, studentID string, unpaid bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flags == nil {
		f.flags = make(map[string]bool)
	}
	f.flags[studentID] = unpaid
	return nil
}

func (f *fakeFlagSetter) get(studentID string) (bool, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.flags[studentID]
	return v, ok
}

func TestServiceFetchCaches(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, nopLogger{}, nopSinks{}, nopSinks{}, &fakeFlagSetter{}, time.Minute)

	if _, err := repo.CreateRecord(ctx, Record{TeacherID: "t1", StudentID: "s1", Amount: 100, Status: StatusPaid}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Fetch(ctx, "t1", false); err != nil {
		t.Fatalf("Fetch(): %v", err)
	}
	if _, err := svc.Fetch(ctx, "t1", false); err != nil {
		t.Fatalf("Fetch(): %v", err)
	}
	if repo.allQueries != 1 {
		t.Errorf("repo queries = %d; want exactly 1 within the TTL", repo.allQueries)
	}

	if _, err := svc.Fetch(ctx, "t1", true); err != nil {
		t.Fatalf("Fetch(force): %v", err)
	}
	if repo.allQueries != 2 {
		t.Errorf("repo queries = %d; force must bypass the cache", repo.allQueries)
	}
}

func TestServiceAddRaisesUnpaidFlag(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	flags := &fakeFlagSetter{}
	svc := NewService(repo, nopLogger{}, nopSinks{}, nopSinks{}, flags, time.Minute)

	_, err := svc.Add(ctx, NewRecord{
		StudentID: "s1", TeacherID: "t1", Amount: 200_000, Date: date(2025, time.January, 3),
	})
	if err != nil {
		t.Fatalf("Add(): %v", err)
	}

	if unpaid, ok := flags.get("s1"); !ok || !unpaid {
		t.Errorf("unpaid flag = %v,%v; a record defaulting to unpaid must raise it", unpaid, ok)
	}
}

func TestServiceMarkPaid(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	flags := &fakeFlagSetter{}
	svc := NewService(repo, nopLogger{}, nopSinks{}, nopSinks{}, flags, time.Minute)

	rec, err := svc.Add(ctx, NewRecord{
		StudentID: "s1", TeacherID: "t1", Amount: 200_000, Date: date(2025, time.January, 3),
	})
	if err != nil {
		t.Fatalf("Add(): %v", err)
	}
	if _, err = svc.Fetch(ctx, "t1", true); err != nil {
		t.Fatalf("Fetch(): %v", err)
	}
	queriesBefore := repo.allQueries

	paid, err := svc.MarkPaid(ctx, rec.ID, MethodCard)
	if err != nil {
		t.Fatalf("MarkPaid(): %v", err)
	}
	if paid.Status != StatusPaid || paid.Method != MethodCard {
		t.Errorf("record = %v/%v; want paid/card", paid.Status, paid.Method)
	}
	if unpaid, _ := flags.get("s1"); unpaid {
		t.Error("unpaid flag still raised after MarkPaid")
	}

	// the cached entry is patched in place, not re-queried
	cached, err := svc.Fetch(ctx, "t1", false)
	if err != nil {
		t.Fatalf("Fetch(): %v", err)
	}
	if repo.allQueries != queriesBefore {
		t.Errorf("repo queries = %d; want no re-query after patch", repo.allQueries)
	}
	if len(cached) != 1 || cached[0].Status != StatusPaid {
		t.Errorf("cached = %v; want the patched record", cached)
	}

	if _, err = svc.MarkPaid(ctx, "pay_unknown", MethodCash); err != ErrNotFound {
		t.Errorf("MarkPaid(unknown) = %v; want ErrNotFound", err)
	}
}

func TestServiceFetchIsolatesTeachers(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, nopLogger{}, nopSinks{}, nopSinks{}, &fakeFlagSetter{}, time.Minute)

	if _, err := repo.CreateRecord(ctx, Record{TeacherID: "t1", StudentID: "s1", Amount: 100}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateRecord(ctx, Record{TeacherID: "t2", StudentID: "s2", Amount: 200}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Fetch(ctx, "t1", false); err != nil {
		t.Fatalf("Fetch(t1): %v", err)
	}
	got, err := svc.Fetch(ctx, "t2", false)
	if err != nil {
		t.Fatalf("Fetch(t2): %v", err)
	}
	if len(got) != 1 || got[0].TeacherID != "t2" {
		t.Fatalf("Fetch(t2) = %v; must only hold t2's records", got)
	}
	if repo.allQueries != 2 {
		t.Errorf("repo queries = %d; each teacher warms its own entry", repo.allQueries)
	}

	// both entries stay warm independently
	if _, err = svc.Fetch(ctx, "t1", false); err != nil {
		t.Fatalf("Fetch(t1): %v", err)
	}
	if _, err = svc.Fetch(ctx, "t2", false); err != nil {
		t.Fatalf("Fetch(t2): %v", err)
	}
	if repo.allQueries != 2 {
		t.Errorf("repo queries = %d; want no re-query within the TTL", repo.allQueries)
	}
}

func TestServiceFetchAggregateSpansThirteenShards(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, nopLogger{}, nopSinks{}, nopSinks{}, &fakeFlagSetter{}, time.Minute)

	today := date(2025, time.January, 15)
	if _, err := repo.CreateRecord(ctx, Record{TeacherID: "t1", StudentID: "s1", Month: "2024-11", Amount: 100}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateRecord(ctx, Record{TeacherID: "t1", StudentID: "s1", Month: "2025-02", Amount: 200}); err != nil {
		t.Fatal(err)
	}

	records, err := svc.FetchAggregate(ctx, "t1", today)
	if err != nil {
		t.Fatalf("FetchAggregate(): %v", err)
	}
	if len(repo.monthShards) != 13 {
		t.Errorf("shards queried = %d; want 13", len(repo.monthShards))
	}
	if repo.monthShards[0] != "2025-02" || repo.monthShards[12] != "2024-02" {
		t.Errorf("shard span = %q..%q; want 2025-02..2024-02", repo.monthShards[0], repo.monthShards[12])
	}
	if len(records) != 2 {
		t.Errorf("records = %d; want both shard hits", len(records))
	}
}
