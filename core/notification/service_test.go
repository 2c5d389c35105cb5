package notification

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core/dispatch"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// fakeRepo holds per-target feeds and counts reads so cache behavior is
// observable.
type fakeRepo struct {
	Repository

	mu      sync.Mutex
	entries map[string]Notification
	seq     int
	queries map[string]int // per target id
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: make(map[string]Notification), queries: make(map[string]int)}
}

func (r *fakeRepo) CreateNotification(_ context.Context, n Notification) (Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	n.ID = fmt.Sprintf("ntf_%d", r.seq)
	r.entries[n.ID] = n
	return n, nil
}

func (r *fakeRepo) QueryNotifications(_ context.Context, targetID string) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries[targetID]++
	var out []Notification
	for _, n := range r.entries {
		if n.TargetID == targetID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeRepo) MarkAllNotificationsRead(_ context.Context, targetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, n := range r.entries {
		if n.TargetID == targetID {
			n.IsRead = true
			r.entries[id] = n
		}
	}
	return nil
}

func TestServiceFetchIsolatesTargets(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	if _, err := repo.CreateNotification(ctx, Notification{Type: "notice", Title: "A's notice", TargetID: "teacherA", Timestamp: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateNotification(ctx, Notification{Type: "payment", Title: "B's payment", TargetID: "teacherB", Timestamp: time.Now()}); err != nil {
		t.Fatal(err)
	}
	svc := NewService(repo, nopLogger{}, dispatch.New(nopLogger{}), nil)

	if _, err := svc.Fetch(ctx, "teacherA", false); err != nil {
		t.Fatalf("Fetch(teacherA): %v", err)
	}
	got, err := svc.Fetch(ctx, "teacherB", false)
	if err != nil {
		t.Fatalf("Fetch(teacherB): %v", err)
	}
	if len(got) != 1 || got[0].TargetID != "teacherB" {
		t.Fatalf("Fetch(teacherB) = %v; must only hold teacherB's feed", got)
	}

	// each target keeps its own fresh window
	if _, err = svc.Fetch(ctx, "teacherA", false); err != nil {
		t.Fatalf("Fetch(teacherA): %v", err)
	}
	if repo.queries["teacherA"] != 1 || repo.queries["teacherB"] != 1 {
		t.Errorf("queries = %v; want exactly one per target within the TTL", repo.queries)
	}
}

func TestServiceUnreadCountPerTarget(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	for i := 0; i < 2; i++ {
		if _, err := repo.CreateNotification(ctx, Notification{Type: "notice", TargetID: "teacherA", Timestamp: time.Now()}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := repo.CreateNotification(ctx, Notification{Type: "notice", TargetID: "teacherB", Timestamp: time.Now()}); err != nil {
		t.Fatal(err)
	}
	svc := NewService(repo, nopLogger{}, dispatch.New(nopLogger{}), nil)

	if _, err := svc.Fetch(ctx, "teacherA", false); err != nil {
		t.Fatalf("Fetch(teacherA): %v", err)
	}
	if _, err := svc.Fetch(ctx, "teacherB", false); err != nil {
		t.Fatalf("Fetch(teacherB): %v", err)
	}

	if n := svc.UnreadCount("teacherA"); n != 2 {
		t.Errorf("UnreadCount(teacherA) = %d; want 2", n)
	}
	if n := svc.UnreadCount("teacherB"); n != 1 {
		t.Errorf("UnreadCount(teacherB) = %d; want 1", n)
	}

	if err := svc.MarkAllRead(ctx, "teacherA"); err != nil {
		t.Fatalf("MarkAllRead(teacherA): %v", err)
	}
	if n := svc.UnreadCount("teacherA"); n != 0 {
		t.Errorf("UnreadCount(teacherA) = %d after mark-all-read; want 0", n)
	}
	if n := svc.UnreadCount("teacherB"); n != 1 {
		t.Errorf("UnreadCount(teacherB) = %d; marking teacherA read must not touch it", n)
	}
}
