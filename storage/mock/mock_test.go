package mockdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/core/payment"
	"github.com/newrise0410/piano-academy-app-sub002/core/student"
)

func TestStudentRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := Open(nil)
	repo := NewStudentRepository(db)

	created, err := repo.CreateStudent(ctx, student.Student{Name: "Kim Minji", TeacherID: "t1"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := repo.GetStudentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	// update only touches set fields
	updated, err := repo.UpdateStudent(ctx, created.ID, student.UpdateStudent{Level: "intermediate"})
	require.NoError(t, err)
	assert.Equal(t, "Kim Minji", updated.Name)
	assert.Equal(t, "intermediate", updated.Level)

	require.NoError(t, repo.DeleteStudent(ctx, created.ID))
	_, err = repo.GetStudentByID(ctx, created.ID)
	assert.ErrorIs(t, err, student.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteStudent(ctx, created.ID), student.ErrNotFound)
}

func TestStudentRepositoryFilter(t *testing.T) {
	ctx := context.Background()
	db := Open(nil)
	repo := NewStudentRepository(db)

	unpaid := true
	seed := []student.Student{
		{Name: "Kim Minji", Category: "elementary", TeacherID: "t1"},
		{Name: "Lee Junho", Category: "middle", TeacherID: "t1", Unpaid: true},
		{Name: "Park Seoyeon", Category: "elementary", TeacherID: "t2"},
	}
	for _, s := range seed {
		_, err := repo.CreateStudent(ctx, s)
		require.NoError(t, err)
	}

	got, err := repo.FilterStudents(ctx, student.QueryFilter{TeacherID: "t1", Unpaid: &unpaid})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Lee Junho", got[0].Name)

	// search is case-insensitive
	got, err = repo.FilterStudents(ctx, student.QueryFilter{TeacherID: "t1", Search: "minji"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Kim Minji", got[0].Name)
}

func TestPaymentRepositoryMonthShard(t *testing.T) {
	ctx := context.Background()
	db := Open(nil)
	repo := NewPaymentRepository(db)

	jan := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	for _, r := range []payment.Record{
		{StudentID: "s1", TeacherID: "t1", Amount: 100, Month: core.MonthKey(jan), Date: jan, Status: payment.StatusPaid},
		{StudentID: "s2", TeacherID: "t1", Amount: 200, Month: core.MonthKey(feb), Date: feb, Status: payment.StatusUnpaid},
	} {
		_, err := repo.CreateRecord(ctx, r)
		require.NoError(t, err)
	}

	got, err := repo.QueryRecordsByMonth(ctx, "t1", "2025-01")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.EqualValues(t, 100, got[0].Amount)

	// range boundaries are inclusive
	got, err = repo.QueryRecordsByDateRange(ctx, "t1", jan, feb)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSimulatedLatencyHonorsContext(t *testing.T) {
	db := Open(&core.Config{MockDelay: time.Minute})
	repo := NewStudentRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := repo.GetStudentByID(ctx, "nope")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	db := Open(nil)
	require.NoError(t, Seed(db))

	students, err := NewStudentRepository(db).QueryAllStudents(ctx, FixtureTeacherID)
	require.NoError(t, err)
	assert.Len(t, students, 3)

	usr, err := NewUserRepository(db).GetUserByEmail(ctx, "teacher@demo.test")
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("Sup3rSecret"))
}
