package certificate

import (
	"context"
	"errors"
	"testing"
	"time"

	"techlearn/database"
	"techlearn/models"
	"techlearn/models/course"
	"techlearn/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog map[string][]string

func (c stubCatalog) ModuleIDs(courseID string) []string { return c[courseID] }

var c1 = course.Course{ID: "c1", Title: "Intro to Go", Category: "Go", Instructor: "X"}

func newScenario(t *testing.T) (*Policy, *progress.Store) {
	t.Helper()
	ctx := context.Background()
	cat := stubCatalog{"c1": {"m1", "m2"}}
	store := progress.NewStore(database.NewMemoryKV(), cat, nil)
	require.NoError(t, store.Load(ctx, models.User{Email: "alice@example.com"}))
	policy := NewPolicy(store, cat, 2).WithClock(func() time.Time {
		return time.Date(2025, time.July, 4, 15, 7, 0, 0, time.UTC)
	})
	return policy, store
}

func completeCourse(t *testing.T, store *progress.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Enroll(ctx, "c1"))
	require.NoError(t, store.CompleteExercise(ctx, "c1", "m1"))
	require.NoError(t, store.CompleteExercise(ctx, "c1", "m2"))
}

func TestGenerateScenario(t *testing.T) {
	policy, store := newScenario(t)
	completeCourse(t, store)

	require.True(t, policy.IsCourseComplete("c1"))
	info, err := policy.Generate(context.Background(), c1, "Alice")
	require.NoError(t, err)

	assert.Equal(t, "Alice", info.StudentName)
	assert.Equal(t, "Intro to Go", info.CourseTitle)
	assert.Equal(t, "Go", info.CourseCategory)
	assert.Equal(t, "July 4, 2025 at 03:07 PM", info.CompletionDate)
	assert.Regexp(t, `^TL-[0-9A-F]{12}$`, info.Number)
	assert.Equal(t, 1, store.CertificateCount("c1"))
	assert.Equal(t, 1, policy.Remaining("c1"))
}

func TestGenerateCap(t *testing.T) {
	policy, store := newScenario(t)
	completeCourse(t, store)
	ctx := context.Background()

	succeeded := 0
	var lastErr error
	for i := 0; i < 3; i++ {
		if _, err := policy.Generate(ctx, c1, "Alice"); err == nil {
			succeeded++
		} else {
			lastErr = err
		}
	}

	assert.Equal(t, 2, succeeded)
	assert.ErrorIs(t, lastErr, ErrGenerationLimitReached)
	assert.Equal(t, 2, store.CertificateCount("c1"))
	assert.False(t, policy.CanGenerate("c1"))
	assert.Zero(t, policy.Remaining("c1"))
}

func TestGenerateRequiresName(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		policy, store := newScenario(t)
		completeCourse(t, store)

		_, err := policy.Generate(context.Background(), c1, name)
		assert.ErrorIs(t, err, ErrStudentNameRequired)
		assert.Zero(t, store.CertificateCount("c1"))
	}

	policy, store := newScenario(t)
	_, err := policy.Generate(context.Background(), c1, " ")
	assert.ErrorIs(t, err, ErrStudentNameRequired)
	assert.Zero(t, store.CertificateCount("c1"))
}

func TestGenerateTrimsName(t *testing.T) {
	policy, store := newScenario(t)
	completeCourse(t, store)

	info, err := policy.Generate(context.Background(), c1, "  Alice Smith ")
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", info.StudentName)
}

func TestGenerateRequiresCompletion(t *testing.T) {
	policy, store := newScenario(t)
	ctx := context.Background()
	require.NoError(t, store.Enroll(ctx, "c1"))
	require.NoError(t, store.CompleteExercise(ctx, "c1", "m1"))
	require.NoError(t, store.CompleteQuiz(ctx, "c1", "m2", 3))

	assert.False(t, policy.IsCourseComplete("c1"))
	_, err := policy.Generate(ctx, c1, "Alice")
	assert.ErrorIs(t, err, ErrCourseIncomplete)
	assert.Zero(t, store.CertificateCount("c1"))
}

func TestIsCourseCompleteIgnoresQuizzes(t *testing.T) {
	policy, store := newScenario(t)
	completeCourse(t, store)

	assert.True(t, policy.IsCourseComplete("c1"))
	assert.False(t, policy.IsCourseComplete("unknown"))
}

type failingCounter struct {
	progress map[string]bool
}

func (f failingCounter) ProgressFor(string) course.CourseProgress { return f.progress }
func (f failingCounter) CertificateCount(string) int             { return 0 }
func (f failingCounter) IncrementCertificateCount(context.Context, string) (int, error) {
	return 0, errors.New("storage down")
}

func TestGeneratePropagatesPersistFailure(t *testing.T) {
	policy := NewPolicy(failingCounter{progress: map[string]bool{"m1": true}}, stubCatalog{"c1": {"m1"}}, 0)

	info, err := policy.Generate(context.Background(), c1, "Alice")
	assert.Error(t, err)
	assert.Nil(t, info)
	assert.Equal(t, DefaultLimit, policy.Limit())
}
