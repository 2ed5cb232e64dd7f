package progress

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"techlearn/database"
	"techlearn/logger"
	"techlearn/models"
	"techlearn/models/course"
)

// ErrNoUser is returned by mutations made while no user is loaded.
var ErrNoUser = errors.New("no user loaded")

// Catalog is the part of the course catalog the store indexes against.
type Catalog interface {
	ModuleIDs(courseID string) []string
}

// Store holds the enrollment, exercise, quiz and certificate state of the loaded user.
// Every mutation is written through to the KV store before it becomes visible; a failed
// write leaves the in-memory state as it was.
type Store struct {
	mu      sync.Mutex
	kv      database.KVStore
	catalog Catalog
	log     *logger.Logger

	user  *models.User
	state snapshot
}

func NewStore(kv database.KVStore, catalog Catalog, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{kv: kv, catalog: catalog, log: log, state: emptySnapshot()}
}

// Load replaces the state with the persisted partition of user. Missing or unreadable
// records load as empty. A KV failure is returned after the state has been replaced.
func (s *Store) Load(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := user.Key()
	next := emptySnapshot()
	var errs []error

	read := func(base string) []byte {
		raw, ok, err := s.kv.Get(ctx, recordKey(base, key))
		if err != nil {
			errs = append(errs, err)
			s.log.Error("Failed to read progress record", "record", base, "user", key, "error", err)
			return nil
		}
		if !ok {
			return nil
		}
		return raw
	}
	discard := func(base string, err error) {
		s.log.Warn("Discarding unreadable progress record", "record", base, "user", key, "error", err)
	}

	if raw := read(enrolledCoursesKey); raw != nil {
		if v, err := decodeAs[[]string](raw); err != nil {
			discard(enrolledCoursesKey, err)
		} else if v != nil {
			next.enrolled = v
		}
	}
	if raw := read(coursesProgressKey); raw != nil {
		if v, err := decodeAs[map[string]course.CourseProgress](raw); err != nil {
			discard(coursesProgressKey, err)
		} else if v != nil {
			next.courses = v
		}
	}
	if raw := read(quizzesProgressKey); raw != nil {
		if v, err := decodeAs[map[string]course.QuizProgress](raw); err != nil {
			discard(quizzesProgressKey, err)
		} else if v != nil {
			next.quizzes = v
		}
	}
	if raw := read(certificateCountKey); raw != nil {
		if v, err := decodeAs[map[string]int](raw); err != nil {
			discard(certificateCountKey, err)
		} else if v != nil {
			next.certs = v
		}
	}

	u := models.User{Email: key}
	s.user = &u
	if migrate(&next, s.catalog.ModuleIDs) && len(errs) == 0 {
		if err := s.persist(ctx, key, next, enrolledCoursesKey, coursesProgressKey, quizzesProgressKey); err != nil {
			s.log.Warn("Failed to store migrated progress", "user", key, "error", err)
		}
	}
	s.state = next

	return errors.Join(errs...)
}

// Reset drops the loaded user and all of its state.
func (s *Store) Reset() {
	s.mu.Lock()
	s.user = nil
	s.state = emptySnapshot()
	s.mu.Unlock()
}

// User returns the loaded user or nil.
func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Enroll adds courseID to the enrollment set and initializes its progress when absent.
// Unknown courses and repeated enrollments are no-ops.
func (s *Store) Enroll(ctx context.Context, courseID string) error {
	return s.mutate(ctx, func(next *snapshot) []string {
		moduleIDs := s.catalog.ModuleIDs(courseID)
		if moduleIDs == nil {
			return nil
		}
		var dirty []string
		if _, ok := next.courses[courseID]; !ok {
			next.courses[courseID] = course.NewCourseProgress(moduleIDs)
			dirty = append(dirty, coursesProgressKey)
		}
		if _, ok := next.quizzes[courseID]; !ok {
			next.quizzes[courseID] = course.NewQuizProgress(moduleIDs)
			dirty = append(dirty, quizzesProgressKey)
		}
		if !next.isEnrolled(courseID) {
			next.enrolled = append(next.enrolled, courseID)
			dirty = append(dirty, enrolledCoursesKey)
		}
		return dirty
	})
}

// CompleteExercise marks the exercise of a module as done. It never clears a completion.
func (s *Store) CompleteExercise(ctx context.Context, courseID, moduleID string) error {
	return s.mutate(ctx, func(next *snapshot) []string {
		p, ok := next.courses[courseID]
		if !ok {
			return nil
		}
		done, ok := p[moduleID]
		if !ok || done {
			return nil
		}
		p[moduleID] = true
		return []string{coursesProgressKey}
	})
}

// CompleteQuiz records score for the module quiz, overwriting any earlier result.
func (s *Store) CompleteQuiz(ctx context.Context, courseID, moduleID string, score int) error {
	return s.mutate(ctx, func(next *snapshot) []string {
		p, ok := next.quizzes[courseID]
		if !ok {
			return nil
		}
		if _, ok := p[moduleID]; !ok {
			return nil
		}
		p[moduleID] = course.QuizResult{Score: score, Completed: true}
		return []string{quizzesProgressKey}
	})
}

// IncrementCertificateCount adds one to the certificate count of courseID and returns
// the new count.
func (s *Store) IncrementCertificateCount(ctx context.Context, courseID string) (int, error) {
	var count int
	err := s.mutate(ctx, func(next *snapshot) []string {
		next.certs[courseID]++
		count = next.certs[courseID]
		return []string{certificateCountKey}
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) ProgressFor(courseID string) course.CourseProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.courses[courseID]
	if !ok {
		return course.CourseProgress{}
	}
	return p.Clone()
}

func (s *Store) QuizProgressFor(courseID string) course.QuizProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.quizzes[courseID]
	if !ok {
		return course.QuizProgress{}
	}
	return p.Clone()
}

func (s *Store) IsEnrolled(courseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.isEnrolled(courseID)
}

// EnrolledCourses returns the enrolled course ids in enrollment order.
func (s *Store) EnrolledCourses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.state.enrolled...)
}

func (s *Store) CertificateCount(courseID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.certs[courseID]
}

// CompletionPercent returns the rounded share of completed exercises of a course.
func (s *Store) CompletionPercent(courseID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.state.courses[courseID]
	if len(p) == 0 {
		return 0
	}
	return int(math.Round(float64(p.CompletedCount()) * 100 / float64(len(p))))
}

// mutate applies fn to a copy of the state, writes the records fn reports as dirty and
// commits the copy once every write has succeeded.
func (s *Store) mutate(ctx context.Context, fn func(next *snapshot) []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return ErrNoUser
	}
	next := s.state.clone()
	dirty := fn(&next)
	if len(dirty) == 0 {
		return nil
	}
	if err := s.persist(ctx, s.user.Key(), next, dirty...); err != nil {
		return err
	}
	s.state = next
	return nil
}

// persist writes whole records. Progress maps go before the enrollment set so an
// interrupted write never leaves an enrolled course without progress.
func (s *Store) persist(ctx context.Context, userKey string, snap snapshot, records ...string) error {
	order := []string{coursesProgressKey, quizzesProgressKey, certificateCountKey, enrolledCoursesKey}
	want := make(map[string]bool, len(records))
	for _, r := range records {
		want[r] = true
	}

	for _, base := range order {
		if !want[base] {
			continue
		}
		var v interface{}
		switch base {
		case enrolledCoursesKey:
			v = snap.enrolled
		case coursesProgressKey:
			v = snap.courses
		case quizzesProgressKey:
			v = snap.quizzes
		case certificateCountKey:
			v = snap.certs
		}
		raw, err := encodeRecord(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", base, err)
		}
		if err := s.kv.Put(ctx, recordKey(base, userKey), raw); err != nil {
			return fmt.Errorf("persist %s: %w", base, err)
		}
	}
	return nil
}
