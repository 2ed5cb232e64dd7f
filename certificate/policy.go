package certificate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"techlearn/models/course"

	"github.com/google/uuid"
)

// DateLayout is the completion date format printed on certificates.
const DateLayout = "January 2, 2006 at 03:04 PM"

// DefaultLimit is the number of certificates a user may generate per course.
const DefaultLimit = 2

var (
	ErrStudentNameRequired    = errors.New("student name is required")
	ErrCourseIncomplete       = errors.New("course is not complete")
	ErrGenerationLimitReached = errors.New("certificate generation limit reached")
)

// ProgressSource is the progress state the policy reads and the counter it bumps.
type ProgressSource interface {
	ProgressFor(courseID string) course.CourseProgress
	CertificateCount(courseID string) int
	IncrementCertificateCount(ctx context.Context, courseID string) (int, error)
}

// Catalog lists the modules a course needs for completion.
type Catalog interface {
	ModuleIDs(courseID string) []string
}

// Policy decides when a certificate may be issued and issues it.
type Policy struct {
	mu       sync.Mutex
	progress ProgressSource
	catalog  Catalog
	limit    int
	now      func() time.Time
}

func NewPolicy(progress ProgressSource, catalog Catalog, limit int) *Policy {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Policy{progress: progress, catalog: catalog, limit: limit, now: time.Now}
}

// WithClock replaces the clock used for completion dates.
func (p *Policy) WithClock(now func() time.Time) *Policy {
	p.now = now
	return p
}

func (p *Policy) Limit() int {
	return p.limit
}

func (p *Policy) CanGenerate(courseID string) bool {
	return p.progress.CertificateCount(courseID) < p.limit
}

// Remaining returns how many more certificates may be generated for courseID.
func (p *Policy) Remaining(courseID string) int {
	n := p.limit - p.progress.CertificateCount(courseID)
	if n < 0 {
		return 0
	}
	return n
}

// IsCourseComplete reports whether every module exercise of the course is done. Quiz
// results do not count.
func (p *Policy) IsCourseComplete(courseID string) bool {
	moduleIDs := p.catalog.ModuleIDs(courseID)
	if len(moduleIDs) == 0 {
		return false
	}
	progress := p.progress.ProgressFor(courseID)
	for _, id := range moduleIDs {
		if !progress[id] {
			return false
		}
	}
	return true
}

// Generate issues a certificate for crs. A refusal never changes the generation count.
func (p *Policy) Generate(ctx context.Context, crs course.Course, studentName string) (*course.CertificateInfo, error) {
	name := strings.TrimSpace(studentName)
	if name == "" {
		return nil, ErrStudentNameRequired
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.IsCourseComplete(crs.ID) {
		return nil, ErrCourseIncomplete
	}
	if !p.CanGenerate(crs.ID) {
		return nil, ErrGenerationLimitReached
	}

	issuedAt := p.now()
	if _, err := p.progress.IncrementCertificateCount(ctx, crs.ID); err != nil {
		return nil, err
	}

	return &course.CertificateInfo{
		StudentName:    name,
		CourseTitle:    crs.Title,
		CompletionDate: issuedAt.Format(DateLayout),
		CourseCategory: crs.Category,
		Number:         certificateNumber(),
	}, nil
}

func certificateNumber() string {
	return "TL-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
