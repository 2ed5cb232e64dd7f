package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"techlearn/models/course"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed courses.yaml
var embeddedCourses []byte

var (
	ErrIncompleteAnswers = errors.New("all questions must be answered")
	ErrInvalidCatalog    = errors.New("invalid course catalog")
)

// Default is the catalog served by the HTTP layer. It is set once at startup.
var Default *Catalog

// Catalog is the read-only set of courses. It is safe for concurrent use.
type Catalog struct {
	courses []course.Course
	index   map[string]int
}

type document struct {
	Courses []course.Course `yaml:"courses" validate:"required,min=1,dive"`
}

// Init loads the catalog from path, or from the embedded document when path is empty,
// and installs it as Default.
func Init(path string) error {
	c, err := Load(path)
	if err != nil {
		return err
	}
	Default = c
	return nil
}

func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(embeddedCourses)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := validator.New().Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return New(doc.Courses)
}

// New builds a catalog from courses, checking id uniqueness and answer indexes.
func New(courses []course.Course) (*Catalog, error) {
	c := &Catalog{
		courses: make([]course.Course, len(courses)),
		index:   make(map[string]int, len(courses)),
	}
	copy(c.courses, courses)

	for i, crs := range c.courses {
		if _, dup := c.index[crs.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate course id %q", ErrInvalidCatalog, crs.ID)
		}
		c.index[crs.ID] = i

		modules := make(map[string]struct{}, len(crs.Modules))
		for _, m := range crs.Modules {
			if _, dup := modules[m.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate module id %q in course %q", ErrInvalidCatalog, m.ID, crs.ID)
			}
			modules[m.ID] = struct{}{}
			for _, q := range m.Quiz.Questions {
				if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
					return nil, fmt.Errorf("%w: question %q of module %q has answer index %d out of range",
						ErrInvalidCatalog, q.ID, m.ID, q.CorrectAnswerIndex)
				}
			}
		}
	}
	return c, nil
}

// All returns the courses in catalog order.
func (c *Catalog) All() []course.Course {
	out := make([]course.Course, len(c.courses))
	copy(out, c.courses)
	return out
}

func (c *Catalog) Course(id string) (course.Course, bool) {
	i, ok := c.index[id]
	if !ok {
		return course.Course{}, false
	}
	return c.courses[i], true
}

func (c *Catalog) Module(courseID, moduleID string) (course.Module, bool) {
	crs, ok := c.Course(courseID)
	if !ok {
		return course.Module{}, false
	}
	return crs.Module(moduleID)
}

// ModuleIDs returns the module ids of a course in order, or nil for an unknown course.
func (c *Catalog) ModuleIDs(courseID string) []string {
	crs, ok := c.Course(courseID)
	if !ok {
		return nil
	}
	return crs.ModuleIDs()
}

// Grade scores a quiz submission keyed by question id. Every question must be answered;
// an answer outside the option range counts as wrong.
func Grade(quiz course.Quiz, answers map[string]int) (int, error) {
	score := 0
	for _, q := range quiz.Questions {
		answer, ok := answers[q.ID]
		if !ok {
			return 0, ErrIncompleteAnswers
		}
		if answer == q.CorrectAnswerIndex {
			score++
		}
	}
	return score, nil
}
