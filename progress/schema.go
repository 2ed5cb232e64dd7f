package progress

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"techlearn/models/course"
)

const schemaVersion = 1

// Record key bases. The user key is appended as "<base>_<email>".
const (
	enrolledCoursesKey  = "enrolledCourses"
	coursesProgressKey  = "coursesProgress"
	quizzesProgressKey  = "quizzesProgress"
	certificateCountKey = "certificateGenerationCount"
)

var errUnsupportedVersion = errors.New("unsupported record version")

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

func recordKey(base, userKey string) string {
	return base + "_" + userKey
}

func encodeRecord(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Version: schemaVersion, Data: data})
}

// decodeRecord reads a versioned record. Bare JSON written before records were
// versioned is read as version 0.
func decodeRecord(raw []byte, v interface{}) error {
	raw = bytes.TrimSpace(raw)
	if data, version, ok := unwrap(raw); ok {
		if version > schemaVersion {
			return fmt.Errorf("%w: %d", errUnsupportedVersion, version)
		}
		raw = data
	}
	return json.Unmarshal(raw, v)
}

func decodeAs[T any](raw []byte) (T, error) {
	var v T
	if err := decodeRecord(raw, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func unwrap(raw []byte) (json.RawMessage, int, bool) {
	if len(raw) == 0 || raw[0] != '{' {
		return nil, 0, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) != 2 {
		return nil, 0, false
	}
	data, hasData := fields["data"]
	rawVersion, hasVersion := fields["version"]
	if !hasData || !hasVersion {
		return nil, 0, false
	}
	var version int
	if err := json.Unmarshal(rawVersion, &version); err != nil {
		return nil, 0, false
	}
	return data, version, true
}

// snapshot is the whole learning state of one user.
type snapshot struct {
	enrolled []string
	courses  map[string]course.CourseProgress
	quizzes  map[string]course.QuizProgress
	certs    map[string]int
}

func emptySnapshot() snapshot {
	return snapshot{
		enrolled: []string{},
		courses:  map[string]course.CourseProgress{},
		quizzes:  map[string]course.QuizProgress{},
		certs:    map[string]int{},
	}
}

func (s snapshot) clone() snapshot {
	out := snapshot{
		enrolled: append([]string{}, s.enrolled...),
		courses:  make(map[string]course.CourseProgress, len(s.courses)),
		quizzes:  make(map[string]course.QuizProgress, len(s.quizzes)),
		certs:    make(map[string]int, len(s.certs)),
	}
	for id, p := range s.courses {
		out.courses[id] = p.Clone()
	}
	for id, p := range s.quizzes {
		out.quizzes[id] = p.Clone()
	}
	for id, n := range s.certs {
		out.certs[id] = n
	}
	return out
}

func (s snapshot) isEnrolled(courseID string) bool {
	for _, id := range s.enrolled {
		if id == courseID {
			return true
		}
	}
	return false
}

// migrate brings a loaded snapshot in line with the catalog. Duplicate enrollments are
// collapsed, progress of courses that are not enrolled is dropped, and progress maps of
// enrolled courses gain entries for new modules and lose entries for removed ones.
// It reports whether anything changed.
func migrate(s *snapshot, moduleIDs func(courseID string) []string) bool {
	changed := false

	seen := make(map[string]struct{}, len(s.enrolled))
	enrolled := make([]string, 0, len(s.enrolled))
	for _, id := range s.enrolled {
		if _, dup := seen[id]; dup {
			changed = true
			continue
		}
		seen[id] = struct{}{}
		enrolled = append(enrolled, id)
	}
	s.enrolled = enrolled

	for id := range s.courses {
		if _, ok := seen[id]; !ok {
			delete(s.courses, id)
			changed = true
		}
	}
	for id := range s.quizzes {
		if _, ok := seen[id]; !ok {
			delete(s.quizzes, id)
			changed = true
		}
	}

	for _, courseID := range s.enrolled {
		ids := moduleIDs(courseID)
		if ids == nil {
			continue
		}
		if fillCourse(s, courseID, ids) {
			changed = true
		}
	}
	return changed
}

func fillCourse(s *snapshot, courseID string, moduleIDs []string) bool {
	changed := false
	valid := make(map[string]struct{}, len(moduleIDs))
	for _, id := range moduleIDs {
		valid[id] = struct{}{}
	}

	cp, ok := s.courses[courseID]
	if !ok || cp == nil {
		cp = course.CourseProgress{}
		s.courses[courseID] = cp
		changed = true
	}
	qp, ok := s.quizzes[courseID]
	if !ok || qp == nil {
		qp = course.QuizProgress{}
		s.quizzes[courseID] = qp
		changed = true
	}

	for _, id := range moduleIDs {
		if _, ok := cp[id]; !ok {
			cp[id] = false
			changed = true
		}
		if _, ok := qp[id]; !ok {
			qp[id] = course.QuizResult{}
			changed = true
		}
	}
	for id := range cp {
		if _, ok := valid[id]; !ok {
			delete(cp, id)
			changed = true
		}
	}
	for id := range qp {
		if _, ok := valid[id]; !ok {
			delete(qp, id)
			changed = true
		}
	}
	return changed
}
