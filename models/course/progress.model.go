package course

// CourseProgress maps module id to whether the module's exercise is completed.
type CourseProgress map[string]bool

// QuizResult is the recorded outcome of a module quiz.
type QuizResult struct {
	Score     int  `json:"score"`
	Completed bool `json:"completed"`
}

// QuizProgress maps module id to the module's quiz result.
type QuizProgress map[string]QuizResult

// NewCourseProgress returns progress with every module marked incomplete.
func NewCourseProgress(moduleIDs []string) CourseProgress {
	p := make(CourseProgress, len(moduleIDs))
	for _, id := range moduleIDs {
		p[id] = false
	}
	return p
}

// NewQuizProgress returns quiz progress with every module at {0, false}.
func NewQuizProgress(moduleIDs []string) QuizProgress {
	p := make(QuizProgress, len(moduleIDs))
	for _, id := range moduleIDs {
		p[id] = QuizResult{}
	}
	return p
}

func (p CourseProgress) Clone() CourseProgress {
	out := make(CourseProgress, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func (p QuizProgress) Clone() QuizProgress {
	out := make(QuizProgress, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// CompletedCount returns the number of completed exercises.
func (p CourseProgress) CompletedCount() int {
	n := 0
	for _, done := range p {
		if done {
			n++
		}
	}
	return n
}
