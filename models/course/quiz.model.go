package course

// Quiz is the multiple choice quiz of a module.
type Quiz struct {
	ID        string     `json:"id" yaml:"id" validate:"required"`
	Questions []Question `json:"questions" yaml:"questions" validate:"dive"`
}

// Question is a single multiple choice question.
type Question struct {
	ID                 string   `json:"id" yaml:"id" validate:"required"`
	QuestionText       string   `json:"question_text" yaml:"questionText" validate:"required"`
	Options            []string `json:"options" yaml:"options" validate:"min=2"`
	CorrectAnswerIndex int      `json:"-" yaml:"correctAnswerIndex" validate:"gte=0"`
}
