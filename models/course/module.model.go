package course

// Module represents a unit of a course: a lesson, one coding exercise and one quiz.
type Module struct {
	ID               string   `json:"id" yaml:"id" validate:"required"`
	Title            string   `json:"title" yaml:"title" validate:"required"`
	ShortDescription string   `json:"short_description" yaml:"shortDescription"`
	LongDescription  string   `json:"long_description" yaml:"longDescription"`
	ExampleCode      string   `json:"example_code" yaml:"exampleCode"`
	VideoURL         string   `json:"video_url,omitempty" yaml:"videoUrl"`
	Exercise         Exercise `json:"exercise" yaml:"exercise"`
	Quiz             Quiz     `json:"quiz" yaml:"quiz"`
}

// Exercise is the coding exercise of a module.
type Exercise struct {
	ID                string `json:"id" yaml:"id" validate:"required"`
	Title             string `json:"title" yaml:"title"`
	Question          string `json:"question" yaml:"question"`
	InitialCode       string `json:"initial_code" yaml:"initialCode"`
	Hint              string `json:"hint" yaml:"hint"`
	DocumentationLink string `json:"documentation_link" yaml:"documentationLink"`
}
