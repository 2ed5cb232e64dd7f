package course

// Course represents a learning course. Courses come from the static catalog and are
// immutable at runtime.
type Course struct {
	ID              string   `json:"id" yaml:"id" validate:"required"`
	Title           string   `json:"title" yaml:"title" validate:"required"`
	Description     string   `json:"description" yaml:"description"`
	LongDescription string   `json:"long_description" yaml:"longDescription"`
	Instructor      string   `json:"instructor" yaml:"instructor" validate:"required"`
	ImageURL        string   `json:"image_url" yaml:"imageUrl"`
	Category        string   `json:"category" yaml:"category" validate:"required"`
	Modules         []Module `json:"modules" yaml:"modules" validate:"required,min=1,dive"`
}

// ModuleIDs returns the ids of the course modules in order.
func (c Course) ModuleIDs() []string {
	ids := make([]string, 0, len(c.Modules))
	for _, m := range c.Modules {
		ids = append(ids, m.ID)
	}
	return ids
}

// Module looks up a module of the course by id.
func (c Course) Module(moduleID string) (Module, bool) {
	for _, m := range c.Modules {
		if m.ID == moduleID {
			return m, true
		}
	}
	return Module{}, false
}

// Summary is the course without module bodies, used for listings.
type Summary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Instructor  string `json:"instructor"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
	ModuleCount int    `json:"module_count"`
}

func (c Course) Summary() Summary {
	return Summary{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Instructor:  c.Instructor,
		ImageURL:    c.ImageURL,
		Category:    c.Category,
		ModuleCount: len(c.Modules),
	}
}
