package catalog

import "techlearn/models/course"

// Categories returns the distinct course categories in first-occurrence order.
func (c *Catalog) Categories() []string {
	return distinct(c.courses, func(crs course.Course) string { return crs.Category })
}

// Instructors returns the distinct instructors in first-occurrence order.
func (c *Catalog) Instructors() []string {
	return distinct(c.courses, func(crs course.Course) string { return crs.Instructor })
}

// FilteredCourses returns the courses matching both filters. An empty filter matches
// every course.
func (c *Catalog) FilteredCourses(category, instructor string) []course.Course {
	out := make([]course.Course, 0, len(c.courses))
	for _, crs := range c.courses {
		if category != "" && crs.Category != category {
			continue
		}
		if instructor != "" && crs.Instructor != instructor {
			continue
		}
		out = append(out, crs)
	}
	return out
}

// Filter holds the two transient filter selections of the course list.
type Filter struct {
	Category   string `query:"category" json:"category"`
	Instructor string `query:"instructor" json:"instructor"`
}

func (f *Filter) Reset() {
	f.Category = ""
	f.Instructor = ""
}

// Apply returns the courses of c that match f.
func (f Filter) Apply(c *Catalog) []course.Course {
	return c.FilteredCourses(f.Category, f.Instructor)
}

func distinct(courses []course.Course, field func(course.Course) string) []string {
	seen := make(map[string]struct{}, len(courses))
	out := make([]string, 0, len(courses))
	for _, crs := range courses {
		v := field(crs)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
