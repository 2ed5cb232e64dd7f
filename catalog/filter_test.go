package catalog

import (
	"testing"

	"techlearn/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(courses []course.Course) []string {
	out := make([]string, 0, len(courses))
	for _, c := range courses {
		out = append(out, c.ID)
	}
	return out
}

func TestFilteredCourses(t *testing.T) {
	c, err := New([]course.Course{
		testCourse("web", "Web", "X", "m1"),
		testCourse("py", "Python", "Y", "m1"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"web", "py"}, ids(c.FilteredCourses("", "")))
	assert.Equal(t, []string{"web"}, ids(c.FilteredCourses("Web", "")))
	assert.Empty(t, c.FilteredCourses("Java", ""))
	assert.Equal(t, []string{"py"}, ids(c.FilteredCourses("", "Y")))
	assert.Empty(t, c.FilteredCourses("Web", "Y"))
}

func TestDistinctInFirstOccurrenceOrder(t *testing.T) {
	c, err := New([]course.Course{
		testCourse("a", "Python", "Y", "m1"),
		testCourse("b", "Web", "X", "m1"),
		testCourse("c", "Python", "X", "m1"),
		testCourse("d", "Java", "Z", "m1"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Python", "Web", "Java"}, c.Categories())
	assert.Equal(t, []string{"Y", "X", "Z"}, c.Instructors())
}

func TestFilterResetAndApply(t *testing.T) {
	c, err := New([]course.Course{
		testCourse("web", "Web", "X", "m1"),
		testCourse("py", "Python", "Y", "m1"),
	})
	require.NoError(t, err)

	f := Filter{Category: "Python", Instructor: "Y"}
	assert.Equal(t, []string{"py"}, ids(f.Apply(c)))

	f.Reset()
	assert.Equal(t, Filter{}, f)
	assert.Len(t, f.Apply(c), 2)
}

func TestEmbeddedFilters(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"Web Development", "Python", "Java", "Full Stack"}, c.Categories())
	assert.Equal(t, []string{"Prem Kumar", "Naveen Antony", "Dinesh", "John"}, c.Instructors())
}
