// Package catalog holds the static curriculum: lesson metadata and the
// embedded question bank that backs offline arena play.
package catalog

// LessonMeta describes one journey in the fixed curriculum. IDs are
// 1-based, dense, and ordered; the catalog is read-only at runtime.
type LessonMeta struct {
	ID          int
	Title       string
	Description string
	Topic       string
	Difficulty  int
}

var lessonMeta = []LessonMeta{
	{ID: 1, Title: "Algebra Training", Description: "Delve into the dimension of variables", Topic: "algebra", Difficulty: 1},
	{ID: 2, Title: "Algebra Mastery", Description: "Become the master of the math alphabet", Topic: "algebra", Difficulty: 2},
	{ID: 3, Title: "Geometry Training", Description: "Get into the details with shapes and logic", Topic: "geometry", Difficulty: 1},
	{ID: 4, Title: "Geometry Mastery", Description: "Intricate shapes will be no match for you", Topic: "geometry", Difficulty: 2},
	{ID: 5, Title: "Trigonometry Training", Description: "Circles and triangles just locked in", Topic: "trigonometry", Difficulty: 1},
	{ID: 6, Title: "Trigonometry Mastery", Description: "See the world in sine, cosine, and tangent", Topic: "trigonometry", Difficulty: 2},
}

// Lessons returns the full ordered curriculum.
func Lessons() []LessonMeta {
	out := make([]LessonMeta, len(lessonMeta))
	copy(out, lessonMeta)
	return out
}

// LessonByID looks up a lesson by its 1-based id.
func LessonByID(id int) (LessonMeta, bool) {
	for _, l := range lessonMeta {
		if l.ID == id {
			return l, true
		}
	}
	return LessonMeta{}, false
}

// LessonCount is the number of journeys in the curriculum.
func LessonCount() int {
	return len(lessonMeta)
}

// Topics returns the distinct lesson topics in curriculum order.
func Topics() []string {
	seen := make(map[string]bool, len(lessonMeta))
	var out []string
	for _, l := range lessonMeta {
		if !seen[l.Topic] {
			seen[l.Topic] = true
			out = append(out, l.Topic)
		}
	}
	return out
}
