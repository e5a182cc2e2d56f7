package domain

// Course is a catalog record. Courses are loaded once and never modified.
type Course struct {
	ID            string   `json:"id" yaml:"id" db:"id"`
	Title         string   `json:"title" yaml:"title" db:"title"`
	Credits       int      `json:"credits" yaml:"credits" db:"credits"`
	Prerequisites []string `json:"prerequisites" yaml:"prerequisites" db:"prerequisites"`
	Description   string   `json:"description,omitempty" yaml:"description" db:"description"`
	Tags          []string `json:"tags,omitempty" yaml:"tags" db:"tags"`
	Subjects      []string `json:"subjects,omitempty" yaml:"subjects" db:"subjects"`
	Difficulty    int      `json:"difficulty,omitempty" yaml:"difficulty" db:"difficulty"`
	Semester      int      `json:"semester,omitempty" yaml:"semester" db:"semester"`
}

// DefaultDifficulty is assumed when a course does not declare one.
const DefaultDifficulty = 3

// DifficultyOrDefault returns the declared difficulty or DefaultDifficulty
func (c Course) DifficultyOrDefault() int {
	if c.Difficulty <= 0 {
		return DefaultDifficulty
	}
	return c.Difficulty
}

// HasTag reports whether the course carries the career tag
func (c Course) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasSubject reports whether the course belongs to the subject family
func (c Course) HasSubject(subject string) bool {
	for _, s := range c.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// Ref returns the compact reference used inside plans
func (c Course) Ref() CourseRef {
	return CourseRef{ID: c.ID, Title: c.Title, Credits: c.Credits}
}

// CourseRef points to a catalog course from a plan term
type CourseRef struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Credits int    `json:"credits"`
}
