package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/acadvisor/acadvisor/internal/domain"
	apperrors "github.com/acadvisor/acadvisor/internal/pkg/errors"
)

// Store is read access to the course catalog
type Store interface {
	// Loaded reports whether a catalog is available. Every other method
	// returns empty results when it is not.
	Loaded() bool
	Get(id string) (domain.Course, bool)
	All() []domain.Course
	BySubject(subject string) []domain.Course
	ByTag(tag string) []domain.Course
	Len() int
}

// Catalog is an immutable, validated set of courses with lookup indexes.
// It is safe for concurrent reads without locking.
type Catalog struct {
	loaded    bool
	courses   []domain.Course
	byID      map[string]int
	bySubject map[string][]int
	byTag     map[string][]int
}

var _ Store = (*Catalog)(nil)

// New validates courses and builds the indexes. IDs are normalised to upper
// case and courses are kept in ID order.
func New(courses []domain.Course) (*Catalog, error) {
	c := &Catalog{
		loaded:    true,
		courses:   make([]domain.Course, 0, len(courses)),
		byID:      make(map[string]int, len(courses)),
		bySubject: make(map[string][]int),
		byTag:     make(map[string][]int),
	}

	for _, course := range courses {
		course = normalize(course)
		if course.ID == "" {
			return nil, fmt.Errorf("course with title %q has no id", course.Title)
		}
		if course.Credits <= 0 {
			return nil, fmt.Errorf("course %s: credits must be positive", course.ID)
		}
		if course.Difficulty < 0 || course.Difficulty > 5 {
			return nil, fmt.Errorf("course %s: difficulty must be between 1 and 5", course.ID)
		}
		if _, dup := c.byID[course.ID]; dup {
			return nil, fmt.Errorf("duplicate course id %s", course.ID)
		}
		c.byID[course.ID] = -1
		c.courses = append(c.courses, course)
	}

	sort.Slice(c.courses, func(i, j int) bool { return c.courses[i].ID < c.courses[j].ID })

	for i, course := range c.courses {
		c.byID[course.ID] = i
		for _, s := range course.Subjects {
			c.bySubject[s] = append(c.bySubject[s], i)
		}
		for _, t := range course.Tags {
			c.byTag[t] = append(c.byTag[t], i)
		}
	}

	for _, course := range c.courses {
		for _, p := range course.Prerequisites {
			if _, ok := c.byID[p]; !ok {
				return nil, fmt.Errorf("course %s: unknown prerequisite %s", course.ID, p)
			}
			if p == course.ID {
				return nil, fmt.Errorf("course %s lists itself as a prerequisite", course.ID)
			}
		}
	}

	return c, nil
}

// Unloaded returns a catalog that reports STORE_UNAVAILABLE to its callers
func Unloaded() *Catalog {
	return &Catalog{}
}

func normalize(c domain.Course) domain.Course {
	c.ID = NormalizeID(c.ID)
	c.Title = strings.TrimSpace(c.Title)
	prereqs := make([]string, 0, len(c.Prerequisites))
	for _, p := range c.Prerequisites {
		if p = NormalizeID(p); p != "" {
			prereqs = append(prereqs, p)
		}
	}
	c.Prerequisites = prereqs
	c.Tags = lowerAll(c.Tags)
	c.Subjects = lowerAll(c.Subjects)
	return c
}

func lowerAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// NormalizeID upper-cases a course code and strips surrounding space
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Loaded reports whether the catalog holds data
func (c *Catalog) Loaded() bool {
	return c != nil && c.loaded
}

// Get returns a course by ID, case-insensitively
func (c *Catalog) Get(id string) (domain.Course, bool) {
	if !c.Loaded() {
		return domain.Course{}, false
	}
	i, ok := c.byID[NormalizeID(id)]
	if !ok {
		return domain.Course{}, false
	}
	return c.courses[i], true
}

// All returns every course in ID order. The slice is a copy.
func (c *Catalog) All() []domain.Course {
	if !c.Loaded() {
		return nil
	}
	return append([]domain.Course(nil), c.courses...)
}

// BySubject returns courses belonging to a subject family
func (c *Catalog) BySubject(subject string) []domain.Course {
	if !c.Loaded() {
		return nil
	}
	return c.pick(c.bySubject[strings.ToLower(subject)])
}

// ByTag returns courses carrying a career tag
func (c *Catalog) ByTag(tag string) []domain.Course {
	if !c.Loaded() {
		return nil
	}
	return c.pick(c.byTag[strings.ToLower(tag)])
}

func (c *Catalog) pick(idx []int) []domain.Course {
	out := make([]domain.Course, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.courses[i])
	}
	return out
}

// Len returns the number of courses
func (c *Catalog) Len() int {
	if !c.Loaded() {
		return 0
	}
	return len(c.courses)
}

// EnsureLoaded returns STORE_UNAVAILABLE when the store has no data
func EnsureLoaded(s Store) error {
	if s == nil || !s.Loaded() {
		return apperrors.StoreUnavailable("course catalog is not loaded")
	}
	return nil
}
