package service

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/acadvisor/acadvisor/internal/catalog"
	"github.com/acadvisor/acadvisor/internal/domain"
)

// Search weights
const (
	scoreCode        = 10
	scoreTitle       = 3
	scoreSubjectTag  = 2
	scoreDescription = 1
)

// SearchFilters narrows a course search
type SearchFilters struct {
	MaxCredits *int
	CareerTag  string
	// Limit caps the result; zero returns every match.
	Limit int
}

var (
	tokenRe = regexp.MustCompile(`[a-z0-9]+`)

	stopWords = map[string]bool{
		"a": true, "an": true, "the": true, "and": true, "or": true, "of": true, "for": true,
		"in": true, "on": true, "to": true, "with": true, "me": true, "i": true, "my": true,
		"is": true, "are": true, "what": true, "which": true, "about": true, "tell": true,
		"explain": true, "describe": true, "show": true, "list": true, "find": true, "search": true,
		"course": true, "courses": true, "module": true, "modules": true, "class": true, "classes": true,
		"give": true, "please": true, "some": true, "any": true, "do": true, "does": true, "can": true,
		"should": true, "take": true, "available": true, "related": true, "there": true, "you": true,
		"overview": true, "at": true, "most": true, "credits": true, "credit": true, "per": true,
		"semester": true, "term": true,
	}
)

// CourseService searches the catalog
type CourseService struct {
	store  catalog.Store
	logger *zap.Logger
}

// NewCourseService creates a new course service
func NewCourseService(store catalog.Store, logger *zap.Logger) *CourseService {
	return &CourseService{store: store, logger: logger}
}

type scoredCourse struct {
	course domain.Course
	score  int
}

// Search scores every course against the query tokens. Only courses with a
// positive score are returned, best first and then by ID.
func (s *CourseService) Search(ctx context.Context, query string, filters SearchFilters) ([]domain.Course, error) {
	if err := catalog.EnsureLoaded(s.store); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := searchTokens(query)
	if len(tokens) == 0 {
		return []domain.Course{}, nil
	}

	// Token to subject family keys
	subjectHits := make(map[string][]string)
	for _, tok := range tokens {
		subjectHits[tok] = MatchSubjects(tok)
	}

	var scored []scoredCourse
	for _, c := range s.store.All() {
		if !filters.accepts(c) {
			continue
		}
		if score := scoreCourse(c, tokens, subjectHits); score > 0 {
			scored = append(scored, scoredCourse{course: c, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].course.ID < scored[j].course.ID
	})

	if filters.Limit > 0 && len(scored) > filters.Limit {
		scored = scored[:filters.Limit]
	}

	out := make([]domain.Course, len(scored))
	for i, sc := range scored {
		out[i] = sc.course
	}

	s.logger.Debug("course search",
		zap.Strings("tokens", tokens),
		zap.Int("matches", len(out)),
	)
	return out, nil
}

// ByCareerTag returns every course carrying the career tag, in ID order
func (s *CourseService) ByCareerTag(ctx context.Context, tag string, maxCredits *int) ([]domain.Course, error) {
	if err := catalog.EnsureLoaded(s.store); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filters := SearchFilters{MaxCredits: maxCredits}
	out := []domain.Course{}
	for _, c := range s.store.ByTag(tag) {
		if filters.accepts(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SubjectSummary describes one subject family for listing
type SubjectSummary struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Keywords    []string `json:"keywords"`
	Explanation string   `json:"explanation"`
	CourseCount int      `json:"courseCount"`
}

// Subjects lists the subject families with their catalog course counts
func (s *CourseService) Subjects(ctx context.Context) ([]SubjectSummary, error) {
	if err := catalog.EnsureLoaded(s.store); err != nil {
		return nil, err
	}

	out := make([]SubjectSummary, 0, len(domain.SubjectFamilies))
	for _, f := range domain.SubjectFamilies {
		out = append(out, SubjectSummary{
			Key:         f.Key,
			Name:        f.Name,
			Keywords:    append([]string(nil), f.Keywords...),
			Explanation: f.Explanation,
			CourseCount: len(s.store.BySubject(f.Key)),
		})
	}
	return out, nil
}

func (f SearchFilters) accepts(c domain.Course) bool {
	if f.MaxCredits != nil && c.Credits > *f.MaxCredits {
		return false
	}
	if f.CareerTag != "" && !c.HasTag(strings.ToLower(f.CareerTag)) {
		return false
	}
	return true
}

// searchTokens lowercases the query, joins spaced course codes and drops stop words
func searchTokens(query string) []string {
	q := strings.ToLower(query)
	codes := CourseCodes(q)
	q = courseCodeRe.ReplaceAllString(q, " ")
	for _, code := range codes {
		q += " " + strings.ToLower(code)
	}

	var tokens []string
	seen := make(map[string]bool)
	for _, tok := range tokenRe.FindAllString(q, -1) {
		if stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}
	return tokens
}

func scoreCourse(c domain.Course, tokens []string, subjectHits map[string][]string) int {
	title := tokenSet(c.Title)
	description := tokenSet(c.Description)

	score := 0
	for _, tok := range tokens {
		if strings.ToUpper(tok) == c.ID {
			score += scoreCode
		}
		if title[tok] {
			score += scoreTitle
		}
		if matchesSubjectOrTag(c, tok, subjectHits[tok]) {
			score += scoreSubjectTag
		}
		if description[tok] {
			score += scoreDescription
		}
	}
	return score
}

func matchesSubjectOrTag(c domain.Course, tok string, subjects []string) bool {
	for _, key := range subjects {
		if c.HasSubject(key) {
			return true
		}
	}
	for _, tag := range c.Tags {
		for _, part := range strings.Split(tag, "_") {
			if part == tok {
				return true
			}
		}
	}
	return false
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		set[tok] = true
	}
	return set
}
