package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/acadvisor/acadvisor/internal/catalog"
	"github.com/acadvisor/acadvisor/internal/domain"
	apperrors "github.com/acadvisor/acadvisor/internal/pkg/errors"
)

// DefaultMaxCreditsPerTerm applies when no per-term cap is configured
const DefaultMaxCreditsPerTerm = 20

// PlanningService builds semester plans from the catalog's prerequisite graph
type PlanningService struct {
	store             catalog.Store
	maxCreditsPerTerm int
	logger            *zap.Logger
}

// NewPlanningService creates a new planning service
func NewPlanningService(store catalog.Store, maxCreditsPerTerm int, logger *zap.Logger) *PlanningService {
	if maxCreditsPerTerm <= 0 {
		maxCreditsPerTerm = DefaultMaxCreditsPerTerm
	}
	return &PlanningService{store: store, maxCreditsPerTerm: maxCreditsPerTerm, logger: logger}
}

// CreditCap returns the per-term cap for a requested target load
func (s *PlanningService) CreditCap(targetCredits int) int {
	if targetCredits > 0 && targetCredits < s.maxCreditsPerTerm {
		return targetCredits
	}
	return s.maxCreditsPerTerm
}

// Plan orders the required courses into terms.
//
// With target courses the required set is the targets plus their transitive
// prerequisites, and anything that cannot be placed in the remaining terms
// is an INFEASIBLE_PLAN error. Without targets every course not yet
// completed is a candidate and the plan fills what it can.
func (s *PlanningService) Plan(ctx context.Context, bg domain.Background) (*domain.SemesterPlan, error) {
	if err := catalog.EnsureLoaded(s.store); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bg.MaxTermsRemaining <= 0 {
		return nil, apperrors.InvalidInput("terms remaining must be positive")
	}
	if bg.TargetCredits < 0 {
		return nil, apperrors.InvalidInput("target credits must not be negative")
	}

	completed, err := s.resolve(bg.CompletedCourses)
	if err != nil {
		return nil, err
	}
	targets, err := s.resolveList(bg.TargetCourses)
	if err != nil {
		return nil, err
	}

	creditCap := s.CreditCap(bg.TargetCredits)
	strict := len(targets) > 0

	var required map[string]domain.Course
	if strict {
		required = s.closure(targets, completed)
	} else {
		required = make(map[string]domain.Course)
		for _, c := range s.store.All() {
			if !completed[c.ID] {
				required[c.ID] = c
			}
		}
	}

	depth, err := depths(required, strict)
	if err != nil {
		return nil, err
	}

	if strict {
		for _, id := range byDepth(keys(required), depth) {
			c := required[id]
			if c.Credits > creditCap {
				return nil, apperrors.InfeasiblePlan(id,
					fmt.Sprintf("%s carries %d credits, above the per-term cap of %d", id, c.Credits, creditCap))
			}
		}
		// Every required course is a prerequisite of some target, so the
		// targets are the deepest.
		for _, id := range targets {
			if d, ok := depth[id]; ok && d > bg.MaxTermsRemaining {
				return nil, apperrors.InfeasiblePlan(id,
					fmt.Sprintf("%s needs %d terms including prerequisites, only %d remaining", id, d, bg.MaxTermsRemaining))
			}
		}
	}

	terms, unplaced := pack(required, completed, creditCap, bg.MaxTermsRemaining)
	if strict && len(unplaced) > 0 {
		id := unplaced[0]
		return nil, apperrors.InfeasiblePlan(id,
			fmt.Sprintf("%s does not fit in %d terms at %d credits per term", id, bg.MaxTermsRemaining, creditCap))
	}

	plan := &domain.SemesterPlan{Terms: terms, CreditCap: creditCap, Targets: targets}
	for _, t := range terms {
		plan.TotalCredits += t.TotalCredits
	}

	s.logger.Debug("plan built",
		zap.Int("terms", len(plan.Terms)),
		zap.Int("credits", plan.TotalCredits),
		zap.Int("credit_cap", creditCap),
		zap.Bool("strict", strict),
		zap.Int("unplaced", len(unplaced)),
	)
	return plan, nil
}

// CheckPrerequisites reports which prerequisites of a course are still
// missing, in the order they can be taken.
func (s *PlanningService) CheckPrerequisites(ctx context.Context, courseID string, completedCourses []string) (*domain.PrerequisiteResult, error) {
	if err := catalog.EnsureLoaded(s.store); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	course, ok := s.store.Get(courseID)
	if !ok {
		return nil, apperrors.UnknownCourse(catalog.NormalizeID(courseID))
	}
	completed, err := s.resolve(completedCourses)
	if err != nil {
		return nil, err
	}

	required := s.closure([]string{course.ID}, completed)
	depth, err := depths(required, true)
	if err != nil {
		return nil, err
	}

	var missing []string
	for id := range required {
		if id != course.ID {
			missing = append(missing, id)
		}
	}

	result := &domain.PrerequisiteResult{
		Course:        course,
		Prerequisites: append([]string{}, course.Prerequisites...),
		Missing:       append([]string{}, byDepth(missing, depth)...),
		Eligible:      len(missing) == 0,
	}
	if d, ok := depth[course.ID]; ok {
		result.TermsNeeded = d - 1
	}
	return result, nil
}

// AssessWorkload rates the first term of a plan against the recommended
// load for the student's academic year.
func (s *PlanningService) AssessWorkload(plan *domain.SemesterPlan, completedCredits int) domain.WorkloadAssessment {
	year := domain.AcademicYear(completedCredits)
	out := domain.WorkloadAssessment{
		Level:          domain.WorkloadLight,
		Standing:       domain.Standing(completedCredits),
		AcademicYear:   year,
		RecommendedCap: domain.CreditLimitForYear(year),
	}
	if plan == nil || len(plan.Terms) == 0 {
		return out
	}

	term := plan.Terms[0]
	ratio := float64(term.TotalCredits) / float64(out.RecommendedCap)

	var difficulty float64
	for _, ref := range term.Courses {
		c, _ := s.store.Get(ref.ID)
		difficulty += float64(c.DifficultyOrDefault())
	}
	if n := len(term.Courses); n > 0 {
		difficulty /= float64(n)
	}

	out.Score = round2(ratio*0.6 + difficulty/5*0.4)
	switch {
	case out.Score < 0.6:
		out.Level = domain.WorkloadLight
	case out.Score < 0.8:
		out.Level = domain.WorkloadModerate
	default:
		out.Level = domain.WorkloadHeavy
	}
	return out
}

// AssessPathway scores how far completed and planned courses cover a
// specialization and lists what is still missing.
func (s *PlanningService) AssessPathway(track domain.Specialization, plan *domain.SemesterPlan, completedCourses []string) (float64, []string) {
	covered := make(map[string]bool)
	for _, id := range completedCourses {
		covered[catalog.NormalizeID(id)] = true
	}
	var planned []string
	if plan != nil {
		planned = plan.CourseIDs()
	}
	for _, id := range planned {
		covered[id] = true
	}

	var missingCore []string
	for _, id := range track.CoreSequence {
		if !covered[id] {
			missingCore = append(missingCore, id)
		}
	}
	coverage := 1.0
	if n := len(track.CoreSequence); n > 0 {
		coverage = float64(n-len(missingCore)) / float64(n)
	}

	hasSubject := func(keys ...string) bool {
		for id := range covered {
			c, ok := s.store.Get(id)
			if !ok {
				continue
			}
			for _, k := range keys {
				if c.HasSubject(k) {
					return true
				}
			}
		}
		return false
	}

	score := coverage
	if track.Tag == domain.CareerQuantitativeFinance && len(planned) > 0 {
		quant := 0
		for _, id := range planned {
			c, _ := s.store.Get(id)
			if c.HasSubject("stat") || c.HasSubject("math") || c.HasSubject("fin") {
				quant++
			}
		}
		score = 0.6*coverage + 0.4*float64(quant)/float64(len(planned))
	}

	var gaps []string
	if len(missingCore) > 0 {
		gap := "Missing core courses: "
		if len(missingCore) > 3 {
			gap += fmt.Sprintf("%s, %s, %s and others", missingCore[0], missingCore[1], missingCore[2])
		} else {
			gap += joinAnd(missingCore)
		}
		gaps = append(gaps, gap)
	}

	switch track.Tag {
	case domain.CareerQuantitativeFinance:
		if !hasSubject("stat", "math") {
			gaps = append(gaps, "Limited quantitative training - consider adding econometrics or mathematics courses")
		}
		if !hasSubject("fin") {
			gaps = append(gaps, "Limited finance exposure - consider adding monetary economics or business finance courses")
		}
	case domain.CareerSustainableFinance:
		if !hasSubject("sustain") {
			gaps = append(gaps, "Limited sustainability exposure - consider adding environmental or climate economics courses")
		}
	case domain.CareerPolicyAnalysis:
		if !hasSubject("eco") {
			gaps = append(gaps, "Limited economic theory - consider adding intermediate micro or macroeconomics courses")
		}
	}

	if score > 1 {
		score = 1
	}
	return round2(score), gaps
}

// CompletedCredits sums the credits of known courses
func (s *PlanningService) CompletedCredits(ids []string) int {
	total := 0
	seen := make(map[string]bool)
	for _, raw := range ids {
		id := catalog.NormalizeID(raw)
		if seen[id] {
			continue
		}
		seen[id] = true
		if c, ok := s.store.Get(id); ok {
			total += c.Credits
		}
	}
	return total
}

// Offered splits course IDs into those in the catalog and those that are not
func (s *PlanningService) Offered(ids []string) (offered, missing []string) {
	for _, id := range ids {
		if _, ok := s.store.Get(id); ok {
			offered = append(offered, id)
		} else {
			missing = append(missing, id)
		}
	}
	return offered, missing
}

// resolve validates course IDs and returns them as a set
func (s *PlanningService) resolve(ids []string) (map[string]bool, error) {
	list, err := s.resolveList(ids)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(list))
	for _, id := range list {
		set[id] = true
	}
	return set, nil
}

func (s *PlanningService) resolveList(ids []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, raw := range ids {
		id := catalog.NormalizeID(raw)
		if id == "" || seen[id] {
			continue
		}
		if _, ok := s.store.Get(id); !ok {
			return nil, apperrors.UnknownCourse(id)
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

// closure collects targets and their prerequisites, stopping at completed courses
func (s *PlanningService) closure(targets []string, completed map[string]bool) map[string]domain.Course {
	required := make(map[string]domain.Course)
	var visit func(id string)
	visit = func(id string) {
		if completed[id] {
			return
		}
		if _, ok := required[id]; ok {
			return
		}
		c, ok := s.store.Get(id)
		if !ok {
			return
		}
		required[id] = c
		for _, p := range c.Prerequisites {
			visit(p)
		}
	}
	for _, id := range targets {
		visit(id)
	}
	return required
}

// depths computes 1 + the longest chain of outstanding prerequisites for
// each course. In strict mode a cycle is an error; otherwise courses on a
// cycle are dropped and never placed.
func depths(required map[string]domain.Course, strict bool) (map[string]int, error) {
	depth := make(map[string]int, len(required))
	visiting := make(map[string]bool)

	var visit func(id string) (int, error)
	visit = func(id string) (int, error) {
		if d, ok := depth[id]; ok {
			return d, nil
		}
		if visiting[id] {
			return 0, apperrors.InfeasiblePlan(id, id+" sits on a prerequisite cycle")
		}
		visiting[id] = true
		d := 1
		for _, p := range required[id].Prerequisites {
			if _, ok := required[p]; !ok {
				continue
			}
			pd, err := visit(p)
			if err != nil {
				return 0, err
			}
			if pd+1 > d {
				d = pd + 1
			}
		}
		visiting[id] = false
		depth[id] = d
		return d, nil
	}

	for _, id := range keys(required) {
		if _, err := visit(id); err != nil {
			if strict {
				return nil, err
			}
			delete(required, id)
		}
	}
	return depth, nil
}

// pack fills terms greedily. Eligible courses are tried by the length of
// the chain of required courses still waiting on them, longest first, then
// by ID, and any that fit under the cap are placed.
func pack(required map[string]domain.Course, completed map[string]bool, creditCap, maxTerms int) ([]domain.Term, []string) {
	placed := make(map[string]int, len(required))
	remaining := byHeight(keys(required), heights(required))
	terms := []domain.Term{}

	for t := 1; t <= maxTerms && len(remaining) > 0; t++ {
		term := domain.Term{Number: t, Courses: []domain.CourseRef{}}
		for _, id := range remaining {
			c := required[id]
			if !prerequisitesMet(c, completed, placed, t) || term.TotalCredits+c.Credits > creditCap {
				continue
			}
			term.Courses = append(term.Courses, c.Ref())
			term.TotalCredits += c.Credits
			placed[id] = t
		}
		if len(term.Courses) == 0 {
			break
		}
		sort.Slice(term.Courses, func(i, j int) bool { return term.Courses[i].ID < term.Courses[j].ID })
		terms = append(terms, term)

		next := remaining[:0]
		for _, id := range remaining {
			if _, ok := placed[id]; !ok {
				next = append(next, id)
			}
		}
		remaining = next
	}
	return terms, remaining
}

// heights computes 1 + the longest chain of required courses that depend on
// each course. Cycles have already been removed by depths.
func heights(required map[string]domain.Course) map[string]int {
	dependents := make(map[string][]string, len(required))
	for _, id := range keys(required) {
		for _, p := range required[id].Prerequisites {
			if _, ok := required[p]; ok {
				dependents[p] = append(dependents[p], id)
			}
		}
	}

	height := make(map[string]int, len(required))
	var visit func(id string) int
	visit = func(id string) int {
		if h, ok := height[id]; ok {
			return h
		}
		h := 1
		for _, d := range dependents[id] {
			if dh := visit(d) + 1; dh > h {
				h = dh
			}
		}
		height[id] = h
		return h
	}
	for id := range required {
		visit(id)
	}
	return height
}

func prerequisitesMet(c domain.Course, completed map[string]bool, placed map[string]int, term int) bool {
	for _, p := range c.Prerequisites {
		if completed[p] {
			continue
		}
		if t, ok := placed[p]; ok && t < term {
			continue
		}
		return false
	}
	return true
}

func keys(m map[string]domain.Course) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// byDepth sorts IDs in place by depth, then ID
func byDepth(ids []string, depth map[string]int) []string {
	sort.Slice(ids, func(i, j int) bool {
		if depth[ids[i]] != depth[ids[j]] {
			return depth[ids[i]] < depth[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

// byHeight sorts IDs in place by height descending, then ID
func byHeight(ids []string, height map[string]int) []string {
	sort.Slice(ids, func(i, j int) bool {
		if height[ids[i]] != height[ids[j]] {
			return height[ids[i]] > height[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	out := ""
	for i, it := range items[:len(items)-1] {
		if i > 0 {
			out += ", "
		}
		out += it
	}
	return out + " and " + items[len(items)-1]
}
