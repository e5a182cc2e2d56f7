package service

import (
	"fmt"
	"strings"

	"github.com/acadvisor/acadvisor/internal/domain"
)

// Clarification is returned for queries no rule recognises
const Clarification = "I specialize in academic planning for the Economics programme. Try asking about " +
	"course content (\"Explain econometrics courses\"), semester plans (\"What should I take next semester " +
	"given 60 completed credits?\"), career pathways (\"Which courses prepare me for ESG investing?\") " +
	"or prerequisites (\"Can I take ECO302?\")."

// narrative holds the three texts a pipeline can annotate its result with
type narrative struct {
	// prompt goes to a model
	prompt string
	// summary is deterministic and built from the result alone
	summary string
	// fallback is used when the gateway fails
	fallback string
}

var instructions = map[domain.IntentKind]string{
	domain.IntentCourseLookup: "Explain in 120 to 150 words how these courses relate to the student's goals. " +
		"Focus on practical skills and career relevance rather than theory.",
	domain.IntentSemesterPlanning: "Give strategic advice in 100 to 120 words on this plan. Highlight one or two " +
		"strengths and one concern if there is any, then suggest one concrete next step.",
	domain.IntentCareerPathway: "Explain in 120 to 150 words how this pathway prepares the student for the career " +
		"area, address the listed gaps and give a one-sentence industry outlook.",
	domain.IntentPrerequisiteCheck: "Explain in 60 to 100 words whether the student is ready for the course and " +
		"what to take first if not.",
}

var outlooks = map[string]string{
	domain.CareerQuantitativeFinance: "Demand for analysts who combine econometrics with portfolio and risk " +
		"modelling keeps growing across banks, asset managers and family offices.",
	domain.CareerPolicyAnalysis: "Central banks, ministries and international organizations recruit economists " +
		"who can evaluate policy with data and communicate it clearly.",
	domain.CareerSustainableFinance: "ESG integration is becoming standard practice in asset management, and " +
		"employers look for graduates who can price climate and governance risk.",
}

func buildPrompt(intent domain.Intent, summary string) string {
	var b strings.Builder
	if q, ok := intent.Slots.String(domain.SlotQuery); ok {
		fmt.Fprintf(&b, "Student question: %q\n", q)
	}
	if credits, ok := intent.Slots.Int(domain.SlotCompletedCredits); ok {
		fmt.Fprintf(&b, "Completed credits: %d\n", credits)
	}
	if done := intent.Slots.Strings(domain.SlotCompletedCourses); len(done) > 0 {
		fmt.Fprintf(&b, "Completed courses: %s\n", strings.Join(done, ", "))
	}
	if program, ok := intent.Slots.String(domain.SlotTargetProgram); ok {
		fmt.Fprintf(&b, "Target program: %s\n", program)
	}
	fmt.Fprintf(&b, "\nResult computed from the catalog:\n%s\n\n%s", summary, instructions[intent.Kind])
	return b.String()
}

func courseNarrative(intent domain.Intent, res domain.CourseListResult) narrative {
	var summary string
	if len(res.Courses) == 0 {
		summary = fmt.Sprintf("No catalog courses matched %q.", res.Query)
	} else {
		refs := make([]string, len(res.Courses))
		for i, c := range res.Courses {
			refs[i] = fmt.Sprintf("%s %s (%d credits)", c.ID, c.Title, c.Credits)
		}
		noun := "courses"
		if len(refs) == 1 {
			noun = "course"
		}
		summary = fmt.Sprintf("Found %d %s: %s.", len(refs), noun, strings.Join(refs, "; "))
	}

	subjects := res.Subjects
	if len(subjects) == 0 && len(res.Courses) > 0 {
		subjects = res.Courses[0].Subjects
	}
	var parts []string
	for _, key := range subjects {
		if f, ok := domain.SubjectFamilyByKey(key); ok {
			parts = append(parts, f.Explanation)
		}
	}
	for i, c := range res.Courses {
		if i == 3 {
			break
		}
		relevance := "supporting"
		if c.HasSubject("fin") || c.HasSubject("stat") {
			relevance = "directly relevant"
		}
		parts = append(parts, fmt.Sprintf("%s (%s) is %s for quantitative careers.", c.Title, c.ID, relevance))
	}
	if len(parts) == 0 {
		parts = append(parts, "Nothing in the catalog matched this search. Try a subject such as econometrics, "+
			"finance or sustainability, or a course code such as ECO205.")
	}

	return narrative{
		prompt:   buildPrompt(intent, summary),
		summary:  summary,
		fallback: strings.Join(parts, " "),
	}
}

func describeTerms(plan *domain.SemesterPlan) string {
	if plan == nil || len(plan.Terms) == 0 {
		return "There is nothing left to schedule."
	}
	parts := make([]string, len(plan.Terms))
	for i, t := range plan.Terms {
		ids := make([]string, len(t.Courses))
		for j, c := range t.Courses {
			ids[j] = c.ID
		}
		parts[i] = fmt.Sprintf("Term %d: %s (%d credits).", t.Number, strings.Join(ids, ", "), t.TotalCredits)
	}
	return strings.Join(parts, " ")
}

func planNarrative(intent domain.Intent, res domain.PlanResult) narrative {
	w := res.Workload
	summary := fmt.Sprintf("%s The first term is a %s load (score %.2f) against the %d credits recommended for year %d.",
		describeTerms(res.Plan), w.Level, w.Score, w.RecommendedCap, w.AcademicYear)

	courses := 0
	credits := 0
	if res.Plan != nil && len(res.Plan.Terms) > 0 {
		courses = len(res.Plan.Terms[0].Courses)
		credits = res.Plan.Terms[0].TotalCredits
	}
	fallback := fmt.Sprintf("This plan follows the prerequisite order of the catalog. The first term carries "+
		"%d credits across %d courses, which is a %s workload for a student in year %d. Build relationships "+
		"with course instructors early, since their references matter for later applications.",
		credits, courses, w.Level, w.AcademicYear)
	if w.Level == domain.WorkloadHeavy {
		fallback += " Consider moving one demanding course to a later term."
	}

	return narrative{
		prompt:   buildPrompt(intent, summary),
		summary:  summary,
		fallback: fallback,
	}
}

func pathwayNarrative(intent domain.Intent, res domain.PathwayResult) narrative {
	track, _ := domain.SpecializationByTag(res.CareerTag)

	var b strings.Builder
	fmt.Fprintf(&b, "The %s pathway leads to %s roles. ", res.Specialization, joinAnd(res.Careers))
	fmt.Fprintf(&b, "Core sequence: %s. ", strings.Join(track.CoreSequence, " → "))
	b.WriteString(describeTerms(res.Plan))
	fmt.Fprintf(&b, " Alignment score %.2f.", res.AlignmentScore)
	if len(res.Gaps) > 0 {
		fmt.Fprintf(&b, " Gaps: %s.", strings.Join(res.Gaps, "; "))
	}
	summary := b.String()

	fallback := fmt.Sprintf("Recommended pathway: %s, with %s as electives. %s",
		strings.Join(track.CoreSequence, " → "), joinAnd(track.Electives), outlooks[res.CareerTag])
	if len(res.Gaps) > 0 {
		fallback += " Priority gap: " + res.Gaps[0] + "."
	}

	return narrative{
		prompt:   buildPrompt(intent, summary),
		summary:  summary,
		fallback: fallback,
	}
}

func prerequisiteNarrative(intent domain.Intent, res domain.PrerequisiteResult) narrative {
	c := res.Course
	var summary string
	switch {
	case res.Eligible && len(res.Prerequisites) == 0:
		summary = fmt.Sprintf("%s %s has no prerequisites, so you can take it now.", c.ID, c.Title)
	case res.Eligible:
		summary = fmt.Sprintf("You have completed the prerequisites for %s %s (%s), so you can take it now.",
			c.ID, c.Title, strings.Join(res.Prerequisites, ", "))
	default:
		terms := "term"
		if res.TermsNeeded != 1 {
			terms = "terms"
		}
		summary = fmt.Sprintf("%s %s still needs %s first, which takes at least %d %s.",
			c.ID, c.Title, joinAnd(res.Missing), res.TermsNeeded, terms)
	}

	fallback := summary
	if !res.Eligible {
		fallback += fmt.Sprintf(" Start with %s and plan %s for the term after the last prerequisite.", res.Missing[0], c.ID)
	}

	return narrative{
		prompt:   buildPrompt(intent, summary),
		summary:  summary,
		fallback: fallback,
	}
}
