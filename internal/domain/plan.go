package domain

// Background is the student's situation handed to the planner
type Background struct {
	CompletedCourses  []string `json:"completedCourses"`
	TargetCourses     []string `json:"targetCourses,omitempty"`
	TargetCredits     int      `json:"targetCredits,omitempty"`
	MaxTermsRemaining int      `json:"maxTermsRemaining"`
}

// Term is one semester of a plan
type Term struct {
	Number       int         `json:"number"`
	Courses      []CourseRef `json:"courses"`
	TotalCredits int         `json:"totalCredits"`
}

// SemesterPlan is an ordered sequence of terms. A plan is never changed after
// the planner returns it; WithAnnotation produces an augmented copy.
type SemesterPlan struct {
	Terms        []Term      `json:"terms"`
	CreditCap    int         `json:"creditCap"`
	TotalCredits int         `json:"totalCredits"`
	Targets      []string    `json:"targets,omitempty"`
	Annotation   *Annotation `json:"annotation,omitempty"`
}

// CourseIDs returns every planned course ID in term order
func (p *SemesterPlan) CourseIDs() []string {
	var ids []string
	for _, t := range p.Terms {
		for _, c := range t.Courses {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// TermOf returns the 1-based term a course is planned in, or 0
func (p *SemesterPlan) TermOf(courseID string) int {
	for _, t := range p.Terms {
		for _, c := range t.Courses {
			if c.ID == courseID {
				return t.Number
			}
		}
	}
	return 0
}

// Clone returns a deep copy of the plan
func (p *SemesterPlan) Clone() *SemesterPlan {
	if p == nil {
		return nil
	}
	out := *p
	out.Terms = make([]Term, len(p.Terms))
	for i, t := range p.Terms {
		t.Courses = append([]CourseRef(nil), t.Courses...)
		out.Terms[i] = t
	}
	out.Targets = append([]string(nil), p.Targets...)
	if p.Annotation != nil {
		a := *p.Annotation
		out.Annotation = &a
	}
	return &out
}

// WithAnnotation returns a copy of the plan carrying the annotation
func (p *SemesterPlan) WithAnnotation(a Annotation) *SemesterPlan {
	out := p.Clone()
	out.Annotation = &a
	return out
}

// Workload levels
const (
	WorkloadLight    = "light"
	WorkloadModerate = "moderate"
	WorkloadHeavy    = "heavy"
)

// WorkloadAssessment describes how demanding a term is
type WorkloadAssessment struct {
	Level          string  `json:"level"`
	Score          float64 `json:"score"`
	Standing       string  `json:"standing"`
	AcademicYear   int     `json:"academicYear"`
	RecommendedCap int     `json:"recommendedCreditCap"`
}
