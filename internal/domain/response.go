package domain

// Provenance tells the caller where annotation text came from
type Provenance string

const (
	ProvenanceAIGenerated Provenance = "ai-generated"
	ProvenanceRuleBased   Provenance = "rule-based"
	ProvenanceFallback    Provenance = "fallback"
)

// IsValid checks if the provenance is valid
func (p Provenance) IsValid() bool {
	switch p {
	case ProvenanceAIGenerated, ProvenanceRuleBased, ProvenanceFallback:
		return true
	}
	return false
}

// Annotation is explanatory text attached to a result
type Annotation struct {
	Text       string     `json:"text"`
	Provenance Provenance `json:"provenance"`
}

// ResultKind names the shape of Response.Result
type ResultKind string

const (
	ResultCourses      ResultKind = "courses"
	ResultPlan         ResultKind = "plan"
	ResultPathway      ResultKind = "pathway"
	ResultPrerequisite ResultKind = "prerequisite"
)

// Result is implemented by every pipeline's baseline output
type Result interface {
	ResultKind() ResultKind
}

// CourseListResult is the baseline for course lookups
type CourseListResult struct {
	Query    string   `json:"query"`
	Subjects []string `json:"subjects,omitempty"`
	Courses  []Course `json:"courses"`
}

func (CourseListResult) ResultKind() ResultKind { return ResultCourses }

// PlanResult is the baseline for semester planning
type PlanResult struct {
	Plan             *SemesterPlan      `json:"plan"`
	CompletedCredits int                `json:"completedCredits"`
	Workload         WorkloadAssessment `json:"workload"`
}

func (PlanResult) ResultKind() ResultKind { return ResultPlan }

// PathwayResult merges course search and planning for a career goal
type PathwayResult struct {
	CareerTag      string        `json:"careerTag"`
	Specialization string        `json:"specialization"`
	Careers        []string      `json:"careerPaths"`
	Courses        []Course      `json:"courses"`
	Plan           *SemesterPlan `json:"plan"`
	AlignmentScore float64       `json:"alignmentScore"`
	Gaps           []string      `json:"gaps"`
}

func (PathwayResult) ResultKind() ResultKind { return ResultPathway }

// PrerequisiteResult answers whether a student can take a course
type PrerequisiteResult struct {
	Course        Course   `json:"course"`
	Prerequisites []string `json:"prerequisites"`
	Missing       []string `json:"missing"`
	Eligible      bool     `json:"eligible"`
	TermsNeeded   int      `json:"termsNeeded"`
}

func (PrerequisiteResult) ResultKind() ResultKind { return ResultPrerequisite }

// Response is the payload returned for one query
type Response struct {
	QueryID         string     `json:"queryId"`
	Intent          Intent     `json:"intent"`
	ResultType      ResultKind `json:"resultType,omitempty"`
	Result          Result     `json:"result"`
	Annotation      Annotation `json:"annotation"`
	Clarification   string     `json:"clarification,omitempty"`
	ExecutionTimeMs int64      `json:"executionTimeMs"`
}
