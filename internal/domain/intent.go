package domain

import "sort"

// IntentKind is the classified purpose of a request
type IntentKind string

const (
	IntentCourseLookup      IntentKind = "course_lookup"
	IntentCareerPathway     IntentKind = "career_pathway"
	IntentSemesterPlanning  IntentKind = "semester_planning"
	IntentPrerequisiteCheck IntentKind = "prerequisite_check"
	IntentUnknown           IntentKind = "unknown"
)

// IsValid checks if the intent kind is valid
func (k IntentKind) IsValid() bool {
	switch k {
	case IntentCourseLookup, IntentCareerPathway, IntentSemesterPlanning, IntentPrerequisiteCheck, IntentUnknown:
		return true
	}
	return false
}

// Slot names produced by the dispatcher
const (
	SlotQuery            = "query"
	SlotCourseCode       = "courseCode"
	SlotCourseCodes      = "courseCodes"
	SlotCompletedCredits = "completedCredits"
	SlotMaxCredits       = "maxCredits"
	SlotTermsRemaining   = "termsRemaining"
	SlotCareerTag        = "careerTag"
	SlotSubjects         = "subjects"
	SlotCompletedCourses = "completedCourses"
	SlotTargetProgram    = "targetProgram"
)

// Slots maps slot names to extracted values. Values are string, int or []string.
type Slots map[string]any

// String returns a string slot
func (s Slots) String(name string) (string, bool) {
	v, ok := s[name].(string)
	return v, ok && v != ""
}

// Int returns an integer slot
func (s Slots) Int(name string) (int, bool) {
	v, ok := s[name].(int)
	return v, ok
}

// Strings returns a list slot
func (s Slots) Strings(name string) []string {
	v, _ := s[name].([]string)
	return v
}

// Names returns the slot names in sorted order
func (s Slots) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a shallow copy; list values are copied too.
func (s Slots) Clone() Slots {
	out := make(Slots, len(s))
	for k, v := range s {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		out[k] = v
	}
	return out
}

// Intent is the dispatcher's classification of one request.
// It is created once per request and not modified afterwards.
type Intent struct {
	Kind       IntentKind `json:"kind"`
	Confidence float64    `json:"confidence"`
	Rule       string     `json:"rule,omitempty"`
	Slots      Slots      `json:"slots"`
}

// UnknownIntent is the result when no rule clears the confidence threshold.
func UnknownIntent() Intent {
	return Intent{Kind: IntentUnknown, Confidence: 0, Slots: Slots{}}
}

// RequestContext is optional prior-turn state sent with a query.
type RequestContext struct {
	PreviousIntent    IntentKind `json:"previousIntent,omitempty" yaml:"previousIntent" validate:"omitempty,oneof=course_lookup career_pathway semester_planning prerequisite_check unknown"`
	CompletedCourses  []string   `json:"completedCourses,omitempty" yaml:"completedCourses" validate:"omitempty,max=200,dive,notblank,max=32"`
	CompletedCredits  *int       `json:"completedCredits,omitempty" yaml:"completedCredits" validate:"omitempty,gte=0"`
	TermsRemaining    *int       `json:"termsRemaining,omitempty" yaml:"termsRemaining" validate:"omitempty,gte=1"`
	MaxCreditsPerTerm *int       `json:"maxCreditsPerTerm,omitempty" yaml:"maxCreditsPerTerm" validate:"omitempty,gte=1"`
	TargetProgram     string     `json:"targetProgram,omitempty" yaml:"targetProgram" validate:"omitempty,max=200"`
	CareerTag         string     `json:"careerTag,omitempty" yaml:"careerTag" validate:"omitempty,max=100"`
}
