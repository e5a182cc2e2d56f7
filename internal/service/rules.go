package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/acadvisor/acadvisor/internal/domain"
)

// Signal is one weighted pattern. Patterns match lowercased text.
type Signal struct {
	Pattern *regexp.Regexp
	Weight  float64
}

// SlotExtractor pulls one slot out of lowercased text
type SlotExtractor struct {
	Slot    string
	Extract func(text string) (any, bool)
}

// Rule is one row of the dispatcher's rule table. A rule with FollowUp set
// has no kind of its own; it reuses the previous intent from the request
// context and that intent's extractors.
type Rule struct {
	Name       string
	Kind       domain.IntentKind
	Signals    []Signal
	Extractors []SlotExtractor
	FollowUp   bool
}

func sig(pattern string, weight float64) Signal {
	return Signal{Pattern: regexp.MustCompile(pattern), Weight: weight}
}

// Confidence sums the weights of matching signals, capped at 1
func (r Rule) Confidence(text string) float64 {
	var total float64
	for _, s := range r.Signals {
		if s.Pattern.MatchString(text) {
			total += s.Weight
		}
	}
	if total > 1 {
		return 1
	}
	return total
}

var (
	// Known prefixes may be written with a space ("eco 205"); anything else
	// must be written solid so "has 120 credits" is not a course.
	courseCodeRe = regexp.MustCompile(`\b(?:(eco|econ|fin|mth|math|sta|stat|pol|env)\s+(\d{3})|([a-z]{2,4})(\d{3}))\b`)

	completedListRe = regexp.MustCompile(`\b(?:completed|finished|passed|taken|done)\s+((?:` +
		`(?:[a-z]{2,4}\s?\d{3})(?:\s*(?:,|and|&)\s*)?)+)`)

	maxCreditsRes = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:at most|no more than|max(?:imum)?(?: of)?|up to|limit(?:ed)? to|cap(?:ped)? at|under)\s+(\d{1,2})\s*credits?\b`),
		regexp.MustCompile(`\b(\d{1,2})\s*credits?\s+(?:per|a|each)\s+(?:semester|term)\b`),
	}

	completedCreditsRes = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{1,3})\s+(?:completed|earned|finished)\s+credits?\b`),
		regexp.MustCompile(`\b(?:completed|earned|finished|have|with|given|got)\s+(\d{1,3})\s+(?:completed\s+)?credits?\b`),
		regexp.MustCompile(`\b(\d{2,3})\s+credits?\b`),
	}

	beforeCodeRe = regexp.MustCompile(`\bbefore\s+(?:taking\s+|i take\s+)?((?:eco|econ|fin|mth|math|sta|stat|pol|env)\s?\d{3}|[a-z]{2,4}\d{3})\b`)

	termsRemainingRes = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{1,2}|one|two|three|four|five|six|seven|eight)\s+(?:more\s+)?(?:semesters?|terms?)\s+(?:left|remaining|to go)\b`),
		regexp.MustCompile(`\b(?:in|within|over)\s+(\d{1,2}|one|two|three|four|five|six|seven|eight)\s+(?:semesters?|terms?)\b`),
		regexp.MustCompile(`\b(\d{1,2}|one|two|three|four|five|six|seven|eight)\s+more\s+(?:semesters?|terms?)\b`),
	}

	numberWords = map[string]int{
		"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7, "eight": 8,
	}

	subjectRes = compileSubjects(domain.SubjectFamilies)

	careerRes = compileKeywords(domain.Specializations)
)

// compileKeywords builds one prefix pattern per specialization keyword
func compileKeywords(specs []domain.Specialization) [][]*regexp.Regexp {
	out := make([][]*regexp.Regexp, len(specs))
	for i, s := range specs {
		for _, k := range s.Keywords {
			out[i] = append(out[i], regexp.MustCompile(`\b`+regexp.QuoteMeta(k)))
		}
	}
	return out
}

// compileSubjects builds one whole-word alternation per subject family
func compileSubjects(families []domain.SubjectFamily) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(families))
	for i, f := range families {
		quoted := make([]string, len(f.Keywords))
		for j, k := range f.Keywords {
			quoted[j] = regexp.QuoteMeta(k)
		}
		out[i] = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return out
}

// CourseCodes returns normalized course codes in order of appearance
func CourseCodes(text string) []string {
	var codes []string
	seen := make(map[string]bool)
	for _, m := range courseCodeRe.FindAllStringSubmatch(strings.ToLower(text), -1) {
		code := strings.ToUpper(m[1] + m[2] + m[3] + m[4])
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	return codes
}

func completedCodes(text string) []string {
	var codes []string
	for _, m := range completedListRe.FindAllStringSubmatch(text, -1) {
		codes = append(codes, CourseCodes(m[1])...)
	}
	return dedupe(codes)
}

// targetCodes are the course codes that were not named as completed
func targetCodes(text string) []string {
	done := make(map[string]bool)
	for _, c := range completedCodes(text) {
		done[c] = true
	}
	var out []string
	for _, c := range CourseCodes(text) {
		if !done[c] {
			out = append(out, c)
		}
	}
	return out
}

func firstNumber(res []*regexp.Regexp, text string) (int, bool) {
	for _, re := range res {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if n, ok := numberWords[m[1]]; ok {
			return n, true
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	return 0, false
}

// stripMaxCredits removes per-term caps so they are not read as completed credits
func stripMaxCredits(text string) string {
	for _, re := range maxCreditsRes {
		text = re.ReplaceAllString(text, " ")
	}
	return text
}

// MatchSubjects returns the subject family keys mentioned in text
func MatchSubjects(text string) []string {
	text = strings.ToLower(text)
	var keys []string
	for i, re := range subjectRes {
		if re.MatchString(text) {
			keys = append(keys, domain.SubjectFamilies[i].Key)
		}
	}
	return keys
}

// MatchCareerTag picks the specialization with the most distinct keywords
// in text. Ties go to the earlier specialization.
func MatchCareerTag(text string) (string, bool) {
	text = strings.ToLower(text)
	best, bestHits := "", 0
	for i, patterns := range careerRes {
		hits := 0
		for _, re := range patterns {
			if re.MatchString(text) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = domain.Specializations[i].Tag, hits
		}
	}
	return best, bestHits > 0
}

func normalizeQuery(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

var (
	extractCourseCode = SlotExtractor{Slot: domain.SlotCourseCode, Extract: func(text string) (any, bool) {
		// "do I need X before Y" asks about Y
		if m := beforeCodeRe.FindStringSubmatch(text); m != nil {
			return CourseCodes(m[1])[0], true
		}
		codes := targetCodes(text)
		if len(codes) == 0 {
			return nil, false
		}
		return codes[0], true
	}}
	extractCourseCodes = SlotExtractor{Slot: domain.SlotCourseCodes, Extract: func(text string) (any, bool) {
		codes := targetCodes(text)
		return codes, len(codes) > 0
	}}
	extractCompletedCourses = SlotExtractor{Slot: domain.SlotCompletedCourses, Extract: func(text string) (any, bool) {
		codes := completedCodes(text)
		return codes, len(codes) > 0
	}}
	extractCompletedCredits = SlotExtractor{Slot: domain.SlotCompletedCredits, Extract: func(text string) (any, bool) {
		return firstNumber(completedCreditsRes, stripMaxCredits(text))
	}}
	extractMaxCredits = SlotExtractor{Slot: domain.SlotMaxCredits, Extract: func(text string) (any, bool) {
		return firstNumber(maxCreditsRes, text)
	}}
	extractTermsRemaining = SlotExtractor{Slot: domain.SlotTermsRemaining, Extract: func(text string) (any, bool) {
		return firstNumber(termsRemainingRes, text)
	}}
	extractCareerTag = SlotExtractor{Slot: domain.SlotCareerTag, Extract: func(text string) (any, bool) {
		return MatchCareerTag(text)
	}}
	extractSubjects = SlotExtractor{Slot: domain.SlotSubjects, Extract: func(text string) (any, bool) {
		keys := MatchSubjects(text)
		return keys, len(keys) > 0
	}}
)

const codePattern = `\b(?:eco|econ|fin|mth|math|sta|stat|pol|env)\s?\d{3}\b|\b[a-z]{2,4}\d{3}\b`

// DefaultRules is the rule table in priority order. Prerequisite questions
// usually also read like lookups, so they are checked first.
func DefaultRules() []Rule {
	subjectWords := make([]string, 0)
	for _, f := range domain.SubjectFamilies {
		for _, k := range f.Keywords {
			subjectWords = append(subjectWords, regexp.QuoteMeta(k))
		}
	}
	subjectSignal := `\b(?:` + strings.Join(subjectWords, "|") + `)\b`

	return []Rule{
		{
			Name: "prerequisite",
			Kind: domain.IntentPrerequisiteCheck,
			Signals: []Signal{
				sig(`\bpre-?req|\bprerequisite`, 0.6),
				sig(`\bcan i (?:take|enrol|enroll|register)`, 0.4),
				sig(`\beligible\b|\bqualif`, 0.3),
				sig(`\b(?:need|required?|must)\b.*\bbefore\b`, 0.4),
				sig(`\bready (?:for|to take)\b`, 0.3),
				sig(codePattern, 0.2),
			},
			Extractors: []SlotExtractor{extractCourseCode, extractCompletedCourses, extractCompletedCredits},
		},
		{
			Name: "semester-plan",
			Kind: domain.IntentSemesterPlanning,
			Signals: []Signal{
				sig(`\bplan(?:ning)?\b|\bschedule\b|\btimetable\b|\broadmap\b`, 0.4),
				sig(`\bnext (?:semester|term|year)\b`, 0.4),
				sig(`\b(?:semester|term)s?\b`, 0.2),
				sig(`\bwhat should i (?:take|study|enrol|enroll)`, 0.3),
				sig(`\b\d{1,3}\s+(?:completed\s+)?credits?\b`, 0.2),
				sig(`\bworkload\b|\bcourse load\b|\bhow many courses\b`, 0.3),
			},
			Extractors: []SlotExtractor{
				extractCompletedCredits, extractMaxCredits, extractTermsRemaining,
				extractCourseCodes, extractCompletedCourses, extractSubjects, extractCareerTag,
			},
		},
		{
			Name: "career",
			Kind: domain.IntentCareerPathway,
			Signals: []Signal{
				sig(`\bcareers?\b|\bjobs?\b|\bprofession`, 0.4),
				sig(`\bbecome\b|\bwork (?:as|in)\b|\bpathway\b|\bpath (?:to|into)\b|\bprepare (?:me )?for\b|\bfuture\b`, 0.3),
				sig(`\banalyst\b|\bbank(?:er|ing)\b|\badvis[eo]r\b|\bconsultant\b|\beconomist\b|\bregulator\b|\binvestor\b|\basset manag`, 0.3),
				sig(`\bquant\b|\bquantitative finance\b|\bpolicy\b|\besg\b|\bsustainable finance\b|\bimpact investing\b|\bcentral bank|\bfinance\b`, 0.2),
				sig(`\bspeciali[sz]`, 0.3),
			},
			Extractors: []SlotExtractor{
				extractCareerTag, extractCompletedCredits, extractMaxCredits,
				extractTermsRemaining, extractCompletedCourses, extractSubjects,
			},
		},
		{
			Name: "course-lookup",
			Kind: domain.IntentCourseLookup,
			Signals: []Signal{
				sig(`\bcourses?\b|\bmodules?\b|\bclass(?:es)?\b`, 0.3),
				sig(`\bexplain\b|\bdescribe\b|\btell me\b|\bwhat (?:is|are)\b|\boverview\b|\babout\b|\bfind\b|\bsearch\b|\bshow\b|\blist\b|\bwhich\b`, 0.3),
				sig(subjectSignal, 0.3),
				sig(codePattern, 0.3),
			},
			Extractors: []SlotExtractor{extractCourseCodes, extractSubjects, extractMaxCredits},
		},
		{
			Name:     "follow-up",
			FollowUp: true,
			Signals: []Signal{
				sig(`^(?:and |but |so )?(?:what|how) about\b`, 0.5),
				sig(`^(?:and|or|but|also)\b`, 0.3),
				sig(`\binstead\b|\bthen\b|\bsame\b`, 0.2),
				sig(`\b\d{1,3}\s+(?:completed\s+)?credits?\b|\b\d{1,2}\s+(?:more\s+)?(?:semesters?|terms?)\b`, 0.3),
				sig(codePattern, 0.2),
			},
		},
	}
}
