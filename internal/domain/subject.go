package domain

// SubjectFamily groups the keywords students use for one area of study
type SubjectFamily struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Keywords    []string `json:"keywords"`
	Explanation string   `json:"explanation,omitempty"`
}

// SubjectFamilies is ordered; lookups that return the first match depend on it.
var SubjectFamilies = []SubjectFamily{
	{
		Key:      "eco",
		Name:     "Economics",
		Keywords: []string{"eco", "economics", "micro", "macro", "microeconomics", "macroeconomics", "economic", "econ"},
		Explanation: "Core economics courses establish the principles of resource allocation, market dynamics and " +
			"policy evaluation. They are the analytical base for later specialization in finance or policy analysis.",
	},
	{
		Key:      "stat",
		Name:     "Statistics and Econometrics",
		Keywords: []string{"stat", "stats", "econometrics", "data", "statistics", "quantitative", "regression", "metrics"},
		Explanation: "The econometrics sequence builds statistical methods for economic analysis step by step, " +
			"ending with the ability to validate models against real market data.",
	},
	{
		Key:      "fin",
		Name:     "Finance",
		Keywords: []string{"fin", "finance", "monetary", "financial", "banking", "investment", "wealth"},
		Explanation: "Finance courses train quantitative asset management, risk modelling and monetary policy " +
			"analysis, with direct application to portfolio construction.",
	},
	{
		Key:      "sustain",
		Name:     "Sustainability",
		Keywords: []string{"sustain", "sustainable", "sustainability", "esg", "climate", "environmental", "development", "green"},
		Explanation: "Sustainability courses bring environmental, social and governance factors into economic " +
			"analysis and prepare students for the sustainable finance sector.",
	},
	{
		Key:      "math",
		Name:     "Mathematics",
		Keywords: []string{"math", "maths", "calculus", "mathematical", "linear", "algebra", "probability"},
		Explanation: "Mathematics courses supply the calculus, linear algebra and probability used throughout " +
			"econometrics and quantitative finance.",
	},
}

// SubjectFamilyByKey returns the family with the given key
func SubjectFamilyByKey(key string) (SubjectFamily, bool) {
	for _, f := range SubjectFamilies {
		if f.Key == key {
			return f, true
		}
	}
	return SubjectFamily{}, false
}

// Career tags used on catalog courses
const (
	CareerQuantitativeFinance = "quantitative_finance"
	CareerPolicyAnalysis      = "policy_analysis"
	CareerSustainableFinance  = "sustainable_finance"
)

// Specialization is a named pathway of core courses toward a career area
type Specialization struct {
	Tag          string   `json:"tag"`
	Name         string   `json:"name"`
	CoreSequence []string `json:"coreSequence"`
	Electives    []string `json:"recommendedElectives"`
	Careers      []string `json:"careerPaths"`
	Keywords     []string `json:"-"`
}

// Specializations lists the supported pathways in priority order
var Specializations = []Specialization{
	{
		Tag:          CareerQuantitativeFinance,
		Name:         "Quantitative Finance",
		CoreSequence: []string{"ECO205", "ECO214", "ECO302", "FIN301", "ECO305"},
		Electives:    []string{"ECO309", "ECO227", "MTH212"},
		Careers:      []string{"Quantitative Analyst", "Risk Management", "Asset Allocation"},
		Keywords:     []string{"quant", "quantitative", "finance", "financial", "wealth", "asset", "risk", "investment", "banker", "trading"},
	},
	{
		Tag:          CareerPolicyAnalysis,
		Name:         "Policy Analysis",
		CoreSequence: []string{"ECO213", "ECO216", "ECO225", "ECO305", "ECO321"},
		Electives:    []string{"ECO207", "ECO212", "POL201"},
		Careers:      []string{"Central Banking", "Policy Advisor", "International Organizations"},
		Keywords:     []string{"policy", "central bank", "government", "public", "regulator", "advisor"},
	},
	{
		Tag:          CareerSustainableFinance,
		Name:         "Sustainable Finance",
		CoreSequence: []string{"ECO307", "ECO311", "ECO305", "FIN301", "ECO225"},
		Electives:    []string{"ECO306", "ECO228", "ENV301"},
		Careers:      []string{"ESG Investment", "Sustainable Finance", "Impact Investing"},
		Keywords:     []string{"sustain", "sustainable", "esg", "climate", "green", "impact", "environmental"},
	},
}

// SpecializationByTag returns the specialization for a career tag
func SpecializationByTag(tag string) (Specialization, bool) {
	for _, s := range Specializations {
		if s.Tag == tag {
			return s, true
		}
	}
	return Specialization{}, false
}

// CreditLimitForYear returns the recommended per-term credit load for an
// academic year (1-4). Other years get 20.
func CreditLimitForYear(year int) int {
	switch year {
	case 1, 4:
		return 15
	default:
		return 20
	}
}

// CreditsPerYear converts completed credits into an academic year.
const CreditsPerYear = 40

// AcademicYear derives the current year of study from completed credits
func AcademicYear(completedCredits int) int {
	year := completedCredits/CreditsPerYear + 1
	if year < 1 {
		return 1
	}
	if year > 4 {
		return 4
	}
	return year
}

// Standing labels a student's progress from completed credits
func Standing(completedCredits int) string {
	switch {
	case completedCredits < 60:
		return "beginner"
	case completedCredits < 120:
		return "intermediate"
	default:
		return "advanced"
	}
}
