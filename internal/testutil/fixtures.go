package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acadvisor/acadvisor/internal/catalog"
	"github.com/acadvisor/acadvisor/internal/domain"
)

// FixtureCourses is a small catalog with one linear prerequisite chain
// (ECON101 → ECON201 → ECON202 → ECON301) and a few side courses.
func FixtureCourses() []domain.Course {
	return []domain.Course{
		{ID: "ECON101", Title: "Principles of Economics", Credits: 5, Difficulty: 2,
			Description: "Supply, demand and market equilibrium.", Subjects: []string{"eco"}},
		{ID: "ECON201", Title: "Intermediate Economics", Credits: 5, Difficulty: 3,
			Prerequisites: []string{"ECON101"}, Description: "Consumer theory and production.", Subjects: []string{"eco"}},
		{ID: "ECON202", Title: "Applied Econometrics", Credits: 5, Difficulty: 4,
			Prerequisites: []string{"ECON201"}, Description: "Regression on economic data.",
			Subjects: []string{"stat"}, Tags: []string{domain.CareerQuantitativeFinance}},
		{ID: "ECON301", Title: "Advanced Macroeconomics", Credits: 5, Difficulty: 5,
			Prerequisites: []string{"ECON202"}, Description: "Dynamic general equilibrium models.",
			Subjects: []string{"eco"}, Tags: []string{domain.CareerPolicyAnalysis}},
		{ID: "STAT101", Title: "Statistics for Economists", Credits: 5, Difficulty: 2,
			Description: "Probability and inference with data.", Subjects: []string{"stat"}},
		{ID: "FIN201", Title: "Corporate Finance", Credits: 5, Difficulty: 3,
			Prerequisites: []string{"ECON101"}, Description: "Valuation, capital budgeting and risk.",
			Subjects: []string{"fin"}, Tags: []string{domain.CareerQuantitativeFinance}},
		{ID: "LAB401", Title: "Research Laboratory", Credits: 25, Difficulty: 5,
			Description: "Full-time supervised research project.", Subjects: []string{"eco"}},
	}
}

// FixtureCatalog builds the fixture catalog
func FixtureCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(FixtureCourses())
	require.NoError(t, err)
	return c
}

// EmbeddedCatalog loads the catalog shipped with the binary
func EmbeddedCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	courses, err := catalog.EmbeddedSource{}.Load(context.Background())
	require.NoError(t, err)
	c, err := catalog.New(courses)
	require.NoError(t, err)
	return c
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
