package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadvisor/acadvisor/internal/domain"
	apperrors "github.com/acadvisor/acadvisor/internal/pkg/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--mock-ai"))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAsk(t *testing.T) {
	t.Run("text output", func(t *testing.T) {
		out, err := run(t, "ask", "Can I take ECO302?", "--completed", "ECO101,ECO102")
		require.NoError(t, err)

		assert.Contains(t, out, "prerequisite_check")
		assert.Contains(t, out, "Not yet eligible for ECO302")
		assert.Contains(t, out, "[rule-based]")
	})

	t.Run("json output", func(t *testing.T) {
		out, err := run(t, "ask", "Plan my next semester", "--credits", "40", "-o", "json")
		require.NoError(t, err)

		var resp struct {
			Intent     domain.Intent     `json:"intent"`
			Annotation domain.Annotation `json:"annotation"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, domain.IntentSemesterPlanning, resp.Intent.Kind)
		assert.Equal(t, domain.ProvenanceRuleBased, resp.Annotation.Provenance)
	})

	t.Run("unknown intent", func(t *testing.T) {
		out, err := run(t, "ask", "hello", "there")
		require.NoError(t, err)
		assert.Contains(t, out, "I specialize in academic planning")
	})
}

func TestPlan(t *testing.T) {
	out, err := run(t, "plan", "--target", "ECO205", "--terms", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Term 1:")
	assert.Contains(t, out, "Term 2: ECO205")

	_, err = run(t, "plan", "--target", "ECO302", "--terms", "1")
	require.Error(t, err)
	assert.True(t, apperrors.IsInfeasiblePlan(err))
}

func TestSearch(t *testing.T) {
	out, err := run(t, "search", "econometrics", "-o", "json")
	require.NoError(t, err)

	var courses []domain.Course
	require.NoError(t, json.Unmarshal([]byte(out), &courses))
	require.NotEmpty(t, courses)

	ids := make([]string, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	assert.Contains(t, ids, "ECO205")
}

func TestSubjects(t *testing.T) {
	out, err := run(t, "subjects")
	require.NoError(t, err)
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "eco")
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := run(t, "subjects", "-o", "yaml")
	assert.ErrorContains(t, err, "unknown output format")
}
