package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadvisor/acadvisor/internal/ai"
	"github.com/acadvisor/acadvisor/internal/catalog"
	"github.com/acadvisor/acadvisor/internal/config"
	"github.com/acadvisor/acadvisor/internal/domain"
	apperrors "github.com/acadvisor/acadvisor/internal/pkg/errors"
	"github.com/acadvisor/acadvisor/internal/testutil"
)

func newTestOrchestrator(t *testing.T, store catalog.Store, gateway ai.Gateway, timeoutMs int) *Orchestrator {
	t.Helper()
	logger := zap.NewNop()
	return NewOrchestrator(
		NewDispatcher(0.5, logger),
		NewCourseService(store, logger),
		NewPlanningService(store, 20, logger),
		gateway,
		OrchestratorConfig{AI: config.AIConfig{TimeoutMs: timeoutMs}, DefaultTermsRemaining: 4},
		logger,
	)
}

func TestOrchestrator_CourseLookup(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.On("Enhance", mock.Anything, mock.MatchedBy(func(req ai.Request) bool {
		return req.Intent == domain.IntentCourseLookup && req.Timeout == time.Second && req.Prompt != ""
	})).Return(ai.Result{Text: "Econometrics builds regression skills.", Source: "test"}).Once()

	o := newTestOrchestrator(t, testutil.EmbeddedCatalog(t), gw, 1000)

	resp, err := o.Query(context.Background(), "Explain econometrics courses", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.IntentCourseLookup, resp.Intent.Kind)
	assert.Equal(t, domain.ResultCourses, resp.ResultType)
	assert.NotEmpty(t, resp.QueryID)
	assert.Equal(t, domain.ProvenanceAIGenerated, resp.Annotation.Provenance)
	assert.Equal(t, "Econometrics builds regression skills.", resp.Annotation.Text)

	res, ok := resp.Result.(domain.CourseListResult)
	require.True(t, ok)
	assert.Contains(t, ids(res.Courses), "ECO205")
	assert.Contains(t, ids(res.Courses), "ECO214")
	gw.AssertExpectations(t)
}

func TestOrchestrator_MockGatewayIsRuleBased(t *testing.T) {
	o := newTestOrchestrator(t, testutil.EmbeddedCatalog(t), ai.NewMockGateway(), 1000)

	resp, err := o.Query(context.Background(), "What should I take next semester given 60 completed credits?", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.IntentSemesterPlanning, resp.Intent.Kind)
	assert.Equal(t, domain.ProvenanceRuleBased, resp.Annotation.Provenance)

	res, ok := resp.Result.(domain.PlanResult)
	require.True(t, ok)
	assert.Equal(t, 60, res.CompletedCredits)
	assert.Equal(t, 2, res.Workload.AcademicYear)
	// STA101 opens the econometrics chain, POL201 opens nothing
	assert.Equal(t, [][]string{{"ECO101", "ECO102", "MTH101", "STA101"}}, termIDs(res.Plan))
	assert.Contains(t, resp.Annotation.Text, "Term 1: ECO101, ECO102, MTH101, STA101 (20 credits).")

	require.NotNil(t, res.Plan.Annotation)
	assert.Equal(t, resp.Annotation, *res.Plan.Annotation)
}

func TestOrchestrator_CareerPathwayFallsBackOnTimeout(t *testing.T) {
	store := testutil.EmbeddedCatalog(t)
	text := "Which courses prepare me for a career in quantitative finance?"

	baseline, err := newTestOrchestrator(t, store, ai.NewMockGateway(), 1000).Query(context.Background(), text, nil)
	require.NoError(t, err)

	gw := testutil.NewMockGateway()
	gw.On("Enhance", mock.Anything, mock.Anything).
		Return(ai.Result{Text: "too late", Source: "test"}).
		WaitUntil(time.After(500 * time.Millisecond))

	start := time.Now()
	resp, err := newTestOrchestrator(t, store, gw, 20).Query(context.Background(), text, nil)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 400*time.Millisecond)

	assert.Equal(t, domain.IntentCareerPathway, resp.Intent.Kind)
	assert.Equal(t, domain.ProvenanceFallback, resp.Annotation.Provenance)
	assert.NotEmpty(t, resp.Annotation.Text)

	got := resp.Result.(domain.PathwayResult)
	want := baseline.Result.(domain.PathwayResult)
	assert.Equal(t, domain.CareerQuantitativeFinance, got.CareerTag)
	assert.Equal(t, want.Plan.CourseIDs(), got.Plan.CourseIDs())
	assert.Equal(t, ids(want.Courses), ids(got.Courses))
	assert.Equal(t, want.AlignmentScore, got.AlignmentScore)
	assert.Equal(t, want.Gaps, got.Gaps)
	assert.Equal(t, "ECO302", got.Plan.Terms[len(got.Plan.Terms)-1].Courses[0].ID)
}

func TestOrchestrator_GatewayFailuresNeverSurface(t *testing.T) {
	failures := []ai.Failure{
		ai.FailureTimeout, ai.FailureDisabled, ai.FailureRateLimited, ai.FailureMalformed, ai.FailureUnavailable,
	}

	for _, f := range failures {
		t.Run(string(f), func(t *testing.T) {
			gw := testutil.NewMockGateway()
			gw.On("Enhance", mock.Anything, mock.Anything).Return(ai.Failed("test", f))

			o := newTestOrchestrator(t, testutil.EmbeddedCatalog(t), gw, 1000)
			resp, err := o.Query(context.Background(), "Can I take ECO302?", nil)
			require.NoError(t, err)

			assert.Equal(t, domain.ProvenanceFallback, resp.Annotation.Provenance)
			res := resp.Result.(domain.PrerequisiteResult)
			assert.False(t, res.Eligible)
			assert.Equal(t, []string{"MTH101", "STA101", "ECO205", "ECO214"}, res.Missing)
			assert.Contains(t, resp.Annotation.Text, "Start with MTH101")
		})
	}
}

func TestOrchestrator_DomainErrorsPropagate(t *testing.T) {
	tests := []struct {
		name  string
		store catalog.Store
		text  string
		check func(error) bool
	}{
		{
			name:  "unknown course",
			store: testutil.EmbeddedCatalog(t),
			text:  "Can I take ECO999?",
			check: apperrors.IsUnknownCourse,
		},
		{
			name:  "infeasible plan",
			store: testutil.EmbeddedCatalog(t),
			text:  "Build a roadmap to ECO302 with 1 semester left",
			check: apperrors.IsInfeasiblePlan,
		},
		{
			name:  "store unavailable",
			store: catalog.Unloaded(),
			text:  "Explain econometrics courses",
			check: apperrors.IsStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := testutil.NewMockGateway()
			o := newTestOrchestrator(t, tt.store, gw, 1000)

			resp, err := o.Query(context.Background(), tt.text, nil)
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
			gw.AssertNotCalled(t, "Enhance", mock.Anything, mock.Anything)
		})
	}
}

func TestOrchestrator_UnknownIntent(t *testing.T) {
	gw := testutil.NewMockGateway()
	o := newTestOrchestrator(t, testutil.EmbeddedCatalog(t), gw, 1000)

	resp, err := o.Query(context.Background(), "hello there", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.IntentUnknown, resp.Intent.Kind)
	assert.Nil(t, resp.Result)
	assert.Equal(t, Clarification, resp.Clarification)
	assert.Equal(t, domain.ProvenanceRuleBased, resp.Annotation.Provenance)
	gw.AssertNotCalled(t, "Enhance", mock.Anything, mock.Anything)
}

func TestOrchestrator_BlankText(t *testing.T) {
	o := newTestOrchestrator(t, testutil.EmbeddedCatalog(t), ai.NewMockGateway(), 1000)

	_, err := o.Query(context.Background(), "  ", nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestOrchestrator_CallerCancellation(t *testing.T) {
	gw := testutil.NewMockGateway()
	gw.On("Enhance", mock.Anything, mock.Anything).
		Return(ai.Result{Text: "ignored", Source: "test"}).
		WaitUntil(time.After(2 * time.Second))

	o := newTestOrchestrator(t, testutil.EmbeddedCatalog(t), gw, 5000)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	start := time.Now()
	resp, err := o.Query(ctx, "Explain econometrics courses", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, resp)
	assert.Less(t, time.Since(start), time.Second)
}

func TestOrchestrator_ContextFollowUp(t *testing.T) {
	o := newTestOrchestrator(t, testutil.EmbeddedCatalog(t), ai.NewMockGateway(), 1000)

	rc := &domain.RequestContext{
		PreviousIntent:   domain.IntentCareerPathway,
		CompletedCourses: []string{"ECO101", "ECO102", "MTH101", "STA101"},
		TargetProgram:    "ESG and impact investing",
	}
	resp, err := o.Query(context.Background(), "And what about 3 more terms?", rc)
	require.NoError(t, err)

	assert.Equal(t, domain.IntentCareerPathway, resp.Intent.Kind)
	res := resp.Result.(domain.PathwayResult)
	assert.Equal(t, domain.CareerSustainableFinance, res.CareerTag)
	assert.Equal(t, "Sustainable Finance", res.Specialization)
	assert.LessOrEqual(t, len(res.Plan.Terms), 3)
	assert.NotContains(t, res.Plan.CourseIDs(), "ECO101")
}
