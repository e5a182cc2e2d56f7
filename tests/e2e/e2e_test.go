//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// E2ETestSuite runs end-to-end API tests against a running advisor server.
// The server is expected to use the embedded catalog and the mock AI gateway.
type E2ETestSuite struct {
	suite.Suite
	baseURL string
	client  *http.Client
}

func TestE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(E2ETestSuite))
}

func (s *E2ETestSuite) SetupSuite() {
	s.baseURL = os.Getenv("ACADVISOR_API_URL")
	if s.baseURL == "" {
		s.baseURL = "http://localhost:8080"
	}

	s.client = &http.Client{
		Timeout: 30 * time.Second,
	}

	s.waitForAPI()
}

func (s *E2ETestSuite) waitForAPI() {
	for i := 0; i < 30; i++ {
		resp, err := s.client.Get(s.baseURL + "/ready")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(time.Second)
	}
	s.T().Fatal("API failed to become ready within timeout")
}

// ============ HELPER METHODS ============

func (s *E2ETestSuite) query(body map[string]any) (*http.Response, map[string]any) {
	payload, err := json.Marshal(body)
	require.NoError(s.T(), err)

	resp, err := s.client.Post(s.baseURL+"/query", "application/json", bytes.NewReader(payload))
	require.NoError(s.T(), err)

	var out map[string]any
	s.parseResponse(resp, &out)
	return resp, out
}

func (s *E2ETestSuite) parseResponse(resp *http.Response, v any) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	if v != nil {
		require.NoError(s.T(), json.Unmarshal(body, v), "Failed to parse response: %s", string(body))
	}
}

// ============ PROBES ============

func (s *E2ETestSuite) TestHealthEndpoint() {
	resp, err := s.client.Get(s.baseURL + "/health")
	require.NoError(s.T(), err)

	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var result map[string]any
	s.parseResponse(resp, &result)
	assert.Equal(s.T(), "healthy", result["status"])
	assert.Contains(s.T(), result["checks"], "catalog")
}

func (s *E2ETestSuite) TestMetricsEndpoint() {
	s.query(map[string]any{"text": "Explain econometrics courses"})

	resp, err := s.client.Get(s.baseURL + "/metrics")
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	assert.Contains(s.T(), string(body), "acadvisor_queries_total")
	assert.Contains(s.T(), string(body), "acadvisor_http_requests_total")
}

// ============ INTENTS ============

func (s *E2ETestSuite) TestSemesterPlanning() {
	resp, body := s.query(map[string]any{
		"text": "What should I take next semester given 60 completed credits?",
	})
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	assert.Equal(s.T(), "semester_planning", body["intent"].(map[string]any)["kind"])
	assert.NotEmpty(s.T(), resp.Header.Get("X-Request-ID"))

	result := body["result"].(map[string]any)
	plan := result["plan"].(map[string]any)
	for _, term := range plan["terms"].([]any) {
		credits := term.(map[string]any)["totalCredits"].(float64)
		assert.LessOrEqual(s.T(), credits, plan["creditCap"].(float64))
	}
}

func (s *E2ETestSuite) TestCareerPathway() {
	resp, body := s.query(map[string]any{
		"text": "Which courses prepare me for a career in quantitative finance?",
	})
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	result := body["result"].(map[string]any)
	assert.Equal(s.T(), "quantitative_finance", result["careerTag"])
	assert.NotEmpty(s.T(), result["courses"])

	annotation := body["annotation"].(map[string]any)
	assert.Contains(s.T(), []any{"ai-generated", "rule-based", "fallback"}, annotation["provenance"])
}

func (s *E2ETestSuite) TestFollowUpUsesContext() {
	resp, body := s.query(map[string]any{
		"text": "What about with 90 credits?",
		"context": map[string]any{
			"previousIntent": "semester_planning",
		},
	})
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	intent := body["intent"].(map[string]any)
	assert.Equal(s.T(), "semester_planning", intent["kind"])
	assert.Equal(s.T(), float64(90), body["result"].(map[string]any)["completedCredits"])
}

func (s *E2ETestSuite) TestUnknownIntent() {
	resp, body := s.query(map[string]any{"text": "What is the weather like?"})
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	assert.Equal(s.T(), "unknown", body["intent"].(map[string]any)["kind"])
	assert.NotEmpty(s.T(), body["clarification"])
}

func (s *E2ETestSuite) TestConcurrentQueriesAreIndependent() {
	texts := []string{
		"Can I take ECO302?",
		"Explain econometrics courses",
		"Which courses prepare me for ESG investing?",
		"Plan my next semester",
	}

	var wg sync.WaitGroup
	kinds := make([]any, len(texts))
	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			payload, _ := json.Marshal(map[string]any{"text": text})
			resp, err := s.client.Post(s.baseURL+"/query", "application/json", bytes.NewReader(payload))
			if err != nil {
				return
			}
			defer resp.Body.Close()
			var out map[string]any
			if json.NewDecoder(resp.Body).Decode(&out) == nil {
				kinds[i] = out["intent"].(map[string]any)["kind"]
			}
		}(i, text)
	}
	wg.Wait()

	assert.Equal(s.T(), []any{"prerequisite_check", "course_lookup", "career_pathway", "semester_planning"}, kinds)
}

// ============ ERRORS ============

func (s *E2ETestSuite) TestInvalidInput() {
	resp, body := s.query(map[string]any{"text": "   "})
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)
	assert.Equal(s.T(), "INVALID_INPUT", body["code"])
}

func (s *E2ETestSuite) TestUnknownCourse() {
	resp, body := s.query(map[string]any{"text": "Can I take ECO999?"})
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
	assert.Equal(s.T(), "UNKNOWN_COURSE", body["code"])
	assert.Equal(s.T(), "ECO999", body["details"].(map[string]any)["courseId"])
}

func (s *E2ETestSuite) TestInfeasiblePlan() {
	resp, body := s.query(map[string]any{"text": "Build a roadmap to ECO302 with 1 semester left"})
	assert.Equal(s.T(), http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(s.T(), "INFEASIBLE_PLAN", body["code"])
	assert.NotEmpty(s.T(), body["details"].(map[string]any)["reason"])
}

func (s *E2ETestSuite) TestNotFound() {
	resp, err := s.client.Get(s.baseURL + "/nonexistent")
	require.NoError(s.T(), err)
	defer resp.Body.Close()
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
}
