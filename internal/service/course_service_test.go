package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadvisor/acadvisor/internal/catalog"
	"github.com/acadvisor/acadvisor/internal/domain"
	apperrors "github.com/acadvisor/acadvisor/internal/pkg/errors"
	"github.com/acadvisor/acadvisor/internal/testutil"
)

func ids(courses []domain.Course) []string {
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.ID
	}
	return out
}

func TestCourseService_Search(t *testing.T) {
	svc := NewCourseService(testutil.FixtureCatalog(t), zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name    string
		query   string
		filters SearchFilters
		want    []string
	}{
		{
			name:  "title and subject matches",
			query: "econometrics",
			want:  []string{"ECON202", "STAT101"},
		},
		{
			name:  "exact course code",
			query: "tell me about econ301",
			want:  []string{"ECON301"},
		},
		{
			name:  "ties ordered by ID",
			query: "economics",
			want:  []string{"ECON101", "ECON201", "ECON301", "LAB401"},
		},
		{
			name:  "career tag parts count as tag matches",
			query: "finance",
			want:  []string{"FIN201", "ECON202"},
		},
		{
			name:    "career tag filter",
			query:   "finance",
			filters: SearchFilters{CareerTag: domain.CareerPolicyAnalysis},
			want:    []string{},
		},
		{
			name:    "max credits filter",
			query:   "research",
			filters: SearchFilters{MaxCredits: testutil.IntPtr(10)},
			want:    []string{},
		},
		{
			name:    "limit",
			query:   "economics",
			filters: SearchFilters{Limit: 2},
			want:    []string{"ECON101", "ECON201"},
		},
		{
			name:  "empty query",
			query: "",
			want:  []string{},
		},
		{
			name:  "stop words only",
			query: "show me the courses",
			want:  []string{},
		},
		{
			name:  "no match",
			query: "astrophysics",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Search(ctx, tt.query, tt.filters)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestCourseService_StoreUnavailable(t *testing.T) {
	svc := NewCourseService(catalog.Unloaded(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Search(ctx, "economics", SearchFilters{})
	assert.True(t, apperrors.IsStoreUnavailable(err))

	_, err = svc.ByCareerTag(ctx, domain.CareerQuantitativeFinance, nil)
	assert.True(t, apperrors.IsStoreUnavailable(err))

	_, err = svc.Subjects(ctx)
	assert.True(t, apperrors.IsStoreUnavailable(err))
}

func TestCourseService_ByCareerTag(t *testing.T) {
	svc := NewCourseService(testutil.FixtureCatalog(t), zap.NewNop())

	got, err := svc.ByCareerTag(context.Background(), domain.CareerQuantitativeFinance, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"ECON202", "FIN201"}, ids(got))

	got, err = svc.ByCareerTag(context.Background(), "astronaut", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCourseService_Subjects(t *testing.T) {
	svc := NewCourseService(testutil.FixtureCatalog(t), zap.NewNop())

	subjects, err := svc.Subjects(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, len(domain.SubjectFamilies))

	assert.Equal(t, "eco", subjects[0].Key)
	assert.Equal(t, 4, subjects[0].CourseCount)
	assert.NotEmpty(t, subjects[0].Explanation)
}
