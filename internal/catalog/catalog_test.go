package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadvisor/acadvisor/internal/domain"
	apperrors "github.com/acadvisor/acadvisor/internal/pkg/errors"
)

func TestNew(t *testing.T) {
	t.Run("normalises and indexes courses", func(t *testing.T) {
		c, err := New([]domain.Course{
			{ID: " eco201 ", Title: "Intermediate Micro", Credits: 5, Prerequisites: []string{"eco101"}, Subjects: []string{"ECO"}},
			{ID: "ECO101", Title: "Principles", Credits: 5, Tags: []string{"Policy_Analysis"}},
		})
		require.NoError(t, err)

		assert.True(t, c.Loaded())
		assert.Equal(t, 2, c.Len())
		assert.Equal(t, []string{"ECO101", "ECO201"}, ids(c.All()))

		course, ok := c.Get("eco201")
		require.True(t, ok)
		assert.Equal(t, []string{"ECO101"}, course.Prerequisites)
		assert.Equal(t, []string{"ECO201"}, ids(c.BySubject("eco")))
		assert.Equal(t, []string{"ECO101"}, ids(c.ByTag("policy_analysis")))
	})

	tests := []struct {
		name    string
		courses []domain.Course
		errMsg  string
	}{
		{"missing id", []domain.Course{{Title: "Nameless", Credits: 5}}, "has no id"},
		{"zero credits", []domain.Course{{ID: "ECO101", Credits: 0}}, "credits must be positive"},
		{"bad difficulty", []domain.Course{{ID: "ECO101", Credits: 5, Difficulty: 9}}, "difficulty"},
		{"duplicate", []domain.Course{{ID: "ECO101", Credits: 5}, {ID: "eco101", Credits: 5}}, "duplicate course id ECO101"},
		{"unknown prerequisite", []domain.Course{{ID: "ECO201", Credits: 5, Prerequisites: []string{"ECO999"}}}, "unknown prerequisite ECO999"},
		{"self prerequisite", []domain.Course{{ID: "ECO201", Credits: 5, Prerequisites: []string{"ECO201"}}}, "itself"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.courses)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestCatalog_ReadsAreCopies(t *testing.T) {
	c, err := New([]domain.Course{{ID: "ECO101", Title: "Principles", Credits: 5}})
	require.NoError(t, err)

	all := c.All()
	all[0].Title = "changed"

	course, _ := c.Get("ECO101")
	assert.Equal(t, "Principles", course.Title)
}

func TestUnloaded(t *testing.T) {
	c := Unloaded()

	assert.False(t, c.Loaded())
	assert.Zero(t, c.Len())
	assert.Nil(t, c.All())
	_, ok := c.Get("ECO101")
	assert.False(t, ok)

	err := EnsureLoaded(c)
	assert.True(t, apperrors.IsStoreUnavailable(err))
	assert.True(t, apperrors.IsStoreUnavailable(EnsureLoaded(nil)))
}

func TestParse(t *testing.T) {
	t.Run("document form", func(t *testing.T) {
		courses, err := Parse([]byte("courses:\n  - id: ECO101\n    title: Principles\n    credits: 5\n"))
		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, "ECO101", courses[0].ID)
		assert.Equal(t, 5, courses[0].Credits)
	})

	t.Run("bare list", func(t *testing.T) {
		courses, err := Parse([]byte("- id: ECO101\n  credits: 5\n  prerequisites: [MTH101]\n"))
		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, []string{"MTH101"}, courses[0].Prerequisites)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, in := range []string{"", "courses: [", "just a string", "other: 1"} {
			_, err := Parse([]byte(in))
			assert.Error(t, err, "input %q", in)
		}
	})
}

func TestEmbeddedSource(t *testing.T) {
	c, err := Load(context.Background(), EmbeddedSource{}, zap.NewNop())
	require.NoError(t, err)

	assert.Greater(t, c.Len(), 20)

	for _, s := range domain.Specializations {
		for _, id := range append(append([]string{}, s.CoreSequence...), s.Electives...) {
			_, ok := c.Get(id)
			assert.True(t, ok, "%s course %s missing from embedded catalog", s.Tag, id)
		}
		assert.NotEmpty(t, c.ByTag(s.Tag))
	}
	for _, f := range domain.SubjectFamilies {
		assert.NotEmpty(t, c.BySubject(f.Key), "subject %s", f.Key)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "courses.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- id: ECO101\n  title: Principles\n  credits: 5\n"), 0o600))

	c, err := Load(context.Background(), FileSource{Path: path}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = Load(context.Background(), FileSource{Path: filepath.Join(dir, "missing.yaml")}, zap.NewNop())
	assert.Error(t, err)
}

type fakeObjects map[string][]byte

func (f fakeObjects) ReadObject(_ context.Context, key string) ([]byte, error) {
	data, ok := f[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func TestObjectSource(t *testing.T) {
	objects := fakeObjects{"catalog/courses.yaml": []byte("courses:\n  - id: FIN201\n    credits: 5\n")}

	c, err := Load(context.Background(), ObjectSource{Reader: objects, Key: "catalog/courses.yaml"}, zap.NewNop())
	require.NoError(t, err)
	_, ok := c.Get("FIN201")
	assert.True(t, ok)

	_, err = Load(context.Background(), ObjectSource{Reader: objects, Key: "missing"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minio")
}

func TestSelectCoursesSQL(t *testing.T) {
	assert.Contains(t, selectCoursesSQL(""), `FROM "courses"`)
	assert.Contains(t, selectCoursesSQL("catalog.courses"), `FROM "catalog.courses"`)
	assert.Contains(t, selectCoursesSQL(`x"; DROP TABLE y`), `FROM "x""; DROP TABLE y"`)
	assert.Contains(t, selectCoursesSQL(""), "COALESCE(prerequisites, '{}'::text[]) AS prerequisites")
}

var courseColumns = []string{
	"id", "title", "credits", "prerequisites", "description", "tags", "subjects", "difficulty", "semester",
}

type fakeRows struct {
	columns []string
	values  [][]any
	pos     int
	err     error
}

func (r *fakeRows) Close()                        {}
func (r *fakeRows) Err() error                    { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) RawValues() [][]byte           { return nil }
func (r *fakeRows) Conn() *pgx.Conn               { return nil }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fields := make([]pgconn.FieldDescription, len(r.columns))
	for i, name := range r.columns {
		fields[i] = pgconn.FieldDescription{Name: name}
	}
	return fields
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) { return r.values[r.pos-1], nil }

func (r *fakeRows) Scan(dest ...any) error {
	row := r.values[r.pos-1]
	if len(dest) != len(row) {
		return errors.New("column count mismatch")
	}
	for i, v := range row {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

type fakeQuerier struct {
	rows *fakeRows
	sql  string
	err  error
}

func (q *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.sql = sql
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func TestPostgresSource(t *testing.T) {
	t.Run("maps columns to course fields by name", func(t *testing.T) {
		db := &fakeQuerier{rows: &fakeRows{
			columns: courseColumns,
			values: [][]any{
				{"ECO101", "Principles", 5, []string{}, "Intro", []string{"policy_analysis"}, []string{"ECO"}, 2, 1},
				{"ECO201", "Intermediate Micro", 5, []string{"ECO101"}, "", []string{}, []string{"ECO"}, 0, 0},
			},
		}}

		c, err := Load(context.Background(), PostgresSource{DB: db, Table: "courses"}, zap.NewNop())
		require.NoError(t, err)
		assert.Contains(t, db.sql, `FROM "courses"`)
		assert.Equal(t, 2, c.Len())

		course, ok := c.Get("ECO201")
		require.True(t, ok)
		assert.Equal(t, "Intermediate Micro", course.Title)
		assert.Equal(t, []string{"ECO101"}, course.Prerequisites)

		intro, ok := c.Get("ECO101")
		require.True(t, ok)
		assert.Equal(t, 2, intro.Difficulty)
		assert.Equal(t, 1, intro.Semester)
		assert.Equal(t, "Intro", intro.Description)
	})

	t.Run("missing column is an error", func(t *testing.T) {
		db := &fakeQuerier{rows: &fakeRows{
			columns: courseColumns[:3],
			values:  [][]any{{"ECO101", "Principles", 5}},
		}}

		_, err := PostgresSource{DB: db}.Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read courses")
	})

	t.Run("query failure is wrapped", func(t *testing.T) {
		db := &fakeQuerier{err: errors.New("connection refused")}

		_, err := PostgresSource{DB: db}.Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func ids(courses []domain.Course) []string {
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.ID
	}
	return out
}
