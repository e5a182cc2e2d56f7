package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/acadvisor/acadvisor/internal/domain"
	"github.com/acadvisor/acadvisor/internal/pkg/metrics"
)

//go:embed data/courses.yaml
var embeddedCatalog []byte

// Source produces the raw course list for a catalog
type Source interface {
	Name() string
	Load(ctx context.Context) ([]domain.Course, error)
}

// Load reads a source once and builds a validated catalog from it
func Load(ctx context.Context, src Source, logger *zap.Logger) (*Catalog, error) {
	start := time.Now()

	courses, err := src.Load(ctx)
	if err == nil {
		var c *Catalog
		if c, err = New(courses); err == nil {
			metrics.RecordCatalogLoad(src.Name(), c.Len(), nil)
			logger.Info("course catalog loaded",
				zap.String("source", src.Name()),
				zap.Int("courses", c.Len()),
				zap.Duration("duration", time.Since(start)),
			)
			return c, nil
		}
	}

	metrics.RecordCatalogLoad(src.Name(), 0, err)
	return nil, fmt.Errorf("failed to load catalog from %s: %w", src.Name(), err)
}

type catalogDocument struct {
	Courses []domain.Course `yaml:"courses"`
}

// Parse decodes a YAML catalog. Both a document with a top-level "courses"
// key and a bare list of courses are accepted.
func Parse(data []byte) ([]domain.Course, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid catalog yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("catalog document is empty")
	}

	node := root.Content[0]
	switch node.Kind {
	case yaml.SequenceNode:
		var courses []domain.Course
		if err := node.Decode(&courses); err != nil {
			return nil, fmt.Errorf("invalid course list: %w", err)
		}
		return courses, nil
	case yaml.MappingNode:
		var doc catalogDocument
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("invalid catalog document: %w", err)
		}
		if doc.Courses == nil {
			return nil, fmt.Errorf("catalog document has no courses key")
		}
		return doc.Courses, nil
	default:
		return nil, fmt.Errorf("catalog must be a mapping or a list")
	}
}

// EmbeddedSource serves the catalog compiled into the binary
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return "embedded" }

func (EmbeddedSource) Load(context.Context) ([]domain.Course, error) {
	return Parse(embeddedCatalog)
}

// FileSource reads a YAML catalog from disk
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file" }

func (s FileSource) Load(ctx context.Context) ([]domain.Course, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// ObjectReader fetches an object body by key
type ObjectReader interface {
	ReadObject(ctx context.Context, key string) ([]byte, error)
}

// ObjectSource reads a YAML catalog from an object store bucket
type ObjectSource struct {
	Reader ObjectReader
	Key    string
}

func (s ObjectSource) Name() string { return "minio" }

func (s ObjectSource) Load(ctx context.Context) ([]domain.Course, error) {
	data, err := s.Reader.ReadObject(ctx, s.Key)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Querier runs read queries
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads the catalog from a courses table
type PostgresSource struct {
	DB    Querier
	Table string
}

func (s PostgresSource) Name() string { return "postgres" }

func (s PostgresSource) Load(ctx context.Context) ([]domain.Course, error) {
	rows, err := s.DB.Query(ctx, selectCoursesSQL(s.Table))
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	courses, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Course])
	if err != nil {
		return nil, fmt.Errorf("failed to read courses: %w", err)
	}

	return courses, nil
}

func selectCoursesSQL(table string) string {
	if table == "" {
		table = "courses"
	}
	return `
		SELECT id, title, credits,
			COALESCE(prerequisites, '{}'::text[]) AS prerequisites,
			COALESCE(description, '') AS description,
			COALESCE(tags, '{}'::text[]) AS tags,
			COALESCE(subjects, '{}'::text[]) AS subjects,
			COALESCE(difficulty, 0) AS difficulty,
			COALESCE(semester, 0) AS semester
		FROM ` + pgx.Identifier{table}.Sanitize() + `
		ORDER BY id`
}
