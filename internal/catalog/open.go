package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/acadvisor/acadvisor/internal/config"
	"github.com/acadvisor/acadvisor/internal/pkg/database"
)

// Open connects to the configured source, loads the catalog and releases
// the connection. The catalog is never re-read, so nothing stays open.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Catalog, error) {
	switch cfg.Catalog.Source {
	case config.CatalogEmbedded, "":
		return Load(ctx, EmbeddedSource{}, logger)

	case config.CatalogFile:
		return Load(ctx, FileSource{Path: cfg.Catalog.Path}, logger)

	case config.CatalogPostgres:
		db, err := database.NewPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		cat, err := Load(ctx, PostgresSource{DB: db, Table: cfg.Catalog.Table}, logger)
		stats := db.Stats()
		logger.Debug("postgres catalog read",
			zap.Int64("queries", stats.Queries),
			zap.Int64("rows", stats.RowsRead),
			zap.Int64("slow", stats.Slow),
		)
		return cat, err

	case config.CatalogMinIO:
		store, err := database.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return nil, err
		}
		return Load(ctx, ObjectSource{Reader: store, Key: cfg.Catalog.ObjectKey}, logger)

	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
}
