package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTruncateSQL(t *testing.T) {
	assert.Equal(t, "SELECT id FROM courses", truncateSQL("SELECT id FROM courses", 22))
	assert.Equal(t, "SELECT id...", truncateSQL("SELECT id FROM courses", 9))
	assert.Equal(t, "", truncateSQL("", 5))
}

func TestQueryTracer(t *testing.T) {
	tests := []struct {
		name    string
		started time.Time
		end     pgx.TraceQueryEndData
		want    QueryStats
	}{
		{
			name:    "rows are counted from the command tag",
			started: time.Now(),
			end:     pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("SELECT 7")},
			want:    QueryStats{Queries: 1, RowsRead: 7},
		},
		{
			name:    "failed query",
			started: time.Now(),
			end:     pgx.TraceQueryEndData{Err: errors.New("relation \"courses\" does not exist")},
			want:    QueryStats{Queries: 1, Failed: 1},
		},
		{
			name:    "slow query",
			started: time.Now().Add(-2 * slowQueryThreshold),
			end:     pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("SELECT 0")},
			want:    QueryStats{Queries: 1, Slow: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer := newQueryTracer(true)
			ctx := context.WithValue(context.Background(), traceKey{}, traceStart{at: tt.started, sql: selectCoursesProbe})

			tracer.TraceQueryEnd(ctx, nil, tt.end)
			assert.Equal(t, tt.want, tracer.stats())
		})
	}

	t.Run("start stores the statement", func(t *testing.T) {
		tracer := newQueryTracer(false)
		ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: selectCoursesProbe})

		start, ok := ctx.Value(traceKey{}).(traceStart)
		assert.True(t, ok)
		assert.Equal(t, selectCoursesProbe, start.sql)
		assert.False(t, start.at.IsZero())
	})

	t.Run("end without start is ignored", func(t *testing.T) {
		tracer := newQueryTracer(false)
		tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})
		assert.Zero(t, tracer.stats())
	})
}

func TestPostgresDB_WithoutPool(t *testing.T) {
	db := &PostgresDB{}
	db.Close()
	assert.Error(t, db.Ping(context.Background()))
	assert.Equal(t, QueryStats{}, db.Stats())
}

const selectCoursesProbe = "SELECT id, title, credits FROM courses ORDER BY id"
