package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"column-partitioner/internal/ranger"
	"column-partitioner/internal/util"
)

const driverName = "mysql"

// Open validates the DSN and sizes the pool for the given worker count.
func Open(dsn string, workers int) (*sql.DB, error) {
	if _, err := mysql.ParseDSN(dsn); err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	Tune(db, workers)

	return db, nil
}

func MustOpen(dsn string, workers int) *sql.DB {
	db, err := Open(dsn, workers)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	return db
}

func Tune(db *sql.DB, workers int) {
	if workers < 1 {
		workers = 1
	}

	db.SetMaxOpenConns(workers + 2)
	db.SetMaxIdleConns(workers)
	db.SetConnMaxLifetime(5 * time.Minute)
}

var _ ranger.Querier = (*SQLQuerier)(nil)

// SQLQuerier runs scalar aggregates over a database/sql pool.
type SQLQuerier struct {
	DB *sql.DB
}

func NewQuerier(db *sql.DB) *SQLQuerier {
	return &SQLQuerier{DB: db}
}

// ScalarInt64 returns valid=false for a NULL aggregate or an empty result.
func (q *SQLQuerier) ScalarInt64(ctx context.Context, query string) (int64, bool, error) {
	var v sql.NullInt64

	err := q.DB.QueryRowContext(ctx, query).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return v.Int64, v.Valid, nil
}

// BuildPartitionSelect returns the statement a worker runs for one
// partition. An empty clause selects the whole table.
func BuildPartitionSelect(table string, columns []string, clause string) string {
	cols := "*"
	if len(columns) > 0 {
		cols = strings.Join(util.IdentAll(columns), ",")
	}

	q := fmt.Sprintf("SELECT %s FROM %s", cols, table)

	if clause = strings.TrimSpace(clause); clause != "" {
		q += " " + clause
	}

	return q
}
