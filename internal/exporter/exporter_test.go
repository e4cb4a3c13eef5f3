package exporter

import (
	"context"
	"errors"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"column-partitioner/internal/config"
	"column-partitioner/internal/progress"
	"column-partitioner/internal/ranger"
)

func exportConfig(dir string) config.ExportConfig {
	return config.ExportConfig{
		PlanConfig: config.PlanConfig{Table: "log", Column: "id", Partitions: 2},
		OutDir:     dir,
		Prefix:     "log",
		Workers:    1,
		ChunkSize:  2,
	}
}

func chunkNames(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	return names
}

func TestRun(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	mock.ExpectQuery("SELECT * FROM log WHERE id BETWEEN 0 AND 4").
		WillReturnRows(sqlmock.NewRows([]string{"id", "msg", "ins_ts"}).
			AddRow(int64(0), []byte("a"), ts).
			AddRow(int64(3), nil, ts).
			AddRow(int64(4), []byte("c"), ts))
	mock.ExpectQuery("SELECT * FROM log WHERE id BETWEEN 5 AND 9").
		WillReturnRows(sqlmock.NewRows([]string{"id", "msg", "ins_ts"}).
			AddRow(int64(7), []byte("d"), ts))

	set, err := ranger.Plan("id", 0, 9, 2)
	require.NoError(t, err)

	dir := t.TempDir()
	var counters progress.Counters

	results, err := Run(context.Background(), db, exportConfig(dir), set, &counters)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, results, 2)
	assert.Equal(t, "partition0", results[0].Name)
	assert.Equal(t, uint64(3), results[0].Rows)
	assert.Len(t, results[0].Files, 2)
	assert.Equal(t, "partition1", results[1].Name)
	assert.Equal(t, uint64(1), results[1].Rows)
	assert.Len(t, results[1].Files, 1)

	assert.Equal(t, uint64(4), counters.Rows.Load())
	assert.Equal(t, uint64(3), counters.Files.Load())
	assert.Equal(t, uint64(2), counters.Partitions.Load())

	assert.Equal(t, []string{
		"log-p0_000001.csv.gz",
		"log-p0_000002.csv.gz",
		"log-p1_000001.csv.gz",
	}, chunkNames(t, dir))
}

func TestRunUnpartitioned(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT `id` FROM log").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	dir := t.TempDir()
	cfg := exportConfig(dir)
	cfg.Columns = []string{"id"}
	var counters progress.Counters

	results, err := Run(context.Background(), db, cfg, ranger.Unpartitioned(), &counters)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, results, 1)
	assert.Equal(t, uint64(1), results[0].Rows)
	assert.Equal(t, []string{"log_000001.csv.gz"}, chunkNames(t, dir))
}

func TestRunCollectsErrors(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("SELECT * FROM log WHERE id BETWEEN 0 AND 4").WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectQuery("SELECT * FROM log WHERE id BETWEEN 5 AND 9").WillReturnError(errors.New("gone away"))

	set, err := ranger.Plan("id", 0, 9, 2)
	require.NoError(t, err)

	var counters progress.Counters
	_, err = Run(context.Background(), db, exportConfig(t.TempDir()), set, &counters)
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)
	assert.ErrorContains(t, err, "lock wait timeout")
	assert.ErrorContains(t, err, "gone away")
	assert.Equal(t, uint64(0), counters.Partitions.Load())
}

func TestRunCancelled(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	set, err := ranger.Plan("id", 0, 9, 2)
	require.NoError(t, err)

	cfg := exportConfig(t.TempDir())
	var counters progress.Counters

	_, err = Run(ctx, db, cfg, set, &counters)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, chunkNames(t, cfg.OutDir))
}

func TestRecord(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))

	assert.Equal(t,
		[]string{"", "abc", "2024-01-02 02:04:05", "42", "1.5"},
		record([]any{nil, []byte("abc"), ts, int64(42), 1.5}),
	)
}
