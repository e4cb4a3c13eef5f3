package exporter

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/semaphore"

	"column-partitioner/internal/config"
	"column-partitioner/internal/dbx"
	"column-partitioner/internal/filesink"
	"column-partitioner/internal/manifest"
	"column-partitioner/internal/progress"
	"column-partitioner/internal/ranger"
	"column-partitioner/internal/util"
)

const timeLayout = "2006-01-02 15:04:05"

// Queryer is the part of *sql.DB the exporter needs.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Run exports every partition of set, at most cfg.Workers at a time, and
// returns the per-partition results in plan order. All worker errors are
// collected.
func Run(
	ctx context.Context,
	db Queryer,
	cfg config.ExportConfig,
	set ranger.Set,
	counters *progress.Counters,
) ([]manifest.Partition, error) {
	sem := semaphore.NewWeighted(int64(max(cfg.Workers, 1)))
	results := make([]manifest.Partition, len(set))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs *multierror.Error
	)

	for i, p := range set {
		err := ctx.Err()
		if err == nil {
			err = sem.Acquire(ctx, 1)
		}
		if err != nil {
			mu.Lock()
			errs = multierror.Append(errs, err)
			mu.Unlock()
			break
		}

		wg.Add(1)

		go func(i int, p ranger.Entry) {
			defer wg.Done()
			defer sem.Release(1)

			res, err := runWorker(ctx, db, cfg, p, counters)
			results[i] = res

			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", p.Name, err))
				mu.Unlock()
			}
		}(i, p)
	}

	wg.Wait()

	return results, errs.ErrorOrNil()
}

func runWorker(
	ctx context.Context,
	db Queryer,
	cfg config.ExportConfig,
	p ranger.Entry,
	counters *progress.Counters,
) (manifest.Partition, error) {
	res := manifest.Partition{Entry: p}

	if p.Ranged {
		log.Printf("[W%d] %s range [%d..%d] (%s values)", p.Index, p.Name, p.Range.From, p.Range.To, util.FormatNumber(p.Range.Len()))
	} else {
		log.Printf("[W%d] %s unpartitioned", p.Index, p.Name)
	}

	sink := filesink.New(cfg.OutDir, cfg.Prefix+p.PartSuffix, cfg.ChunkSize)

	rows, err := db.QueryContext(ctx, dbx.BuildPartitionSelect(cfg.Table, cfg.Columns, p.PartClause))
	if err != nil {
		return res, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return res, err
	}

	vals := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			_ = sink.Close()
			return res, err
		}

		if err := sink.Write(record(vals)); err != nil {
			_ = sink.Close()
			return res, err
		}
		res.Rows++

		rotated, n, err := sink.RotateIfNeeded()
		if err != nil {
			return res, err
		}
		if rotated {
			counters.Files.Add(1)
			counters.Rows.Add(uint64(n))
		}
	}

	if err := rows.Err(); err != nil {
		_ = sink.Close()
		return res, err
	}

	tail := sink.RowsInChunk()
	if err := sink.Close(); err != nil {
		return res, err
	}
	if tail > 0 {
		counters.Files.Add(1)
		counters.Rows.Add(uint64(tail))
	}

	res.Files = sink.Files()
	counters.Partitions.Add(1)

	log.Printf("[W%d] %s done: %d rows, %d files", p.Index, p.Name, res.Rows, len(res.Files))

	return res, nil
}

func record(vals []any) []string {
	rec := make([]string, len(vals))

	for i, v := range vals {
		switch x := v.(type) {
		case nil:
			rec[i] = ""
		case []byte:
			rec[i] = string(x)
		case time.Time:
			rec[i] = x.UTC().Format(timeLayout)
		default:
			rec[i] = fmt.Sprint(x)
		}
	}

	return rec
}

