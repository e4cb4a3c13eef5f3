package progress

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"

	"column-partitioner/internal/util"
)

const progressEvery = 1 * time.Second

// Counters are shared between export workers and the reporter.
type Counters struct {
	Rows       atomic.Uint64
	Files      atomic.Uint64
	Partitions atomic.Uint64
}

type Reporter struct {
	counters *Counters
	total    int
	start    time.Time
	every    time.Duration
	doneCh   chan struct{}
	inline   bool
	out      io.Writer
}

func New(counters *Counters, totalPartitions int, inline bool, start time.Time) *Reporter {
	return &Reporter{
		counters: counters,
		total:    totalPartitions,
		start:    start,
		every:    progressEvery,
		doneCh:   make(chan struct{}),
		inline:   inline && isTerminal(),
		out:      os.Stdout,
	}
}

// Line renders the current state.
func (r *Reporter) Line() string {
	rows := r.counters.Rows.Load()
	files := r.counters.Files.Load()
	done := r.counters.Partitions.Load()

	pct := 100.0
	if r.total > 0 {
		pct = 100.0 * float64(done) / float64(r.total)
	}

	return fmt.Sprintf("[PROGRESS] partitions=%d/%d (%.1f%%) rows=%s (%.0f/s) files=%s",
		done, r.total, pct, util.FormatNumber(rows), util.Rate(rows, time.Since(r.start)), util.FormatNumber(files))
}

// Start prints a line every tick until ctx is done.
func (r *Reporter) Start(ctx context.Context) {
	tkr := time.NewTicker(r.every)

	go func() {
		defer close(r.doneCh)
		defer tkr.Stop()

		for {
			select {
			case <-tkr.C:
				if r.inline {
					fmt.Fprintf(r.out, "\r\033[2K%s", r.Line())
				} else {
					log.Print(r.Line())
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (r *Reporter) WaitAndFinish() {
	<-r.doneCh
	if r.inline {
		fmt.Fprintln(r.out)
	}
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
