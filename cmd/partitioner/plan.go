package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"column-partitioner/internal/config"
	"column-partitioner/internal/dbx"
	"column-partitioner/internal/ranger"
)

func plan(args []string) {
	cfg := config.ParsePlanConfig(args)

	ctx, cancel := signalContext()
	defer cancel()

	db := dbx.MustOpen(cfg.DSN, 1)
	defer db.Close()

	set, err := computePlan(ctx, db, cfg)
	if err != nil {
		log.Fatalf("[FATAL] plan: %v", err)
	}

	if err := printPlan(os.Stdout, set, cfg.Format); err != nil {
		log.Fatalf("[FATAL] print plan: %v", err)
	}
}

// computePlan runs the MIN/MAX queries under cfg.Timeout.
func computePlan(ctx context.Context, db *sql.DB, cfg config.PlanConfig) (ranger.Set, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	set, err := ranger.Partition(ctx, dbx.NewQuerier(db), cfg.Request())
	if err != nil {
		return nil, err
	}

	if len(set) == 1 && !set[0].Ranged {
		log.Printf("[INFO] running unpartitioned")
	} else {
		log.Printf("[INFO] %s range [%d..%d] in %d partitions", cfg.Column, set[0].Range.From, set[len(set)-1].Range.To, len(set))
	}

	return set, nil
}

func printPlan(w io.Writer, set ranger.Set, format string) error {
	if format == config.FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(set.Map())
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSUFFIX\tCLAUSE")
	for _, p := range set {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.PartSuffix, p.PartClause)
	}

	return tw.Flush()
}
