package main

import (
	"context"
	"log"
	"time"

	"column-partitioner/internal/archive"
	"column-partitioner/internal/config"
	"column-partitioner/internal/dbx"
	"column-partitioner/internal/exporter"
	"column-partitioner/internal/manifest"
	"column-partitioner/internal/progress"
	"column-partitioner/internal/util"
)

func export(args []string) {
	cfg := config.ParseExportConfig(args)

	ctx, cancel := signalContext()
	defer cancel()

	db := dbx.MustOpen(cfg.DSN, cfg.Workers)
	defer db.Close()

	set, err := computePlan(ctx, db, cfg.PlanConfig)
	if err != nil {
		log.Fatalf("[FATAL] plan: %v", err)
	}

	var counters progress.Counters
	start := time.Now()

	var prog *progress.Reporter
	if cfg.Progress {
		progCtx, stop := context.WithCancel(ctx)
		prog = progress.New(&counters, len(set), cfg.ProgressInline, start)
		prog.Start(progCtx)
		defer func() {
			stop()
			prog.WaitAndFinish()
		}()
	}

	results, err := exporter.Run(ctx, db, cfg, set, &counters)
	if err != nil {
		log.Fatalf("[FATAL] export: %v", err)
	}

	m := &manifest.Manifest{
		Table:      cfg.Table,
		Column:     cfg.Column,
		Requested:  cfg.Partitions,
		CreatedAt:  start.UTC(),
		Partitions: results,
	}
	if err := manifest.Write(cfg.OutDir, m); err != nil {
		log.Fatalf("[FATAL] manifest: %v", err)
	}

	printFinalStat(start, &counters)

	if cfg.Archive {
		archiveAndSafeRemove(cfg.OutDir, cfg.KeepDir)
	}
}

func printFinalStat(start time.Time, c *progress.Counters) {
	elapsed := time.Since(start)
	rows := c.Rows.Load()
	files := c.Files.Load()

	log.Println("------------------------------------------------------------")
	log.Printf("[STATS] partitions: %d", c.Partitions.Load())
	log.Printf("[STATS] rows: %s", util.FormatNumber(rows))
	log.Printf("[STATS] chunks(files): %s", util.FormatNumber(files))
	log.Printf("[STATS] elapsed: %s", elapsed.Truncate(time.Second))
	log.Printf("[STATS] speed: %.0f rows/s", util.Rate(rows, elapsed))
	log.Println("------------------------------------------------------------")
}

func archiveAndSafeRemove(outDir string, keep bool) {
	archivePath := outDir + ".tar.gz"
	start := time.Now()

	if err := archive.TarGzDir(outDir, archivePath); err != nil {
		log.Printf("[WARN] cannot archive export dir: %v", err)
		return
	}

	log.Printf("[INFO] archive created: %s (in %s)", archivePath, time.Since(start).Truncate(time.Second))

	if keep {
		return
	}

	if err := util.SafeRemoveDir(outDir); err != nil {
		log.Printf("[WARN] export dir not removed: %v", err)
	} else {
		log.Printf("[INFO] removed export dir: %s", outDir)
	}
}
