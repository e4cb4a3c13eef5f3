package config

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"strings"

	"column-partitioner/internal/util"
)

type ExportConfig struct {
	PlanConfig

	Columns        []string
	OutDir         string
	Prefix         string
	Workers        int
	ChunkSize      int
	ProgressInline bool
	Progress       bool
	Archive        bool
	KeepDir        bool
}

func (c ExportConfig) Validate() error {
	if err := c.PlanConfig.Validate(); err != nil {
		return err
	}

	if strings.TrimSpace(c.Table) == "" {
		return fmt.Errorf("table is required for export")
	}

	if c.OutDir == "" {
		return fmt.Errorf("out is required")
	}

	if c.Workers < 1 || c.Workers > 100 {
		return fmt.Errorf("workers must be between 1 and 100, got %d", c.Workers)
	}

	if c.ChunkSize < 1 || c.ChunkSize > 10_000_000 {
		return fmt.Errorf("chunk size must be between 1 and 10,000,000, got %d", c.ChunkSize)
	}

	return nil
}

func ParseExportConfig(args []string) ExportConfig {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var c ExportConfig
	var columns string

	c.PlanConfig.bind(fs)

	fs.StringVar(&columns, "columns", "*", "Columns to export (comma-separated)")
	fs.StringVar(&c.OutDir, "out", "./export", "Output directory")
	fs.StringVar(&c.Prefix, "prefix", "", "Output file prefix (default: table name)")
	fs.IntVar(&c.Workers, "workers", min(runtime.NumCPU(), 100), "Partitions exported in parallel")
	fs.IntVar(&c.ChunkSize, "chunk", 100_000, "Rows per chunk file")
	fs.BoolVar(&c.Progress, "progress", true, "Report progress every second")
	fs.BoolVar(&c.ProgressInline, "progress-inline", true, "Render progress on one updating line")
	fs.BoolVar(&c.Archive, "archive", false, "Pack the output directory into <out>.tar.gz")
	fs.BoolVar(&c.KeepDir, "keep-dir", false, "Keep the output directory after archiving")

	_ = fs.Parse(args)

	if cols := util.SplitList(columns); !(len(cols) == 1 && cols[0] == "*") {
		c.Columns = cols
	}

	if c.Prefix == "" {
		c.Prefix = c.Table
	}

	if err := c.Validate(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	return c
}
