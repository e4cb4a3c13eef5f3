package main

import (
	"log"

	"column-partitioner/internal/config"
	"column-partitioner/internal/manifest"
	"column-partitioner/internal/util"
)

func verify(args []string) {
	cfg := config.ParseVerifyConfig(args)

	m, err := verifyExport(cfg)
	if err != nil {
		log.Fatalf("[FATAL] verify: %v", err)
	}

	files := 0
	for _, p := range m.Partitions {
		files += len(p.Files)
	}

	log.Printf("[INFO] %s.%s: %d partitions, %s rows, %d files verified",
		m.Table, m.Column, len(m.Partitions), util.FormatNumber(m.TotalRows()), files)
}

func verifyExport(cfg config.VerifyConfig) (*manifest.Manifest, error) {
	if cfg.Archive {
		return manifest.VerifyArchive(cfg.ArchivePath())
	}

	m, err := manifest.Read(cfg.OutDir)
	if err != nil {
		return nil, err
	}

	if err := manifest.Verify(cfg.OutDir, m); err != nil {
		return nil, err
	}

	return m, nil
}
