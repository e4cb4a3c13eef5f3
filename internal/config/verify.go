package config

import (
	"errors"
	"flag"
	"log"
)

// VerifyConfig points at a finished export, either the directory or the
// <out>.tar.gz next to it.
type VerifyConfig struct {
	OutDir  string
	Archive bool
}

func (c VerifyConfig) Validate() error {
	if c.OutDir == "" {
		return errors.New("out is required")
	}

	return nil
}

// ArchivePath is where export -archive writes the packed directory.
func (c VerifyConfig) ArchivePath() string {
	return c.OutDir + ".tar.gz"
}

func ParseVerifyConfig(args []string) VerifyConfig {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	var c VerifyConfig

	fs.StringVar(&c.OutDir, "out", "./export", "Export directory")
	fs.BoolVar(&c.Archive, "archive", false, "Verify <out>.tar.gz instead of the directory")

	_ = fs.Parse(args)

	if err := c.Validate(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	return c
}
