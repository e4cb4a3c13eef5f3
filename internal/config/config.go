package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"column-partitioner/internal/ranger"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// PlanConfig holds what is needed to compute a partition set.
type PlanConfig struct {
	DSN        string
	Table      string
	Column     string
	Partitions int
	Format     string
	Timeout    time.Duration
}

func (c PlanConfig) Request() ranger.Request {
	return ranger.Request{
		Table:      c.Table,
		Column:     c.Column,
		Partitions: c.Partitions,
	}
}

func (c *PlanConfig) bind(fs *flag.FlagSet) {
	fs.StringVar(&c.DSN, "dsn", "", "MySQL DSN (required)")
	fs.StringVar(&c.Table, "table", "", "Table to partition (empty = run unpartitioned)")
	fs.StringVar(&c.Column, "column", "id", "Integer column to split on")
	fs.IntVar(&c.Partitions, "partitions", 4, "Number of partitions")
	fs.StringVar(&c.Format, "format", FormatText, "Plan output format: text or json")
	fs.DurationVar(&c.Timeout, "timeout", 30*time.Second, "Timeout for the MIN/MAX queries (0 = none)")
}

func (c PlanConfig) Validate() error {
	if c.DSN == "" {
		return errors.New("dsn is required")
	}

	if c.Partitions < 1 {
		return fmt.Errorf("partitions must be at least 1, got %d", c.Partitions)
	}

	if c.Format != FormatText && c.Format != FormatJSON {
		return fmt.Errorf("unknown format %q", c.Format)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}

	return nil
}

func ParsePlanConfig(args []string) PlanConfig {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	var c PlanConfig

	c.bind(fs)

	_ = fs.Parse(args)

	if err := c.Validate(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	return c
}
