package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	log.SetOutput(os.Stderr)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "plan":
			plan(os.Args[2:])
			return
		case "export":
			export(os.Args[2:])
			return
		case "verify":
			verify(os.Args[2:])
			return
		}
	}

	log.Println("Usage:")
	log.Println("  partitioner plan -dsn ... -table ... -column id -partitions 4 [-format json]")
	log.Println("  partitioner export -dsn ... -table ... -column id -partitions 4 -out ./export [flags]")
	log.Println("  partitioner verify -out ./export [-archive]")
	os.Exit(2)
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 2)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sig:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sig)
	}()

	return ctx, cancel
}
