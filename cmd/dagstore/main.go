package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"dagstore/internal/backend"
	"dagstore/internal/config"
	"dagstore/internal/dag"
	"dagstore/internal/logging"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	configPath := flag.String("config", "", "path to config file")
	backendName := flag.String("backend", "", "storage backend: memory, bolt, leveldb, badger (overrides config)")
	dataDir := flag.String("data-dir", "", "data directory (overrides config)")
	logLevel := flag.String("log-level", "", "log level (overrides config)")
	flag.Usage = usage
	flag.Parse()

	// Load config (TOML file with defaults)
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}

	// CLI flags override config file values
	if *backendName != "" {
		cfg.Store.Backend = *backendName
	}
	if *dataDir != "" {
		cfg.Store.DataDir = *dataDir
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("config: %v", err)
		return 1
	}

	logging.Init(cfg.Logging.Level, cfg.Logging.Format)

	if flag.NArg() == 0 {
		usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kvStore, err := backend.Open(cfg.Store)
	if err != nil {
		log.Printf("store: %v", err)
		return 1
	}
	store := dag.New(kvStore)
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("closing store: %v", err)
		}
	}()

	if err := run(ctx, store, flag.Args(), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: dagstore [flags] <command> [args]\n\nCommands:\n")
	for _, name := range commandNames() {
		c := commands[name]
		fmt.Fprintf(out, "  %-36s %s\n", c.usage, c.help)
	}
	fmt.Fprintf(out, "\nFlags:\n")
	flag.PrintDefaults()
}
