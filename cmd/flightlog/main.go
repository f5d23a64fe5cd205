// flightlog summarizes decoded flight logs: per-system overview, derived
// metrics, optional Parquet export and an interactive tree browser.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/xtxerr/flightlog/internal/export/parquet"
	"github.com/xtxerr/flightlog/internal/loader"
	"github.com/xtxerr/flightlog/internal/logging"
	"github.com/xtxerr/flightlog/internal/replay"
	"github.com/xtxerr/flightlog/internal/scenario"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfgPath := flag.String("config", "config.yaml", "config file path")
	exportDir := flag.String("export", "", "write Parquet files to this directory")
	compression := flag.String("compression", "", "Parquet compression (overrides config)")
	browse := flag.Bool("browse", false, "open the interactive tree browser")
	verbose := flag.Bool("v", false, "debug logging")
	jumpBack := flag.Float64("jump-back", 0, "max backward time jump in seconds (overrides config)")
	jumpMax := flag.Float64("jump-max", 0, "max forward time jump in seconds (overrides config)")
	allowJumps := flag.Bool("allow-jumps", false, "accept any time jump (multi-flight logs)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: flightlog [flags] <log.jsonl> [more logs...]\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := loader.LoadOrDefault(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *jumpBack > 0 {
		cfg.Time.MaxBackJumpSec = *jumpBack
	}
	if *jumpMax > 0 {
		cfg.Time.MaxForwardJumpSec = *jumpMax
	}
	if *compression != "" {
		cfg.Export.Compression = *compression
	}
	if *exportDir == "" {
		*exportDir = cfg.Export.Dir
	}

	level := slog.LevelInfo
	if *verbose || cfg.Log.Level == "debug" {
		level = slog.LevelDebug
	}
	logging.Init(level, cfg.Log.JSON)
	log := logging.Component("main")
	log.Info("flightlog starting", "version", Version, "logs", flag.NArg())

	ctx := context.Background()
	aggregate := scenario.New(cfg)

	for _, path := range flag.Args() {
		sc := scenario.New(cfg)
		if guess, err := scenario.StartGuessFromFilename(path); err == nil {
			sc.SetStartGuess(guess)
			log.Debug("start time from filename", "file", path, "guess", guess)
		}

		stats, err := replay.FeedFile(path, sc, *allowJumps)
		if err != nil {
			log.Error("load failed", "file", path, "error", err)
			os.Exit(1)
		}
		log.Info("log loaded", "file", path,
			"records", stats.Lines, "applied", stats.Applied,
			"generic", stats.Generic, "rejected", stats.Rejected,
			"bad", stats.BadRecord)

		if err := sc.Process(ctx); err != nil {
			log.Error("processing failed", "file", path, "error", err)
			os.Exit(1)
		}
		if err := aggregate.MergeFrom(sc); err != nil {
			log.Error("merge failed", "file", path, "error", err)
			os.Exit(1)
		}
	}

	if err := aggregate.Process(ctx); err != nil {
		log.Error("processing failed", "error", err)
		os.Exit(1)
	}

	aggregate.Overview(os.Stdout)

	if *exportDir != "" {
		opts := parquet.DefaultOptions()
		opts.Compression = parquet.ParseCompressionType(cfg.Export.Compression)
		for _, id := range aggregate.IDs() {
			sys, _ := aggregate.System(id)
			path, err := parquet.WriteSystem(*exportDir, sys, opts)
			if err != nil {
				log.Error("export failed", "system", id, "error", err)
				os.Exit(1)
			}
			log.Info("system exported", "system", id, "file", path)
		}
	}

	if *browse {
		runBrowser(aggregate)
	}
}
