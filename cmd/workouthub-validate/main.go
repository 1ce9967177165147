package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/workouthub/internal/config"
	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/ingest/builtin"
	"github.com/claude/workouthub/internal/roundtrip"
	"github.com/claude/workouthub/internal/state"
	"github.com/claude/workouthub/internal/storage"
	"github.com/claude/workouthub/internal/validate"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	dir := flag.String("dir", "", "directory of workout files to check")
	configPath := flag.String("config", "", "optional config file for sport, tolerance policy, state dir and conversion log")
	policyPath := flag.String("policy", "", "tolerance policy file (overrides config)")
	stateDir := flag.String("state", "", "state directory (default ~/.workouthub, or state.dir from config)")
	force := flag.Bool("force", false, "check every file, even ones that already passed")
	noState := flag.Bool("no-state", false, "do not read or record validated files")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("workouthub-validate", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dir == "" {
		fmt.Fprintf(os.Stderr, "Usage: workouthub-validate -dir <directory> [-config file] [-policy file] [-force]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	opts := ingest.DefaultOptions()
	var cfg *config.Config
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		opts.DefaultSport = cfg.Conversion.Sport()
		if *policyPath == "" {
			*policyPath = cfg.Conversion.TolerancePolicy
		}
		if *stateDir == "" {
			*stateDir = cfg.State.Dir
		}
	}

	policy := roundtrip.DefaultPolicy()
	if *policyPath != "" {
		var err error
		policy, err = roundtrip.LoadPolicy(*policyPath)
		if err != nil {
			log.Error("failed to load tolerance policy", "error", err)
			os.Exit(1)
		}
	}

	// Open state database
	var st validate.State
	if !*noState {
		if *stateDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				log.Error("failed to get home directory", "error", err)
				os.Exit(1)
			}
			*stateDir = filepath.Join(homeDir, ".workouthub")
		}
		db, err := state.Open(*stateDir)
		if err != nil {
			log.Error("failed to open state database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		st = db
	}

	// Conversion log (optional)
	var logs *storage.DB
	if cfg != nil && cfg.Database.Enabled {
		var err error
		logs, err = storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer logs.Close()
	}

	v := validate.New(builtin.Registry(opts, log), st, *dir, policy, *force, log)
	stats, err := v.Run()
	if err != nil {
		log.Error("validation failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	if logs != nil {
		record(logs, stats, log)
	}

	printStats(stats)
	if stats.FilesFailed > 0 || stats.FilesErrored > 0 {
		os.Exit(2)
	}
	log.Info("validation complete")
}

func record(db *storage.DB, stats *validate.Stats, log *slog.Logger) {
	ctx := context.Background()
	for _, r := range stats.Results {
		var l storage.ConversionLog
		if r.Err != nil {
			l = storage.ConversionLogFromError(storage.KindRoundTrip, r.Format, "", r.Err, r.Elapsed)
		} else {
			l = storage.ConversionLogFromReport(r.Format, r.Report, r.Elapsed)
		}
		if _, err := db.InsertConversionLog(ctx, l); err != nil {
			log.Warn("failed to record round trip", "file", r.Path, "error", err)
		}
	}
}

func printStats(stats *validate.Stats) {
	fmt.Println()
	fmt.Println("=== Round-Trip Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files passed:     %d\n", stats.FilesPassed)
	fmt.Printf("  Files failed:     %d\n", stats.FilesFailed)
	fmt.Printf("  Files skipped:    %d (already validated)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)

	var failed []validate.FileResult
	for _, r := range stats.Results {
		if !r.Passed() {
			failed = append(failed, r)
		}
	}
	if len(failed) > 0 {
		fmt.Printf("\n  Problems:\n")
		for _, r := range failed {
			if r.Err != nil {
				fmt.Printf("    - %s: %v\n", r.Path, r.Err)
				continue
			}
			fmt.Printf("    - %s: %d field(s) out of tolerance\n", r.Path, len(r.Report.Violations))
			for _, v := range r.Report.Violations {
				fmt.Printf("        %s: %v -> %v\n", v.Field, v.Original, v.Reencoded)
			}
		}
	}
	fmt.Println()
}
