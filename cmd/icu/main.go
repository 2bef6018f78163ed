// Command icu is a minimal demonstration entrypoint: it scans a path
// and prints one line per finding, then applies the discovered policy
// to decide a process exit code. It is not a general-purpose CLI —
// argument parsing is intentionally bare flag, no subcommands.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/icu-sec/icu/internal/config"
	"github.com/icu-sec/icu/internal/engine"
	"github.com/icu-sec/icu/internal/obs"
	"github.com/icu-sec/icu/internal/policy"
	"github.com/icu-sec/icu/internal/reputation"
	"github.com/icu-sec/icu/internal/rules"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("icu", flag.ContinueOnError)
	depthFlag := fs.String("depth", "", "scan depth: auto, fast, deep (overrides config)")
	toolName := fs.String("tool", "", "name of the tool invoking this scan, for policy tool-overrides")
	noDB := fs.Bool("no-db", false, "disable the reputation store")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: icu [flags] <path>")
		return 2
	}
	target := fs.Arg(0)

	logger := obs.NewLogger(os.Getenv("ICU_LOG_LEVEL"), os.Getenv("ICU_LOG_FORMAT"))

	startDir := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		startDir = filepath.Dir(target)
	}

	cfg, _, err := config.Discover(startDir)
	if err != nil {
		logger.Warn("config discovery failed, using defaults", "error", err)
		cfg = config.Defaults()
	}
	cfg = config.Overlay(cfg)
	if *depthFlag != "" {
		cfg.Depth = *depthFlag
	}
	if *noDB {
		cfg.DisableDB = true
	}

	pol, _, err := policy.Discover(startDir)
	if err != nil {
		logger.Warn("policy discovery failed, using default policy", "error", err)
		pol = policy.DefaultPolicy()
	}
	if warnings := policy.ValidatePolicy(pol); len(warnings) > 0 {
		for _, w := range warnings {
			logger.Warn("policy validation", "warning", w)
		}
	}

	var store *reputation.Store
	if !cfg.DisableDB {
		dbPath, err := reputation.DefaultPath()
		if err == nil {
			store, err = reputation.New(dbPath, logger)
			if err != nil {
				logger.Warn("reputation store unavailable, continuing without it", "error", err)
				store = nil
			}
		}
	}
	if store != nil {
		defer store.Close()
	}

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithEntropyThreshold(cfg.EntropyThresh),
	}
	if cfg.MaxFileSizeMiB > 0 {
		opts = append(opts, engine.WithMaxFileSize(int64(cfg.MaxFileSizeMiB)<<20))
	}
	if store != nil {
		opts = append(opts, engine.WithReputationStore(store))
	}
	scanner := engine.NewScanner(opts...)
	evaluator := policy.NewEvaluator(pol)

	depth := engine.Depth(cfg.Depth)
	if depth == "" {
		depth = engine.DepthAuto
	}

	ctx := context.Background()
	info, err := os.Stat(target)
	var results []rules.ScanResult
	if err == nil && info.IsDir() {
		results, err = scanner.ScanDirectory(ctx, target, depth, cfg.Workers)
	} else {
		var r rules.ScanResult
		r, err = scanner.ScanFile(ctx, target, depth)
		results = []rules.ScanResult{r}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "icu: scan failed:", err)
		return 2
	}

	worstAction := policy.ActionLog
	decisions := make([]policy.PolicyResult, 0, len(results))
	for _, result := range results {
		decision := evaluator.Evaluate(result, *toolName)
		printReport(result, decision)
		decisions = append(decisions, decision)
		if policy.Stricter(decision.Action, worstAction) {
			worstAction = decision.Action
		}
	}
	if err := evaluator.LogViolations(results, decisions); err != nil {
		logger.Warn("failed to log policy violations", "error", err)
	}

	switch worstAction {
	case policy.ActionBlock:
		return 1
	default:
		return 0
	}
}

func printReport(result rules.ScanResult, decision policy.PolicyResult) {
	if result.Skipped {
		fmt.Printf("%s: skipped (%s)\n", result.Path, result.SkipRea)
		return
	}
	if len(result.Findings) == 0 {
		fmt.Printf("%s: clean [%s]\n", result.Path, decision.Action)
		return
	}
	for _, f := range result.Findings {
		fmt.Printf("%s:%d: [%s/%s] %s: %s\n", result.Path, f.LineNumber, f.Category, f.Severity, f.RuleID, f.Description)
	}
	fmt.Printf("%s: risk=%s action=%s\n", result.Path, result.RiskLevel, decision.Action)
}
