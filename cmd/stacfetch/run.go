package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ligustah/stacfetch/internal/config"
)

// runRun plans a selection, saves the plan and executes it.
func runRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)

	var common commonFlags
	common.register(fs)
	selectionPath := fs.String("selection", "", "Selection file (required)")
	outputDir := fs.String("output-dir", "", "Root directory for downloaded files (default from config: data)")
	planPath := fs.String("plan", "", "Plan file to write (default from config: plan.json)")
	planBucket := fs.String("plan-bucket", "", "Bucket URL holding the plan; -plan is then a key in it")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: stacfetch run [options]

Resolve a selection, write the plan and execute it. The plan file is
always replaced; use 'stacfetch execute' to resume a saved plan without
resolving again.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *selectionPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -selection is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	cfg, err := loadConfig(common.config, config.Config{
		OutputDir:  *outputDir,
		PlanFile:   *planPath,
		PlanBucket: *planBucket,
		Progress:   common.progress,
		Verbose:    common.verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	ctx, cancel := signalContext()
	defer cancel()

	log := newLogger(cfg.Verbose, "run")
	defer log.Sync()

	p, prov, err := buildPlan(ctx, cfg, log, *selectionPath)
	if err != nil {
		return exitCode(ctx, err)
	}
	defer prov.Close()

	if err := savePlan(ctx, cfg, p, true); err != nil {
		return exitCode(ctx, err)
	}
	fmt.Fprintf(os.Stderr, "[stacfetch] Plan written: %s (%d tasks)\n", planLocation(cfg), len(p.Tasks))

	if err := executePlan(ctx, cfg, log, prov, p); err != nil {
		return exitCode(ctx, err)
	}
	return ExitSuccess
}
