package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ligustah/stacfetch/internal/config"
	"github.com/ligustah/stacfetch/pkg/plan"
	"github.com/ligustah/stacfetch/pkg/provider"
	"github.com/ligustah/stacfetch/pkg/selection"
)

// runPlan resolves a selection and writes the download plan.
func runPlan(args []string) int {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)

	var common commonFlags
	common.register(fs)
	selectionPath := fs.String("selection", "", "Selection file (required)")
	outputDir := fs.String("output-dir", "", "Root directory for downloaded files (default from config: data)")
	planPath := fs.String("plan", "", "Plan file to write (default from config: plan.json)")
	planBucket := fs.String("plan-bucket", "", "Bucket URL holding the plan; -plan is then a key in it")
	force := fs.Bool("force", false, "Overwrite an existing plan file")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: stacfetch plan [options]

Resolve every scene and product of a selection to an object in storage and
write the resulting download plan. Nothing is downloaded.

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

	log := newLogger(cfg.Verbose, "plan")
	defer log.Sync()

	p, prov, err := buildPlan(ctx, cfg, log, *selectionPath)
	if err != nil {
		return exitCode(ctx, err)
	}
	defer prov.Close()

	if err := savePlan(ctx, cfg, p, *force); err != nil {
		return exitCode(ctx, err)
	}

	fmt.Fprintf(os.Stderr, "[stacfetch] Plan written: %s (%d tasks)\n", planLocation(cfg), len(p.Tasks))
	return ExitSuccess
}

// buildPlan reads and resolves a selection. The returned provider is open
// and must be closed by the caller.
func buildPlan(ctx context.Context, cfg config.Config, log *zap.Logger, selectionPath string) (*plan.Plan, *provider.Provider, error) {
	sel, err := selection.Read(selectionPath)
	if err != nil {
		return nil, nil, err
	}
	if err := sel.Validate(); err != nil {
		return nil, nil, err
	}

	prov, err := openProvider(ctx, cfg, log, sel.ID)
	if err != nil {
		return nil, nil, err
	}

	ids, _ := sel.IDs()
	fmt.Fprintf(os.Stderr, "[stacfetch] Resolving %d scenes with %s\n", len(ids), prov.Kind)

	p, err := plan.NewBuilder(prov.Resolver, log).Build(ctx, sel, cfg.OutputDir)
	if err != nil {
		prov.Close()
		return nil, nil, err
	}
	return p, prov, nil
}
