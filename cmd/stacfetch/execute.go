package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ligustah/stacfetch/internal/config"
	"github.com/ligustah/stacfetch/internal/progress"
	"github.com/ligustah/stacfetch/pkg/plan"
	"github.com/ligustah/stacfetch/pkg/provider"
	"github.com/ligustah/stacfetch/pkg/transfer"
)

// runExecute downloads every task of a saved plan.
func runExecute(args []string) int {
	fs := flag.NewFlagSet("execute", flag.ExitOnError)

	var common commonFlags
	common.register(fs)
	planPath := fs.String("plan", "", "Plan file to execute (default from config: plan.json)")
	planBucket := fs.String("plan-bucket", "", "Bucket URL holding the plan; -plan is then a key in it")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: stacfetch execute [options]

Download every task of a plan in order. Existing output files are skipped
and .partial files are resumed, so an interrupted run can simply be
started again. The provider is chosen from the plan's selection_id.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, err := loadConfig(common.config, config.Config{
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

	log := newLogger(cfg.Verbose, "execute")
	defer log.Sync()

	p, err := loadPlan(ctx, cfg)
	if err != nil {
		return exitCode(ctx, err)
	}

	prov, err := openProvider(ctx, cfg, log, p.SelectionID)
	if err != nil {
		return exitCode(ctx, err)
	}
	defer prov.Close()

	if err := executePlan(ctx, cfg, log, prov, p); err != nil {
		return exitCode(ctx, err)
	}
	return ExitSuccess
}

// executePlan runs p with the storage of prov and prints a summary.
func executePlan(ctx context.Context, cfg config.Config, log *zap.Logger, prov *provider.Provider, p *plan.Plan) error {
	var reporter *progress.Reporter
	if cfg.Progress {
		reporter = progress.NewReporter(progress.Options{
			TotalTasks: len(p.Tasks),
			PlanName:   p.SelectionID,
		})
		reporter.Start()
		defer reporter.Stop()
	}

	exec := transfer.New(prov.Buckets, transfer.Options{
		Logger:     log,
		Progress:   reporter,
		BufferSize: int(cfg.BufferSize),
	})

	results, err := exec.Execute(ctx, p)

	var fetched, skipped int
	var total int64
	for _, res := range results {
		switch res.State {
		case transfer.Complete:
			fetched++
		case transfer.SkippedAlreadyDone:
			skipped++
		}
		total += res.Fetched
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "[stacfetch] Stopped after %d of %d tasks\n", len(results), len(p.Tasks))
		return err
	}

	fmt.Fprintf(os.Stderr, "[stacfetch] Done: %d downloaded, %d already present, %s fetched\n",
		fetched, skipped, progress.FormatBytes(total))
	return nil
}
