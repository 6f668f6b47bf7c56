package main

import (
	"context"
	"fmt"

	"gocloud.dev/blob"

	"github.com/ligustah/stacfetch/internal/config"
	"github.com/ligustah/stacfetch/pkg/plan"
)

// planLocation describes where cfg keeps the plan, for messages.
func planLocation(cfg config.Config) string {
	if cfg.PlanBucket == "" {
		return cfg.PlanFile
	}
	return cfg.PlanFile + " in " + cfg.PlanBucket
}

// savePlan writes p to the local plan file, or to the plan bucket when one
// is configured.
func savePlan(ctx context.Context, cfg config.Config, p *plan.Plan, overwrite bool) error {
	if cfg.PlanBucket == "" {
		return p.Write(cfg.PlanFile, overwrite)
	}

	bucket, err := openPlanBucket(ctx, cfg.PlanBucket)
	if err != nil {
		return err
	}
	defer bucket.Close()
	return p.Store(ctx, bucket, cfg.PlanFile, overwrite)
}

// loadPlan reads the plan saved by savePlan.
func loadPlan(ctx context.Context, cfg config.Config) (*plan.Plan, error) {
	if cfg.PlanBucket == "" {
		return plan.Read(cfg.PlanFile)
	}

	bucket, err := openPlanBucket(ctx, cfg.PlanBucket)
	if err != nil {
		return nil, err
	}
	defer bucket.Close()
	return plan.Load(ctx, bucket, cfg.PlanFile)
}

func openPlanBucket(ctx context.Context, url string) (*blob.Bucket, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: open plan bucket %s: %v", plan.ErrPersistence, url, err)
	}
	return bucket, nil
}
