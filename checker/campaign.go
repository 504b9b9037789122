package checker

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/LJxTHUCS/model-fs/config"
	"github.com/LJxTHUCS/model-fs/port"
)

// RunCampaign fans a campaign out across channels, one independent
// Checker per channel, each seeded with cfg.Seed plus its index so
// every channel gets a distinct but reproducible command sequence.
// Each Checker owns its own model and runs single-threaded (spec's
// concurrency model is per-campaign, not per-model); RunCampaign only
// parallelizes the independent campaigns themselves, bounded by an
// errgroup so one channel's fatal error cancels the rest via ctx.
//
// The returned slice has one Report per channel, in the same order as
// channels; a channel whose campaign returned a fatal error still gets
// a Report reflecting the steps it completed before failing.
func RunCampaign(ctx context.Context, cfg config.Config, n int, channels []port.CommandChannel) ([]*Report, error) {
	reports := make([]*Report, len(channels))
	g, gctx := errgroup.WithContext(ctx)
	for i, ch := range channels {
		i, ch := i, ch
		runCfg := cfg
		runCfg.Seed = cfg.Seed + uint64(i)
		g.Go(func() error {
			c := New(runCfg, ch)
			report, err := c.RunN(gctx, n)
			reports[i] = report
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}
