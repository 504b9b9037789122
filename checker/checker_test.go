package checker

import (
	"context"
	"testing"

	"github.com/LJxTHUCS/model-fs/config"
	"github.com/LJxTHUCS/model-fs/internal/loopchan"
	"github.com/LJxTHUCS/model-fs/model"
	"github.com/LJxTHUCS/model-fs/port"
)

// lyingChannel wraps a real CommandChannel but corrupts the very
// first return value it reports, guaranteeing one divergence
// regardless of what the commander happens to generate.
type lyingChannel struct {
	port.CommandChannel
	lied bool
}

func (l *lyingChannel) ReceiveRetv() (int64, error) {
	retv, err := l.CommandChannel.ReceiveRetv()
	if err != nil || l.lied {
		return retv, err
	}
	l.lied = true
	return retv + 1000, nil
}

// quietLogger discards everything, so tests don't spam stderr with
// expected reconciliation traffic.
type quietLogger struct{}

func (quietLogger) Printf(string, ...interface{}) {}

func newLoopbackChecker(cfg config.Config) (*Checker, *model.FileSystem) {
	tut := model.NewRoot(cfg.Uid, cfg.Gid)
	if cfg.PreopenStdio {
		tut.PreopenStdio()
	}
	ch := loopchan.New(tut)
	c := New(cfg, ch)
	c.SetLogger(quietLogger{})
	return c, tut
}

func TestRunNAgainstLoopbackNeverDiverges(t *testing.T) {
	cfg := config.Default(42)
	cfg.ReconcileEvery = 10
	c, _ := newLoopbackChecker(cfg)

	report, err := c.RunN(context.Background(), 300)
	if err != nil {
		t.Fatalf("RunN: %v", err)
	}
	if report.Steps != 300 {
		t.Fatalf("Steps = %d, want 300", report.Steps)
	}
	if len(report.Divergences) != 0 {
		t.Fatalf("unexpected divergences: %+v", report.Divergences)
	}
}

func TestRunNStopsEarlyOnStrictDivergence(t *testing.T) {
	cfg := config.Default(7)
	cfg.Compare = config.Strict
	tut := model.NewRoot(cfg.Uid, cfg.Gid)
	tut.PreopenStdio()
	ch := &lyingChannel{CommandChannel: loopchan.New(tut)}
	c := New(cfg, ch)
	c.SetLogger(quietLogger{})

	report, err := c.RunN(context.Background(), 200)
	if err != nil {
		t.Fatalf("RunN: %v", err)
	}
	if len(report.Divergences) == 0 {
		t.Fatalf("expected at least one divergence")
	}
	if report.Steps >= 200 {
		t.Fatalf("expected early stop, ran all %d steps", report.Steps)
	}
}

func TestRunCampaignCollectsOneReportPerChannel(t *testing.T) {
	cfg := config.Default(1)
	cfg.ReconcileEvery = 5

	channels := make([]port.CommandChannel, 3)
	for i := range channels {
		tut := model.NewRoot(cfg.Uid, cfg.Gid)
		tut.PreopenStdio()
		channels[i] = loopchan.New(tut)
	}

	reports, err := RunCampaign(context.Background(), cfg, 50, channels)
	if err != nil {
		t.Fatalf("RunCampaign: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("got %d reports, want 3", len(reports))
	}
	for i, r := range reports {
		if r == nil || r.Steps != 50 {
			t.Fatalf("report %d: %+v", i, r)
		}
	}
}
