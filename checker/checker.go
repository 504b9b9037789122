// Package checker drives the conformance loop: generate a command,
// apply it to the model, forward it to a target-under-test, and
// compare. It periodically reconstructs the TUT's full state via
// port.StatePort and compares that against the model's own snapshot.
package checker

import (
	"context"
	"fmt"
	"log"

	"github.com/kylelemons/godebug/pretty"

	"github.com/LJxTHUCS/model-fs/command"
	"github.com/LJxTHUCS/model-fs/commander"
	"github.com/LJxTHUCS/model-fs/config"
	"github.com/LJxTHUCS/model-fs/model"
	"github.com/LJxTHUCS/model-fs/port"
)

// Logger is satisfied by *log.Logger. New starts every Checker on
// log.Default(); SetLogger(nil) makes it log nothing.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Divergence records one step where the model and the TUT disagreed,
// either on a command's return value or on reconstructed state.
type Divergence struct {
	Step      int
	Command   string
	ModelRetv int64
	TUTRetv   int64
	StateDiff string
}

// Report summarizes a finished (or early-stopped) run.
type Report struct {
	Steps       int
	Divergences []Divergence
}

// Checker owns one model FileSystem, one commander, and one channel
// to a TUT. It is not safe for concurrent use — run several Checkers
// under RunCampaign for that.
type Checker struct {
	cfg   config.Config
	model *model.FileSystem
	cmd   *commander.Commander
	ch    port.CommandChannel
	log   Logger

	step int
}

// New builds a Checker for cfg, talking to ch.
func New(cfg config.Config, ch port.CommandChannel) *Checker {
	fs := model.NewRoot(cfg.Uid, cfg.Gid)
	if cfg.PreopenStdio {
		fs.PreopenStdio()
	}
	return &Checker{
		cfg:   cfg,
		model: fs,
		cmd:   commander.New(cfg.Seed, cfg.Commands),
		ch:    ch,
		log:   log.Default(),
	}
}

// SetLogger replaces the Checker's logger (nil disables logging).
func (c *Checker) SetLogger(l Logger) { c.log = l }

// Model returns the Checker's current model state, mainly for tests.
func (c *Checker) Model() *model.FileSystem { return c.model }

func (c *Checker) logf(format string, v ...interface{}) {
	if c.log != nil {
		c.log.Printf(format, v...)
	}
}

// runStep generates one command, applies it to the model and the TUT,
// and compares the return values (and, on a reconciliation boundary,
// the full state). Returns the Divergence found, if any, and a fatal
// error if the channel itself failed.
func (c *Checker) runStep() (*Divergence, error) {
	cmd := c.cmd.Command(c.model)
	modelRetv := cmd.Apply(c.model)

	if err := c.ch.SendCommand(cmd); err != nil {
		return nil, fmt.Errorf("checker: SendCommand: %w", err)
	}
	tutRetv, err := c.ch.ReceiveRetv()
	if err != nil {
		return nil, fmt.Errorf("checker: ReceiveRetv: %w", err)
	}

	c.step++

	if modelRetv != tutRetv {
		d := Divergence{
			Step:      c.step,
			Command:   commandString(cmd),
			ModelRetv: modelRetv,
			TUTRetv:   tutRetv,
		}
		c.logf("checker: step %d: %s returned %d, model expected %d", d.Step, d.Command, tutRetv, modelRetv)
		return &d, nil
	}

	if c.cfg.ReconcileEvery > 0 && c.step%c.cfg.ReconcileEvery == 0 {
		if d := c.reconcile(); d != nil {
			return d, nil
		}
	}
	return nil, nil
}

// reconcile reconstructs the TUT's state via StatePort (when ch also
// implements port.ReadOnlyChannel) and compares it against the
// model's own snapshot.
func (c *Checker) reconcile() *Divergence {
	ro, ok := c.ch.(port.ReadOnlyChannel)
	if !ok {
		return nil
	}
	sp := port.New(ro, c.cfg.Uid, c.cfg.Gid)
	recon, err := sp.Run()
	if err != nil {
		c.logf("checker: step %d: state reconstruction failed: %v", c.step, err)
		return nil
	}
	if c.model.Matches(recon) {
		return nil
	}
	diff := pretty.Compare(c.model.Snapshot(), recon.Snapshot())
	c.logf("checker: step %d: state diverged:\n%s", c.step, diff)
	return &Divergence{Step: c.step, Command: "(reconcile)", StateDiff: diff}
}

// commandString renders cmd for diagnostics. Commands that implement
// fmt.Stringer (command/string.go) use that; otherwise Apply's Kind
// is printed bare.
func commandString(cmd command.Command) string {
	if s, ok := cmd.(fmt.Stringer); ok {
		return s.String()
	}
	return cmd.Kind().String()
}

// RunN drives up to n steps, stopping early if the channel fails, or
// — depending on cfg.Compare/cfg.StateCompare — at the first
// divergence. Compare governs return-value divergences; StateCompare
// governs reconciliation divergences (distinguished by whether
// Divergence.StateDiff is set).
func (c *Checker) RunN(ctx context.Context, n int) (*Report, error) {
	report := &Report{}
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}
		d, err := c.runStep()
		if err != nil {
			return report, err
		}
		report.Steps++
		if d == nil {
			continue
		}
		report.Divergences = append(report.Divergences, *d)
		level := c.cfg.Compare
		if d.StateDiff != "" {
			level = c.cfg.StateCompare
		}
		if level == config.Strict {
			return report, nil
		}
	}
	return report, nil
}
