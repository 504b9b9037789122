// Package config assembles the run configuration a campaign needs:
// the seed, how strictly to compare, how often to reconcile full
// state, which syscalls to generate, and the identity the model
// impersonates. It's a plain struct, the same way the teacher's
// example mains build one from flag.Parse() rather than a config
// file format.
package config

import "github.com/LJxTHUCS/model-fs/command"

// CompareLevel controls how strict the checker is about a mismatch
// between the model's and the TUT's return value, or between their
// reconstructed states.
type CompareLevel int

const (
	// Relaxed treats a mismatch as a logged divergence but keeps the
	// campaign running.
	Relaxed CompareLevel = iota
	// Strict stops the campaign at the first divergence.
	Strict
)

func (l CompareLevel) String() string {
	switch l {
	case Relaxed:
		return "relaxed"
	case Strict:
		return "strict"
	default:
		return "unknown"
	}
}

// Config is the full set of knobs a Checker needs to run a campaign.
type Config struct {
	// Seed drives the commander's RNG; two Configs with the same Seed
	// (and the same TUT) generate and apply the identical sequence.
	Seed uint64

	// Compare governs return-value mismatches, checked on every step.
	Compare CompareLevel
	// StateCompare governs full structural mismatches, checked every
	// ReconcileEvery steps.
	StateCompare CompareLevel
	// ReconcileEvery is the number of steps between full-state
	// reconciliations via StatePort. A value <= 0 disables periodic
	// reconciliation entirely (return-value checking still runs every
	// step).
	ReconcileEvery int

	// Commands restricts the generated mix to this set. A nil or
	// empty slice means the commander's full default mix.
	Commands []command.Kind

	// Uid/Gid are the identity the model (and the caller's
	// expectation of the TUT) operate as.
	Uid, Gid uint32

	// PreopenStdio pre-allocates fds 0, 1, 2 as the model's initial
	// state, modeling inherited stdio. Default true (Open Question
	// (a)); the state comparator ignores the fd table, but the fd
	// numbers openat and dup return (compared every step) and the fds
	// the commander can pick depend on it.
	PreopenStdio bool
}

// Default returns a Config with the commonly-correct defaults: stdio
// preopened, relaxed return-value comparison, strict state
// comparison every 50 steps, the full command mix, uid/gid 1000.
func Default(seed uint64) Config {
	return Config{
		Seed:           seed,
		Compare:        Relaxed,
		StateCompare:   Strict,
		ReconcileEvery: 50,
		Commands:       nil,
		Uid:            1000,
		Gid:            1000,
		PreopenStdio:   true,
	}
}
