// Package replay re-runs recorded instruction batches through the
// interpreter and the gate, entirely in memory. Used to verify that a
// recorded session still folds to the same outcomes after rule changes.
package replay

import (
	"github.com/linkz-dao/linkz-controller/internal/interp"
	"github.com/linkz-dao/linkz-controller/internal/lock"
	"github.com/linkz-dao/linkz-controller/internal/metrics"
)

// #region types

// Interaction is a single recorded turn: the user text (context only)
// and the raw tool calls the gateway emitted for it.
type Interaction struct {
	TurnID   string
	UserText string
	Calls    []interp.RawCall
}

// Result captures the outcome of replaying one interaction.
type Result struct {
	TurnID              string
	Instructions        int
	TransactionExecuted bool
	MandateProposed     bool
	LockState           metrics.LockState
	ProjectedEquity     float64
}

// Summary aggregates a replay run.
type Summary struct {
	TotalTurns   int
	Transactions int
	Mandates     int
	FinalState   metrics.Snapshot
}

// #endregion types

// #region replay

// Replay folds each interaction in order against an evolving snapshot:
// decode → fold → apply → derive. The timestamp base advances by a fixed
// step per turn so log ordering is deterministic.
func Replay(start metrics.Snapshot, interactions []Interaction) ([]Result, metrics.Snapshot) {
	current := start.Clone()
	results := make([]Result, 0, len(interactions))

	now := int64(1_000_000)
	for _, inter := range interactions {
		batch := interp.DecodeBatch(inter.Calls)
		out := interp.Fold(current, batch, now)

		current = metrics.Apply(current, out.Patch)
		current.LockState = lock.Derive(current)

		results = append(results, Result{
			TurnID:              inter.TurnID,
			Instructions:        len(batch),
			TransactionExecuted: out.TransactionExecuted,
			MandateProposed:     out.Mandate != nil,
			LockState:           current.LockState,
			ProjectedEquity:     current.ProjectedEquity,
		})
		now += 10_000
	}

	return results, current
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result, final metrics.Snapshot) Summary {
	s := Summary{
		TotalTurns: len(results),
		FinalState: final,
	}
	for _, r := range results {
		if r.TransactionExecuted {
			s.Transactions++
		}
		if r.MandateProposed {
			s.Mandates++
		}
	}
	return s
}

// #endregion replay
