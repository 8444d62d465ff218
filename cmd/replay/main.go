package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/linkz-dao/linkz-controller/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	f, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		os.Exit(2)
	}

	interactions := make([]replay.Interaction, len(f.Interactions))
	for i := range f.Interactions {
		interactions[i] = f.Interactions[i].ToInteraction()
	}

	results, final := replay.Replay(f.Start(), interactions)
	summary := replay.Summarize(results, final)

	exit := printComparison(results, f.ExpectedResults)
	fmt.Printf("\nSummary: %d turns, %d transactions, %d mandates, final gate %s, equity %.2f\n",
		summary.TotalTurns, summary.Transactions, summary.Mandates,
		final.LockState, final.ProjectedEquity)
	os.Exit(exit)
}

// #endregion main

// #region output

// printComparison renders per-turn results against expectations (when
// present) and returns the process exit code.
func printComparison(results []replay.Result, expected []replay.FixtureExpectedResult) int {
	byTurn := make(map[string]replay.FixtureExpectedResult, len(expected))
	for _, e := range expected {
		byTurn[e.TurnID] = e
	}

	fmt.Printf("%-12s  %5s  %-5s  %-9s  %10s  %s\n",
		"Turn", "Instr", "Txn", "Gate", "Equity", "Match")

	diverge := 0
	for _, r := range results {
		match := "—"
		if e, ok := byTurn[r.TurnID]; ok {
			if resultMatches(r, e) {
				match = "OK"
			} else {
				match = "DIFF"
				diverge++
			}
		}
		fmt.Printf("%-12s  %5d  %-5v  %-9s  %10.2f  %s\n",
			r.TurnID, r.Instructions, r.TransactionExecuted, r.LockState, r.ProjectedEquity, match)
	}

	if diverge > 0 {
		return 1
	}
	return 0
}

func resultMatches(r replay.Result, e replay.FixtureExpectedResult) bool {
	if r.TransactionExecuted != e.TransactionExecuted {
		return false
	}
	if e.LockState != "" && r.LockState != e.LockState {
		return false
	}
	return true
}

// #endregion output
