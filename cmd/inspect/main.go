package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/linkz-dao/linkz-controller/internal/metrics"
	"github.com/linkz-dao/linkz-controller/internal/session"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to linkz_sessions.db")
	user := flag.String("user", "", "show single session detail")
	prov := flag.Int("prov", 10, "show N most recent provenance entries in detail mode")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/linkz_sessions.db [--user id] [--prov N] [--json]")
		os.Exit(2)
	}

	store, err := session.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *user != "" {
		if err := runDetailMode(store, *user, *prov, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	} else {
		if err := runListMode(store, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	UserID      string            `json:"user_id"`
	Messages    int               `json:"messages"`
	LockState   metrics.LockState `json:"lock_state"`
	Equity      float64           `json:"equity"`
	Violations  int               `json:"violations"`
	LastUpdated string            `json:"last_updated"`
}

func runListMode(store *session.Store, jsonOut bool) error {
	users, err := store.ListUsers()
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(os.Stderr, "no sessions found")
		return nil
	}

	rows := make([]listRow, 0, len(users))
	for _, u := range users {
		doc, found, err := store.Load(u)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		row := listRow{
			UserID:      u,
			Messages:    len(doc.Messages),
			LastUpdated: time.UnixMilli(doc.LastUpdated).UTC().Format("2006-01-02T15:04:05Z"),
		}
		if doc.Context != nil {
			row.LockState = doc.Context.LockState
			row.Equity = doc.Context.ProjectedEquity
			row.Violations = len(metrics.Validate(*doc.Context))
		}
		rows = append(rows, row)
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-16s  %8s  %-9s  %10s  %10s  %s\n",
		"User", "Messages", "Gate", "Equity", "Violations", "Updated")
	for _, r := range rows {
		fmt.Printf("%-16s  %8d  %-9s  %10.2f  %10d  %s\n",
			r.UserID, r.Messages, r.LockState, r.Equity, r.Violations, r.LastUpdated)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	UserID      string                    `json:"user_id"`
	LastUpdated string                    `json:"last_updated"`
	Messages    int                       `json:"messages"`
	Context     *metrics.Snapshot         `json:"context,omitempty"`
	Violations  []metrics.Violation       `json:"violations,omitempty"`
	Provenance  []session.ProvenanceEntry `json:"provenance,omitempty"`
}

func runDetailMode(store *session.Store, userID string, provLimit int, jsonOut bool) error {
	doc, found, err := store.Load(userID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no session for user %s", userID)
	}

	out := detailOutput{
		UserID:      userID,
		LastUpdated: time.UnixMilli(doc.LastUpdated).UTC().Format("2006-01-02T15:04:05Z"),
		Messages:    len(doc.Messages),
		Context:     doc.Context,
	}
	if doc.Context != nil {
		out.Violations = metrics.Validate(*doc.Context)
	}
	out.Provenance, err = store.ListProvenance(userID, provLimit)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("User:     %s\n", out.UserID)
	fmt.Printf("Updated:  %s\n", out.LastUpdated)
	fmt.Printf("Messages: %d\n", out.Messages)
	if s := out.Context; s != nil {
		fmt.Printf("\nAsset:        %s (%s)\n", s.AssetName, s.AssetID)
		fmt.Printf("Gate:         %s\n", s.LockState)
		fmt.Printf("Synergy:      %.2f\n", s.SynergyScore)
		fmt.Printf("Compliance:   %s | SRM: %s\n", s.DDEXCompliance, s.SRMStatus)
		fmt.Printf("Distribution: %s | Rollout: %s %d%%\n",
			s.DistributionStatus, s.RolloutState.Status, s.RolloutState.Percentage)
		fmt.Printf("Equity:       %.2f\n", s.ProjectedEquity)
	}
	if len(out.Violations) > 0 {
		fmt.Printf("\nViolations:\n")
		for _, v := range out.Violations {
			fmt.Printf("  %-20s %s\n", v.Field, v.Reason)
		}
	}
	if len(out.Provenance) > 0 {
		fmt.Printf("\nProvenance (most recent first):\n")
		for _, p := range out.Provenance {
			fmt.Printf("  %s  %-10s  %-12s  %s\n",
				p.CreatedAt.Format("2006-01-02T15:04:05Z"), p.TriggerType, p.Decision, p.Reason)
		}
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// #endregion output
