package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/linkz-dao/linkz-controller/internal/interp"
	"github.com/linkz-dao/linkz-controller/internal/metrics"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	StartContext    *metrics.Snapshot       `json:"start_context,omitempty"` // nil means boot defaults
	Interactions    []FixtureInteraction    `json:"interactions"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results,omitempty"`
}

// FixtureCall mirrors interp.RawCall with JSON tags.
type FixtureCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// FixtureInteraction mirrors Interaction with JSON tags.
type FixtureInteraction struct {
	TurnID   string        `json:"turn_id"`
	UserText string        `json:"user_text,omitempty"`
	Calls    []FixtureCall `json:"calls"`
}

// FixtureExpectedResult captures the expected per-turn outcome.
type FixtureExpectedResult struct {
	TurnID              string            `json:"turn_id"`
	TransactionExecuted bool              `json:"transaction_executed"`
	LockState           metrics.LockState `json:"lock_state,omitempty"` // empty means "don't check"
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Start returns the fixture's starting snapshot, falling back to boot
// defaults when none is given.
func (f *Fixture) Start() metrics.Snapshot {
	if f.StartContext != nil {
		return f.StartContext.Clone()
	}
	return metrics.Default()
}

// ToInteraction converts a FixtureInteraction to a domain Interaction.
func (fi *FixtureInteraction) ToInteraction() Interaction {
	calls := make([]interp.RawCall, len(fi.Calls))
	for i, c := range fi.Calls {
		calls[i] = interp.RawCall{Name: c.Name, Args: c.Args}
	}
	return Interaction{TurnID: fi.TurnID, UserText: fi.UserText, Calls: calls}
}

// #endregion fixture-loader
