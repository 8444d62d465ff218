// Package scan is the background viral-opportunity job. It sweeps every
// stored session and computes synthetic social-signal heuristics from the
// asset's own metrics. Only sessions whose signal clears both breakout
// thresholds are written back; everything else is left exactly as stored
// so the sweep never clobbers a signal an operator turn just set.
package scan

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/linkz-dao/linkz-controller/internal/lock"
	"github.com/linkz-dao/linkz-controller/internal/metrics"
	"github.com/linkz-dao/linkz-controller/internal/session"
)

// #region config

// Config holds scan job parameters.
type Config struct {
	Interval time.Duration
}

// DefaultConfig returns the production sweep cadence.
func DefaultConfig() Config {
	return Config{Interval: 5 * time.Minute}
}

// Breakout thresholds. Both must be exceeded for a market to spike.
const (
	VelocityThreshold = 1.2
	MomentumThreshold = 50.0
)

// #endregion config

// #region job

// Job sweeps sessions on a fixed cadence.
type Job struct {
	sessions *session.Store
	config   Config
	logger   *zap.SugaredLogger
}

// NewJob creates a scan job over the given session store.
func NewJob(sessions *session.Store, config Config, logger *zap.SugaredLogger) *Job {
	return &Job{sessions: sessions, config: config, logger: logger}
}

// Run sweeps on the configured interval until ctx is canceled.
func (j *Job) Run(ctx context.Context) {
	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updated, err := j.RunOnce(ctx)
			if err != nil {
				j.logger.Errorw("scan sweep failed", "error", err)
				continue
			}
			j.logger.Infow("scan sweep complete", "updated", updated)
		}
	}
}

// RunOnce sweeps every stored session once and returns how many were
// updated. Sessions without a context snapshot are skipped.
func (j *Job) RunOnce(ctx context.Context) (int, error) {
	users, err := j.sessions.ListUsers()
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	updated := 0
	for _, user := range users {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}
		doc, found, err := j.sessions.Load(user)
		if err != nil {
			j.logger.Warnw("scan load failed", "user", user, "error", err)
			continue
		}
		if !found || doc.Context == nil {
			continue
		}

		next, spiking := Sweep(*doc.Context, time.Now().UnixMilli())
		if !spiking {
			continue
		}
		if _, err := j.sessions.Save(user, session.Document{Context: &next}); err != nil {
			j.logger.Warnw("scan save failed", "user", user, "error", err)
			continue
		}
		if err := j.sessions.LogDecision(session.ProvenanceEntry{
			UserID:      user,
			TriggerType: "scan",
			Decision:    next.ViralStatus,
			Reason:      fmt.Sprintf("velocity=%.2f momentum=%.1f", next.ViralSignal.ShazamVelocity, next.ViralSignal.TikTokMomentum),
		}); err != nil {
			j.logger.Warnw("scan provenance failed", "user", user, "error", err)
		}
		updated++
	}
	return updated, nil
}

// #endregion job

// #region sweep

// Sweep computes the viral signal for one snapshot. When both breakout
// thresholds are exceeded it returns the snapshot with the viral fields
// overwritten and true; otherwise it returns the snapshot untouched so
// the caller writes nothing. The lock state is re-derived on breakout
// so a sweep can never leave a stale gate behind.
func Sweep(s metrics.Snapshot, now int64) (metrics.Snapshot, bool) {
	velocity := Velocity(s)
	momentum := Momentum(s)
	if velocity <= VelocityThreshold || momentum <= MomentumThreshold {
		return s, false
	}

	city := targetMarket(s.AssetID)
	p := metrics.Patch{
		ViralStatus:   metrics.Ptr("Spiking"),
		ActiveMission: metrics.Ptr(fmt.Sprintf("Operation: %s Surge", city)),
		ViralSignal: &metrics.ViralSignal{
			ShazamVelocity: velocity,
			TikTokMomentum: momentum,
			Location:       city,
			Hotspots: []metrics.MarketHotspot{
				{ID: "h1", X: 75, Y: 65, Label: city, Intensity: "HIGH"},
				{ID: "h2", X: 48, Y: 25, Label: "London", Intensity: "MEDIUM"},
			},
		},
		AppendLogs: []metrics.LogEntry{
			metrics.NewLog(fmt.Sprintf("VIRAL BREAKOUT: %s market exceeding thresholds", city), metrics.LogError, now),
		},
	}

	out := metrics.Apply(s, p)
	out.LockState = lock.Derive(out)
	return out, true
}

// #endregion sweep

// #region heuristics

// Velocity approximates Shazam pickup from synergy and metadata
// completeness. Range roughly 0.5–2.0.
func Velocity(s metrics.Snapshot) float64 {
	return round2(0.5 + s.SynergyScore + 0.5*completeness(s.Metadata))
}

// Momentum approximates short-form traction from accessibility reach,
// rollout exposure and metadata completeness. Range 0–100.
func Momentum(s metrics.Snapshot) float64 {
	m := float64(s.AccessibilityState.WCAGScore)*0.4 +
		float64(s.RolloutState.Percentage)*0.3 +
		completeness(s.Metadata)*30
	return round1(math.Min(m, 100))
}

// completeness is the filled fraction of the seven metadata fields.
func completeness(m metrics.AssetMetadata) float64 {
	fields := []string{m.Title, m.Artist, m.ISRC, m.Label, m.Genre, m.Mood, m.ProductionQuality}
	filled := 0
	for _, f := range fields {
		if f != "" {
			filled++
		}
	}
	return float64(filled) / float64(len(fields))
}

var markets = []string{"Austin", "Berlin", "Tokyo", "Seoul", "Lagos"}

// targetMarket picks a stable market per asset id.
func targetMarket(assetID string) string {
	h := fnv.New32a()
	h.Write([]byte(assetID))
	return markets[h.Sum32()%uint32(len(markets))]
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }

// #endregion heuristics
