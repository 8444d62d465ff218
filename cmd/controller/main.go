package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"github.com/linkz-dao/linkz-controller/internal/briefing"
	"github.com/linkz-dao/linkz-controller/internal/engine"
	"github.com/linkz-dao/linkz-controller/internal/gateway"
	"github.com/linkz-dao/linkz-controller/internal/lock"
	"github.com/linkz-dao/linkz-controller/internal/metrics"
	"github.com/linkz-dao/linkz-controller/internal/profile"
	"github.com/linkz-dao/linkz-controller/internal/scan"
	"github.com/linkz-dao/linkz-controller/internal/session"
)

// #region config

type config struct {
	DBPath       string        `env:"LINKZ_DB" envDefault:"linkz_sessions.db"`
	APIKey       string        `env:"GEMINI_API_KEY,required"`
	UserID       string        `env:"LINKZ_USER" envDefault:"operator-01"`
	DisplayName  string        `env:"LINKZ_USER_NAME" envDefault:"Operator"`
	MockTTS      bool          `env:"LINKZ_MOCK_TTS" envDefault:"false"`
	ScanInterval time.Duration `env:"LINKZ_SCAN_INTERVAL" envDefault:"5m"`
}

// #endregion config

// #region main

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions, err := session.NewStore(cfg.DBPath)
	if err != nil {
		logger.Fatalw("open session store", "error", err)
	}
	defer sessions.Close()

	profiles, err := profile.NewStore(sessions.DB())
	if err != nil {
		logger.Fatalw("open profile store", "error", err)
	}

	store := metrics.NewStore(metrics.Default(), lock.Derive)

	gw, err := gateway.NewClient(ctx, cfg.APIKey, gateway.DefaultConfig())
	if err != nil {
		logger.Fatalw("gateway client", "error", err)
	}

	var briefer briefing.Provider
	if cfg.MockTTS {
		briefer = briefing.NewMockProvider()
	} else {
		briefer, err = briefing.NewGeminiTTS(ctx, cfg.APIKey)
		if err != nil {
			logger.Warnw("tts unavailable, briefings ship text-only", "error", err)
			briefer = nil
		}
	}

	eng := engine.New(engine.Config{UserID: cfg.UserID, DisplayName: cfg.DisplayName},
		store, sessions, profiles, gw, briefer, logger)
	if err := eng.Start(ctx); err != nil {
		logger.Fatalw("engine start", "error", err)
	}
	go eng.Watch(ctx)

	job := scan.NewJob(sessions, scan.Config{Interval: cfg.ScanInterval}, logger)
	go job.Run(ctx)

	fmt.Println("LINKZ Distribution Controller ready.")
	fmt.Printf("  DB: %s | User: %s\n", cfg.DBPath, cfg.UserID)
	fmt.Println("Type a directive, or /status /logs /mandate /aura /audit /payout <amt> /ingest <file> /quit")

	repl(ctx, eng)
}

// #endregion main

// #region repl

// Canned quick-action directives, sent through the gateway verbatim.
const (
	auraTemplate = `AURA-DDEX-CLI distribute --release-id "R_2025_ZDW_NGR" --asset-source "sftp://secure.aura-supply.com/releases/next_rapgod_v4" --ddex-profile ERN_4.3:AMAZON_PREMIUM:CUSTOM_V1 --e2e-scope GLOBAL_TIER1 --schedule-strategy SMART_WATERFALL:T8W --metadata-audit ENABLE:AI_SEMANTIC_CHECK --rdr-srm-commit TRUE --reporting-frequency DAILY_SYNCHRONOUS --blockchain-tag ENABLE:PROVENANCE_V2 --preflight-check FULL_DSP_COMPLIANCE`

	auditTemplate = `Perform a DDEX compliance check on the uploaded asset. Report the compliance status (e.g., Verified, Non-Compliant, Pending Review) and provide specific details on any identified issues. If the asset is non-compliant, explain the nature of the violation and suggest immediate remediation steps.`
)

func repl(ctx context.Context, eng *engine.Engine) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		if !handleLine(ctx, eng, strings.TrimSpace(scanner.Text())) {
			return
		}
	}
}

// handleLine dispatches one REPL line. Returns false on quit.
func handleLine(ctx context.Context, eng *engine.Engine, line string) bool {
	switch {
	case line == "":
	case line == "/quit" || line == "quit" || line == "exit":
		return false
	case line == "/status":
		printStatus(eng.Snapshot())
	case line == "/logs":
		for _, l := range eng.Snapshot().SystemLogs {
			fmt.Printf("  [%s] %s\n", l.Type, l.Text)
		}
	case line == "/mandate":
		runMandate(ctx, eng)
	case line == "/aura":
		sendTurn(ctx, eng, auraTemplate, nil)
	case line == "/audit":
		sendTurn(ctx, eng, auditTemplate, nil)
	case strings.HasPrefix(line, "/payout"):
		runPayout(ctx, eng, strings.TrimSpace(strings.TrimPrefix(line, "/payout")))
	case strings.HasPrefix(line, "/ingest"):
		runIngest(ctx, eng, strings.TrimSpace(strings.TrimPrefix(line, "/ingest")))
	default:
		sendTurn(ctx, eng, line, nil)
	}
	return true
}

func sendTurn(ctx context.Context, eng *engine.Engine, text string, atts []gateway.Attachment) {
	tctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	msg, err := eng.Send(tctx, text, atts)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Printf("\n%s\n", msg.Text)
	if msg.Mandate != nil {
		fmt.Printf("[MANDATE PROPOSED] %s (%s) — confirm with /mandate\n",
			msg.Mandate.ActionName, msg.Mandate.Urgency)
	}
	if msg.Briefing != nil {
		fmt.Printf("[BRIEFING] %s\n", msg.Briefing.Title)
	}
	if msg.DLTHash != "" {
		fmt.Printf("[SETTLED] %s\n", msg.DLTHash)
	}
	fmt.Println()
}

func runMandate(ctx context.Context, eng *engine.Engine) {
	msgs := eng.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Mandate != nil && !msgs[i].Mandate.Executed {
			confirm, err := eng.ExecuteMandate(ctx, msgs[i].ID)
			if errors.Is(err, engine.ErrLocked) {
				fmt.Println("REFUSED: deployment gate is LOCKED. Clear compliance, SRM, synergy and accessibility first.")
				return
			}
			if err != nil {
				fmt.Printf("error: %v\n", err)
				return
			}
			fmt.Printf("%s\n[SETTLED] %s\n", confirm.Text, confirm.DLTHash)
			return
		}
	}
	fmt.Println("no pending mandate")
}

func runPayout(ctx context.Context, eng *engine.Engine, arg string) {
	amount, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		fmt.Println("usage: /payout <amount>")
		return
	}
	tx, err := eng.Payout(ctx, amount)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Printf("payout %s: $%.2f [%s]\n", tx.Status, tx.Amount, tx.Receipt)
}

func runIngest(ctx context.Context, eng *engine.Engine, path string) {
	if path == "" {
		fmt.Println("usage: /ingest <audio file>")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("read %s: %v\n", path, err)
		return
	}
	att := gateway.Attachment{
		Name:     filepath.Base(path),
		MIMEType: audioMIME(path),
		Data:     data,
	}
	sendTurn(ctx, eng, "New audio asset uploaded. Run the intake analysis.", []gateway.Attachment{att})
}

func audioMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return "audio/mpeg"
	case ".flac":
		return "audio/flac"
	case ".ogg":
		return "audio/ogg"
	default:
		return "audio/wav"
	}
}

func printStatus(s metrics.Snapshot) {
	fmt.Printf("  Asset:       %s (%s)\n", s.AssetName, s.AssetID)
	fmt.Printf("  Gate:        %s\n", s.LockState)
	fmt.Printf("  Synergy:     %.2f | Compliance: %s | SRM: %s\n", s.SynergyScore, s.DDEXCompliance, s.SRMStatus)
	fmt.Printf("  Distribution: %s | Rollout: %s %d%%\n", s.DistributionStatus, s.RolloutState.Status, s.RolloutState.Percentage)
	fmt.Printf("  Equity:      $%.2f | Viral: %s\n", s.ProjectedEquity, s.ViralStatus)
	if s.ActiveMission != "" {
		fmt.Printf("  Mission:     %s\n", s.ActiveMission)
	}
	if s.ActiveNegotiation != nil {
		fmt.Printf("  Negotiation: %s / %s (%s)\n",
			s.ActiveNegotiation.Counterparty, s.ActiveNegotiation.DealType, s.ActiveNegotiation.Status)
	}
	if b, err := json.MarshalIndent(s.AccessibilityState, "  ", "  "); err == nil {
		fmt.Printf("  A11y:        %s\n", b)
	}
}

// #endregion repl
