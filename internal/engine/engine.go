// Package engine runs the conversation loop: it owns the ledger, drives
// the reasoning gateway, folds instruction batches into the metric store
// and persists the session document once per turn.
package engine

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linkz-dao/linkz-controller/internal/briefing"
	"github.com/linkz-dao/linkz-controller/internal/gateway"
	"github.com/linkz-dao/linkz-controller/internal/interp"
	"github.com/linkz-dao/linkz-controller/internal/lock"
	"github.com/linkz-dao/linkz-controller/internal/metrics"
	"github.com/linkz-dao/linkz-controller/internal/profile"
	"github.com/linkz-dao/linkz-controller/internal/receipt"
	"github.com/linkz-dao/linkz-controller/internal/session"
)

// #region errors

var (
	// ErrBusy is returned while a turn is in flight. Turns are strictly
	// serialized; there is no queueing and no cancellation.
	ErrBusy = errors.New("turn already in flight")

	// ErrLocked is returned when a privileged action is refused by the
	// deployment gate.
	ErrLocked = errors.New("deployment gate is LOCKED")

	// ErrNoMandate is returned when the referenced message carries no
	// pending mandate.
	ErrNoMandate = errors.New("no pending mandate on message")
)

// #endregion errors

// #region engine

// Config holds engine identity parameters.
type Config struct {
	UserID      string
	DisplayName string
}

// Engine coordinates one user's session.
type Engine struct {
	cfg      Config
	store    *metrics.Store
	sessions *session.Store
	profiles *profile.Store
	gw       *gateway.Client
	briefer  briefing.Provider
	logger   *zap.SugaredLogger

	busy atomic.Bool

	mu     sync.Mutex
	ledger []session.Message
}

// New wires an engine. briefer may be nil, in which case briefings are
// delivered without audio.
func New(cfg Config, store *metrics.Store, sessions *session.Store, profiles *profile.Store, gw *gateway.Client, briefer briefing.Provider, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		cfg:      cfg,
		store:    store,
		sessions: sessions,
		profiles: profiles,
		gw:       gw,
		briefer:  briefer,
		logger:   logger,
	}
}

// #endregion engine

// #region bootstrap

const greeting = "LINKZ Strategic Agent online. Distribution, rights and rollout channels are live. Awaiting directives."

// Start loads the persisted session, or seeds a fresh one when none
// exists, and registers the user profile.
func (e *Engine) Start(ctx context.Context) error {
	if _, err := e.profiles.Ensure(e.cfg.UserID, e.cfg.DisplayName); err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}

	doc, found, err := e.sessions.Load(e.cfg.UserID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if found {
		e.mu.Lock()
		e.ledger = doc.Messages
		e.mu.Unlock()
		if doc.Context != nil {
			e.store.Replace(*doc.Context)
		}
		e.logger.Infow("session restored",
			"user", e.cfg.UserID,
			"messages", len(doc.Messages),
		)
		return nil
	}

	boot := session.Message{
		ID:        uuid.New().String(),
		Role:      session.RoleModel,
		Text:      greeting,
		Timestamp: time.Now().UnixMilli(),
	}
	e.mu.Lock()
	e.ledger = []session.Message{boot}
	e.mu.Unlock()

	snap := e.store.Get()
	e.persist(&snap, "bootstrap", "seeded", "", "")
	e.logger.Infow("session seeded", "user", e.cfg.UserID)
	return nil
}

// #endregion bootstrap

// #region accessors

// Messages returns a copy of the conversation ledger.
func (e *Engine) Messages() []session.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]session.Message(nil), e.ledger...)
}

// Snapshot returns the current metric snapshot.
func (e *Engine) Snapshot() metrics.Snapshot {
	return e.store.Get()
}

// #endregion accessors

// #region send

// Send runs one chat turn. Exactly one model (or system, on gateway
// failure) message is appended per call, and the session document is
// persisted exactly once, at the end of the turn. Audio attachments are
// ingested into the metric store before the gateway sees the snapshot.
func (e *Engine) Send(ctx context.Context, text string, attachments []gateway.Attachment) (session.Message, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return session.Message{}, ErrBusy
	}
	defer e.busy.Store(false)

	now := time.Now().UnixMilli()

	userMsg := session.Message{
		ID:        uuid.New().String(),
		Role:      session.RoleUser,
		Text:      text,
		Timestamp: now,
	}
	if meta := attachmentMeta(attachments); meta != nil {
		userMsg.Attachments = meta
	}
	e.append(userMsg)

	for _, a := range attachments {
		if strings.HasPrefix(a.MIMEType, "audio/") {
			e.store.Apply(metrics.IngestAudio(e.store.Get(), a.Name))
		}
	}

	history := e.history(userMsg.ID)
	snap := e.store.Get()

	reply, err := e.gw.Send(ctx, history, text, snap, attachments)
	if err != nil {
		e.logger.Errorw("gateway turn failed", "error", err)
		e.append(session.Message{
			ID:        uuid.New().String(),
			Role:      session.RoleSystem,
			Text:      fmt.Sprintf("SYSTEM FAULT: gateway unreachable (%v). Directive not processed.", err),
			Timestamp: time.Now().UnixMilli(),
		})
		snap := e.store.Get()
		e.persist(&snap, "chat-turn", "gateway-error", err.Error(), "")
		return session.Message{}, err
	}

	batch := interp.DecodeBatch(reply.Calls)
	out := interp.Fold(snap, batch, now)

	var briefRef *metrics.Briefing
	if out.Briefing != nil {
		if b := e.synthesizeBriefing(ctx, *out.Briefing, now); b != nil {
			briefRef = b
			list := append([]metrics.Briefing{*b}, snap.Briefings...)
			if len(list) > metrics.MaxBriefings {
				list = list[:metrics.MaxBriefings]
			}
			out.Patch.Briefings = list
		}
	}

	modelText := reply.Text
	if modelText == "" {
		modelText = "Acknowledged."
	}
	modelMsg := session.Message{
		ID:        uuid.New().String(),
		Role:      session.RoleModel,
		Text:      modelText,
		Timestamp: time.Now().UnixMilli(),
		Mandate:   out.Mandate,
		Briefing:  briefRef,
	}
	if out.TransactionExecuted {
		modelMsg.DLTHash = receipt.New()
	}

	committed := e.store.Apply(out.Patch)
	e.append(modelMsg)

	e.persist(&committed, "chat-turn", "committed",
		fmt.Sprintf("%d instruction(s)", len(batch)), modelMsg.DLTHash)

	e.logger.Infow("turn committed",
		"instructions", len(batch),
		"transaction", out.TransactionExecuted,
		"lock", committed.LockState,
	)
	return modelMsg, nil
}

// synthesizeBriefing builds the briefing record, attaching audio when a
// provider is wired. A synthesis failure drops the briefing entirely
// (nil return); the text reply still ships. With no provider wired the
// briefing ships without audio.
func (e *Engine) synthesizeBriefing(ctx context.Context, req interp.BriefingRequest, now int64) *metrics.Briefing {
	b := metrics.Briefing{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Summary:   req.Summary,
		Timestamp: now,
	}
	if e.briefer == nil {
		return &b
	}
	audio, err := e.briefer.Synthesize(ctx, req.Summary)
	if err != nil {
		e.logger.Warnw("briefing synthesis failed, dropping briefing",
			"provider", e.briefer.Name(), "error", err)
		return nil
	}
	b.AudioBase64 = base64.StdEncoding.EncodeToString(audio)
	return &b
}

// #endregion send

// #region mandate

// ExecuteMandate confirms the pending mandate on the given message. The
// gate must not be LOCKED; the executed flag flips exactly once. On
// success the full mandate effect is committed and a system confirmation
// message carrying a settlement receipt is appended.
func (e *Engine) ExecuteMandate(ctx context.Context, messageID string) (session.Message, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return session.Message{}, ErrBusy
	}
	defer e.busy.Store(false)

	e.mu.Lock()
	var target *session.Message
	for i := range e.ledger {
		if e.ledger[i].ID == messageID {
			target = &e.ledger[i]
			break
		}
	}
	if target == nil || target.Mandate == nil || target.Mandate.Executed {
		e.mu.Unlock()
		return session.Message{}, ErrNoMandate
	}
	actionName := target.Mandate.ActionName
	e.mu.Unlock()

	if lock.Blocked(e.store.Get()) {
		e.logger.Warnw("mandate refused by gate", "action", actionName)
		return session.Message{}, ErrLocked
	}

	now := time.Now().UnixMilli()
	snap := e.store.Get()
	committed := e.store.Apply(metrics.Patch{
		SynergyScore:       metrics.Ptr(1.0),
		DistributionStatus: metrics.Ptr(metrics.DistributionLiveGlobal),
		PitchingStatus:     metrics.Ptr("Active (Editorial)"),
		ProjectedEquity:    metrics.Ptr(snap.ProjectedEquity + 2500),
		AppendLogs: []metrics.LogEntry{
			metrics.NewLog(fmt.Sprintf("MANDATE EXECUTED: %s", actionName), metrics.LogSuccess, now),
		},
	})

	rcpt := receipt.New()

	e.mu.Lock()
	target.Mandate.Executed = true
	e.mu.Unlock()

	confirm := session.Message{
		ID:        uuid.New().String(),
		Role:      session.RoleSystem,
		Text:      fmt.Sprintf("MANDATE CONFIRMED: %s executed via distributed ledger.", actionName),
		Timestamp: now,
		DLTHash:   rcpt,
	}
	e.append(confirm)

	e.persist(&committed, "mandate", "executed", actionName, rcpt)
	e.logger.Infow("mandate executed", "action", actionName, "receipt", rcpt)
	return confirm, nil
}

// #endregion mandate

// #region payout

// Payout withdraws equity into a Completed payout transaction. The
// balance clamps at zero: requesting more than the projected equity pays
// out the remainder.
func (e *Engine) Payout(ctx context.Context, amount float64) (profile.Transaction, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return profile.Transaction{}, ErrBusy
	}
	defer e.busy.Store(false)

	if amount <= 0 {
		return profile.Transaction{}, fmt.Errorf("payout amount must be positive, got %v", amount)
	}

	snap := e.store.Get()
	if snap.ProjectedEquity <= 0 {
		return profile.Transaction{}, fmt.Errorf("no equity available")
	}
	if amount > snap.ProjectedEquity {
		amount = snap.ProjectedEquity
	}

	rcpt := receipt.New()
	tx, err := e.profiles.RecordPayout(e.cfg.UserID, amount, rcpt)
	if err != nil {
		return profile.Transaction{}, fmt.Errorf("record payout: %w", err)
	}

	now := time.Now().UnixMilli()
	committed := e.store.Apply(metrics.Patch{
		ProjectedEquity: metrics.Ptr(snap.ProjectedEquity - amount),
		AppendLogs: []metrics.LogEntry{
			metrics.NewLog(fmt.Sprintf("Equity Payout Settled: $%.2f", amount), metrics.LogSuccess, now),
		},
	})

	e.append(session.Message{
		ID:        uuid.New().String(),
		Role:      session.RoleSystem,
		Text:      fmt.Sprintf("PAYOUT COMPLETE: $%.2f settled to operator wallet.", amount),
		Timestamp: now,
		DLTHash:   rcpt,
	})

	e.persist(&committed, "payout", "completed", fmt.Sprintf("$%.2f", amount), rcpt)
	e.logger.Infow("payout settled", "amount", amount, "receipt", rcpt)
	return tx, nil
}

// #endregion payout

// #region remote

// Watch consumes the session subscription until ctx is canceled. Remote
// documents replace the ledger and the snapshot wholesale (last write
// wins); deliveries arriving while a turn is in flight are skipped so a
// half-built turn is never clobbered.
func (e *Engine) Watch(ctx context.Context) {
	ch, cancel := e.sessions.Subscribe(e.cfg.UserID)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case doc, ok := <-ch:
			if !ok {
				return
			}
			if e.busy.Load() {
				continue
			}
			e.mu.Lock()
			e.ledger = doc.Messages
			e.mu.Unlock()
			if doc.Context != nil {
				e.store.Replace(*doc.Context)
			}
		}
	}
}

// #endregion remote

// #region internals

func (e *Engine) append(m session.Message) {
	e.mu.Lock()
	e.ledger = append(e.ledger, m)
	e.mu.Unlock()
}

// history renders the ledger as gateway turns, excluding the message
// with skipID (the in-flight user text travels separately).
func (e *Engine) history(skipID string) []gateway.Turn {
	e.mu.Lock()
	defer e.mu.Unlock()
	turns := make([]gateway.Turn, 0, len(e.ledger))
	for _, m := range e.ledger {
		if m.ID == skipID {
			continue
		}
		turns = append(turns, gateway.Turn{Role: string(m.Role), Text: m.Text})
	}
	return turns
}

// persist writes the session document and a provenance row. Write
// failures are logged and swallowed: the in-memory turn already
// completed and its reply still has to reach the operator.
func (e *Engine) persist(snap *metrics.Snapshot, trigger, decision, reason, rcpt string) {
	e.mu.Lock()
	msgs := append([]session.Message(nil), e.ledger...)
	e.mu.Unlock()

	if _, err := e.sessions.Save(e.cfg.UserID, session.Document{
		Messages: msgs,
		Context:  snap,
	}); err != nil {
		e.logger.Errorw("session write failed", "trigger", trigger, "error", err)
		return
	}
	if err := e.sessions.LogDecision(session.ProvenanceEntry{
		UserID:      e.cfg.UserID,
		TriggerType: trigger,
		Decision:    decision,
		Reason:      reason,
		Receipt:     rcpt,
	}); err != nil {
		e.logger.Warnw("provenance write failed", "error", err)
	}
}

func attachmentMeta(attachments []gateway.Attachment) *session.AttachmentMeta {
	var meta session.AttachmentMeta
	found := false
	for _, a := range attachments {
		switch {
		case strings.HasPrefix(a.MIMEType, "image/"):
			meta.ImageName = a.Name
			found = true
		case strings.HasPrefix(a.MIMEType, "audio/"):
			meta.AudioName = a.Name
			found = true
		}
	}
	if !found {
		return nil
	}
	return &meta
}

// #endregion internals
