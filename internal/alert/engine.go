package alert

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"distress-service/internal/emotion"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	msgProcessed      = "Alert processed"
	msgNoContacts     = "Alert logged (no contacts to notify)"
	msgSuppressed     = "Alert logged (recent alert still in cooldown)"
	msgDispatchFailed = "Alert logged, notification delivery failed"
)

// Engine decides whether a distress event turns into a notification,
// hands it to the dispatcher and records successful deliveries in the ledger.
// Every triggering event is audited before any decision is made.
type Engine struct {
	dispatcher Dispatcher
	ledger     *Ledger
	audit      AuditLog
	logger     *zap.SugaredLogger
	observers  []Observer

	cooldown time.Duration
	now      func() time.Time

	mu       sync.Mutex
	reserved map[string]time.Time
}

type Option func(*Engine)

// WithCooldown suppresses a new dispatch for a patient while a previous one
// is within d. Zero disables the check.
func WithCooldown(d time.Duration) Option {
	return func(e *Engine) { e.cooldown = d }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithObservers(obs ...Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, obs...) }
}

func NewEngine(dispatcher Dispatcher, ledger *Ledger, audit AuditLog, logger *zap.SugaredLogger, opts ...Option) *Engine {
	e := &Engine{
		dispatcher: dispatcher,
		ledger:     ledger,
		audit:      audit,
		logger:     logger,
		now:        time.Now,
		reserved:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) AddObserver(o Observer) {
	e.observers = append(e.observers, o)
}

func (e *Engine) Ledger() *Ledger {
	return e.ledger
}

func (e *Engine) Decide(ctx context.Context, req Request) (Decision, error) {
	if missingFields(req.PatientID, req.PatientName, req.DistressLevel) {
		return Decision{}, ErrMissingFields
	}

	level, err := emotion.ParseLevel(req.DistressLevel)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %s", ErrInvalidLevel, req.DistressLevel)
	}

	now := e.now()
	e.record(ctx, AuditEntry{
		Kind:        AuditTriggered,
		PatientID:   req.PatientID,
		PatientName: req.PatientName,
		Level:       level,
		Contacts:    len(req.Contacts),
		Timestamp:   now,
	})

	if len(req.Contacts) == 0 {
		e.record(ctx, AuditEntry{
			Kind:        AuditSkipped,
			PatientID:   req.PatientID,
			PatientName: req.PatientName,
			Level:       level,
			Detail:      "no contacts",
			Timestamp:   now,
		})
		return Decision{Skip: true, Reason: "no contacts"}, nil
	}

	if !e.reserve(req.PatientID, now) {
		e.record(ctx, AuditEntry{
			Kind:        AuditSuppressed,
			PatientID:   req.PatientID,
			PatientName: req.PatientName,
			Level:       level,
			Contacts:    len(req.Contacts),
			Detail:      fmt.Sprintf("cooldown %s", e.cooldown),
			Timestamp:   now,
		})
		return Decision{Skip: true, Suppressed: true, Reason: "cooldown"}, nil
	}

	contacts := append(req.Contacts[:0:0], req.Contacts...)
	return Decision{
		Intent: &DispatchIntent{
			Payload:  NewPayload(req.PatientID, req.PatientName, level, now),
			Contacts: contacts,
		},
	}, nil
}

// Dispatch delivers an intent. It does not retry. An outright failure
// leaves the ledger untouched and returns an error wrapping ErrDispatchFailed.
func (e *Engine) Dispatch(ctx context.Context, intent *DispatchIntent) (Result, error) {
	p := intent.Payload

	res, err := e.dispatcher.Dispatch(ctx, intent.Contacts, p)
	if err == nil && !res.Success {
		err = fmt.Errorf("dispatcher reported failure")
	}
	if err != nil {
		e.release(p.PatientID, p.Timestamp)
		e.logger.Errorf("Dispatch for patient %s failed: %v", p.PatientID, err)
		e.record(ctx, AuditEntry{
			Kind:        AuditDispatchFailed,
			PatientID:   p.PatientID,
			PatientName: p.PatientName,
			Level:       p.DistressLevel,
			Contacts:    len(intent.Contacts),
			Detail:      err.Error(),
			Timestamp:   e.now(),
		})
		return Result{Success: false, Message: msgDispatchFailed}, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	if len(res.SentTo) < len(intent.Contacts) {
		e.logger.Warnf("Partial delivery for patient %s: %d/%d contacts reached", p.PatientID, len(res.SentTo), len(intent.Contacts))
	}

	a := Alert{
		ID:                primitive.NewObjectID().Hex(),
		PatientID:         p.PatientID,
		PatientName:       p.PatientName,
		Level:             p.DistressLevel,
		Timestamp:         e.now(),
		NotificationsSent: len(res.SentTo),
		Acknowledged:      false,
	}
	e.ledger.Append(a)

	e.record(ctx, AuditEntry{
		Kind:              AuditDispatched,
		PatientID:         p.PatientID,
		PatientName:       p.PatientName,
		Level:             p.DistressLevel,
		Contacts:          len(intent.Contacts),
		NotificationsSent: len(res.SentTo),
		Detail:            a.ID,
		Timestamp:         a.Timestamp,
	})

	for _, o := range e.observers {
		o.AlertRecorded(ctx, a)
	}

	e.logger.Infof("Alert %s recorded for patient %s: sent %d/%d notifications", a.ID, p.PatientID, len(res.SentTo), len(intent.Contacts))

	return Result{
		Success:          true,
		Message:          msgProcessed,
		SMSSent:          true,
		NotifiedContacts: len(res.SentTo),
		Alert:            &a,
	}, nil
}

// Notify runs the full decide-then-dispatch flow. Only validation errors
// are returned; dispatch failures are reported through the result.
func (e *Engine) Notify(ctx context.Context, req Request) (Result, error) {
	d, err := e.Decide(ctx, req)
	if err != nil {
		return Result{}, err
	}

	if d.Skip {
		msg := msgNoContacts
		if d.Suppressed {
			msg = msgSuppressed
		}
		return Result{Success: true, Message: msg, SMSSent: false, NotifiedContacts: 0}, nil
	}

	// failures are already logged and audited by Dispatch
	res, _ := e.Dispatch(ctx, d.Intent)
	return res, nil
}

func missingFields(patientID, patientName, distressLevel string) bool {
	return strings.TrimSpace(patientID) == "" || strings.TrimSpace(patientName) == "" || strings.TrimSpace(distressLevel) == ""
}

func (e *Engine) record(ctx context.Context, entry AuditEntry) {
	entry.ID = primitive.NewObjectID().Hex()
	if err := e.audit.Record(ctx, entry); err != nil {
		e.logger.Errorf("Failed to write audit entry %s (%s) for patient %s: %v", entry.ID, entry.Kind, entry.PatientID, err)
	}
}

func (e *Engine) reserve(patientID string, now time.Time) bool {
	if e.cooldown <= 0 {
		return true
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if last, ok := e.reserved[patientID]; ok && now.Sub(last) < e.cooldown {
		return false
	}
	e.reserved[patientID] = now
	return true
}

func (e *Engine) release(patientID string, at time.Time) {
	if e.cooldown <= 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if last, ok := e.reserved[patientID]; ok && last.Equal(at) {
		delete(e.reserved, patientID)
	}
}
