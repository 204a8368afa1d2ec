package alert

import (
	"context"
	"errors"
	"sync"
	"time"

	"distress-service/internal/emotion"

	"go.uber.org/zap"
)

type AuditKind string

const (
	AuditTriggered      AuditKind = "triggered"
	AuditSkipped        AuditKind = "skipped"
	AuditSuppressed     AuditKind = "suppressed"
	AuditDispatched     AuditKind = "dispatched"
	AuditDispatchFailed AuditKind = "dispatch_failed"
)

// AuditEntry is written once and never edited.
type AuditEntry struct {
	ID                string        `bson:"_id" json:"id"`
	Kind              AuditKind     `bson:"kind" json:"kind"`
	PatientID         string        `bson:"patient_id" json:"patient_id"`
	PatientName       string        `bson:"patient_name" json:"patient_name"`
	Level             emotion.Level `bson:"level" json:"level"`
	Contacts          int           `bson:"contacts" json:"contacts"`
	NotificationsSent int           `bson:"notifications_sent" json:"notifications_sent"`
	Detail            string        `bson:"detail,omitempty" json:"detail,omitempty"`
	Timestamp         time.Time     `bson:"timestamp" json:"timestamp"`
}

type AuditLog interface {
	Record(ctx context.Context, entry AuditEntry) error
}

type AuditReader interface {
	ForPatient(ctx context.Context, patientID string, limit int64) ([]AuditEntry, error)
}

// MemoryAudit keeps the audit stream in process.
type MemoryAudit struct {
	mu      sync.RWMutex
	entries []AuditEntry
}

func NewMemoryAudit() *MemoryAudit {
	return &MemoryAudit{entries: make([]AuditEntry, 0)}
}

func (m *MemoryAudit) Record(_ context.Context, entry AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry)
	return nil
}

func (m *MemoryAudit) Entries() []AuditEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]AuditEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// ForPatient returns a patient's entries newest first, at most limit when
// limit is positive.
func (m *MemoryAudit) ForPatient(_ context.Context, patientID string, limit int64) ([]AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]AuditEntry, 0)
	for i := len(m.entries) - 1; i >= 0; i-- {
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
		if m.entries[i].PatientID == patientID {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

// LoggerAudit writes each entry as a structured log line.
type LoggerAudit struct {
	logger *zap.SugaredLogger
}

func NewLoggerAudit(logger *zap.SugaredLogger) *LoggerAudit {
	return &LoggerAudit{logger: logger}
}

func (l *LoggerAudit) Record(_ context.Context, e AuditEntry) error {
	l.logger.Infow("alert audit",
		"audit_id", e.ID,
		"kind", e.Kind,
		"patient_id", e.PatientID,
		"level", e.Level,
		"contacts", e.Contacts,
		"notifications_sent", e.NotificationsSent,
		"detail", e.Detail,
		"at", e.Timestamp.Format(time.RFC3339),
	)
	return nil
}

// MultiAudit fans an entry out to every sink. A failing sink does not stop
// the others.
type MultiAudit []AuditLog

func (m MultiAudit) Record(ctx context.Context, entry AuditEntry) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Record(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
