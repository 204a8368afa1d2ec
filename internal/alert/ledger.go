package alert

import (
	"sync"

	"github.com/samber/lo"
)

// Ledger holds the alerts shown on the clinician dashboard, newest first.
// Readers share the lock; appends and acknowledgements take it exclusively.
type Ledger struct {
	mu      sync.RWMutex
	entries []Alert
}

func NewLedger() *Ledger {
	return &Ledger{entries: make([]Alert, 0)}
}

func (l *Ledger) Append(a Alert) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]Alert{a}, l.entries...)
}

func (l *Ledger) List() []Alert {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Alert, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) Get(id string) (Alert, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return lo.Find(l.entries, func(a Alert) bool { return a.ID == id })
}

func (l *Ledger) ForPatient(patientID string) []Alert {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return lo.Filter(l.entries, func(a Alert, _ int) bool { return a.PatientID == patientID })
}

func (l *Ledger) Unacknowledged() []Alert {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return lo.Filter(l.entries, func(a Alert, _ int) bool { return !a.Acknowledged })
}

// Acknowledge marks the alert as seen. Unknown or already acknowledged ids
// are a no-op; the return value reports whether anything changed.
func (l *Ledger) Acknowledge(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.entries {
		if l.entries[i].ID == id {
			if l.entries[i].Acknowledged {
				return false
			}
			l.entries[i].Acknowledged = true
			return true
		}
	}
	return false
}

// Dismiss hides an alert from the dashboard. The audit trail keeps it.
func (l *Ledger) Dismiss(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, idx, ok := lo.FindIndexOf(l.entries, func(a Alert) bool { return a.ID == id })
	if !ok {
		return false
	}
	l.entries = append(l.entries[:idx], l.entries[idx+1:]...)
	return true
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
