package notify

import (
	"context"

	"distress-service/internal/alert"
	"distress-service/internal/patient"

	"go.uber.org/zap"
)

// SMSLogDispatcher stands in for an SMS gateway: every message is written to
// the log and counted as delivered.
type SMSLogDispatcher struct {
	logger  *zap.SugaredLogger
	failing map[string]bool
}

type SMSOption func(*SMSLogDispatcher)

// WithFailurePhones makes deliveries to the given numbers fail.
func WithFailurePhones(phones ...string) SMSOption {
	return func(d *SMSLogDispatcher) {
		for _, p := range phones {
			d.failing[p] = true
		}
	}
}

func NewSMSLogDispatcher(logger *zap.SugaredLogger, opts ...SMSOption) *SMSLogDispatcher {
	d := &SMSLogDispatcher{
		logger:  logger,
		failing: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *SMSLogDispatcher) Dispatch(ctx context.Context, contacts []patient.EmergencyContact, payload alert.NotificationPayload) (alert.DispatchResult, error) {
	sent := make([]string, 0, len(contacts))

	for _, c := range contacts {
		if err := ctx.Err(); err != nil {
			return alert.DispatchResult{Success: len(sent) > 0, SentTo: sent}, err
		}
		if d.failing[c.Phone] {
			d.logger.Warnf("Failed to notify %s (%s)", c.Name, c.Phone)
			continue
		}
		d.logger.Infof("Notifying %s (%s): %s", c.Name, c.Phone, payload.Message)
		sent = append(sent, c.Phone)
	}

	return alert.DispatchResult{Success: len(sent) > 0, SentTo: sent}, nil
}
