package notify

import (
	"context"
	"sync"
	"time"

	"distress-service/internal/alert"
	"distress-service/internal/patient"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

const pushTitle = "Patient distress alert"

// Sender is the part of *messaging.Client the notifier needs.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type ProfileLookup interface {
	GetProfile(ctx context.Context, id string) (*patient.Profile, error)
}

func DoctorTopic(doctorID string) string {
	return "doctor-" + doctorID
}

// PushNotifier tells the treating doctor about every recorded alert through
// a firebase topic. Patients without a doctor are skipped.
type PushNotifier struct {
	sender   Sender
	profiles ProfileLookup
	logger   *zap.SugaredLogger
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewPushNotifier(sender Sender, profiles ProfileLookup, logger *zap.SugaredLogger, timeout time.Duration) *PushNotifier {
	return &PushNotifier{
		sender:   sender,
		profiles: profiles,
		logger:   logger,
		timeout:  timeout,
	}
}

// AlertRecorded sends in the background so the dispatch path never waits on
// firebase.
func (n *PushNotifier) AlertRecorded(_ context.Context, a alert.Alert) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.Push(ctx, a); err != nil {
			n.logger.Errorf("Failed to push alert %s for patient %s: %v", a.ID, a.PatientID, err)
		}
	}()
}

// Wait blocks until in-flight pushes finish.
func (n *PushNotifier) Wait() {
	n.wg.Wait()
}

func (n *PushNotifier) Push(ctx context.Context, a alert.Alert) error {
	p, err := n.profiles.GetProfile(ctx, a.PatientID)
	if err != nil {
		return err
	}
	if !p.IsEnrolled || p.DoctorID == "" {
		n.logger.Debugf("Patient %s has no doctor, skipping push for alert %s", a.PatientID, a.ID)
		return nil
	}

	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: pushTitle,
			Body:  alert.GenerateAlertMessage(a.PatientName),
		},
		Data: map[string]string{
			"alert_id":   a.ID,
			"patient_id": a.PatientID,
			"level":      a.Level.String(),
			"timestamp":  a.Timestamp.Format(time.RFC3339),
		},
		Topic: DoctorTopic(p.DoctorID),
	}

	response, err := n.sender.Send(ctx, msg)
	if err != nil {
		return err
	}

	n.logger.Infof("Pushed alert %s to %s (response: %s)", a.ID, msg.Topic, response)
	return nil
}
