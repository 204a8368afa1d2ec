package alert

import (
	"context"
	"fmt"
	"time"

	"distress-service/internal/emotion"
	"distress-service/internal/patient"
)

const alertMessageTemplate = "Alert: Elevated emotional distress detected for %s. Please check in when you can."

// GenerateAlertMessage renders the non-alarming text sent to emergency contacts.
func GenerateAlertMessage(patientName string) string {
	return fmt.Sprintf(alertMessageTemplate, patientName)
}

type NotificationPayload struct {
	PatientID     string        `json:"patientId"`
	PatientName   string        `json:"patientName"`
	DistressLevel emotion.Level `json:"distressLevel"`
	Timestamp     time.Time     `json:"timestamp"`
	Message       string        `json:"message"`
}

func NewPayload(patientID, patientName string, level emotion.Level, at time.Time) NotificationPayload {
	return NotificationPayload{
		PatientID:     patientID,
		PatientName:   patientName,
		DistressLevel: level,
		Timestamp:     at,
		Message:       GenerateAlertMessage(patientName),
	}
}

// Alert is a ledger entry. Only Acknowledged ever changes after creation.
type Alert struct {
	ID                string        `json:"id"`
	PatientID         string        `json:"patient_id"`
	PatientName       string        `json:"patient_name"`
	Level             emotion.Level `json:"level"`
	Timestamp         time.Time     `json:"timestamp"`
	NotificationsSent int           `json:"notifications_sent"`
	Acknowledged      bool          `json:"acknowledged"`
}

type DispatchResult struct {
	Success bool     `json:"success"`
	SentTo  []string `json:"sentTo"`
}

// Dispatcher delivers a payload to every contact and reports the phones it
// reached, in contact order.
type Dispatcher interface {
	Dispatch(ctx context.Context, contacts []patient.EmergencyContact, payload NotificationPayload) (DispatchResult, error)
}

// Observer is told about every alert appended to the ledger.
type Observer interface {
	AlertRecorded(ctx context.Context, a Alert)
}

type Request struct {
	PatientID     string
	PatientName   string
	DistressLevel string
	Contacts      []patient.EmergencyContact
}

type DispatchIntent struct {
	Payload  NotificationPayload
	Contacts []patient.EmergencyContact
}

// Decision is either a dispatch intent or a skip. Skips are expected
// outcomes, not errors.
type Decision struct {
	Skip       bool
	Suppressed bool
	Reason     string
	Intent     *DispatchIntent
}

type Result struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	SMSSent          bool   `json:"smsSent"`
	NotifiedContacts int    `json:"notifiedContacts"`
	Alert            *Alert `json:"alert,omitempty"`
}
