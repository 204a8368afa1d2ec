package alert

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/EventStore/EventStore-Client-Go/esdb"
)

const auditStreamPrefix = "patient-alerts-"

func AuditStreamName(patientID string) string {
	return auditStreamPrefix + patientID
}

// EventStoreAudit appends audit entries to one EventStoreDB stream per patient.
type EventStoreAudit struct {
	client *esdb.Client
}

func NewEventStoreAudit(client *esdb.Client) *EventStoreAudit {
	return &EventStoreAudit{client: client}
}

func (a *EventStoreAudit) Record(ctx context.Context, e AuditEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	event := esdb.EventData{
		ContentType: esdb.JsonContentType,
		EventType:   "alert." + string(e.Kind),
		Data:        data,
	}

	if _, err := a.client.AppendToStream(ctx, AuditStreamName(e.PatientID), esdb.AppendToStreamOptions{}, event); err != nil {
		return fmt.Errorf("append audit entry %s: %w", e.ID, err)
	}
	return nil
}
