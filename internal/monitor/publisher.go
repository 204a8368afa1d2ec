package monitor

import (
	"context"
	"encoding/json"

	"distress-service/internal/patient"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaStatusPublisher emits every status change keyed by patient id, so
// all updates of one patient land on the same partition.
type KafkaStatusPublisher struct {
	writer MessageWriter
}

func NewKafkaStatusPublisher(writer MessageWriter) *KafkaStatusPublisher {
	return &KafkaStatusPublisher{writer: writer}
}

func (p *KafkaStatusPublisher) PublishStatus(ctx context.Context, st patient.Status) error {
	value, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(st.PatientID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte("patient_status")},
		},
	})
}
