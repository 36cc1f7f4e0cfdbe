package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/bibbank/underwriting/internal/domain/port"
	pkgkafka "github.com/bibbank/underwriting/pkg/kafka"
)

// auditEnvelope is the wire shape of an audit record.
type auditEnvelope struct {
	AuditID string `json:"audit_id"`
	port.AuditRecord
}

// AuditSink implements port.AuditSink by appending records to an audit
// topic consumed by the compliance store.
type AuditSink struct {
	producer MessagePublisher
	topic    string
}

func NewAuditSink(producer MessagePublisher, topic string) *AuditSink {
	return &AuditSink{producer: producer, topic: topic}
}

func (s *AuditSink) Record(ctx context.Context, rec port.AuditRecord) error {
	env := auditEnvelope{AuditID: uuid.NewString(), AuditRecord: rec}
	env.OccurredAt = rec.OccurredAt.UTC()

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal audit record %s: %w", rec.Action, err)
	}
	msg := pkgkafka.Message{
		Key:   []byte(rec.EntityID),
		Value: payload,
		Headers: map[string]string{
			"audit_action": rec.Action,
			"entity_type":  rec.EntityType,
			"content_type": "application/json",
		},
	}
	if err := s.producer.Publish(ctx, s.topic, msg); err != nil {
		return fmt.Errorf("failed to publish audit record to topic %s: %w", s.topic, err)
	}
	return nil
}
