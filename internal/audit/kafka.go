package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink publishes audit events as JSON records keyed by tenant code so
// per-tenant ordering is preserved within a partition.
type KafkaSink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// kafkaPayload is the wire shape consumed by downstream reporting.
type kafkaPayload struct {
	ID                 string `json:"id"`
	Category           string `json:"category"`
	Action             string `json:"action"`
	Timestamp          string `json:"timestamp"`
	TenantCode         string `json:"tenant_code,omitempty"`
	CounterpartyTenant string `json:"counterparty_tenant,omitempty"`
	Principal          string `json:"principal,omitempty"`
	Amount             int64  `json:"amount,omitempty"`
	SwapID             string `json:"swap_id,omitempty"`
	RequestID          string `json:"request_id,omitempty"`
	ClientIP           string `json:"client_ip,omitempty"`
	Device             string `json:"device,omitempty"`
	Reason             string `json:"reason,omitempty"`
}

// NewKafkaSink connects to the brokers and ensures the topic exists.
func NewKafkaSink(ctx context.Context, brokers string, topic string, logger *slog.Logger) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(strings.Split(brokers, ",")...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	// Partitions/replication -1 defers to broker defaults. Already-exists is
	// not an error.
	if _, err := adm.CreateTopic(ctx, -1, -1, nil, topic); err != nil && !strings.Contains(err.Error(), "TOPIC_ALREADY_EXISTS") {
		logger.Warn("could not ensure audit topic", "topic", topic, "error", err)
	}

	return &KafkaSink{client: client, topic: topic, logger: logger}, nil
}

func (s *KafkaSink) Append(ctx context.Context, event Event) error {
	payload := kafkaPayload{
		ID:                 uuid.NewString(),
		Category:           string(event.Action.Category()),
		Action:             string(event.Action),
		Timestamp:          event.Timestamp.Format(time.RFC3339Nano),
		TenantCode:         event.TenantCode.String(),
		CounterpartyTenant: event.CounterpartyTenant.String(),
		Principal:          event.Principal,
		Amount:             event.Amount,
		SwapID:             event.SwapID.String(),
		RequestID:          event.RequestID,
		ClientIP:           event.ClientIP,
		Device:             event.Device,
		Reason:             event.Reason,
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.TenantCode),
		Value: value,
	}
	result := s.client.ProduceSync(ctx, record)
	if err := result.FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes outstanding produces and releases the client.
func (s *KafkaSink) Close() {
	s.client.Close()
}
