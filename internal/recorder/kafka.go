package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"FXSignal/internal/model"
)

// EventSignalGenerated is the event type of published signals.
const EventSignalGenerated = "SIGNAL_GENERATED"

// DefaultPublishTimeout bounds a single publish so an unresponsive broker cannot
// hold up the analysis that produced the signal.
const DefaultPublishTimeout = 2 * time.Second

// SignalEvent is the message published for every recorded signal.
type SignalEvent struct {
	EventType  string              `json:"event_type"`
	Instrument string              `json:"instrument"`
	Record     *model.SignalRecord `json:"record"`
	Timestamp  time.Time           `json:"timestamp"`
}

// messageWriter is the subset of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaRecorder publishes recorded signals to a Kafka topic keyed by instrument.
// It keeps no history of its own.
type KafkaRecorder struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
}

// NewKafkaRecorder creates a new Kafka publisher.
func NewKafkaRecorder(brokers []string, topic string) *KafkaRecorder {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: DefaultPublishTimeout,
	}
	return &KafkaRecorder{writer: writer, topic: topic, timeout: DefaultPublishTimeout}
}

func (k *KafkaRecorder) RecordSignal(ctx context.Context, rec *model.SignalRecord) error {
	event := SignalEvent{
		EventType:  EventSignalGenerated,
		Instrument: rec.Instrument,
		Record:     rec,
		Timestamp:  time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(rec.Instrument),
		Value: data,
	}
	if k.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, k.timeout)
		defer cancel()
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

func (k *KafkaRecorder) Close() error {
	return k.writer.Close()
}
