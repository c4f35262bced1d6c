package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/temcen/quickrec/internal/config"
	"github.com/temcen/quickrec/pkg/models"
)

const DefaultInteractionsTopic = "user-interactions"

// InteractionMessage is the wire form of an interaction event on the topic.
type InteractionMessage struct {
	UserID          int64     `json:"user_id"`
	ProductID       int64     `json:"product_id"`
	InteractionType string    `json:"interaction_type"`
	Timestamp       time.Time `json:"timestamp"`
}

// InteractionStream replays the interactions topic from the first retained offset up to
// the high-water mark observed at start. It is used once, at model build time.
type InteractionStream struct {
	brokers     []string
	topic       string
	readTimeout time.Duration
	logger      *logrus.Logger
}

func NewInteractionStream(cfg *config.KafkaConfig, logger *logrus.Logger) *InteractionStream {
	topic := cfg.Topics.UserInteractions
	if topic == "" {
		topic = DefaultInteractionsTopic
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	return &InteractionStream{
		brokers:     cfg.Brokers,
		topic:       topic,
		readTimeout: readTimeout,
		logger:      logger,
	}
}

func (s *InteractionStream) Name() string { return "kafka:" + s.topic }

func (s *InteractionStream) LoadInteractions(ctx context.Context) ([]models.InteractionEvent, error) {
	if len(s.brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", s.brokers[0])
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka: %w", err)
	}
	partitions, err := conn.ReadPartitions(s.topic)
	conn.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read partitions of %s: %w", s.topic, err)
	}

	var events []models.InteractionEvent
	skipped := 0
	for _, p := range partitions {
		partEvents, partSkipped, err := s.replayPartition(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		events = append(events, partEvents...)
		skipped += partSkipped
	}

	s.logger.WithFields(logrus.Fields{
		"source":     s.Name(),
		"partitions": len(partitions),
		"events":     len(events),
		"skipped":    skipped,
	}).Info("Interaction log replayed from Kafka")

	return events, nil
}

func (s *InteractionStream) replayPartition(ctx context.Context, partition int) ([]models.InteractionEvent, int, error) {
	leader, err := kafka.DialLeader(ctx, "tcp", s.brokers[0], s.topic, partition)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to dial leader for partition %d: %w", partition, err)
	}
	first, last, err := leader.ReadOffsets()
	leader.Close()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read offsets for partition %d: %w", partition, err)
	}
	if first >= last {
		return nil, 0, nil
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   s.brokers,
		Topic:     s.topic,
		Partition: partition,
		MinBytes:  1,
		MaxBytes:  10e6, // 10MB
	})
	defer reader.Close()

	if err := reader.SetOffset(first); err != nil {
		return nil, 0, fmt.Errorf("failed to seek partition %d: %w", partition, err)
	}

	events := make([]models.InteractionEvent, 0, last-first)
	skipped := 0
	for offset := first; offset < last; {
		readCtx, cancel := context.WithTimeout(ctx, s.readTimeout)
		message, err := reader.ReadMessage(readCtx)
		cancel()
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read partition %d at offset %d: %w", partition, offset, err)
		}
		offset = message.Offset + 1

		event, err := DecodeInteraction(message)
		if err != nil {
			skipped++
			s.logger.WithError(err).WithFields(logrus.Fields{
				"partition": partition,
				"offset":    message.Offset,
			}).Warn("Skipping undecodable interaction message")
			continue
		}
		events = append(events, event)
	}

	return events, skipped, nil
}

// DecodeInteraction converts a topic message into an event, rejecting unknown types.
func DecodeInteraction(message kafka.Message) (models.InteractionEvent, error) {
	var m InteractionMessage
	if err := json.Unmarshal(message.Value, &m); err != nil {
		return models.InteractionEvent{}, fmt.Errorf("failed to unmarshal interaction: %w", err)
	}

	event := models.InteractionEvent{
		UserID:    m.UserID,
		ProductID: m.ProductID,
		Type:      models.InteractionType(m.InteractionType),
		Timestamp: m.Timestamp,
	}
	if !event.Type.Valid() {
		return models.InteractionEvent{}, fmt.Errorf("unknown interaction type %q", m.InteractionType)
	}
	return event, nil
}

// EncodeInteraction builds a topic message keyed by product id.
func EncodeInteraction(event models.InteractionEvent) (kafka.Message, error) {
	value, err := json.Marshal(InteractionMessage{
		UserID:          event.UserID,
		ProductID:       event.ProductID,
		InteractionType: string(event.Type),
		Timestamp:       event.Timestamp,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal interaction: %w", err)
	}

	return kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ProductID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "interaction_type", Value: []byte(event.Type)},
			{Key: "timestamp", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}

// InteractionPublisher writes interaction events to the topic.
type InteractionPublisher struct {
	writer *kafka.Writer
	logger *logrus.Logger
}

func NewInteractionPublisher(cfg *config.KafkaConfig, logger *logrus.Logger) *InteractionPublisher {
	topic := cfg.Topics.UserInteractions
	if topic == "" {
		topic = DefaultInteractionsTopic
	}
	return &InteractionPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{}, // Key by product for partition locality
			RequiredAcks:           kafka.RequireOne,
			BatchTimeout:           10 * time.Millisecond,
			BatchSize:              100,
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

func (p *InteractionPublisher) Publish(ctx context.Context, events []models.InteractionEvent) error {
	messages := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		m, err := EncodeInteraction(e)
		if err != nil {
			return err
		}
		messages = append(messages, m)
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("failed to write interactions to Kafka: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"topic":    p.writer.Topic,
		"messages": len(messages),
	}).Info("Interactions published to Kafka")

	return nil
}

func (p *InteractionPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close producer: %w", err)
	}
	return nil
}
