package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// 事件类型
const (
	ConversationCreated   = "conversation.created"
	ConversationDeleted   = "conversation.deleted"
	ConversationsImported = "conversation.imported"
	ConversationsCleared  = "conversation.cleared"
	HistorySaved          = "history.saved"
	HistoryImported       = "history.imported"
)

// Event 领域事件
type Event struct {
	ID          string                 `json:"eventId"`
	Type        string                 `json:"eventType"`
	Version     string                 `json:"eventVersion"`
	AggregateID string                 `json:"aggregateId"`
	Timestamp   time.Time              `json:"timestamp"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
}

// NewEvent 创建事件并填充默认值
func NewEvent(eventType, aggregateID string, payload map[string]interface{}) *Event {
	return &Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		Version:     "v1",
		AggregateID: aggregateID,
		Timestamp:   time.Now().UTC(),
		Payload:     payload,
	}
}

// Publisher 事件发布器接口
type Publisher interface {
	// Publish 发布事件
	Publish(ctx context.Context, event *Event) error

	// Close 关闭发布器
	Close() error
}

// PublisherConfig 发布器配置
type PublisherConfig struct {
	Brokers  []string
	Topic    string
	RetryMax int
}

// KafkaPublisher Kafka 事件发布器
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher 创建 Kafka 发布器
func NewKafkaPublisher(c *PublisherConfig) (*KafkaPublisher, error) {
	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Producer.Return.Successes = true
	kafkaConfig.Producer.Return.Errors = true
	kafkaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	kafkaConfig.Producer.Compression = sarama.CompressionSnappy
	kafkaConfig.Producer.Retry.Max = c.RetryMax
	kafkaConfig.Version = sarama.V3_6_0_0

	producer, err := sarama.NewSyncProducer(c.Brokers, kafkaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return NewKafkaPublisherWithProducer(producer, c.Topic), nil
}

// NewKafkaPublisherWithProducer 使用已有 producer 创建发布器
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	if topic == "" {
		topic = "conversation.events"
	}
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
	}
}

// Publish 发布事件，以聚合ID作为分区键
func (p *KafkaPublisher) Publish(ctx context.Context, event *Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.AggregateID),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
			{Key: []byte("event_domain"), Value: []byte(domainOf(event.Type))},
		},
		Timestamp: event.Timestamp,
	}

	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close 关闭发布器
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// domainOf "conversation.created" -> "conversation"
func domainOf(eventType string) string {
	if i := strings.IndexByte(eventType, '.'); i > 0 {
		return eventType[:i]
	}
	return eventType
}

// NoopPublisher 未配置 Kafka 时使用
type NoopPublisher struct{}

// Publish 丢弃事件
func (NoopPublisher) Publish(context.Context, *Event) error { return nil }

// Close 无操作
func (NoopPublisher) Close() error { return nil }
