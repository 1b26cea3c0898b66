package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// KafkaSink 把反馈事件转发到 Kafka，供离线分析与模型训练消费。
// 作为 Collector 的可选旁路：在线簿记照常走 Collector 的扇出，
// Sink 只负责事件落流。
type KafkaSink struct {
	client *kgo.Client
	topic  string
	logger *zap.Logger
}

// KafkaSinkConfig 是 Kafka 转发配置。
type KafkaSinkConfig struct {
	Brokers  []string
	Topic    string
	ClientID string

	// AllAcks 为 true 时等待全部 ISR 确认，否则仅 leader 确认。
	AllAcks bool

	MaxRetries int
}

// NewKafkaSink 创建 Kafka 转发器。
func NewKafkaSink(cfg KafkaSinkConfig, logger *zap.Logger) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("feedback: kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("feedback: kafka topic is required")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "scholarrec-feedback"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	acks := kgo.LeaderAck()
	if cfg.AllAcks {
		acks = kgo.AllISRAcks()
	}
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.RequiredAcks(acks),
		kgo.DefaultProduceTopic(cfg.Topic),
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, kgo.RecordRetries(cfg.MaxRetries))
	}
	if !cfg.AllAcks {
		// RequiredAcks != AllISRAcks 时 franz-go 要求显式关闭幂等
		opts = append(opts, kgo.DisableIdempotentWrite())
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("feedback: kafka client: %w", err)
	}
	return &KafkaSink{client: client, topic: cfg.Topic, logger: logger}, nil
}

// Publish 异步发送一条事件，按 UserID 分区保证同一用户的事件有序。
func (s *KafkaSink) Publish(ctx context.Context, event *Event) error {
	if s == nil || s.client == nil || event == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("feedback: marshal event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.UserID),
		Value: payload,
	}
	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			s.logger.Warn("feedback: kafka produce failed",
				zap.String("user_id", event.UserID), zap.Error(err))
		}
	})
	return nil
}

// Close 冲刷未发送的事件后关闭客户端。
func (s *KafkaSink) Close() {
	if s == nil || s.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Flush(ctx)
	s.client.Close()
}
