package infra

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/conf"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/domain"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/config"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/events"
)

// ProviderSet 基础设施提供者集合
var ProviderSet = wire.NewSet(
	NewSummarizer,
	NewArchiveStore,
	NewEventPublisher,
	NewCharacterDirectory,
)

// NewSummarizer 按配置创建摘要服务客户端，未启用时所有调用返回错误
func NewSummarizer(c *conf.Config, logger log.Logger) domain.Summarizer {
	if !c.Summarizer.Enabled {
		log.NewHelper(logger).Warn("summarizer disabled, summary requests will fail")
		return disabledSummarizer{}
	}
	return NewSummarizerClient(&c.Summarizer, logger)
}

// NewArchiveStore 按配置创建归档存储，未启用时返回 nil
func NewArchiveStore(c *conf.Config, logger log.Logger) (domain.ArchiveStore, error) {
	if !c.Archive.Enabled {
		return nil, nil
	}
	archive, err := NewMinIOArchive(&c.Archive, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive store: %w", err)
	}
	return archive, nil
}

// NewEventPublisher 按配置创建事件发布器
func NewEventPublisher(c *conf.Config, logger log.Logger) (events.Publisher, func(), error) {
	helper := log.NewHelper(log.With(logger, "module", "infra/events"))
	if !c.Kafka.Enabled {
		return events.NoopPublisher{}, func() {}, nil
	}

	publisher, err := events.NewKafkaPublisher(&events.PublisherConfig{
		Brokers:  c.Kafka.Brokers,
		Topic:    c.Kafka.Topic,
		RetryMax: c.Kafka.RetryMax,
	})
	if err != nil {
		return nil, nil, err
	}
	helper.Infof("publishing conversation events to %s", c.Kafka.Topic)

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			helper.Errorf("close event publisher: %v", err)
		}
	}
	return publisher, cleanup, nil
}

// NewCharacterDirectory 加载角色目录，未配置文件时标题直接使用角色ID
func NewCharacterDirectory(c *conf.Config) (domain.CharacterDirectory, error) {
	if c.Characters.File == "" {
		return config.NewCharacterDirectory(nil), nil
	}
	return config.LoadCharacterDirectory(c.Characters.File)
}
