package biz

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/events"
)

// ProviderSet 业务层提供者集合
var ProviderSet = wire.NewSet(
	NewConversationUsecase,
	NewFavoriteUsecase,
	NewHistoryUsecase,
	NewSearchUsecase,
	NewStatsUsecase,
	NewSummaryUsecase,
	NewExportUsecase,
)

// nowFunc 当前时间，统一使用 UTC
var nowFunc = func() time.Time {
	return time.Now().UTC()
}

// publishEvent 发布领域事件，失败只记录日志
func publishEvent(ctx context.Context, publisher events.Publisher, logger *log.Helper, eventType, aggregateID string, payload map[string]interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, events.NewEvent(eventType, aggregateID, payload)); err != nil {
		logger.WithContext(ctx).Warnf("publish %s event failed: %v", eventType, err)
	}
}
