package service

import "github.com/google/wire"

// ProviderSet 服务层提供者集合
var ProviderSet = wire.NewSet(
	NewConversationService,
	NewHistoryService,
)
