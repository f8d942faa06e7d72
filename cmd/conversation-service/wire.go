//go:build wireinject
// +build wireinject

package main

import (
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/biz"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/conf"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/data"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/infra"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/server"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/service"
)

// initApp 初始化应用
func initApp(c *conf.Config, logger log.Logger) (*App, func(), error) {
	panic(wire.Build(
		// Data 层
		data.ProviderSet,

		// Infra 层
		infra.ProviderSet,

		// Biz 层
		biz.ProviderSet,

		// Service 层
		service.ProviderSet,

		// Server 层
		server.ProviderSet,

		// 组装 App
		wire.Struct(new(App), "*"),
	))
}
