package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kratos/kratos/v2/log"
	_ "go.uber.org/automaxprocs"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/conf"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/cmd/conversation-service/internal/server"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/config"
	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/observability"
)

const serviceName = "conversation-service"

// Version 构建时通过 -ldflags 注入
var Version = "dev"

// App 应用组件
type App struct {
	HTTP    *server.HTTPServer
	Metrics *server.MetricsServer
}

func main() {
	// 配置加载前使用标准输出日志
	bootLogger := log.With(log.NewStdLogger(os.Stdout), "service", serviceName)
	bootLog := log.NewHelper(bootLogger)

	configPath := config.GetEnv("CONFIG_PATH", "./configs/conversation-service.yaml")
	cfgManager := config.NewManager(bootLogger)
	if err := cfgManager.LoadConfig(configPath, serviceName); err != nil {
		bootLog.Fatalf("failed to load config: %v", err)
	}
	defer cfgManager.Close()

	c, err := conf.Load(cfgManager)
	if err != nil {
		bootLog.Fatalf("invalid config: %v", err)
	}

	zapLogger, err := observability.NewZap(observability.LogConfig{
		Level:          c.Observability.LogLevel,
		Format:         c.Observability.LogFormat,
		ServiceName:    c.Observability.ServiceName,
		ServiceVersion: Version,
		Environment:    c.Observability.Environment,
	})
	if err != nil {
		bootLog.Fatalf("failed to create logger: %v", err)
	}
	kratosLogger := observability.NewZapLogger(zapLogger)
	defer kratosLogger.Sync()

	logger := log.With(kratosLogger,
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
	)
	helper := log.NewHelper(logger)
	helper.Infof("starting %s %s in %s mode", serviceName, Version, cfgManager.GetMode())

	shutdownTracing, err := observability.InitTracing(context.Background(), observability.TracingConfig{
		ServiceName:    c.Observability.ServiceName,
		ServiceVersion: Version,
		Environment:    c.Observability.Environment,
		Endpoint:       c.Observability.OTELEndpoint,
		SamplingRate:   c.Observability.SamplingRate,
		Enabled:        c.Observability.EnableTrace,
	})
	if err != nil {
		helper.Fatalf("failed to init tracing: %v", err)
	}

	// 初始化应用（使用 Wire 生成的代码）
	app, cleanup, err := initApp(c, logger)
	if err != nil {
		helper.Fatalf("failed to initialize app: %v", err)
	}
	defer cleanup()

	errCh := make(chan error, 2)
	go func() {
		errCh <- app.HTTP.Start()
	}()
	if c.Server.MetricsAddr != "" {
		go func() {
			errCh <- app.Metrics.Start()
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		helper.Infof("received signal %s, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			helper.Errorf("server error: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Server.ShutdownTimeout)
	defer cancel()

	if err := app.HTTP.Stop(ctx); err != nil {
		helper.Errorf("http server forced to shutdown: %v", err)
	}
	if err := app.Metrics.Stop(ctx); err != nil {
		helper.Errorf("metrics server forced to shutdown: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		helper.Errorf("tracing shutdown: %v", err)
	}

	helper.Info("server exited")
}
