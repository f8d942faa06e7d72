package observability

import (
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	helper := log.NewHelper(log.With(logger, "module", "test"))
	helper.Infof("saved %d entries", 3)
	helper.Errorw("msg", "store failed", "key", "dialogue_history")

	entries := logs.AllUntimed()
	assert.Len(t, entries, 2)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "saved 3 entries", entries[0].Message)
	assert.Equal(t, "test", entries[0].ContextMap()["module"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "store failed", entries[1].Message)
	assert.Equal(t, "dialogue_history", entries[1].ContextMap()["key"])
}

func TestZapLogger_UnpairedKeyvals(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	assert.NoError(t, logger.Log(log.LevelWarn, "lonely"))
	assert.Len(t, logs.All(), 1)
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestNewZap(t *testing.T) {
	z, err := NewZap(LogConfig{Level: "debug", Format: "json", ServiceName: "conversation-service"})
	assert.NoError(t, err)
	assert.NotNil(t, z)
}
