package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawkymisc/VoiceDialogueApp-sub001/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	m := config.NewManager(log.DefaultLogger)
	require.NoError(t, m.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), "conversation-service"))

	c, err := Load(m)
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.HTTPAddr)
	assert.Equal(t, 30*time.Second, c.Server.RequestTimeout)
	assert.Equal(t, "memory", c.Storage.Driver)
	assert.Equal(t, "conversation-service", c.Observability.ServiceName)
	assert.False(t, c.Summarizer.Enabled)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversation-service.yaml")
	content := []byte(`
server:
  http_addr: ":18080"
storage:
  driver: REDIS
  key_prefix: test
redis:
  addr: redis:6379
summarizer:
  enabled: true
  base_url: http://summarizer:8000
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("REDIS_PASSWORD", "secret")

	m := config.NewManager(log.DefaultLogger)
	require.NoError(t, m.LoadConfig(path, "conversation-service"))

	c, err := Load(m)
	require.NoError(t, err)

	assert.Equal(t, ":18080", c.Server.HTTPAddr)
	assert.Equal(t, "redis", c.Storage.Driver)
	assert.Equal(t, "redis:6379", c.Redis.Addr)
	assert.Equal(t, "secret", c.Redis.Password)
	assert.Equal(t, "http://summarizer:8000", c.Summarizer.BaseURL)
}

func TestValidate(t *testing.T) {
	c := &Config{Storage: StorageConfig{Driver: "sqlite"}}
	assert.Error(t, c.Validate())

	c = &Config{Storage: StorageConfig{Driver: "memory"}, Kafka: KafkaConfig{Enabled: true}}
	assert.Error(t, c.Validate())

	c = &Config{Storage: StorageConfig{Driver: "memory"}}
	assert.NoError(t, c.Validate())
}
