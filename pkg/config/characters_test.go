package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCharacterDirectory(t *testing.T) {
	data := []byte(`
characters:
  - id: aoi
    display_name: 蒼
  - id: shun
    display_name: 瞬
    description: 年下の後輩
`)

	dir, err := ParseCharacterDirectory(data)
	require.NoError(t, err)

	assert.Equal(t, "蒼", dir.DisplayName("aoi"))
	assert.Equal(t, "瞬", dir.DisplayName("shun"))
	// 未登记的角色回退为ID
	assert.Equal(t, "unknown", dir.DisplayName("unknown"))
}

func TestParseCharacterDirectory_MissingID(t *testing.T) {
	_, err := ParseCharacterDirectory([]byte("characters:\n  - display_name: 名無し\n"))
	assert.Error(t, err)
}

func TestCharacterDirectory_Nil(t *testing.T) {
	var dir *CharacterDirectory
	assert.Equal(t, "aoi", dir.DisplayName("aoi"))
}

func TestGetEnv(t *testing.T) {
	t.Setenv("KV_TEST_STRING", "value")
	t.Setenv("KV_TEST_INT", "42")
	t.Setenv("KV_TEST_BAD_INT", "x")
	t.Setenv("KV_TEST_BOOL", "1")

	assert.Equal(t, "value", GetEnv("KV_TEST_STRING", "default"))
	assert.Equal(t, "default", GetEnv("KV_TEST_MISSING", "default"))
	assert.Equal(t, 42, GetEnvAsInt("KV_TEST_INT", 7))
	assert.Equal(t, 7, GetEnvAsInt("KV_TEST_BAD_INT", 7))
	assert.True(t, GetEnvAsBool("KV_TEST_BOOL", false))
}
