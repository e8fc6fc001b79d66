package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {
			"app_port": 8080,
			"socket_port": 8081,
			"allowed_origins": ["http://localhost:3000"]
		},
		"mongo": {
			"uri": "mongodb://localhost:27017",
			"database": "peakcrews_chat",
			"messages_collection": "messages",
			"conversations_collection": "conversations"
		},
		"log_level": "debug"
	}`), 0o600))

	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.AppPort)
	assert.Equal(t, 8081, cfg.Server.SocketPort)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "ws", cfg.Server.SocketRoute) // default when omitted
	assert.Equal(t, "peakcrews_chat", cfg.Mongo.Database)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
