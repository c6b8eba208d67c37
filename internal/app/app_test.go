package app

import (
	"testing"

	"github.com/gin-gonic/gin"

	"DocForge/internal/config"
	"DocForge/internal/logging"
)

func TestNewSetsGinModeFromLogLevel(t *testing.T) {
	cases := []struct {
		level string
		want  string
	}{
		{"info", gin.ReleaseMode},
		{"warn", gin.ReleaseMode},
		{"debug", gin.DebugMode},
	}

	for _, tc := range cases {
		cfg := config.Config{
			Server:  config.ServerConfig{Port: "0"},
			Logging: config.LoggingConfig{Level: tc.level},
		}

		gin.SetMode(gin.TestMode)
		if _, err := New(cfg, logging.New("error")); err != nil {
			t.Fatalf("New(%s): %v", tc.level, err)
		}
		if got := gin.Mode(); got != tc.want {
			t.Fatalf("level %s: gin mode = %s, want %s", tc.level, got, tc.want)
		}
	}
}
