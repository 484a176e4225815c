package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HOST", "PORT", "ALLOW_ORIGINS", "HEADER_ROW", "SUGGEST_THRESHOLD", "MACHINERY_FILE"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "127.0.0.1:8082", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.Equal(t, 1, cfg.HeaderRow)
	assert.InDelta(t, 0.8, cfg.SuggestThreshold, 1e-9)
	assert.Empty(t, cfg.MachineryFile)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOW_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("HEADER_ROW", "3")
	t.Setenv("SUGGEST_THRESHOLD", "0.5")
	t.Setenv("MAX_UPLOAD_MB", "not-a-number")

	cfg := Load()

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowOrigins)
	assert.Equal(t, 3, cfg.HeaderRow)
	assert.InDelta(t, 0.5, cfg.SuggestThreshold, 1e-9)
	assert.Equal(t, 64, cfg.MaxUploadMB)
}
