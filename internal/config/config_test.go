package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/compta/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 300*time.Millisecond, cfg.Editor.LookupDelay)
	assert.Equal(t, 10, cfg.Editor.SuggestLimit)
	assert.Equal(t, "EUR", cfg.Editor.Currency)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LOOKUP_DELAY", "1s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("DB_NAME", "ledger")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Editor.LookupDelay)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "postgres://postgres:@localhost:5432/ledger?sslmode=disable", cfg.ConnectionString())
}
