package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENV", "LOCAL")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("STRICT_AVAILABILITY", "")
	t.Setenv("PAYMENT_DELAY_MS", "")
	t.Setenv("SBCNTR_ENABLE_TRACING", "")
	t.Setenv("AWS_XRAY_SDK_DISABLED", "")

	cfg, err := LoadConfig("token")
	require.NoError(t, err)

	assert.True(t, cfg.Local)
	assert.Equal(t, "token", cfg.SFN.TaskToken)
	assert.Equal(t, StoreDriverBadger, cfg.Store.Driver)
	assert.True(t, cfg.StrictAvailability)
	assert.Equal(t, 1500*time.Millisecond, cfg.PaymentDelay)
	assert.Equal(t, "data/reservas.json", cfg.Logs.ReservationsPath)
	assert.Equal(t, "data/pagos.json", cfg.Logs.PaymentsPath)
	assert.False(t, cfg.EnableTracing)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("STRICT_AVAILABILITY", "false")
	t.Setenv("PAYMENT_DELAY_MS", "10")
	t.Setenv("SMTP_HOST", "smtp.gmail.com")
	t.Setenv("SMTP_FROM_EMAIL", "hotel@gmail.com")
	t.Setenv("SBCNTR_ENABLE_TRACING", "true")
	t.Setenv("AWS_XRAY_SDK_DISABLED", "")

	cfg, err := LoadConfig("token")
	require.NoError(t, err)

	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.False(t, cfg.StrictAvailability)
	assert.Equal(t, 10*time.Millisecond, cfg.PaymentDelay)
	assert.True(t, cfg.SMTP.Enabled())
	assert.True(t, cfg.EnableTracing)
}

func TestLoadConfig_TracingDisabledBySDKFlag(t *testing.T) {
	t.Setenv("SBCNTR_ENABLE_TRACING", "1")
	t.Setenv("AWS_XRAY_SDK_DISABLED", "true")

	cfg, err := LoadConfig("token")
	require.NoError(t, err)
	assert.False(t, cfg.EnableTracing)
}
