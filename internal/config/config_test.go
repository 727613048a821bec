package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 20*time.Second, cfg.Sheet.WriteTimeout)
	assert.Equal(t, 5*time.Second, cfg.Sheet.LogTimeout)
	assert.Equal(t, 30*time.Second, cfg.Sheet.CacheTTL)
	assert.Equal(t, int64(50000000000), cfg.Reception.OrderNumberBase)
	assert.Equal(t, 200*time.Millisecond, cfg.Reception.ScanGap)
	assert.Equal(t, 8, cfg.Reception.ScanMinLength)
	assert.Equal(t, 48, cfg.Printer.CharWidth)
	assert.Equal(t, []string{"NTN: 4123456-7", "STRN: 1234567891234"}, cfg.Store.TaxIDs())
	assert.Equal(t, DefaultCORSConfig(), cfg.CORS)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SHEET_API_URL", "https://script.example.com/exec")
	t.Setenv("RECEPTION_PRINT_TIMEOUT", "45s")
	t.Setenv("PRINTER_TYPE", "network")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://till.mirmart.pk, http://192.168.1.20:8080")

	cfg := Load()

	assert.Equal(t, "https://script.example.com/exec", cfg.Sheet.URL)
	assert.Equal(t, 45*time.Second, cfg.Reception.PrintTimeout)
	assert.Equal(t, "network", cfg.Printer.Type)
	assert.Equal(t, []string{"https://till.mirmart.pk", "http://192.168.1.20:8080"}, cfg.CORS.AllowedOrigins)
}
