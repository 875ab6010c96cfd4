package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kevdacosta07/CarbWeb/internal/greenweb"
	"github.com/Kevdacosta07/CarbWeb/internal/pagespeed"
	"github.com/Kevdacosta07/CarbWeb/internal/urlcheck"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	v := viper.New()
	setDefaults(v)
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := loadConfig(newTestViper(t), zerolog.Nop())

	assert.Empty(t, cfg.PageSpeedAPIKey)
	assert.Equal(t, pagespeed.DefaultBaseURL, cfg.PageSpeedBaseURL)
	assert.Equal(t, pagespeed.DefaultTimeout, cfg.PageSpeedTimeout)
	assert.Equal(t, pagespeed.DefaultQPS, cfg.PageSpeedQPS)
	assert.Equal(t, greenweb.DefaultBaseURL, cfg.GreenWebBaseURL)
	assert.Equal(t, greenweb.DefaultTimeout, cfg.GreenWebTimeout)
	assert.Equal(t, urlcheck.DefaultProbeTimeout, cfg.ProbeTimeout)
	assert.False(t, cfg.SkipProbe)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":9090", cfg.GRPCAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.CoefficientsFile)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    any
		validate func(t *testing.T, cfg Config)
	}{
		{
			name:  "unparsable timeout",
			key:   "pagespeed-timeout",
			value: "soon",
			validate: func(t *testing.T, cfg Config) {
				assert.Equal(t, pagespeed.DefaultTimeout, cfg.PageSpeedTimeout)
			},
		},
		{
			name:  "negative probe timeout",
			key:   "probe-timeout",
			value: "-3s",
			validate: func(t *testing.T, cfg Config) {
				assert.Equal(t, urlcheck.DefaultProbeTimeout, cfg.ProbeTimeout)
			},
		},
		{
			name:  "negative qps",
			key:   "pagespeed-qps",
			value: -2.0,
			validate: func(t *testing.T, cfg Config) {
				assert.Equal(t, pagespeed.DefaultQPS, cfg.PageSpeedQPS)
			},
		},
		{
			name:  "unknown log level",
			key:   "log-level",
			value: "loud",
			validate: func(t *testing.T, cfg Config) {
				assert.Equal(t, "info", cfg.LogLevel)
			},
		},
		{
			name:  "unknown log format",
			key:   "log-format",
			value: "xml",
			validate: func(t *testing.T, cfg Config) {
				assert.Equal(t, "json", cfg.LogFormat)
			},
		},
		{
			name:  "blank http addr",
			key:   "http-addr",
			value: "  ",
			validate: func(t *testing.T, cfg Config) {
				assert.Equal(t, ":8080", cfg.HTTPAddr)
			},
		},
		{
			name:  "empty grpc addr disables grpc",
			key:   "grpc-addr",
			value: "",
			validate: func(t *testing.T, cfg Config) {
				assert.Empty(t, cfg.GRPCAddr)
			},
		},
		{
			name:  "zero qps disables limiting",
			key:   "pagespeed-qps",
			value: 0.0,
			validate: func(t *testing.T, cfg Config) {
				assert.Equal(t, 0.0, cfg.PageSpeedQPS)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestViper(t)
			v.Set(tt.key, tt.value)
			tt.validate(t, loadConfig(v, zerolog.Nop()))
		})
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{raw: "", want: nil},
		{raw: "http://localhost:3000, https://app.greenpages.dev", want: []string{"http://localhost:3000", "https://app.greenpages.dev"}},
		{raw: " , ,", want: nil},
		{raw: "*", want: []string{"*"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseOrigins(tt.raw, zerolog.Nop()), "raw=%q", tt.raw)
	}
}

func TestReadConfigSources_Environment(t *testing.T) {
	v := newTestViper(t)
	t.Setenv("WEBCARBON_PROBE_TIMEOUT", "2s")
	t.Setenv("WEBCARBON_SKIP_PROBE", "true")
	t.Setenv("WEBCARBON_CORS_ALLOWED_ORIGINS", "https://a.dev,https://b.dev")
	t.Setenv("PAGESPEED_API_KEY", "plain-key")

	require.NoError(t, readConfigSources(v, "", zerolog.Nop()))
	cfg := loadConfig(v, zerolog.Nop())

	assert.Equal(t, 2*time.Second, cfg.ProbeTimeout)
	assert.True(t, cfg.SkipProbe)
	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, cfg.AllowedOrigins)
	assert.Equal(t, "plain-key", cfg.PageSpeedAPIKey)
}

func TestReadConfigSources_PrefixedKeyWins(t *testing.T) {
	v := newTestViper(t)
	t.Setenv("WEBCARBON_PAGESPEED_API_KEY", "prefixed-key")
	t.Setenv("PAGESPEED_API_KEY", "plain-key")

	require.NoError(t, readConfigSources(v, "", zerolog.Nop()))
	assert.Equal(t, "prefixed-key", loadConfig(v, zerolog.Nop()).PageSpeedAPIKey)
}

func TestReadConfigSources_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webcarbon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log-level: debug
http-addr: ":7070"
greenweb-timeout: 3s
pagespeed-qps: 0.5
`), 0o600))

	v := newTestViper(t)
	require.NoError(t, readConfigSources(v, path, zerolog.Nop()))
	cfg := loadConfig(v, zerolog.Nop())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, 3*time.Second, cfg.GreenWebTimeout)
	assert.Equal(t, 0.5, cfg.PageSpeedQPS)
}
