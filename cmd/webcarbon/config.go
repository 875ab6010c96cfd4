package main

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Kevdacosta07/CarbWeb/internal/greenweb"
	"github.com/Kevdacosta07/CarbWeb/internal/logging"
	"github.com/Kevdacosta07/CarbWeb/internal/pagespeed"
	"github.com/Kevdacosta07/CarbWeb/internal/urlcheck"
)

const (
	envPrefix      = "WEBCARBON"
	configFileName = ".webcarbon"
	dotEnvFile     = ".env"

	// apiKeyEnv is also honored for the PageSpeed key.
	apiKeyEnv = "PAGESPEED_API_KEY"

	defaultHTTPAddr  = ":8080"
	defaultGRPCAddr  = ":9090"
	defaultLogLevel  = "info"
	defaultLogFormat = logging.FormatJSON
)

// Config is the validated runtime configuration.
type Config struct {
	PageSpeedAPIKey  string
	PageSpeedBaseURL string
	PageSpeedTimeout time.Duration
	PageSpeedQPS     float64

	GreenWebBaseURL string
	GreenWebTimeout time.Duration

	ProbeTimeout time.Duration
	SkipProbe    bool

	HTTPAddr string
	// GRPCAddr disables the gRPC listener when empty.
	GRPCAddr string

	LogLevel  string
	LogFormat string

	CoefficientsFile string
	AllowedOrigins   []string
}

// setDefaults registers the default of every key so env-only values are
// visible to viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("pagespeed-api-key", "")
	v.SetDefault("pagespeed-base-url", pagespeed.DefaultBaseURL)
	v.SetDefault("pagespeed-timeout", pagespeed.DefaultTimeout)
	v.SetDefault("pagespeed-qps", pagespeed.DefaultQPS)
	v.SetDefault("greenweb-base-url", greenweb.DefaultBaseURL)
	v.SetDefault("greenweb-timeout", greenweb.DefaultTimeout)
	v.SetDefault("probe-timeout", urlcheck.DefaultProbeTimeout)
	v.SetDefault("skip-probe", false)
	v.SetDefault("http-addr", defaultHTTPAddr)
	v.SetDefault("grpc-addr", defaultGRPCAddr)
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("log-format", defaultLogFormat)
	v.SetDefault("coefficients-file", "")
	v.SetDefault("cors-allowed-origins", "")
}

// readConfigSources loads .env into the process environment, then points
// viper at the environment and the optional YAML config file.
func readConfigSources(v *viper.Viper, configFile string, logger zerolog.Logger) error {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn().Err(err).Str("file", dotEnvFile).Msg("failed to load .env file, ignoring")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("pagespeed-api-key", envPrefix+"_PAGESPEED_API_KEY", apiKeyEnv)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

// loadConfig reads every key from v. Invalid values are logged and replaced
// by their default rather than failing startup.
func loadConfig(v *viper.Viper, logger zerolog.Logger) Config {
	cfg := Config{
		PageSpeedAPIKey:  strings.TrimSpace(v.GetString("pagespeed-api-key")),
		PageSpeedBaseURL: v.GetString("pagespeed-base-url"),
		GreenWebBaseURL:  v.GetString("greenweb-base-url"),
		SkipProbe:        v.GetBool("skip-probe"),
		HTTPAddr:         strings.TrimSpace(v.GetString("http-addr")),
		GRPCAddr:         strings.TrimSpace(v.GetString("grpc-addr")),
		CoefficientsFile: strings.TrimSpace(v.GetString("coefficients-file")),
	}

	cfg.PageSpeedTimeout = positiveDuration(v, "pagespeed-timeout", pagespeed.DefaultTimeout, logger)
	cfg.GreenWebTimeout = positiveDuration(v, "greenweb-timeout", greenweb.DefaultTimeout, logger)
	cfg.ProbeTimeout = positiveDuration(v, "probe-timeout", urlcheck.DefaultProbeTimeout, logger)

	cfg.PageSpeedQPS = v.GetFloat64("pagespeed-qps")
	if cfg.PageSpeedQPS < 0 {
		logger.Warn().Float64("value", cfg.PageSpeedQPS).Msg("invalid pagespeed-qps, using default")
		cfg.PageSpeedQPS = pagespeed.DefaultQPS
	}

	if cfg.HTTPAddr == "" {
		logger.Warn().Msg("empty http-addr, using default")
		cfg.HTTPAddr = defaultHTTPAddr
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(v.GetString("log-level")))
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil || cfg.LogLevel == "" {
		logger.Warn().Str("value", cfg.LogLevel).Msg("invalid log-level, using default")
		cfg.LogLevel = defaultLogLevel
	}

	cfg.LogFormat = strings.ToLower(strings.TrimSpace(v.GetString("log-format")))
	if cfg.LogFormat != logging.FormatJSON && cfg.LogFormat != logging.FormatConsole {
		logger.Warn().Str("value", cfg.LogFormat).Msg("invalid log-format, using default")
		cfg.LogFormat = defaultLogFormat
	}

	cfg.AllowedOrigins = parseOrigins(v.GetString("cors-allowed-origins"), logger)

	logger.Debug().
		Bool("api_key_set", cfg.PageSpeedAPIKey != "").
		Str("http_addr", cfg.HTTPAddr).
		Str("grpc_addr", cfg.GRPCAddr).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("configuration loaded")

	return cfg
}

func positiveDuration(v *viper.Viper, key string, def time.Duration, logger zerolog.Logger) time.Duration {
	d := v.GetDuration(key)
	if d <= 0 {
		logger.Warn().Str("key", key).Str("value", v.GetString(key)).Msg("invalid duration, using default")
		return def
	}
	return d
}

// parseOrigins splits a comma-separated origin list. A wildcard is kept
// but logged as insecure.
func parseOrigins(raw string, logger zerolog.Logger) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(o)
		if trimmed == "" {
			continue
		}
		if trimmed == "*" {
			logger.Warn().Msg("CORS wildcard origin (*) is insecure; use specific origins in production")
		}
		origins = append(origins, trimmed)
	}
	return origins
}

func (c Config) logging() logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat}
}
