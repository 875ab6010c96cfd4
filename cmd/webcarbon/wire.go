package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Kevdacosta07/CarbWeb/internal/analyzer"
	"github.com/Kevdacosta07/CarbWeb/internal/carbon"
	"github.com/Kevdacosta07/CarbWeb/internal/equivalence"
	"github.com/Kevdacosta07/CarbWeb/internal/greenweb"
	"github.com/Kevdacosta07/CarbWeb/internal/pagespeed"
	"github.com/Kevdacosta07/CarbWeb/internal/urlcheck"
)

// loadTables returns the coefficient and factor tables, from
// cfg.CoefficientsFile when set.
func loadTables(cfg Config) (carbon.Coefficients, equivalence.Factors, error) {
	if cfg.CoefficientsFile == "" {
		return carbon.DefaultCoefficients(), equivalence.DefaultFactors(), nil
	}
	coef, err := carbon.LoadCoefficients(cfg.CoefficientsFile)
	if err != nil {
		return carbon.Coefficients{}, equivalence.Factors{}, err
	}
	factors, err := equivalence.LoadFactors(cfg.CoefficientsFile)
	if err != nil {
		return carbon.Coefficients{}, equivalence.Factors{}, err
	}
	return coef, factors, nil
}

// buildAnalyzer wires the provider clients and engine from cfg. A nil reg
// leaves the metrics unregistered.
func buildAnalyzer(cfg Config, logger zerolog.Logger, reg prometheus.Registerer) (*analyzer.Analyzer, error) {
	coef, factors, err := loadTables(cfg)
	if err != nil {
		return nil, err
	}

	opts := []analyzer.Option{
		analyzer.WithEstimator(carbon.NewEstimatorWithCoefficients(coef)),
		analyzer.WithRenderer(equivalence.NewRenderer(factors)),
		analyzer.WithMetrics(analyzer.NewMetrics(reg)),
	}
	if cfg.SkipProbe {
		opts = append(opts, analyzer.WithoutProbe())
	} else {
		opts = append(opts, analyzer.WithProber(urlcheck.NewProber(logger, urlcheck.WithProbeTimeout(cfg.ProbeTimeout))))
	}

	perf := pagespeed.NewClient(pagespeed.Config{
		APIKey:  cfg.PageSpeedAPIKey,
		BaseURL: cfg.PageSpeedBaseURL,
		Timeout: cfg.PageSpeedTimeout,
		QPS:     cfg.PageSpeedQPS,
	}, logger)
	hosting := greenweb.NewClient(greenweb.Config{
		BaseURL: cfg.GreenWebBaseURL,
		Timeout: cfg.GreenWebTimeout,
	}, logger)

	if cfg.PageSpeedAPIKey == "" {
		logger.Warn().Msg("no PageSpeed API key configured; analyses will fail until one is set")
	}

	return analyzer.New(perf, hosting, logger, opts...), nil
}
