package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Kevdacosta07/CarbWeb/internal/greenweb"
	"github.com/Kevdacosta07/CarbWeb/internal/logging"
	"github.com/Kevdacosta07/CarbWeb/internal/pagespeed"
	"github.com/Kevdacosta07/CarbWeb/internal/urlcheck"
)

// app carries the configuration shared by every subcommand.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        Config
	logger     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zerolog.Nop()}
	setDefaults(a.v)

	root := &cobra.Command{
		Use:           "webcarbon",
		Short:         "Estimate the carbon footprint of web pages.",
		Long:          `webcarbon audits a page with PageSpeed Insights, checks whether its host runs on renewable energy, and turns page weight into grams of CO2 per visit, an environmental score and concrete suggestions.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Config file (default .webcarbon.yaml in . or $HOME)")
	pf.String("pagespeed-api-key", "", "PageSpeed Insights API key (also read from PAGESPEED_API_KEY)")
	pf.String("pagespeed-base-url", pagespeed.DefaultBaseURL, "PageSpeed Insights API base URL")
	pf.Duration("pagespeed-timeout", pagespeed.DefaultTimeout, "Timeout for one PageSpeed audit")
	pf.Float64("pagespeed-qps", pagespeed.DefaultQPS, "Maximum PageSpeed requests per second (0 = unlimited)")
	pf.String("greenweb-base-url", greenweb.DefaultBaseURL, "Green Web Foundation API base URL")
	pf.Duration("greenweb-timeout", greenweb.DefaultTimeout, "Timeout for the green hosting lookup")
	pf.Duration("probe-timeout", urlcheck.DefaultProbeTimeout, "Timeout for the reachability probe")
	pf.Bool("skip-probe", false, "Skip the reachability probe before auditing")
	pf.String("coefficients-file", "", "YAML file overriding the carbon coefficients and equivalence factors")
	pf.String("log-level", defaultLogLevel, "Log level: trace, debug, info, warn or error")
	pf.String("log-format", defaultLogFormat, "Log format: json or console")

	for _, name := range []string{
		"pagespeed-api-key", "pagespeed-base-url", "pagespeed-timeout", "pagespeed-qps",
		"greenweb-base-url", "greenweb-timeout", "probe-timeout", "skip-probe",
		"coefficients-file", "log-level", "log-format",
	} {
		_ = a.v.BindPFlag(name, pf.Lookup(name))
	}

	root.AddCommand(
		newServeCmd(a),
		newAnalyzeCmd(a),
		newMCPCmd(a),
		newCoefficientsCmd(a),
		newVersionCmd(),
	)
	return root
}

// init reads every configuration source and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	bootstrap := logging.New(logging.Config{
		Level:  a.v.GetString("log-level"),
		Format: a.v.GetString("log-format"),
		Output: cmd.ErrOrStderr(),
	})

	if err := readConfigSources(a.v, a.configFile, bootstrap); err != nil {
		return err
	}

	a.cfg = loadConfig(a.v, bootstrap)
	lc := a.cfg.logging()
	lc.Output = cmd.ErrOrStderr()
	a.logger = logging.New(lc)
	return nil
}
