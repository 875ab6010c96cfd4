package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Kevdacosta07/CarbWeb/internal/carbon"
	"github.com/Kevdacosta07/CarbWeb/internal/equivalence"
)

// tablesFile is the layout of a coefficients file.
type tablesFile struct {
	carbon.Coefficients `yaml:",inline"`
	Equivalences        equivalence.Factors `yaml:"equivalences"`
}

func newCoefficientsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "coefficients",
		Short: "Print the active coefficient tables as YAML.",
		Long: `Print the carbon coefficients and equivalence factors in effect, in the
format accepted by --coefficients-file. Start from this output to write an
override file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			coef, factors, err := loadTables(a.cfg)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(tablesFile{Coefficients: coef, Equivalences: factors})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
