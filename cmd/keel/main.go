// Command keel evaluates load cases from snapshot files on the command line.
package main

import (
	"fmt"
	"os"

	"Keel/internal/calc/loadcase"
	"Keel/internal/calc/scenario"
	"Keel/internal/config"
	"Keel/internal/vessel"

	"github.com/spf13/cobra"
)

type app struct {
	configDir string
	constants scenario.Constants
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "keel",
		Short: "Ship stability and trim calculations",
		Long: `Evaluate hydrostatics, trim, righting-arm curves, intact stability
criteria, damage, tank transfers and list corrections for load cases stored
as YAML or JSON snapshot files.

Engine constants come from keel.yaml in the config directory and KEEL_*
environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configDir)
			if err != nil {
				return err
			}
			a.constants = cfg.Calc
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configDir, "config", ".", "directory searched for keel.yaml")

	root.AddCommand(a.runCmd())
	for _, s := range []scenario.Stage{
		scenario.Hydrostatics, scenario.Equilibrium, scenario.Curve,
		scenario.Compliance, scenario.Damage, scenario.Transfer,
	} {
		root.AddCommand(a.stageCmd(s))
	}
	root.AddCommand(a.listCorrectionCmd(), a.exportTableCmd(), a.importTableCmd(), a.reportCmd())
	return root
}

// readCase loads a snapshot file, picking the codec from its extension.
func readCase(path string) (vessel.LoadCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vessel.LoadCase{}, err
	}
	lc, err := loadcase.Unmarshal(data, loadcase.FormatOf(path))
	if err != nil {
		return vessel.LoadCase{}, fmt.Errorf("%s: %w", path, err)
	}
	return lc, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
