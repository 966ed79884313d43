package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"Keel/internal/calc/calcerr"
	"Keel/internal/calc/scenario"
	"Keel/internal/vessel"

	"github.com/spf13/cobra"
)

func (a *app) runCmd() *cobra.Command {
	var stage string
	cmd := &cobra.Command{
		Use:   "run <case.yaml|case.json>",
		Short: "Run the full stability pipeline on a load case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := scenario.ParseStage(stage)
			if !ok {
				return fmt.Errorf("unknown stage %q", stage)
			}
			return a.evaluate(cmd.OutOrStdout(), args[0], s)
		},
	}
	cmd.Flags().StringVar(&stage, "stage", scenario.All.String(), "operation to run")
	return cmd
}

func (a *app) stageCmd(s scenario.Stage) *cobra.Command {
	short := map[scenario.Stage]string{
		scenario.Hydrostatics: "Hydrostatic particulars at the geometry draft",
		scenario.Equilibrium:  "Weight aggregation, drafts, trim and list",
		scenario.Curve:        "Righting-arm (GZ) curve",
		scenario.Compliance:   "Intact stability criteria",
		scenario.Damage:       "Damage stability of the flooded compartment",
		scenario.Transfer:     "Effect of the requested tank transfer",
	}
	return &cobra.Command{
		Use:   s.String() + " <case.yaml|case.json>",
		Short: short[s],
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.evaluate(cmd.OutOrStdout(), args[0], s)
		},
	}
}

// evaluate prints the output as indented JSON. A capsizing damage case is
// printed before its error is returned.
func (a *app) evaluate(w io.Writer, path string, s scenario.Stage) error {
	lc, err := readCase(path)
	if err != nil {
		return err
	}
	out, err := scenario.Run(lc, a.constants, s)
	if err != nil && !errors.Is(err, calcerr.ErrNegativeResidualGM) {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(out); encErr != nil {
		return encErr
	}
	return err
}

func (a *app) listCorrectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-correction <case> <tankA> <tankB>",
		Short: "Volume to move between two tanks to bring the vessel upright",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			lc, err := readCase(args[0])
			if err != nil {
				return err
			}
			lc.Correction = &vessel.CorrectionRequest{TankA: args[1], TankB: args[2]}
			out, err := scenario.Run(lc, a.constants, scenario.ListCorrection)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
