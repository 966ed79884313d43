package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"Keel/internal/calc/calcerr"
	"Keel/internal/calc/report"
	"Keel/internal/calc/scenario"

	"github.com/spf13/cobra"
)

func (a *app) reportCmd() *cobra.Command {
	var in report.Input
	var out string
	cmd := &cobra.Command{
		Use:   "report <case> -o <report.pdf>",
		Short: "Render the stability booklet of a load case as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lc, err := readCase(args[0])
			if err != nil {
				return err
			}
			res, err := scenario.Run(lc, a.constants, scenario.All)
			if err != nil && !errors.Is(err, calcerr.ErrNegativeResidualGM) {
				return err
			}
			in.LoadCase = lc
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			err = report.Render(f, in, res, time.Now())
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "report.pdf", "PDF file")
	cmd.Flags().StringVar(&in.Title, "title", "", "report title")
	cmd.Flags().StringVar(&in.Author, "author", "", "author")
	cmd.Flags().StringVar(&in.Project, "project", "", "vessel or project name")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "free text printed under the header")
	return cmd
}
