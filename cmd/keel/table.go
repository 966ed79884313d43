package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"Keel/internal/calc/loadcase"
	"Keel/internal/vessel"

	"github.com/spf13/cobra"
)

func (a *app) exportTableCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-table <case> -o <weights.xlsx|weights.csv>",
		Short: "Write the weight table of a load case as XLSX or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lc, err := readCase(args[0])
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			rows := loadcase.Rows(lc)
			if strings.EqualFold(filepath.Ext(out), ".csv") {
				err = loadcase.WriteCSV(f, rows)
			} else {
				err = loadcase.WriteXLSX(f, rows)
			}
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows written to %s\n", len(rows), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "weights.xlsx", "table file")
	return cmd
}

func (a *app) importTableCmd() *cobra.Command {
	var into, out string
	cmd := &cobra.Command{
		Use:   "import-table <weights.xlsx|weights.csv>",
		Short: "Read a weight table, optionally replacing the weights of a load case",
		Long: `Read a weight table with the columns identifier, type, weight, lcg, tcg, vcg.

Without --into the weight items are printed as JSON. With --into the items
replace the weights of that load case, except rows naming one of its tanks,
and the snapshot is written to --output (or back to the --into file).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			items, err := loadcase.ReadTable(args[0], f)
			if err != nil {
				return err
			}
			if into == "" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}

			lc, err := readCase(into)
			if err != nil {
				return err
			}
			// tank rows stay with their tanks
			lc.Weights = lc.Weights[:0]
			for _, it := range items {
				if vessel.FindTank(lc.Tanks, it.ID) < 0 {
					lc.Weights = append(lc.Weights, it)
				}
			}
			if err := lc.Validate(); err != nil {
				return err
			}
			if out == "" {
				out = into
			}
			doc, err := loadcase.Marshal(lc, loadcase.FormatOf(out))
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, doc, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d weight items written to %s\n", len(lc.Weights), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&into, "into", "", "load case whose weights are replaced")
	cmd.Flags().StringVarP(&out, "output", "o", "", "snapshot file to write")
	return cmd
}
