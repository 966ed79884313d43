// Package report renders a scenario output as a stability booklet PDF.
package report

import (
	"fmt"
	"io"
	"time"

	"Keel/internal/calc/scenario"
	"Keel/internal/vessel"

	"github.com/phpdave11/gofpdf"
)

type Input struct {
	Project  string          `json:"project"`
	Author   string          `json:"author"`
	Title    string          `json:"title"`
	Notes    string          `json:"notes"`
	LoadCase vessel.LoadCase `json:"load_case"`
}

type row [2]string

// Render writes the booklet for a computed scenario. Sections missing from
// out are skipped.
func Render(w io.Writer, in Input, out scenario.Output, now time.Time) error {
	if in.Title == "" {
		in.Title = "Stability Report"
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(in.Title, true)
	pdf.SetAuthor(in.Author, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(in.Title))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	name := in.LoadCase.Name
	if name == "" {
		name = in.LoadCase.ID
	}
	for _, line := range []string{
		"Project: " + in.Project,
		"Author: " + in.Author,
		"Load case: " + name,
		"Date: " + now.Format("2006-01-02"),
	} {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}
	pdf.Ln(4)
	if in.Notes != "" {
		pdf.MultiCell(0, 6, tr(in.Notes), "", "L", false)
		pdf.Ln(4)
	}

	if h := out.Hydrostatics; h != nil {
		table(pdf, tr, "Hydrostatics", []row{
			{"Displacement (t)", f(h.DisplacementT, 1)},
			{"Draft (m)", f(h.DraftM, 3)},
			{"Volume (m3)", f(h.VolumeM3, 1)},
			{"KB (m)", f(h.KBM, 3)},
			{"BM (m)", f(h.BMM, 3)},
			{"KM (m)", f(h.KMM, 3)},
			{"BML (m)", f(h.BMLM, 2)},
			{"TPC (t/cm)", f(h.TPC, 2)},
			{"MCT 1cm (t m/cm)", f(h.MCT, 1)},
			{"LCF (m)", f(h.LCFM, 2)},
		})
	}
	if eq := out.Equilibrium; eq != nil {
		rows := []row{
			{"Displacement (t)", f(eq.DisplacementT, 1)},
			{"KG (m)", f(eq.KGM, 3)},
			{"Free surface correction (m)", f(eq.FSCM, 3)},
			{"GM (m)", f(eq.GMM, 3)},
			{"Draft aft (m)", f(eq.DraftAftM, 3)},
			{"Draft forward (m)", f(eq.DraftFwdM, 3)},
			{"Mean draft (m)", f(eq.MeanDraftM, 3)},
			{"Trim (m)", f(eq.TrimM, 3)},
			{"List (deg)", f(eq.ListDeg, 2)},
		}
		if eq.Deflection != "" {
			rows = append(rows, row{"Hull deflection", fmt.Sprintf("%s %.1f cm", eq.Deflection, eq.DeflectionCM)})
		}
		table(pdf, tr, "Equilibrium", rows)
	}
	if c := out.Curve; c != nil {
		rows := make([]row, 0, len(c.Points)+3)
		for _, p := range c.Points {
			rows = append(rows, row{f(p.AngleDeg, 1) + " deg", f(p.GZM, 3) + " m"})
		}
		rows = append(rows,
			row{"Max GZ", fmt.Sprintf("%.3f m at %.0f deg", c.MaxGZM, c.MaxGZAngleDeg)},
			row{"Vanishing angle", f(c.VanishingAngleDeg, 0) + " deg"},
			row{"Roll period", f(c.RollPeriodS, 1) + " s"},
		)
		table(pdf, tr, "Righting arm curve", rows)
	}
	if cr := out.Compliance; cr != nil {
		rows := make([]row, 0, len(cr.Criteria)+1)
		for _, c := range cr.Criteria {
			verdict := "pass"
			if !c.Pass {
				verdict = "FAIL"
			}
			rows = append(rows, row{c.Name, fmt.Sprintf("%.3f / %.3f %s  %s", c.Value, c.Required, c.Unit, verdict)})
		}
		rows = append(rows, row{"Score", fmt.Sprintf("%d of %d (%.0f%%)", cr.Passed, cr.Total, cr.Score)})
		table(pdf, tr, "Intact stability criteria", rows)
	}
	if d := out.Damage; d != nil {
		survives := "yes"
		if !d.Survives {
			survives = "no"
		}
		table(pdf, tr, "Damage: "+d.Compartment, []row{
			{"Flooded weight (t)", f(d.FloodedWeightT, 1)},
			{"Residual GM (m)", f(d.ResidualGMM, 3)},
			{"Heel (deg)", f(d.HeelDeg, 2)},
			{"Sinkage (cm)", f(d.SinkageCM, 1)},
			{"Cross-flooding (min)", f(d.CrossFloodMin, 1)},
			{"Survives", survives},
		})
	}
	if t := out.Transfer; t != nil {
		table(pdf, tr, "Transfer", []row{
			{"From / to", t.Request.FromTank + " / " + t.Request.ToTank},
			{"Weight (t)", f(t.WeightT, 2)},
			{"List change (deg)", f(t.ListChangeDeg, 2)},
			{"Trim change (cm)", f(t.TrimChangeCM, 1)},
			{"GM change (m)", f(t.GMChangeM, 3)},
			{"Pump time (h)", f(t.PumpHours, 2)},
			{"Outcome", t.Outcome},
		})
	}
	list(pdf, tr, "Warnings", out.Warnings)
	if cr := out.Compliance; cr != nil {
		list(pdf, tr, "Recommendations", cr.Recommendations)
	}
	return pdf.Output(w)
}

func f(v float64, prec int) string {
	return fmt.Sprintf("%.*f", prec, v)
}

func table(pdf *gofpdf.Fpdf, tr func(string) string, title string, rows []row) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, tr(title))
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
	for _, r := range rows {
		pdf.CellFormat(80, 6, tr(r[0]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(90, 6, tr(r[1]), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(5)
}

func list(pdf *gofpdf.Fpdf, tr func(string) string, title string, items []string) {
	if len(items) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, tr(title))
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
	for _, s := range items {
		pdf.MultiCell(0, 5, tr("- "+s), "", "L", false)
	}
	pdf.Ln(3)
}
