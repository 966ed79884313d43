package loadcase

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"Keel/internal/calc/calcerr"
	"Keel/internal/vessel"

	"github.com/xuri/excelize/v2"
)

// Columns is the fixed column order of a weight table.
var Columns = []string{"identifier", "type", "weight", "lcg", "tcg", "vcg"}

const sheet = "Weights"

type Row struct {
	ID      string
	Type    string
	WeightT float64
	LCGM    float64
	TCGM    float64
	VCGM    float64
}

// Rows flattens the weight items and tank contents of a load case. Tanks
// appear with their current liquid weight.
func Rows(lc vessel.LoadCase) []Row {
	rows := make([]Row, 0, len(lc.Weights)+len(lc.Tanks))
	for _, w := range lc.Weights {
		rows = append(rows, Row{ID: w.ID, Type: w.Kind, WeightT: w.WeightT, LCGM: w.LCGM, TCGM: w.TCGM, VCGM: w.VCGM})
	}
	for _, t := range lc.Tanks {
		kind := t.Kind
		if kind == "" {
			kind = "tank"
		}
		rows = append(rows, Row{ID: t.ID, Type: kind, WeightT: t.WeightT(), LCGM: t.LCGM, TCGM: t.TCGM, VCGM: t.VCGM})
	}
	return rows
}

func (r Row) strings() []string {
	return []string{r.ID, r.Type, ftoa(r.WeightT), ftoa(r.LCGM), ftoa(r.TCGM), ftoa(r.VCGM)}
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.strings()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the rows to a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := []interface{}{r.ID, r.Type, r.WeightT, r.LCGM, r.TCGM, r.VCGM}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}

// ReadXLSX reads the first sheet of a workbook in the Columns layout into
// weight items. A header row is skipped when present.
func ReadXLSX(r io.Reader) ([]vessel.WeightItem, error) {
	const op = "import"
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, calcerr.New(calcerr.InvalidInput, op, "invalid file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, calcerr.New(calcerr.InvalidInput, op, "%v", err)
	}
	return parseRows(rows)
}

// ReadCSV is ReadXLSX for comma-separated input.
func ReadCSV(r io.Reader) ([]vessel.WeightItem, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, calcerr.New(calcerr.InvalidInput, "import", "%v", err)
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) ([]vessel.WeightItem, error) {
	if len(rows) > 0 && len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), Columns[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, calcerr.New(calcerr.EmptyLoadCase, "import", "empty sheet")
	}
	items := make([]vessel.WeightItem, 0, len(rows))
	for i, row := range rows {
		if blank(row) {
			continue
		}
		it, err := parseRow(row)
		if err != nil {
			return nil, calcerr.New(calcerr.InvalidInput, "import", "row %d: %v", i+1, err)
		}
		if err := it.Validate(); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func parseRow(row []string) (vessel.WeightItem, error) {
	if len(row) < len(Columns) {
		return vessel.WeightItem{}, fmt.Errorf("want %d columns, got %d", len(Columns), len(row))
	}
	var v [4]float64
	for i := range v {
		f, err := strconv.ParseFloat(strings.TrimSpace(row[i+2]), 64)
		if err != nil {
			return vessel.WeightItem{}, fmt.Errorf("%s: %v", Columns[i+2], err)
		}
		v[i] = f
	}
	return vessel.WeightItem{
		ID:      strings.TrimSpace(row[0]),
		Kind:    strings.TrimSpace(row[1]),
		WeightT: v[0],
		LCGM:    v[1],
		TCGM:    v[2],
		VCGM:    v[3],
	}, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
