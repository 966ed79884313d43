package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"Keel/internal/calc/calcerr"
	"Keel/internal/calc/loadcase"
	"Keel/internal/vessel"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCase(t *testing.T, dir, name string, lc vessel.LoadCase) string {
	t.Helper()
	path := filepath.Join(dir, name)
	doc, err := loadcase.Marshal(lc, loadcase.FormatOf(path))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, doc, 0o644))
	return path
}

func sampleCase() vessel.LoadCase {
	return vessel.LoadCase{
		ID: "dep-01",
		Geometry: vessel.Geometry{
			LengthM: 150, BreadthM: 25, DepthM: 14, DraftM: 8, CB: 0.75, CWP: 0.85, DisplacementT: 25000,
		},
		Weights: []vessel.WeightItem{
			{ID: "lightship", Kind: "lightship", WeightT: 19795, LCGM: 75, VCGM: 9},
			{ID: "hold1", Kind: "cargo", WeightT: 5000, LCGM: 76, VCGM: 8},
		},
		Tanks: []vessel.Tank{
			{ID: "DB1P", Kind: "ballast", CapacityM3: 200, LevelPct: 50, LCGM: 60, TCGM: -4, VCGM: 1, LengthM: 10, BreadthM: 6},
		},
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(viper.Reset)
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--config", t.TempDir()))
	err := root.Execute()
	return out.String(), err
}

func TestStageCommand(t *testing.T) {
	path := writeCase(t, t.TempDir(), "case.yaml", sampleCase())
	out, err := execute(t, "hydrostatics", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"km_m"`)
	assert.NotContains(t, out, `"equilibrium"`)
}

func TestRunCommand(t *testing.T) {
	path := writeCase(t, t.TempDir(), "case.json", sampleCase())
	out, err := execute(t, "run", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"compliance"`)
	assert.Contains(t, out, `"curve"`)

	_, err = execute(t, "run", "--stage", "sideways", path)
	assert.Error(t, err)
}

func TestDamageCommandPrintsCapsizingCase(t *testing.T) {
	lc := sampleCase()
	lc.Damage = &vessel.DamageScenario{Compartment: "hold1", VolumeM3: 20000, Permeability: 1, FloodKGM: 20}
	path := writeCase(t, t.TempDir(), "case.yaml", lc)

	out, err := execute(t, "damage", path)
	assert.ErrorIs(t, err, calcerr.ErrNegativeResidualGM)
	assert.Contains(t, out, `"residual_gm_m"`)
}

func TestTableRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeCase(t, dir, "case.yaml", sampleCase())
	table := filepath.Join(dir, "weights.csv")

	out, err := execute(t, "export-table", path, "-o", table)
	require.NoError(t, err)
	assert.Contains(t, out, "3 rows written")

	merged := filepath.Join(dir, "merged.yaml")
	_, err = execute(t, "import-table", table, "--into", path, "-o", merged)
	require.NoError(t, err)

	doc, err := os.ReadFile(merged)
	require.NoError(t, err)
	lc, err := loadcase.Unmarshal(doc, loadcase.YAML)
	require.NoError(t, err)
	assert.Equal(t, sampleCase().Weights, lc.Weights)
	assert.Equal(t, sampleCase().Tanks, lc.Tanks)
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeCase(t, dir, "case.yaml", sampleCase())
	pdf := filepath.Join(dir, "report.pdf")

	_, err := execute(t, "report", path, "-o", pdf, "--title", "Departure")
	require.NoError(t, err)
	data, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestListCorrectionCommand(t *testing.T) {
	lc := sampleCase()
	lc.Weights[1].TCGM = 0.1
	lc.Tanks = append(lc.Tanks, vessel.Tank{ID: "DB1S", CapacityM3: 200, LevelPct: 50, LCGM: 60, TCGM: 4, VCGM: 1})
	path := writeCase(t, t.TempDir(), "case.yaml", lc)

	out, err := execute(t, "list-correction", path, "DB1P", "DB1S")
	require.NoError(t, err)
	assert.Contains(t, out, `"from_tank": "DB1S"`)
	assert.Contains(t, out, `"feasible": true`)

	_, err = execute(t, "list-correction", path, "DB1P")
	assert.Error(t, err)
}
