package scenario

import (
	"testing"

	"Keel/internal/calc/calcerr"
	"Keel/internal/vessel"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadCase() vessel.LoadCase {
	return vessel.LoadCase{
		ID:   "dep-01",
		Name: "departure",
		Geometry: vessel.Geometry{
			LengthM: 150, BreadthM: 25, DepthM: 14, DraftM: 8, CB: 0.75, CWP: 0.85, DisplacementT: 25000,
		},
		Weights: []vessel.WeightItem{
			{ID: "lightship", Kind: "lightship", WeightT: 19795, LCGM: 75, VCGM: 9},
			{ID: "hold1", Kind: "cargo", WeightT: 5000, LCGM: 76, VCGM: 8},
		},
		Tanks: []vessel.Tank{
			{ID: "DB1P", Kind: "ballast", CapacityM3: 200, LevelPct: 50, LCGM: 60, TCGM: -4, VCGM: 1, PumpRateM3H: 100, LengthM: 10, BreadthM: 6},
			{ID: "DB1S", Kind: "ballast", CapacityM3: 200, LevelPct: 50, LCGM: 60, TCGM: 4, VCGM: 1, PumpRateM3H: 100, LengthM: 10, BreadthM: 6},
		},
	}
}

func TestRunAll(t *testing.T) {
	lc := loadCase()
	before := loadCase()
	out, err := Run(lc, DefaultConstants(), All)
	require.NoError(t, err)

	require.NotNil(t, out.Hydrostatics)
	require.NotNil(t, out.Aggregate)
	require.NotNil(t, out.Equilibrium)
	require.NotNil(t, out.Curve)
	require.NotNil(t, out.Compliance)
	assert.Nil(t, out.Damage)
	assert.Nil(t, out.Transfer)

	h, eq := out.Hydrostatics, out.Equilibrium
	assert.InDelta(t, h.KBM+h.BMM, h.KMM, 1e-9)
	assert.InDelta(t, h.KMM-eq.KGM-eq.FSCM, eq.GMM, 1e-9)
	assert.InDelta(t, eq.GMM, out.Curve.GMM, 1e-12)
	assert.Zero(t, out.Curve.Points[0].GZM)
	assert.True(t, out.Compliance.Compliant)
	assert.NotEmpty(t, out.Notes)

	assert.Empty(t, cmp.Diff(before, lc))
}

func TestRunSingleStage(t *testing.T) {
	out, err := Run(loadCase(), DefaultConstants(), Hydrostatics)
	require.NoError(t, err)
	assert.NotNil(t, out.Hydrostatics)
	assert.Nil(t, out.Equilibrium)
	assert.Nil(t, out.Curve)

	out, err = Run(loadCase(), DefaultConstants(), Curve)
	require.NoError(t, err)
	assert.Nil(t, out.Hydrostatics)
	assert.Nil(t, out.Equilibrium)
	assert.NotNil(t, out.Curve)
	assert.Nil(t, out.Compliance)
}

func TestRunNegativeGM(t *testing.T) {
	lc := loadCase()
	lc.Weights[1].VCGM = 30
	_, err := Run(lc, DefaultConstants(), All)
	assert.ErrorIs(t, err, calcerr.ErrDegenerateEquilibrium)
}

func TestRunDamageCapsizes(t *testing.T) {
	lc := loadCase()
	lc.Damage = &vessel.DamageScenario{Compartment: "hold1", VolumeM3: 20000, Permeability: 1, FloodKGM: 20}
	out, err := Run(lc, DefaultConstants(), Damage)
	assert.ErrorIs(t, err, calcerr.ErrNegativeResidualGM)
	require.NotNil(t, out.Damage)
	assert.Less(t, out.Damage.ResidualGMM, 0.0)
	assert.NotEmpty(t, out.Warnings)
}

func TestRunDamageNeedsScenario(t *testing.T) {
	_, err := Run(loadCase(), DefaultConstants(), Damage)
	assert.ErrorIs(t, err, calcerr.ErrInvalidInput)

	_, err = Run(loadCase(), DefaultConstants(), Transfer)
	assert.ErrorIs(t, err, calcerr.ErrInvalidInput)
}

func TestRunTransfer(t *testing.T) {
	lc := loadCase()
	lc.Transfer = &vessel.TransferRequest{FromTank: "DB1P", ToTank: "DB1S", VolumeM3: 10}
	out, err := Run(lc, DefaultConstants(), Transfer)
	require.NoError(t, err)
	require.NotNil(t, out.Transfer)
	assert.Nil(t, out.Equilibrium)
	assert.Greater(t, out.Transfer.ListAfterDeg, 0.0)
	assert.Equal(t, 50.0, lc.Tanks[0].LevelPct)
}

func TestRunWeather(t *testing.T) {
	lc := loadCase()
	lc.Wind = &vessel.WindLoad{MomentTM: 50000}
	out, err := Run(lc, DefaultConstants(), Compliance)
	require.NoError(t, err)
	require.NotNil(t, out.Weather)
	assert.Equal(t, 6, out.Compliance.Total)
	assert.False(t, out.Compliance.Verdicts["weather"])
}

func TestRunConstantsDensity(t *testing.T) {
	c := DefaultConstants()
	c.Density = 1.0
	out, err := Run(loadCase(), c, Hydrostatics)
	require.NoError(t, err)
	assert.InDelta(t, 25000, out.Hydrostatics.VolumeM3, 1e-9)
	assert.Contains(t, out.Notes, "water density taken from configuration")
}

func TestRunInvalid(t *testing.T) {
	lc := loadCase()
	lc.Geometry.CB = 1.2
	_, err := Run(lc, DefaultConstants(), All)
	assert.ErrorIs(t, err, calcerr.ErrInvalidGeometry)

	lc = loadCase()
	lc.Weights = nil
	lc.Tanks = nil
	_, err = Run(lc, DefaultConstants(), Equilibrium)
	assert.ErrorIs(t, err, calcerr.ErrEmptyLoadCase)
}

func TestParseStage(t *testing.T) {
	s, ok := ParseStage("curve")
	assert.True(t, ok)
	assert.Equal(t, Curve, s)
	s, ok = ParseStage("scenario")
	assert.True(t, ok)
	assert.Equal(t, All, s)
	s, ok = ParseStage("list-correction")
	assert.True(t, ok)
	assert.Equal(t, ListCorrection, s)
	_, ok = ParseStage("bogus")
	assert.False(t, ok)
}

func TestRunRejectsTinyCurveStep(t *testing.T) {
	lc := loadCase()
	lc.Options.CurveStepDeg = 1e-5
	_, err := Run(lc, DefaultConstants(), Curve)
	assert.ErrorIs(t, err, calcerr.ErrInvalidInput)
}

func TestRunDeckEdgeCoeffZero(t *testing.T) {
	c := DefaultConstants()
	c.DeckEdgeCoeff = 0
	plain, err := Run(loadCase(), c, Curve)
	require.NoError(t, err)
	reduced, err := Run(loadCase(), DefaultConstants(), Curve)
	require.NoError(t, err)
	assert.Greater(t, plain.Curve.At(90), reduced.Curve.At(90))
}

func TestRunListCorrection(t *testing.T) {
	lc := loadCase()
	lc.Weights[1].TCGM = 0.1
	lc.Correction = &vessel.CorrectionRequest{TankA: "DB1P", TankB: "DB1S"}
	out, err := Run(lc, DefaultConstants(), ListCorrection)
	require.NoError(t, err)
	require.NotNil(t, out.Correction)
	assert.Nil(t, out.Equilibrium)
	assert.Equal(t, "DB1S", out.Correction.FromTank)
	assert.Equal(t, "DB1P", out.Correction.ToTank)
	assert.InDelta(t, 500/(1.025*8), out.Correction.VolumeM3, 1e-9)
	assert.True(t, out.Correction.Feasible)

	lc.Weights[1].TCGM = 1
	out, err = Run(lc, DefaultConstants(), ListCorrection)
	require.NoError(t, err)
	assert.False(t, out.Correction.Feasible)
	assert.NotEmpty(t, out.Warnings)

	lc.Correction = nil
	_, err = Run(lc, DefaultConstants(), ListCorrection)
	assert.ErrorIs(t, err, calcerr.ErrInvalidInput)
}
