package damage

import (
	"math"
	"testing"

	"Keel/internal/calc/calcerr"
	"Keel/internal/vessel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func base() Base {
	return Base{DisplacementT: 10000, KGM: 7, KMM: 9, DraftM: 6, BreadthM: 20, TPC: 25}
}

func TestEvaluateScenarioFour(t *testing.T) {
	s := vessel.DamageScenario{
		Compartment:         "hold 2",
		VolumeM3:            500,
		Permeability:        0.85,
		FloodKGM:            3,
		FloodingMomentTM:    800,
		VentHeightM:         11,
		CrossFloodRateM3Min: 50,
	}
	res, err := Evaluate(s, base())
	require.NoError(t, err)

	assert.InDelta(t, 425, res.FloodedVolumeM3, 1e-9)
	assert.InDelta(t, 8.5, res.CrossFloodMin, 1e-9)

	w := 425 * 1.025
	assert.InDelta(t, w, res.FloodedWeightT, 1e-9)
	assert.InDelta(t, 10000+w, res.DisplacementT, 1e-9)
	kg := (7*10000 + 3*w) / (10000 + w)
	assert.InDelta(t, kg, res.KGM, 1e-12)
	assert.InDelta(t, 9-kg, res.ResidualGMM, 1e-12)

	heel := math.Atan(800/((10000+w)*(9-kg))) * 180 / math.Pi
	assert.InDelta(t, heel, res.HeelDeg, 1e-9)
	assert.InDelta(t, heel*(1-math.Exp(-1)), res.EqualizedHeelDeg, 1e-9)
	assert.InDelta(t, math.Atan(5.0/10)*180/math.Pi, res.DownfloodingDeg, 1e-9)
	assert.InDelta(t, (9-kg)/2*100, res.SurvivalFactorPct, 1e-9)
	assert.InDelta(t, w/25, res.SinkageCM, 1e-9)
	assert.True(t, res.Survives)
}

func TestEvaluateNegativeResidualGM(t *testing.T) {
	b := base()
	b.KGM = 8.9
	s := vessel.DamageScenario{VolumeM3: 2000, Permeability: 0.95, FloodKGM: 12, FloodingMomentTM: 100}
	res, err := Evaluate(s, b)

	require.Error(t, err)
	assert.ErrorIs(t, err, calcerr.ErrNegativeResidualGM)
	assert.Equal(t, calcerr.NegativeResidualGM, calcerr.KindOf(err))
	// reported, not clamped
	assert.Less(t, res.ResidualGMM, 0.0)
	assert.Less(t, res.SurvivalFactorPct, 0.0)
	assert.False(t, res.Survives)
	assert.Zero(t, res.HeelDeg)
	assert.NotEmpty(t, res.Warnings)
}

func TestEvaluateMomentFromTCG(t *testing.T) {
	s := vessel.DamageScenario{VolumeM3: 100, Permeability: 1, Density: 1, FloodKGM: 2, FloodTCGM: 4}
	res, err := Evaluate(s, base())
	require.NoError(t, err)
	assert.InDelta(t, 400, res.FloodingMomentTM, 1e-9)
	assert.Zero(t, res.CrossFloodMin)
}

func TestEvaluateValidates(t *testing.T) {
	_, err := Evaluate(vessel.DamageScenario{VolumeM3: 100, Permeability: 1.2}, base())
	assert.ErrorIs(t, err, calcerr.ErrInvalidInput)

	b := base()
	b.BreadthM = 0
	_, err = Evaluate(vessel.DamageScenario{VolumeM3: 100, Permeability: 0.5}, b)
	assert.ErrorIs(t, err, calcerr.ErrInvalidGeometry)
}

func TestEvaluateOverflowIsInvalidInput(t *testing.T) {
	_, err := Evaluate(vessel.DamageScenario{VolumeM3: math.MaxFloat64, Permeability: 1}, base())
	assert.ErrorIs(t, err, calcerr.ErrInvalidInput)
	assert.NotErrorIs(t, err, calcerr.ErrNegativeResidualGM)
}

func TestEvaluateDownflooding(t *testing.T) {
	s := vessel.DamageScenario{VolumeM3: 50, Permeability: 1, FloodKGM: 5, FloodingMomentTM: 5000, VentHeightM: 6.5}
	res, err := Evaluate(s, base())
	require.NoError(t, err)
	assert.False(t, res.Survives)
	assert.Contains(t, res.Warnings, "heel reaches the downflooding angle")
}
