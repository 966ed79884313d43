package weights

import (
	"testing"

	"Keel/internal/calc/calcerr"
	"Keel/internal/vessel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateMomentsAndFreeSurface(t *testing.T) {
	in := Input{
		Items: []vessel.WeightItem{
			{ID: "lightship", WeightT: 8000, LCGM: 70, TCGM: 0, VCGM: 9},
			{ID: "hold1", Kind: "cargo", WeightT: 2000, LCGM: 110, TCGM: 1, VCGM: 6},
		},
		Tanks: []vessel.Tank{
			// 50% of 400 m3 seawater = 205 t, slack, 10 x 8 surface
			{ID: "DB2P", CapacityM3: 400, LevelPct: 50, LCGM: 60, TCGM: -5, VCGM: 1, LengthM: 10, BreadthM: 8},
			// pressed full: weight counts, no free surface
			{ID: "FPK", CapacityM3: 100, LevelPct: 100, Density: 1.0, LCGM: 140, VCGM: 5, LengthM: 5, BreadthM: 10},
		},
		DisplacementT: 10305,
	}

	res, err := Aggregate(in)
	require.NoError(t, err)

	w := 8000.0 + 2000 + 205 + 100
	assert.InDelta(t, w, res.TotalWeightT, 1e-9)
	assert.InDelta(t, (8000*9+2000*6+205*1+100*5)/w, res.KGM, 1e-9)
	assert.InDelta(t, (8000*70+2000*110+205*60+100*140)/w, res.LCGM, 1e-9)
	assert.InDelta(t, (2000*1+205*-5)/w, res.TCGM, 1e-9)

	fsm := 10 * 8.0 * 8 * 8 / 12 * 1.025
	assert.InDelta(t, fsm, res.FSMTM, 1e-9)
	assert.InDelta(t, fsm/10305, res.FSCM, 1e-12)
	require.Len(t, res.FreeSurface, 1)
	assert.Equal(t, "DB2P", res.FreeSurface[0].ID)
	assert.InDelta(t, res.KGM+res.FSCM, res.KGFluidM, 1e-12)
}

func TestAggregateFreeSurfaceBand(t *testing.T) {
	base := vessel.Tank{ID: "T", CapacityM3: 100, LengthM: 10, BreadthM: 10, InertiaM4: 500}
	tests := []struct {
		level float64
		slack bool
	}{
		{5, false},
		{5.1, true},
		{50, true},
		{94.9, true},
		{95, false},
	}
	for _, tt := range tests {
		tank := base
		tank.LevelPct = tt.level
		res, err := Aggregate(Input{
			Items:         []vessel.WeightItem{{ID: "ls", WeightT: 1000, VCGM: 5}},
			Tanks:         []vessel.Tank{tank},
			DisplacementT: 2000,
		})
		require.NoError(t, err)
		if tt.slack {
			// exact inertia wins over the rectangular estimate
			assert.InDelta(t, 500*1.025/2000, res.FSCM, 1e-12, "level %.1f", tt.level)
		} else {
			assert.Zero(t, res.FSCM, "level %.1f", tt.level)
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	_, err := Aggregate(Input{})
	assert.ErrorIs(t, err, calcerr.ErrEmptyLoadCase)

	_, err = Aggregate(Input{
		Items: []vessel.WeightItem{{ID: "a", WeightT: 0}},
		Tanks: []vessel.Tank{{ID: "b", CapacityM3: 100, LevelPct: 0}},
	})
	assert.ErrorIs(t, err, calcerr.ErrEmptyLoadCase)
}

func TestAggregateRejectsBadRecords(t *testing.T) {
	_, err := Aggregate(Input{Items: []vessel.WeightItem{{ID: "a", WeightT: -1}}})
	assert.ErrorIs(t, err, calcerr.ErrInvalidInput)

	_, err = Aggregate(Input{Tanks: []vessel.Tank{{ID: "b", CapacityM3: 100, LevelPct: 120}}})
	assert.ErrorIs(t, err, calcerr.ErrInvalidInput)
}

func TestAggregateDefaultsDisplacement(t *testing.T) {
	res, err := Aggregate(Input{
		Items: []vessel.WeightItem{{ID: "ls", WeightT: 1000, VCGM: 5}},
		Tanks: []vessel.Tank{{ID: "s", CapacityM3: 100, LevelPct: 50, InertiaM4: 100}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 100*1.025/res.TotalWeightT, res.FSCM, 1e-12)
	assert.NotEmpty(t, res.Notes)
}
