package weights

import (
	"Keel/internal/calc/calcerr"
	"Keel/internal/vessel"
)

type Input struct {
	Items []vessel.WeightItem `json:"items"`
	Tanks []vessel.Tank       `json:"tanks"`
	// DisplacementT divides the free-surface moments. When zero the aggregated
	// total weight is used.
	DisplacementT float64 `json:"displacement_t,omitempty"`
}

type TankFreeSurface struct {
	ID       string  `json:"id"`
	LevelPct float64 `json:"level_pct"`
	FSMTM    float64 `json:"fsm_tm"`
	FSCM     float64 `json:"fsc_m"`
}

type Result struct {
	TotalWeightT float64           `json:"total_weight_t"`
	KGM          float64           `json:"kg_m"`
	LCGM         float64           `json:"lcg_m"`
	TCGM         float64           `json:"tcg_m"`
	FSMTM        float64           `json:"fsm_tm"`
	FSCM         float64           `json:"fsc_m"`
	KGFluidM     float64           `json:"kg_fluid_m"`
	FreeSurface  []TankFreeSurface `json:"free_surface,omitempty"`
	Notes        []string          `json:"notes,omitempty"`
}

// Aggregate combines weight items and tank contents into one centre of gravity
// and sums the free-surface correction of the slack tanks.
func Aggregate(in Input) (Result, error) {
	for _, it := range in.Items {
		if err := it.Validate(); err != nil {
			return Result{}, err
		}
	}
	for _, t := range in.Tanks {
		if err := t.Validate(); err != nil {
			return Result{}, err
		}
	}

	var w, ml, mt, mv float64
	for _, it := range in.Items {
		w += it.WeightT
		ml += it.WeightT * it.LCGM
		mt += it.WeightT * it.TCGM
		mv += it.WeightT * it.VCGM
	}
	for _, t := range in.Tanks {
		tw := t.WeightT()
		w += tw
		ml += tw * t.LCGM
		mt += tw * t.TCGM
		mv += tw * t.VCGM
	}
	if !(w > 0) {
		return Result{}, calcerr.New(calcerr.EmptyLoadCase, "weights", "total weight must be positive").With("total_weight_t", w)
	}

	var notes []string
	disp := in.DisplacementT
	if disp <= 0 {
		disp = w
		notes = append(notes, "displacement not given, free-surface correction uses total weight")
	}

	res := Result{
		TotalWeightT: w,
		KGM:          mv / w,
		LCGM:         ml / w,
		TCGM:         mt / w,
	}
	for _, t := range in.Tanks {
		if !t.Slack() {
			continue
		}
		i := t.SurfaceInertia()
		if i <= 0 {
			notes = append(notes, "tank "+t.ID+" is slack but has no surface dimensions, free surface ignored")
			continue
		}
		fsm := i * t.Rho()
		res.FSMTM += fsm
		res.FreeSurface = append(res.FreeSurface, TankFreeSurface{
			ID:       t.ID,
			LevelPct: t.LevelPct,
			FSMTM:    fsm,
			FSCM:     fsm / disp,
		})
	}
	res.FSCM = res.FSMTM / disp
	res.KGFluidM = res.KGM + res.FSCM
	res.Notes = notes

	if err := calcerr.Finite(calcerr.EmptyLoadCase, "weights",
		"kg", res.KGM, "lcg", res.LCGM, "tcg", res.TCGM, "fsc", res.FSCM); err != nil {
		return Result{}, err
	}
	return res, nil
}
