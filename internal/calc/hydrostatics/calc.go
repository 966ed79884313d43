package hydrostatics

import (
	"Keel/internal/calc/calcerr"
	"Keel/internal/vessel"
)

type State struct {
	DisplacementT    float64  `json:"displacement_t"`
	DraftM           float64  `json:"draft_m"`
	VolumeM3         float64  `json:"volume_m3"`
	WaterplaneAreaM2 float64  `json:"waterplane_area_m2"`
	IwpM4            float64  `json:"iwp_m4"`
	ILM4             float64  `json:"il_m4"`
	KBM              float64  `json:"kb_m"`
	BMM              float64  `json:"bm_m"`
	KMM              float64  `json:"km_m"`
	BMLM             float64  `json:"bml_m"`
	TPC              float64  `json:"tpc_t_cm"`
	MCT              float64  `json:"mct_tm_cm"`
	LCFM             float64  `json:"lcf_m"`
	LCBM             float64  `json:"lcb_m"`
	LengthM          float64  `json:"length_m"`
	BreadthM         float64  `json:"breadth_m"`
	Density          float64  `json:"density"`
	Notes            []string `json:"notes,omitempty"`
}

// Calculate derives the hydrostatic particulars of a hull from its main
// dimensions and form coefficients.
func Calculate(g vessel.Geometry) (State, error) {
	if err := g.Validate(); err != nil {
		return State{}, err
	}
	var notes []string
	if g.Density <= 0 {
		notes = append(notes, "water density not given, using seawater 1.025 t/m3")
	}
	if g.LCFM <= 0 {
		notes = append(notes, "LCF not given, taken amidships")
	}
	if g.LCBM <= 0 {
		notes = append(notes, "LCB not given, taken amidships")
	}

	rho := g.Rho()
	L, B, T := g.LengthM, g.BreadthM, g.DraftM

	kb := KB(T, g.CB, g.CWP)
	iwp := L * B * B * B / 12
	il := B * L * L * L / 12
	volume := g.DisplacementT / rho
	bm := iwp / volume
	bml := il / volume
	awp := L * B * g.CWP

	// Longitudinal GM is taken as BML: KG is small against BML and is not
	// known at this stage.
	gml := bml

	s := State{
		DisplacementT:    g.DisplacementT,
		DraftM:           T,
		VolumeM3:         volume,
		WaterplaneAreaM2: awp,
		IwpM4:            iwp,
		ILM4:             il,
		KBM:              kb,
		BMM:              bm,
		KMM:              kb + bm,
		BMLM:             bml,
		TPC:              awp * rho / 100,
		MCT:              g.DisplacementT * gml / (100 * L),
		LCFM:             g.LCF(),
		LCBM:             g.LCB(),
		LengthM:          L,
		BreadthM:         B,
		Density:          rho,
		Notes:            notes,
	}
	if err := calcerr.Finite(calcerr.InvalidGeometry, "hydrostatics",
		"kb", s.KBM, "bm", s.BMM, "km", s.KMM, "tpc", s.TPC, "mct", s.MCT); err != nil {
		return State{}, err
	}
	return s, nil
}

// KB is the height of the centre of buoyancy above the keel.
func KB(draft, cb, cwp float64) float64 {
	return draft * (0.5 - (1.0/12.0)*(1-cwp/cb))
}
