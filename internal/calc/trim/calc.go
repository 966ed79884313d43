package trim

import (
	"math"

	"Keel/internal/calc/calcerr"
	"Keel/internal/calc/hydrostatics"
	"Keel/internal/calc/weights"
	"Keel/internal/vessel"
)

type Input struct {
	Hydrostatics hydrostatics.State   `json:"hydrostatics"`
	Weights      weights.Result       `json:"weights"`
	Change       *vessel.WeightChange `json:"change,omitempty"`
	Shift        *vessel.WeightShift  `json:"shift,omitempty"`
	Drafts       *vessel.Drafts       `json:"drafts,omitempty"`
}

// Moments are the increments applied to the current condition. A shift adds no
// weight; a load adds WeightT at the position the moments were taken about.
type Moments struct {
	WeightT            float64 `json:"weight_t"`
	TrimMomentTM       float64 `json:"trim_moment_tm"`
	TransverseMomentTM float64 `json:"transverse_moment_tm"`
	VerticalMomentTM   float64 `json:"vertical_moment_tm"`
}

type Result struct {
	DisplacementT      float64  `json:"displacement_t"`
	KGM                float64  `json:"kg_m"`
	FSCM               float64  `json:"fsc_m"`
	GMM                float64  `json:"gm_m"`
	TrimMomentTM       float64  `json:"trim_moment_tm"`
	TrimChangeCM       float64  `json:"trim_change_cm"`
	SinkageCM          float64  `json:"sinkage_cm"`
	AftChangeCM        float64  `json:"aft_change_cm"`
	FwdChangeCM        float64  `json:"fwd_change_cm"`
	ByHead             bool     `json:"by_head"`
	DraftAftM          float64  `json:"draft_aft_m"`
	DraftFwdM          float64  `json:"draft_fwd_m"`
	MeanDraftM         float64  `json:"mean_draft_m"`
	TrimM              float64  `json:"trim_m"`
	TrimAngleDeg       float64  `json:"trim_angle_deg"`
	TransverseMomentTM float64  `json:"transverse_moment_tm"`
	ListDeg            float64  `json:"list_deg"`
	Deflection         string   `json:"deflection,omitempty"`
	DeflectionCM       float64  `json:"deflection_cm,omitempty"`
	Notes              []string `json:"notes,omitempty"`
}

// Solve finds the new drafts, trim and list after the requested weight change
// or shift. With neither, it reports the static trim of the loaded condition
// from an even keel, using the lever between LCG and LCB.
func Solve(in Input) (Result, error) {
	h := in.Hydrostatics
	if in.Change != nil && in.Shift != nil {
		return Result{}, calcerr.New(calcerr.InvalidInput, "trim", "give either a weight change or a shift, not both")
	}

	var (
		m     Moments
		start = evenKeel(h)
		note  string
	)
	switch {
	case in.Change != nil:
		c := in.Change
		m = Moments{
			WeightT:            c.WeightT,
			TrimMomentTM:       c.WeightT * (c.LCGM - h.LCFM),
			TransverseMomentTM: c.WeightT * c.TCGM,
			VerticalMomentTM:   c.WeightT * c.VCGM,
		}
	case in.Shift != nil:
		s := in.Shift
		m = Moments{
			TrimMomentTM:       s.WeightT * (s.ToLCGM - s.FromLCGM),
			TransverseMomentTM: s.WeightT * (s.ToTCGM - s.FromTCGM),
			VerticalMomentTM:   s.WeightT * (s.ToVCGM - s.FromVCGM),
		}
	default:
		m = Moments{TrimMomentTM: h.DisplacementT * (in.Weights.LCGM - h.LCBM)}
		note = "no weight change given, trim is the static trim from LCG-LCB about an even keel"
	}
	var observed *vessel.Drafts
	if in.Drafts != nil {
		if err := in.Drafts.Validate(); err != nil {
			return Result{}, err
		}
		d := in.Drafts.Resolve(h.DraftM)
		observed = &d
	}
	if observed != nil && in.Change == nil && in.Shift == nil {
		note += "; observed drafts ignored for static trim"
	} else if observed != nil {
		start = *observed
	}

	res, err := Apply(h, in.Weights, start, m)
	if err != nil {
		return Result{}, err
	}
	if note != "" {
		res.Notes = append(res.Notes, note)
	}
	if observed != nil && observed.MidM > 0 {
		res.Deflection, res.DeflectionCM = Deflection(observed.FwdM, observed.MidM, observed.AftM)
	}
	return res, nil
}

// Apply solves the equilibrium for a set of moment increments starting from
// the given drafts.
func Apply(h hydrostatics.State, w weights.Result, start vessel.Drafts, m Moments) (Result, error) {
	const op = "trim"
	if !(h.MCT > calcerr.Epsilon) {
		return Result{}, calcerr.New(calcerr.DegenerateEquilibrium, op, "MCT is too small").With("mct", h.MCT)
	}
	if !(h.TPC > calcerr.Epsilon) {
		return Result{}, calcerr.New(calcerr.DegenerateEquilibrium, op, "TPC is too small").With("tpc", h.TPC)
	}
	if !(h.LengthM > 0) || !(h.DisplacementT > 0) {
		return Result{}, calcerr.New(calcerr.InvalidGeometry, op, "hydrostatic state has no length or displacement")
	}

	disp := h.DisplacementT
	newDisp := disp + m.WeightT
	if !(newDisp > 0) {
		return Result{}, calcerr.New(calcerr.EmptyLoadCase, op, "discharge exceeds displacement").With("displacement_t", newDisp)
	}
	kg := (disp*w.KGM + m.VerticalMomentTM) / newDisp
	fsc := w.FSCM * disp / newDisp
	gm := h.KMM - kg - fsc
	if !(gm > calcerr.Epsilon) {
		return Result{}, calcerr.New(calcerr.DegenerateEquilibrium, op, "GM is zero or negative, the vessel has no initial stability").
			With("gm_m", gm).With("km_m", h.KMM).With("kg_m", kg).With("fsc_m", fsc)
	}

	tc := m.TrimMomentTM / h.MCT
	sink := m.WeightT / h.TPC
	lcfRatio := h.LCFM / h.LengthM
	aft := math.Abs(tc) * lcfRatio
	fwd := math.Abs(tc) * (1 - lcfRatio)
	byHead := tc > 0
	if byHead {
		aft = -aft
	} else {
		fwd = -fwd
	}

	mt := disp*w.TCGM + m.TransverseMomentTM
	list := math.Atan(mt/(newDisp*gm)) * 180 / math.Pi

	res := Result{
		DisplacementT:      newDisp,
		KGM:                kg,
		FSCM:               fsc,
		GMM:                gm,
		TrimMomentTM:       m.TrimMomentTM,
		TrimChangeCM:       tc,
		SinkageCM:          sink,
		AftChangeCM:        aft,
		FwdChangeCM:        fwd,
		ByHead:             byHead,
		DraftAftM:          start.AftM + (sink+aft)/100,
		DraftFwdM:          start.FwdM + (sink+fwd)/100,
		TransverseMomentTM: mt,
		ListDeg:            list,
	}
	res.MeanDraftM = (res.DraftAftM + res.DraftFwdM) / 2
	res.TrimM = res.DraftAftM - res.DraftFwdM
	res.TrimAngleDeg = math.Atan(res.TrimM/h.LengthM) * 180 / math.Pi

	if err := calcerr.Finite(calcerr.DegenerateEquilibrium, op,
		"trim_change", res.TrimChangeCM, "list", res.ListDeg, "draft_aft", res.DraftAftM, "draft_fwd", res.DraftFwdM); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Deflection compares the midship draft with the mean of the end drafts.
// A deeper midship draft means the hull sags.
func Deflection(fwd, mid, aft float64) (string, float64) {
	d := (mid - (fwd+aft)/2) * 100
	switch {
	case d > 0.5:
		return "sagging", d
	case d < -0.5:
		return "hogging", d
	}
	return "none", d
}

func evenKeel(h hydrostatics.State) vessel.Drafts {
	return vessel.Drafts{AftM: h.DraftM, FwdM: h.DraftM}
}
