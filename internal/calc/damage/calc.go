package damage

import (
	"math"

	"Keel/internal/calc/calcerr"
	"Keel/internal/vessel"
)

// Base is the intact condition the damage is applied to.
type Base struct {
	DisplacementT float64 `json:"displacement_t"`
	KGM           float64 `json:"kg_m"`
	KMM           float64 `json:"km_m"`
	// GMM is the intact GM used for the survival factor. When zero, KM − KG.
	GMM      float64 `json:"gm_m,omitempty"`
	DraftM   float64 `json:"draft_m"`
	BreadthM float64 `json:"breadth_m"`
	TPC      float64 `json:"tpc_t_cm,omitempty"`
}

type Result struct {
	Compartment       string   `json:"compartment,omitempty"`
	FloodedVolumeM3   float64  `json:"flooded_volume_m3"`
	FloodedWeightT    float64  `json:"flooded_weight_t"`
	DisplacementT     float64  `json:"displacement_t"`
	KGM               float64  `json:"kg_m"`
	KMM               float64  `json:"km_m"`
	ResidualGMM       float64  `json:"residual_gm_m"`
	FloodingMomentTM  float64  `json:"flooding_moment_tm"`
	HeelDeg           float64  `json:"heel_deg"`
	EqualizedHeelDeg  float64  `json:"equalized_heel_deg"`
	CrossFloodMin     float64  `json:"cross_flood_min,omitempty"`
	DownfloodingDeg   float64  `json:"downflooding_deg,omitempty"`
	SurvivalFactorPct float64  `json:"survival_factor_pct"`
	SinkageCM         float64  `json:"sinkage_cm,omitempty"`
	DraftM            float64  `json:"draft_m"`
	Survives          bool     `json:"survives"`
	Warnings          []string `json:"warnings,omitempty"`
	Notes             []string `json:"notes,omitempty"`
}

// Evaluate floods one compartment by the lost-buoyancy-as-added-weight method
// with KM held at its intact value. When the residual GM is negative the full
// result is returned together with a NegativeResidualGM error.
func Evaluate(s vessel.DamageScenario, b Base) (Result, error) {
	const op = "damage"
	if err := s.Validate(); err != nil {
		return Result{}, err
	}
	if !(b.DisplacementT > 0) || !(b.DraftM > 0) || !(b.BreadthM > 0) {
		return Result{}, calcerr.New(calcerr.InvalidGeometry, op, "intact condition needs displacement, draft and breadth")
	}
	if err := calcerr.Finite(calcerr.InvalidInput, op, "kg", b.KGM, "km", b.KMM, "gm", b.GMM); err != nil {
		return Result{}, err
	}

	var notes, warnings []string
	vol := s.VolumeM3 * s.Permeability
	w := vol * s.Rho()
	disp := b.DisplacementT + w
	kg := (b.KGM*b.DisplacementT + s.FloodKGM*w) / disp
	gmRes := b.KMM - kg

	moment := s.FloodingMomentTM
	if moment == 0 && s.FloodTCGM != 0 {
		moment = w * s.FloodTCGM
		notes = append(notes, "flooding moment taken from flooded weight and its TCG")
	}

	res := Result{
		Compartment:      s.Compartment,
		FloodedVolumeM3:  vol,
		FloodedWeightT:   w,
		DisplacementT:    disp,
		KGM:              kg,
		KMM:              b.KMM,
		ResidualGMM:      gmRes,
		FloodingMomentTM: moment,
		DraftM:           b.DraftM,
	}
	notes = append(notes, "KM held at the intact value after flooding")

	if gmRes > calcerr.Epsilon {
		res.HeelDeg = math.Atan(moment/(disp*gmRes)) * 180 / math.Pi
		res.EqualizedHeelDeg = res.HeelDeg * (1 - math.Exp(-1))
	} else {
		notes = append(notes, "no heel angle without positive residual GM")
	}

	if s.CrossFloodRateM3Min > 0 {
		res.CrossFloodMin = vol / s.CrossFloodRateM3Min
	}
	if b.TPC > calcerr.Epsilon {
		res.SinkageCM = w / b.TPC
		res.DraftM = b.DraftM + res.SinkageCM/100
	}
	if s.VentHeightM > 0 {
		res.DownfloodingDeg = math.Atan((s.VentHeightM-b.DraftM)/(b.BreadthM/2)) * 180 / math.Pi
		if math.Abs(res.HeelDeg) >= res.DownfloodingDeg {
			warnings = append(warnings, "heel reaches the downflooding angle")
		}
	}

	gm0 := b.GMM
	if gm0 == 0 {
		gm0 = b.KMM - b.KGM
	}
	if gm0 > calcerr.Epsilon {
		res.SurvivalFactorPct = gmRes / gm0 * 100
	} else {
		notes = append(notes, "intact GM not positive, survival factor not computed")
	}

	res.Survives = gmRes > 0 && len(warnings) == 0
	if err := calcerr.Finite(calcerr.InvalidInput, op, "kg", kg, "gm", gmRes, "heel", res.HeelDeg,
		"survival", res.SurvivalFactorPct); err != nil {
		return Result{}, err
	}
	if gmRes < 0 {
		warnings = append(warnings, "negative residual GM: the vessel capsizes in this damage case")
		res.Warnings, res.Notes = warnings, notes
		return res, calcerr.New(calcerr.NegativeResidualGM, op, "residual GM is negative").
			With("residual_gm_m", gmRes).With("kg_m", kg).With("km_m", b.KMM)
	}
	res.Warnings, res.Notes = warnings, notes
	return res, nil
}
