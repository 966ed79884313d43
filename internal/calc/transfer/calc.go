package transfer

import (
	"fmt"
	"math"

	"Keel/internal/calc/calcerr"
	"Keel/internal/calc/hydrostatics"
	"Keel/internal/calc/trim"
	"Keel/internal/calc/weights"
	"Keel/internal/vessel"
)

const (
	Improved = "improved"
	Neutral  = "neutral"
	Degraded = "degraded"
)

type Input struct {
	Hydrostatics hydrostatics.State     `json:"hydrostatics"`
	Items        []vessel.WeightItem    `json:"items"`
	Tanks        []vessel.Tank          `json:"tanks"`
	Request      vessel.TransferRequest `json:"request"`
	Drafts       *vessel.Drafts         `json:"drafts,omitempty"`
}

type Result struct {
	Request              vessel.TransferRequest `json:"request"`
	WeightT              float64                `json:"weight_t"`
	LongitudinalMomentTM float64                `json:"longitudinal_moment_tm"`
	TransverseMomentTM   float64                `json:"transverse_moment_tm"`
	VerticalMomentTM     float64                `json:"vertical_moment_tm"`
	PumpHours            float64                `json:"pump_hours"`
	Before               weights.Result         `json:"before"`
	After                weights.Result         `json:"after"`
	Equilibrium          trim.Result            `json:"equilibrium"`
	ListBeforeDeg        float64                `json:"list_before_deg"`
	ListAfterDeg         float64                `json:"list_after_deg"`
	ListChangeDeg        float64                `json:"list_change_deg"`
	TrimChangeCM         float64                `json:"trim_change_cm"`
	GMBeforeM            float64                `json:"gm_before_m"`
	GMAfterM             float64                `json:"gm_after_m"`
	GMChangeM            float64                `json:"gm_change_m"`
	FSCChangeM           float64                `json:"fsc_change_m"`
	Outcome              string                 `json:"outcome"`
	Tanks                []vessel.Tank          `json:"tanks"`
	Recommendations      []string               `json:"recommendations,omitempty"`
	Warnings             []string               `json:"warnings,omitempty"`
	Notes                []string               `json:"notes,omitempty"`
}

// Plan moves a volume of liquid between two tanks and solves the resulting
// change of trim and list. The input tanks are left untouched; the
// post-transfer tank set is returned in the result.
func Plan(in Input) (Result, error) {
	const op = "transfer"
	req := in.Request
	fi := vessel.FindTank(in.Tanks, req.FromTank)
	ti := vessel.FindTank(in.Tanks, req.ToTank)
	switch {
	case fi < 0 || ti < 0:
		return Result{}, calcerr.New(calcerr.InvalidInput, op, "unknown tank %q or %q", req.FromTank, req.ToTank)
	case fi == ti:
		return Result{}, calcerr.New(calcerr.InvalidInput, op, "source and destination are the same tank")
	case !(req.VolumeM3 > 0):
		return Result{}, calcerr.New(calcerr.InvalidInput, op, "transfer volume must be positive").With("volume_m3", req.VolumeM3)
	}
	from, to := in.Tanks[fi], in.Tanks[ti]
	if req.VolumeM3 > from.VolumeM3()+1e-9 {
		return Result{}, calcerr.New(calcerr.CapacityExceeded, op, "tank %s holds only %.3f m3", from.ID, from.VolumeM3()).
			With("volume_m3", req.VolumeM3).With("available_m3", from.VolumeM3())
	}
	if req.VolumeM3 > to.RemainingM3()+1e-9 {
		return Result{}, calcerr.New(calcerr.CapacityExceeded, op, "tank %s has room for only %.3f m3", to.ID, to.RemainingM3()).
			With("volume_m3", req.VolumeM3).With("remaining_m3", to.RemainingM3())
	}

	var notes, warnings []string
	rho := from.Rho()
	if to.VolumeM3() > 0 && math.Abs(to.Rho()-rho) > 1e-9 {
		return Result{}, calcerr.New(calcerr.InvalidInput, op, "tank %s holds liquid of a different density", to.ID).
			With("from_density", rho).With("to_density", to.Rho())
	}

	tanks := make([]vessel.Tank, len(in.Tanks))
	copy(tanks, in.Tanks)
	tanks[fi].LevelPct = from.LevelPct - req.VolumeM3/from.CapacityM3*100
	tanks[ti].LevelPct = to.LevelPct + req.VolumeM3/to.CapacityM3*100
	tanks[ti].Density = rho
	if tanks[fi].LevelPct < 0 {
		tanks[fi].LevelPct = 0
	}
	if tanks[ti].LevelPct > 100 {
		tanks[ti].LevelPct = 100
	}

	h := in.Hydrostatics
	before, err := weights.Aggregate(weights.Input{Items: in.Items, Tanks: in.Tanks, DisplacementT: h.DisplacementT})
	if err != nil {
		return Result{}, err
	}
	after, err := weights.Aggregate(weights.Input{Items: in.Items, Tanks: tanks, DisplacementT: h.DisplacementT})
	if err != nil {
		return Result{}, err
	}

	w := req.VolumeM3 * rho
	m := trim.Moments{
		TrimMomentTM:       w * (to.LCGM - from.LCGM),
		TransverseMomentTM: w * (to.TCGM - from.TCGM),
		VerticalMomentTM:   w * (to.VCGM - from.VCGM),
	}
	start := vessel.Drafts{}.Resolve(h.DraftM)
	if in.Drafts != nil {
		if err := in.Drafts.Validate(); err != nil {
			return Result{}, err
		}
		start = in.Drafts.Resolve(h.DraftM)
	}

	still, err := trim.Apply(h, before, start, trim.Moments{})
	if err != nil {
		return Result{}, err
	}
	// free surface of the post-transfer tanks, centre of gravity moved by the moments
	moved := before
	moved.FSCM = after.FSCM
	eq, err := trim.Apply(h, moved, start, m)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Request:              req,
		WeightT:              w,
		LongitudinalMomentTM: m.TrimMomentTM,
		TransverseMomentTM:   m.TransverseMomentTM,
		VerticalMomentTM:     m.VerticalMomentTM,
		PumpHours:            pumpHours(req.VolumeM3, from.PumpRateM3H, to.PumpRateM3H),
		Before:               before,
		After:                after,
		Equilibrium:          eq,
		ListBeforeDeg:        still.ListDeg,
		ListAfterDeg:         eq.ListDeg,
		ListChangeDeg:        eq.ListDeg - still.ListDeg,
		TrimChangeCM:         eq.TrimChangeCM,
		GMBeforeM:            still.GMM,
		GMAfterM:             eq.GMM,
		GMChangeM:            eq.GMM - still.GMM,
		FSCChangeM:           after.FSCM - before.FSCM,
		Tanks:                tanks,
	}
	res.Outcome = Classify(res.ListChangeDeg, res.TrimChangeCM)
	if res.PumpHours == 0 {
		notes = append(notes, "no pump rate given, pumping time unknown")
	}
	if to.VolumeM3() == 0 && math.Abs(to.Rho()-rho) > 1e-9 {
		notes = append(notes, fmt.Sprintf("tank %s takes the density of %s", to.ID, from.ID))
	}
	if res.GMChangeM < 0 {
		warnings = append(warnings, fmt.Sprintf("GM drops by %.3f m", -res.GMChangeM))
	}
	res.Recommendations = recommend(eq, after.FSCM)
	res.Warnings, res.Notes = warnings, notes
	return res, nil
}

// Classify grades a transfer by the list and trim it causes.
func Classify(listChangeDeg, trimChangeCM float64) string {
	dl, dt := math.Abs(listChangeDeg), math.Abs(trimChangeCM)
	switch {
	case dl < 0.5 && dt < 20:
		return Improved
	case dl > 2 || dt > 50:
		return Degraded
	}
	return Neutral
}

func pumpHours(v, rateFrom, rateTo float64) float64 {
	rate := math.Min(rateFrom, rateTo)
	if rate <= 0 {
		rate = math.Max(rateFrom, rateTo)
	}
	if rate <= 0 {
		return 0
	}
	return v / rate
}

func recommend(eq trim.Result, fsc float64) []string {
	var out []string
	if math.Abs(eq.ListDeg) > 1 {
		out = append(out, fmt.Sprintf("list %.2f deg: transfer ballast to the opposite side", eq.ListDeg))
	}
	if t := eq.TrimM * 100; math.Abs(t) > 30 {
		by := "stern"
		if t < 0 {
			by = "head"
		}
		out = append(out, fmt.Sprintf("trim %.0f cm by the %s: shift ballast longitudinally", math.Abs(t), by))
	}
	if fsc > 0.3 {
		out = append(out, fmt.Sprintf("free-surface correction %.2f m: press up or empty slack tanks", fsc))
	}
	return out
}

// Correction is the volume to move between two tanks to bring the vessel upright.
type Correction struct {
	FromTank string  `json:"from_tank"`
	ToTank   string  `json:"to_tank"`
	VolumeM3 float64 `json:"volume_m3"`
	WeightT  float64 `json:"weight_t"`
	Feasible bool    `json:"feasible"`
}

// ListCorrection finds the transfer between tanks a and b that cancels the
// transverse moment of the loaded condition. The direction is chosen from the
// sign of the moment.
func ListCorrection(w weights.Result, tanks []vessel.Tank, a, b string) (Correction, error) {
	const op = "list correction"
	ai, bi := vessel.FindTank(tanks, a), vessel.FindTank(tanks, b)
	if ai < 0 || bi < 0 || ai == bi {
		return Correction{}, calcerr.New(calcerr.InvalidInput, op, "need two distinct known tanks, got %q and %q", a, b)
	}
	ta, tb := tanks[ai], tanks[bi]
	lever := tb.TCGM - ta.TCGM
	if math.Abs(lever) < calcerr.Epsilon {
		return Correction{}, calcerr.New(calcerr.DegenerateEquilibrium, op, "tanks %s and %s are on the same transverse position", a, b)
	}
	mt := w.TotalWeightT * w.TCGM
	// moving liquid from a to b changes the moment by v·ρ·(tcg_b − tcg_a)
	v := -mt / (ta.Rho() * lever)
	if v < 0 {
		ta, tb = tb, ta
		v = -mt / (ta.Rho() * -lever)
	}
	return Correction{
		FromTank: ta.ID,
		ToTank:   tb.ID,
		VolumeM3: v,
		WeightT:  v * ta.Rho(),
		Feasible: v <= ta.VolumeM3()+1e-9 && v <= tb.RemainingM3()+1e-9,
	}, nil
}
