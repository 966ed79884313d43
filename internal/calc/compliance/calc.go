package compliance

import (
	"fmt"
	"math"

	"Keel/internal/calc/calcerr"
	"Keel/internal/calc/gzcurve"

	"gonum.org/v1/gonum/integrate"
)

const deg = math.Pi / 180

// Thresholds are the intact-stability limits. Areas are in m·degree.
type Thresholds struct {
	Area0to30MDeg     float64 `json:"area_0_30_mdeg" mapstructure:"area_0_30_mdeg"`
	Area0to40MDeg     float64 `json:"area_0_40_mdeg" mapstructure:"area_0_40_mdeg"`
	Area30to40MDeg    float64 `json:"area_30_40_mdeg" mapstructure:"area_30_40_mdeg"`
	MaxGZM            float64 `json:"max_gz_m" mapstructure:"max_gz_m"`
	MaxGZFromDeg      float64 `json:"max_gz_from_deg" mapstructure:"max_gz_from_deg"`
	InitialGMM        float64 `json:"initial_gm_m" mapstructure:"initial_gm_m"`
	WeatherHeelCapDeg float64 `json:"weather_heel_cap_deg" mapstructure:"weather_heel_cap_deg"`
	// HighFSCRatio is the share of solid GM lost to free surface above which a
	// warning is raised.
	HighFSCRatio float64 `json:"high_fsc_ratio" mapstructure:"high_fsc_ratio"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Area0to30MDeg:     3.151,
		Area0to40MDeg:     5.157,
		Area30to40MDeg:    1.719,
		MaxGZM:            0.20,
		MaxGZFromDeg:      30,
		InitialGMM:        0.15,
		WeatherHeelCapDeg: 16,
		HighFSCRatio:      0.2,
	}
}

const (
	Area0to30  = "area_0_30"
	Area0to40  = "area_0_40"
	Area30to40 = "area_30_40"
	MaxGZ      = "max_gz_30"
	InitialGM  = "initial_gm"
	Weather    = "weather"
)

type Criterion struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Required float64 `json:"required"`
	Margin   float64 `json:"margin"`
	Unit     string  `json:"unit"`
	Pass     bool    `json:"pass"`
	Critical bool    `json:"critical"`
}

type Input struct {
	Curve      gzcurve.Curve `json:"curve"`
	GMM        float64       `json:"gm_m"`
	FSCM       float64       `json:"fsc_m,omitempty"`
	Weather    *WindResult   `json:"weather,omitempty"`
	Thresholds *Thresholds   `json:"thresholds,omitempty"`
}

type Result struct {
	Criteria             []Criterion        `json:"criteria"`
	Verdicts             map[string]bool    `json:"verdicts"`
	Margins              map[string]float64 `json:"margins"`
	Passed               int                `json:"passed"`
	Total                int                `json:"total"`
	Score                float64            `json:"score"`
	Compliant            bool               `json:"compliant"`
	Areas                map[string]float64 `json:"areas_mrad"`
	DynamicStabilityMRad float64            `json:"dynamic_stability_mrad"`
	Warnings             []string           `json:"warnings,omitempty"`
	Recommendations      []string           `json:"recommendations,omitempty"`
}

// Evaluate checks a righting-arm curve against the intact-stability criteria.
// Failing criteria are reported in the result, not as an error.
func Evaluate(in Input) (Result, error) {
	const op = "compliance"
	if len(in.Curve.Points) < 2 {
		return Result{}, calcerr.New(calcerr.InvalidInput, op, "curve needs at least two samples")
	}
	for i := 1; i < len(in.Curve.Points); i++ {
		if !(in.Curve.Points[i].AngleDeg > in.Curve.Points[i-1].AngleDeg) {
			return Result{}, calcerr.New(calcerr.InvalidInput, op, "curve angles must increase")
		}
	}
	if err := calcerr.Finite(calcerr.InvalidInput, op, "gm", in.GMM, "fsc", in.FSCM); err != nil {
		return Result{}, err
	}
	th := DefaultThresholds()
	if in.Thresholds != nil {
		th = *in.Thresholds
	}

	a30 := Area(in.Curve, 0, 30)
	a40 := Area(in.Curve, 0, 40)
	a3040 := Area(in.Curve, 30, 40)
	gz30 := maxFrom(in.Curve, th.MaxGZFromDeg)

	crit := []Criterion{
		criterion(Area0to30, a30/deg, th.Area0to30MDeg, "m·deg", true),
		criterion(Area0to40, a40/deg, th.Area0to40MDeg, "m·deg", false),
		criterion(Area30to40, a3040/deg, th.Area30to40MDeg, "m·deg", false),
		criterion(MaxGZ, gz30, th.MaxGZM, "m", false),
		criterion(InitialGM, in.GMM, th.InitialGMM, "m", true),
	}
	if w := in.Weather; w != nil {
		// the heel must stay under the cap, so the margin is cap − heel
		crit = append(crit, Criterion{
			Name: Weather, Value: w.HeelDeg, Required: w.CapDeg, Margin: w.CapDeg - w.HeelDeg,
			Unit: "deg", Pass: w.Pass, Critical: true,
		})
	}

	res := Result{
		Criteria: crit,
		Verdicts: make(map[string]bool, len(crit)),
		Margins:  make(map[string]float64, len(crit)),
		Total:    len(crit),
		Areas:    map[string]float64{Area0to30: a30, Area0to40: a40, Area30to40: a3040},
	}
	criticalFailed := false
	for _, c := range crit {
		res.Verdicts[c.Name] = c.Pass
		res.Margins[c.Name] = c.Margin
		if c.Pass {
			res.Passed++
		} else if c.Critical {
			criticalFailed = true
		}
	}
	res.Score = float64(res.Passed) / float64(res.Total) * 100
	res.Compliant = res.Passed == res.Total
	res.DynamicStabilityMRad = DynamicStability(in.Curve)

	if in.GMM < 0 {
		res.Warnings = append(res.Warnings, "negative GM: the vessel will list or capsize")
	} else if in.GMM < th.InitialGMM {
		res.Warnings = append(res.Warnings, fmt.Sprintf("low GM %.3f m", in.GMM))
	}
	if solid := in.GMM + in.FSCM; in.FSCM > 0 && solid > 0 && in.FSCM/solid > th.HighFSCRatio {
		res.Warnings = append(res.Warnings, fmt.Sprintf("free surface takes %.0f%% of GM", in.FSCM/solid*100))
	}
	if in.Curve.VanishingAngleDeg < 60 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("vanishing angle %.0f deg is below 60 deg", in.Curve.VanishingAngleDeg))
	}
	if criticalFailed {
		res.Warnings = append(res.Warnings, "critical stability criteria failed")
	}
	res.Recommendations = recommend(res.Verdicts, in.FSCM)

	if err := calcerr.Finite(calcerr.InvalidInput, op, "area_0_30", a30, "area_0_40", a40,
		"dynamic", res.DynamicStabilityMRad); err != nil {
		return Result{}, err
	}
	return res, nil
}

func criterion(name string, value, required float64, unit string, critical bool) Criterion {
	return Criterion{
		Name: name, Value: value, Required: required, Margin: value - required,
		Unit: unit, Pass: value >= required, Critical: critical,
	}
}

func recommend(v map[string]bool, fsc float64) []string {
	var out []string
	if !v[InitialGM] || !v[Area0to30] {
		out = append(out, "lower the centre of gravity: fill double-bottom ballast or move weights down")
	}
	if !v[Area30to40] || !v[MaxGZ] {
		out = append(out, "increase the righting lever at large angles: reduce high deck cargo")
	}
	if ok, given := v[Weather]; given && !ok {
		out = append(out, "reduce windage area or increase GM before sailing in beam wind")
	}
	if fsc > 0.3 {
		out = append(out, "press up or empty slack tanks to reduce free surface")
	}
	return out
}

// Area integrates GZ between two heel angles (degrees) with the trapezoidal
// rule and returns m·rad. Interval ends that fall between samples are
// interpolated.
func Area(c gzcurve.Curve, fromDeg, toDeg float64) float64 {
	if toDeg <= fromDeg {
		return 0
	}
	x, f := window(c, fromDeg, toDeg)
	return integrate.Trapezoidal(x, f)
}

// DynamicStability is the area under the curve from upright to the vanishing
// angle by Simpson's rule, in m·rad.
func DynamicStability(c gzcurve.Curve) float64 {
	if c.VanishingAngleDeg <= 0 {
		return 0
	}
	x, f := window(c, 0, c.VanishingAngleDeg)
	if len(x) < 3 {
		return integrate.Trapezoidal(x, f)
	}
	return integrate.Simpsons(x, f)
}

// window returns the samples inside [from,to] with interpolated ends, the
// angles converted to radians.
func window(c gzcurve.Curve, from, to float64) ([]float64, []float64) {
	x := []float64{from * deg}
	f := []float64{c.At(from)}
	for _, p := range c.Points {
		if p.AngleDeg > from && p.AngleDeg < to {
			x = append(x, p.AngleDeg*deg)
			f = append(f, p.GZM)
		}
	}
	x = append(x, to*deg)
	f = append(f, c.At(to))
	return x, f
}

func maxFrom(c gzcurve.Curve, fromDeg float64) float64 {
	best := c.At(fromDeg)
	for _, p := range c.Points {
		if p.AngleDeg >= fromDeg && p.GZM > best {
			best = p.GZM
		}
	}
	return best
}

type WindInput struct {
	MomentTM      float64 `json:"moment_tm,omitempty"`
	PressurePa    float64 `json:"pressure_pa,omitempty"`
	LateralAreaM2 float64 `json:"lateral_area_m2,omitempty"`
	LeverM        float64 `json:"lever_m,omitempty"`
	DisplacementT float64 `json:"displacement_t"`
	GMM           float64 `json:"gm_m"`
	HeelCapDeg    float64 `json:"heel_cap_deg,omitempty"`
}

type WindResult struct {
	MomentTM         float64  `json:"moment_tm"`
	RightingMomentTM float64  `json:"righting_moment_tm"`
	HeelDeg          float64  `json:"heel_deg"`
	CapDeg           float64  `json:"cap_deg"`
	Pass             bool     `json:"pass"`
	Notes            []string `json:"notes,omitempty"`
}

// Wind computes the steady heel under a beam wind, φ = atan(M_wind/(Δ·GM)).
// Without a moment, it is taken from pressure × lateral area × lever.
func Wind(in WindInput) (WindResult, error) {
	const op = "weather"
	var notes []string
	m := in.MomentTM
	if m == 0 {
		if !(in.PressurePa > 0 && in.LateralAreaM2 > 0 && in.LeverM > 0) {
			return WindResult{}, calcerr.New(calcerr.InvalidInput, op, "give a heeling moment or wind pressure, lateral area and lever")
		}
		// N·m to t·m
		m = in.PressurePa * in.LateralAreaM2 * in.LeverM / 9806.65
		notes = append(notes, "heeling moment derived from wind pressure")
	}
	righting := in.DisplacementT * in.GMM
	if !(righting > calcerr.Epsilon) {
		return WindResult{}, calcerr.New(calcerr.DegenerateEquilibrium, op, "no righting moment").
			With("displacement_t", in.DisplacementT).With("gm_m", in.GMM)
	}
	capDeg := in.HeelCapDeg
	if capDeg <= 0 {
		capDeg = DefaultThresholds().WeatherHeelCapDeg
	}
	heel := math.Atan(m/righting) / deg
	res := WindResult{
		MomentTM:         m,
		RightingMomentTM: righting,
		HeelDeg:          heel,
		CapDeg:           capDeg,
		Pass:             math.Abs(heel) <= capDeg,
		Notes:            notes,
	}
	if err := calcerr.Finite(calcerr.InvalidInput, op, "moment", m, "heel", heel); err != nil {
		return WindResult{}, err
	}
	return res, nil
}
