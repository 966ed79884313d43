package gzcurve

import (
	"math"

	"Keel/internal/calc/calcerr"
	"Keel/internal/vessel"

	"gonum.org/v1/gonum/floats"
)

const (
	DefaultStepDeg = 5.0
	// MinStepDeg bounds the curve at 901 samples.
	MinStepDeg = 0.1
	// DefaultDeckEdgeCoeff scales the GZ reduction past deck-edge immersion.
	DefaultDeckEdgeCoeff = 0.3
	// DefaultRollCoeff is the C in T = C·B/√GM.
	DefaultRollCoeff = 0.8
	// SmallAngleLimitDeg is the heel up to which GZ = GM·sin φ is used.
	SmallAngleLimitDeg = 15.0
	MaxAngleDeg        = 90.0
)

type Input struct {
	GMM           float64         `json:"gm_m"`
	KMM           float64         `json:"km_m"`
	KGM           float64         `json:"kg_m"`
	DisplacementT float64         `json:"displacement_t,omitempty"`
	Geometry      vessel.Geometry `json:"geometry"`
	StepDeg       float64         `json:"step_deg,omitempty"`
	// DeckEdgeCoeff defaults to 0.3 when nil; 0 disables the reduction.
	DeckEdgeCoeff *float64        `json:"deck_edge_coeff,omitempty"`
	RollCoeff     float64         `json:"roll_coeff,omitempty"`
}

type Point struct {
	AngleDeg         float64 `json:"angle_deg"`
	GZM              float64 `json:"gz_m"`
	RightingMomentTM float64 `json:"righting_moment_tm"`
}

type Curve struct {
	Points            []Point  `json:"points"`
	GMM               float64  `json:"gm_m"`
	StepDeg           float64  `json:"step_deg"`
	DeckEdgeAngleDeg  float64  `json:"deck_edge_angle_deg"`
	MaxGZM            float64  `json:"max_gz_m"`
	MaxGZAngleDeg     float64  `json:"max_gz_angle_deg"`
	VanishingAngleDeg float64  `json:"vanishing_angle_deg"`
	RollPeriodS       float64  `json:"roll_period_s,omitempty"`
	Unstable          bool     `json:"unstable"`
	Warnings          []string `json:"warnings,omitempty"`
	Notes             []string `json:"notes,omitempty"`
}

// Generate samples the righting-arm curve from upright to 90°. The result
// depends only on the input, so it can be regenerated at will.
func Generate(in Input) (Curve, error) {
	const op = "gzcurve"
	g := in.Geometry
	if !(g.DraftM > 0) || !(g.BreadthM > 0) {
		return Curve{}, calcerr.New(calcerr.InvalidGeometry, op, "draft and breadth are needed for the deck-edge angle")
	}
	if err := calcerr.Finite(calcerr.InvalidInput, op, "gm", in.GMM, "km", in.KMM, "kg", in.KGM); err != nil {
		return Curve{}, err
	}

	var notes []string
	step := in.StepDeg
	if step > 0 && step < MinStepDeg {
		return Curve{}, calcerr.New(calcerr.InvalidInput, op, "angle step below %.1f deg", MinStepDeg).With("step_deg", step)
	}
	if !(step > 0 && step <= MaxAngleDeg) {
		if in.StepDeg != 0 {
			notes = append(notes, "angle step outside (0,90], using 5 deg")
		}
		step = DefaultStepDeg
	}
	coeff := DefaultDeckEdgeCoeff
	if in.DeckEdgeCoeff != nil {
		coeff = *in.DeckEdgeCoeff
	}
	if !(coeff >= 0 && coeff <= 1) {
		return Curve{}, calcerr.New(calcerr.InvalidInput, op, "deck-edge coefficient must be in [0,1]").With("deck_edge_coeff", coeff)
	}
	disp := in.DisplacementT
	if disp <= 0 {
		disp = g.DisplacementT
	}

	c := Curve{
		GMM:              in.GMM,
		StepDeg:          step,
		DeckEdgeAngleDeg: DeckEdgeAngle(g.DraftM, g.BreadthM),
		Notes:            notes,
	}
	for _, phi := range Angles(step) {
		gz := GZ(phi, in.GMM, in.KMM-in.KGM, c.DeckEdgeAngleDeg, coeff)
		c.Points = append(c.Points, Point{AngleDeg: phi, GZM: gz, RightingMomentTM: disp * gz})
	}

	c.MaxGZM, c.MaxGZAngleDeg = maxGZ(c.Points)
	c.VanishingAngleDeg = vanishing(c.Points)

	if in.GMM <= 0 {
		c.Unstable = true
		c.Warnings = append(c.Warnings, "negative or zero GM: the vessel is unstable in the upright condition")
	} else {
		roll := in.RollCoeff
		if roll <= 0 {
			roll = DefaultRollCoeff
		}
		c.RollPeriodS = roll * g.BreadthM / math.Sqrt(in.GMM)
	}
	if c.VanishingAngleDeg < 60 {
		c.Warnings = append(c.Warnings, "low vanishing angle: limited range of stability")
	}
	return c, nil
}

// GZ is the righting arm at heel phi (degrees). Up to 15° the metacentric
// approximation GM·sin φ applies; beyond it (KM−KG)·sin φ, reduced once the
// deck edge is immersed.
func GZ(phi, gm, kmMinusKG, deckEdgeDeg, coeff float64) float64 {
	s := math.Sin(phi * math.Pi / 180)
	if phi <= SmallAngleLimitDeg {
		return gm * s
	}
	gz := kmMinusKG * s
	if phi > deckEdgeDeg {
		r := (phi - deckEdgeDeg) / 90
		gz *= 1 - coeff*r*r
	}
	return gz
}

// DeckEdgeAngle is atan(T/(B/2)) in degrees.
func DeckEdgeAngle(draft, breadth float64) float64 {
	return math.Atan(draft/(breadth/2)) * 180 / math.Pi
}

// Angles returns 0, step, 2·step, … and always ends at 90.
func Angles(step float64) []float64 {
	n := int(math.Floor(MaxAngleDeg/step + 1e-9))
	out := make([]float64, 0, n+2)
	for i := 0; i <= n; i++ {
		out = append(out, float64(i)*step)
	}
	if last := out[len(out)-1]; MaxAngleDeg-last > 1e-9 {
		out = append(out, MaxAngleDeg)
	} else {
		out[len(out)-1] = MaxAngleDeg
	}
	return out
}

func maxGZ(pts []Point) (float64, float64) {
	i := floats.MaxIdx(gzs(pts))
	return pts[i].GZM, pts[i].AngleDeg
}

func gzs(pts []Point) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.GZM
	}
	return out
}

// vanishing returns the first sampled angle where GZ drops from positive to
// zero or below, or 90 if it never does.
func vanishing(pts []Point) float64 {
	for i := 1; i < len(pts); i++ {
		if pts[i-1].GZM > 0 && pts[i].GZM <= 0 {
			return pts[i].AngleDeg
		}
	}
	return MaxAngleDeg
}

// At linearly interpolates GZ at an arbitrary angle inside the sampled range.
func (c Curve) At(phi float64) float64 {
	pts := c.Points
	if len(pts) == 0 {
		return 0
	}
	if phi <= pts[0].AngleDeg {
		return pts[0].GZM
	}
	for i := 1; i < len(pts); i++ {
		if phi <= pts[i].AngleDeg {
			a, b := pts[i-1], pts[i]
			t := (phi - a.AngleDeg) / (b.AngleDeg - a.AngleDeg)
			return a.GZM + t*(b.GZM-a.GZM)
		}
	}
	return pts[len(pts)-1].GZM
}
