// Package vessel holds the input records shared by the calculation packages:
// hull geometry, weight items, tanks and the load case that groups them.
//
// Lengths are metres measured from the aft perpendicular (longitudinal), the
// centreline (transverse, starboard positive) and the baseline (vertical).
// Weights are tonnes, volumes cubic metres, densities t/m³.
package vessel

import (
	"Keel/internal/calc/calcerr"
)

// SeawaterDensity is used whenever a record leaves its density at zero.
const SeawaterDensity = 1.025

type Geometry struct {
	LengthM       float64 `json:"length_m" yaml:"length_m"`
	BreadthM      float64 `json:"breadth_m" yaml:"breadth_m"`
	DepthM        float64 `json:"depth_m,omitempty" yaml:"depth_m,omitempty"`
	DraftM        float64 `json:"draft_m" yaml:"draft_m"`
	CB            float64 `json:"cb" yaml:"cb"`
	CWP           float64 `json:"cwp" yaml:"cwp"`
	DisplacementT float64 `json:"displacement_t" yaml:"displacement_t"`
	Density       float64 `json:"density,omitempty" yaml:"density,omitempty"`
	LCFM          float64 `json:"lcf_m,omitempty" yaml:"lcf_m,omitempty"`
	LCBM          float64 `json:"lcb_m,omitempty" yaml:"lcb_m,omitempty"`
}

// Validate checks the hull invariants: L, B, T and Δ positive, CB and CWP in (0,1].
func (g Geometry) Validate() error {
	const op = "geometry"
	switch {
	case !(g.LengthM > 0):
		return calcerr.New(calcerr.InvalidGeometry, op, "length must be positive").With("length_m", g.LengthM)
	case !(g.BreadthM > 0):
		return calcerr.New(calcerr.InvalidGeometry, op, "breadth must be positive").With("breadth_m", g.BreadthM)
	case !(g.DraftM > 0):
		return calcerr.New(calcerr.InvalidGeometry, op, "draft must be positive").With("draft_m", g.DraftM)
	case !(g.DisplacementT > 0):
		return calcerr.New(calcerr.InvalidGeometry, op, "displacement must be positive").With("displacement_t", g.DisplacementT)
	case !(g.CB > 0 && g.CB <= 1):
		return calcerr.New(calcerr.InvalidGeometry, op, "block coefficient must be in (0,1]").With("cb", g.CB)
	case !(g.CWP > 0 && g.CWP <= 1):
		return calcerr.New(calcerr.InvalidGeometry, op, "waterplane coefficient must be in (0,1]").With("cwp", g.CWP)
	case g.DepthM < 0:
		return calcerr.New(calcerr.InvalidGeometry, op, "depth must not be negative").With("depth_m", g.DepthM)
	case g.Density < 0:
		return calcerr.New(calcerr.InvalidGeometry, op, "density must not be negative").With("density", g.Density)
	case g.LCFM < 0 || g.LCFM > g.LengthM:
		return calcerr.New(calcerr.InvalidGeometry, op, "LCF must lie between the perpendiculars").With("lcf_m", g.LCFM)
	case g.LCBM < 0 || g.LCBM > g.LengthM:
		return calcerr.New(calcerr.InvalidGeometry, op, "LCB must lie between the perpendiculars").With("lcb_m", g.LCBM)
	}
	return nil
}

// Rho returns the water density, defaulting to seawater.
func (g Geometry) Rho() float64 {
	if g.Density > 0 {
		return g.Density
	}
	return SeawaterDensity
}

// LCF returns the longitudinal centre of flotation, amidships when not given.
func (g Geometry) LCF() float64 {
	if g.LCFM > 0 {
		return g.LCFM
	}
	return g.LengthM / 2
}

func (g Geometry) LCB() float64 {
	if g.LCBM > 0 {
		return g.LCBM
	}
	return g.LengthM / 2
}

type WeightItem struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name,omitempty" yaml:"name,omitempty"`
	Kind    string  `json:"kind,omitempty" yaml:"kind,omitempty"`
	WeightT float64 `json:"weight_t" yaml:"weight_t"`
	LCGM    float64 `json:"lcg_m" yaml:"lcg_m"`
	TCGM    float64 `json:"tcg_m" yaml:"tcg_m"`
	VCGM    float64 `json:"vcg_m" yaml:"vcg_m"`
}

func (w WeightItem) Validate() error {
	if !(w.WeightT >= 0) {
		return calcerr.New(calcerr.InvalidInput, "weight item", "item %q has negative weight", w.ID).With("weight_t", w.WeightT)
	}
	return nil
}

type Tank struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name,omitempty" yaml:"name,omitempty"`
	Kind        string  `json:"kind,omitempty" yaml:"kind,omitempty"`
	CapacityM3  float64 `json:"capacity_m3" yaml:"capacity_m3"`
	LevelPct    float64 `json:"level_pct" yaml:"level_pct"`
	LCGM        float64 `json:"lcg_m" yaml:"lcg_m"`
	TCGM        float64 `json:"tcg_m" yaml:"tcg_m"`
	VCGM        float64 `json:"vcg_m" yaml:"vcg_m"`
	PumpRateM3H float64 `json:"pump_rate_m3h,omitempty" yaml:"pump_rate_m3h,omitempty"`
	Density     float64 `json:"density,omitempty" yaml:"density,omitempty"`
	LengthM     float64 `json:"length_m,omitempty" yaml:"length_m,omitempty"`
	BreadthM    float64 `json:"breadth_m,omitempty" yaml:"breadth_m,omitempty"`
	InertiaM4   float64 `json:"inertia_m4,omitempty" yaml:"inertia_m4,omitempty"`
}

func (t Tank) Validate() error {
	const op = "tank"
	switch {
	case !(t.CapacityM3 >= 0):
		return calcerr.New(calcerr.InvalidInput, op, "tank %q has negative capacity", t.ID).With("capacity_m3", t.CapacityM3)
	case !(t.LevelPct >= 0 && t.LevelPct <= 100):
		return calcerr.New(calcerr.InvalidInput, op, "tank %q level must be within 0..100%%", t.ID).With("level_pct", t.LevelPct)
	case t.Density < 0 || t.PumpRateM3H < 0 || t.LengthM < 0 || t.BreadthM < 0 || t.InertiaM4 < 0:
		return calcerr.New(calcerr.InvalidInput, op, "tank %q has a negative dimension", t.ID)
	}
	return nil
}

func (t Tank) Rho() float64 {
	if t.Density > 0 {
		return t.Density
	}
	return SeawaterDensity
}

// VolumeM3 is the liquid volume at the current level.
func (t Tank) VolumeM3() float64 { return t.CapacityM3 * t.LevelPct / 100 }

func (t Tank) WeightT() float64 { return t.VolumeM3() * t.Rho() }

// RemainingM3 is the volume that can still be pumped in.
func (t Tank) RemainingM3() float64 { return t.CapacityM3 - t.VolumeM3() }

// Slack reports whether the tank has a free surface (strictly between 5% and 95% full).
func (t Tank) Slack() bool { return t.LevelPct > 5 && t.LevelPct < 95 }

// SurfaceInertia is the transverse second moment of the free surface: the
// supplied exact value, otherwise the rectangular l·b³/12. Zero when unknown.
func (t Tank) SurfaceInertia() float64 {
	if t.InertiaM4 > 0 {
		return t.InertiaM4
	}
	return t.LengthM * t.BreadthM * t.BreadthM * t.BreadthM / 12
}

// FindTank returns the index of the tank with the given id, or -1.
func FindTank(tanks []Tank, id string) int {
	for i := range tanks {
		if tanks[i].ID == id {
			return i
		}
	}
	return -1
}
