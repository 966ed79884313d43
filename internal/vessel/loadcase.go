package vessel

import (
	"math"

	"Keel/internal/calc/calcerr"
)

// LoadCase is one loading snapshot: the hull, everything aboard, and the
// optional what-if requests evaluated against it. Calculations never modify a
// LoadCase; a changed condition is a new LoadCase.
type LoadCase struct {
	ID         string             `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string             `json:"name,omitempty" yaml:"name,omitempty"`
	Geometry   Geometry           `json:"geometry" yaml:"geometry"`
	Weights    []WeightItem       `json:"weights" yaml:"weights"`
	Tanks      []Tank             `json:"tanks" yaml:"tanks"`
	Drafts     *Drafts            `json:"drafts,omitempty" yaml:"drafts,omitempty"`
	Change     *WeightChange      `json:"change,omitempty" yaml:"change,omitempty"`
	Shift      *WeightShift       `json:"shift,omitempty" yaml:"shift,omitempty"`
	Damage     *DamageScenario    `json:"damage,omitempty" yaml:"damage,omitempty"`
	Transfer   *TransferRequest   `json:"transfer,omitempty" yaml:"transfer,omitempty"`
	// Correction asks for the transfer between two tanks that removes the list.
	Correction *CorrectionRequest `json:"list_correction,omitempty" yaml:"list_correction,omitempty"`
	Wind       *WindLoad          `json:"wind,omitempty" yaml:"wind,omitempty"`
	Options    Options            `json:"options,omitempty" yaml:"options,omitempty"`
}

// Validate checks every record in the load case before any formula runs.
func (lc LoadCase) Validate() error {
	if err := lc.Geometry.Validate(); err != nil {
		return err
	}
	for _, w := range lc.Weights {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	seen := make(map[string]bool, len(lc.Tanks))
	for _, t := range lc.Tanks {
		if err := t.Validate(); err != nil {
			return err
		}
		if t.ID != "" && seen[t.ID] {
			return calcerr.New(calcerr.InvalidInput, "load case", "duplicate tank id %q", t.ID)
		}
		seen[t.ID] = true
	}
	if lc.Drafts != nil {
		if err := lc.Drafts.Validate(); err != nil {
			return err
		}
	}
	if lc.Change != nil && math.IsNaN(lc.Change.WeightT) {
		return calcerr.New(calcerr.InvalidInput, "load case", "weight change is not a number")
	}
	if lc.Damage != nil {
		if err := lc.Damage.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Drafts are observed end drafts. Zero values mean "even keel at the geometry draft".
type Drafts struct {
	AftM float64 `json:"aft_m" yaml:"aft_m"`
	FwdM float64 `json:"fwd_m" yaml:"fwd_m"`
	MidM float64 `json:"mid_m,omitempty" yaml:"mid_m,omitempty"`
}

func (d Drafts) Validate() error {
	if !(d.AftM >= 0 && d.FwdM >= 0 && d.MidM >= 0) {
		return calcerr.New(calcerr.InvalidInput, "drafts", "drafts must not be negative").
			With("aft_m", d.AftM).With("fwd_m", d.FwdM).With("mid_m", d.MidM)
	}
	return nil
}

// Resolve fills zero end drafts with the given draft.
func (d Drafts) Resolve(draft float64) Drafts {
	if d.AftM == 0 {
		d.AftM = draft
	}
	if d.FwdM == 0 {
		d.FwdM = draft
	}
	return d
}

// WeightChange loads (positive) or discharges (negative) a weight at a position.
type WeightChange struct {
	WeightT float64 `json:"weight_t" yaml:"weight_t"`
	LCGM    float64 `json:"lcg_m" yaml:"lcg_m"`
	TCGM    float64 `json:"tcg_m" yaml:"tcg_m"`
	VCGM    float64 `json:"vcg_m" yaml:"vcg_m"`
}

// WeightShift moves a weight already aboard from one position to another.
type WeightShift struct {
	WeightT  float64 `json:"weight_t" yaml:"weight_t"`
	FromLCGM float64 `json:"from_lcg_m" yaml:"from_lcg_m"`
	ToLCGM   float64 `json:"to_lcg_m" yaml:"to_lcg_m"`
	FromTCGM float64 `json:"from_tcg_m,omitempty" yaml:"from_tcg_m,omitempty"`
	ToTCGM   float64 `json:"to_tcg_m,omitempty" yaml:"to_tcg_m,omitempty"`
	FromVCGM float64 `json:"from_vcg_m,omitempty" yaml:"from_vcg_m,omitempty"`
	ToVCGM   float64 `json:"to_vcg_m,omitempty" yaml:"to_vcg_m,omitempty"`
}

type DamageScenario struct {
	Compartment         string  `json:"compartment,omitempty" yaml:"compartment,omitempty"`
	VolumeM3            float64 `json:"volume_m3" yaml:"volume_m3"`
	Permeability        float64 `json:"permeability" yaml:"permeability"`
	Density             float64 `json:"density,omitempty" yaml:"density,omitempty"`
	FloodKGM            float64 `json:"flood_kg_m" yaml:"flood_kg_m"`
	FloodTCGM           float64 `json:"flood_tcg_m,omitempty" yaml:"flood_tcg_m,omitempty"`
	FloodingMomentTM    float64 `json:"flooding_moment_tm,omitempty" yaml:"flooding_moment_tm,omitempty"`
	VentHeightM         float64 `json:"vent_height_m" yaml:"vent_height_m"`
	CrossFloodRateM3Min float64 `json:"cross_flood_rate_m3min,omitempty" yaml:"cross_flood_rate_m3min,omitempty"`
}

func (d DamageScenario) Validate() error {
	const op = "damage"
	switch {
	case !(d.VolumeM3 > 0):
		return calcerr.New(calcerr.InvalidInput, op, "compartment volume must be positive").With("volume_m3", d.VolumeM3)
	case !(d.Permeability > 0 && d.Permeability <= 1):
		return calcerr.New(calcerr.InvalidInput, op, "permeability must be in (0,1]").With("permeability", d.Permeability)
	case d.Density < 0 || d.CrossFloodRateM3Min < 0 || d.FloodKGM < 0:
		return calcerr.New(calcerr.InvalidInput, op, "density, KG and cross-flooding rate must not be negative")
	}
	return nil
}

func (d DamageScenario) Rho() float64 {
	if d.Density > 0 {
		return d.Density
	}
	return SeawaterDensity
}

type CorrectionRequest struct {
	TankA string `json:"tank_a" yaml:"tank_a"`
	TankB string `json:"tank_b" yaml:"tank_b"`
}

type TransferRequest struct {
	FromTank string  `json:"from_tank" yaml:"from_tank"`
	ToTank   string  `json:"to_tank" yaml:"to_tank"`
	VolumeM3 float64 `json:"volume_m3" yaml:"volume_m3"`
}

// WindLoad describes the steady beam wind for the weather criterion. Either
// the heeling moment is given directly, or it is derived from pressure, lateral
// area and lever.
type WindLoad struct {
	MomentTM      float64 `json:"moment_tm,omitempty" yaml:"moment_tm,omitempty"`
	PressurePa    float64 `json:"pressure_pa,omitempty" yaml:"pressure_pa,omitempty"`
	LateralAreaM2 float64 `json:"lateral_area_m2,omitempty" yaml:"lateral_area_m2,omitempty"`
	LeverM        float64 `json:"lever_m,omitempty" yaml:"lever_m,omitempty"`
	HeelCapDeg    float64 `json:"heel_cap_deg,omitempty" yaml:"heel_cap_deg,omitempty"`
}

type Options struct {
	CurveStepDeg float64 `json:"curve_step_deg,omitempty" yaml:"curve_step_deg,omitempty"`
}
