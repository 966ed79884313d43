// Package scenario runs a load case through the stability pipeline:
// hydrostatics, weights, equilibrium, righting-arm curve, compliance, and the
// optional damage, transfer and list-correction cases.
package scenario

import (
	"errors"
	"fmt"

	"Keel/internal/calc/calcerr"
	"Keel/internal/calc/compliance"
	"Keel/internal/calc/damage"
	"Keel/internal/calc/gzcurve"
	"Keel/internal/calc/hydrostatics"
	"Keel/internal/calc/transfer"
	"Keel/internal/calc/trim"
	"Keel/internal/calc/weights"
	"Keel/internal/vessel"
)

// Constants are the engine settings that are not part of a load case.
type Constants struct {
	Density       float64               `json:"density" mapstructure:"density"`
	CurveStepDeg  float64               `json:"curve_step_deg" mapstructure:"curve_step_deg"`
	DeckEdgeCoeff float64               `json:"deck_edge_coeff" mapstructure:"deck_edge_coeff"`
	RollCoeff     float64               `json:"roll_coeff" mapstructure:"roll_coeff"`
	Thresholds    compliance.Thresholds `json:"thresholds" mapstructure:"thresholds"`
}

func DefaultConstants() Constants {
	return Constants{
		Density:       vessel.SeawaterDensity,
		CurveStepDeg:  gzcurve.DefaultStepDeg,
		DeckEdgeCoeff: gzcurve.DefaultDeckEdgeCoeff,
		RollCoeff:     gzcurve.DefaultRollCoeff,
		Thresholds:    compliance.DefaultThresholds(),
	}
}

// Stage selects which results a run returns. Stages a result depends on are
// computed anyway but left out of the output.
type Stage uint

const (
	Hydrostatics Stage = 1 << iota
	Equilibrium
	Curve
	Compliance
	Damage
	Transfer
	ListCorrection

	All = Hydrostatics | Equilibrium | Curve | Compliance | Damage | Transfer | ListCorrection
)

var stageNames = map[Stage]string{
	Hydrostatics:   "hydrostatics",
	Equilibrium:    "trim",
	Curve:          "curve",
	Compliance:     "compliance",
	Damage:         "damage",
	Transfer:       "transfer",
	ListCorrection: "list-correction",
	All:            "scenario",
}

func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return "stages"
}

// ParseStage maps an operation name to its stage.
func ParseStage(name string) (Stage, bool) {
	for s, n := range stageNames {
		if n == name {
			return s, true
		}
	}
	return 0, false
}

type Input = vessel.LoadCase

type Output struct {
	Hydrostatics *hydrostatics.State    `json:"hydrostatics,omitempty"`
	Aggregate    *weights.Result        `json:"aggregate,omitempty"`
	Equilibrium  *trim.Result           `json:"equilibrium,omitempty"`
	Curve        *gzcurve.Curve         `json:"curve,omitempty"`
	Weather      *compliance.WindResult `json:"weather,omitempty"`
	Compliance   *compliance.Result     `json:"compliance,omitempty"`
	Damage       *damage.Result         `json:"damage,omitempty"`
	Transfer     *transfer.Result       `json:"transfer,omitempty"`
	Correction   *transfer.Correction   `json:"list_correction,omitempty"`
	Warnings     []string               `json:"warnings,omitempty"`
	Notes        []string               `json:"notes,omitempty"`
}

// Run evaluates the requested stages of one load case. The load case is not
// modified. On a NegativeResidualGM failure the output still carries the
// damage result next to the error.
func Run(lc Input, c Constants, stages Stage) (Output, error) {
	var out Output
	if stages == 0 {
		stages = All
	}
	if err := lc.Validate(); err != nil {
		return out, err
	}
	g := lc.Geometry
	if g.Density <= 0 && c.Density > 0 && c.Density != vessel.SeawaterDensity {
		g.Density = c.Density
		out.note("water density taken from configuration")
	}

	h, err := hydrostatics.Calculate(g)
	if err != nil {
		return out, err
	}
	out.note(h.Notes...)
	if stages&Hydrostatics != 0 {
		out.Hydrostatics = &h
	}
	if stages == Hydrostatics {
		return out, nil
	}

	agg, err := weights.Aggregate(weights.Input{Items: lc.Weights, Tanks: lc.Tanks, DisplacementT: h.DisplacementT})
	if err != nil {
		return out, err
	}
	out.note(agg.Notes...)

	if stages&Transfer != 0 && lc.Transfer != nil {
		tr, err := transfer.Plan(transfer.Input{
			Hydrostatics: h, Items: lc.Weights, Tanks: lc.Tanks, Request: *lc.Transfer, Drafts: lc.Drafts,
		})
		if err != nil {
			return out, err
		}
		out.Transfer = &tr
		out.warn(tr.Warnings...)
		out.note(tr.Notes...)
	} else if stages == Transfer {
		return out, calcerr.New(calcerr.InvalidInput, "transfer", "load case has no transfer request")
	}
	if stages&ListCorrection != 0 && lc.Correction != nil {
		c, err := transfer.ListCorrection(agg, lc.Tanks, lc.Correction.TankA, lc.Correction.TankB)
		if err != nil {
			return out, err
		}
		out.Correction = &c
		if !c.Feasible {
			out.warn(fmt.Sprintf("list correction needs %.1f m3, more than tanks %s and %s allow", c.VolumeM3, c.FromTank, c.ToTank))
		}
	} else if stages == ListCorrection {
		return out, calcerr.New(calcerr.InvalidInput, "list correction", "load case names no tanks for the list correction")
	}
	if stages&^(Hydrostatics|Transfer|ListCorrection) == 0 {
		return out, nil
	}

	eq, err := trim.Solve(trim.Input{Hydrostatics: h, Weights: agg, Change: lc.Change, Shift: lc.Shift, Drafts: lc.Drafts})
	if err != nil {
		return out, err
	}
	out.note(eq.Notes...)
	if stages&Equilibrium != 0 {
		out.Aggregate = &agg
		out.Equilibrium = &eq
	}

	if stages&(Curve|Compliance) != 0 {
		step := lc.Options.CurveStepDeg
		if step == 0 {
			step = c.CurveStepDeg
		}
		// fluid KG, so that KM − KG is the GM the equilibrium found
		kg := eq.KGM + eq.FSCM
		curveGeom := g
		curveGeom.DraftM = eq.MeanDraftM
		curve, err := gzcurve.Generate(gzcurve.Input{
			GMM: eq.GMM, KMM: h.KMM, KGM: kg, DisplacementT: eq.DisplacementT, Geometry: curveGeom,
			StepDeg: step, DeckEdgeCoeff: &c.DeckEdgeCoeff, RollCoeff: c.RollCoeff,
		})
		if err != nil {
			return out, err
		}
		out.note(curve.Notes...)
		out.warn(curve.Warnings...)
		if stages&Curve != 0 {
			out.Curve = &curve
		}

		if stages&Compliance != 0 {
			var weather *compliance.WindResult
			if lc.Wind != nil {
				capDeg := lc.Wind.HeelCapDeg
				if capDeg <= 0 {
					capDeg = c.Thresholds.WeatherHeelCapDeg
				}
				w, err := compliance.Wind(compliance.WindInput{
					MomentTM: lc.Wind.MomentTM, PressurePa: lc.Wind.PressurePa,
					LateralAreaM2: lc.Wind.LateralAreaM2, LeverM: lc.Wind.LeverM,
					DisplacementT: eq.DisplacementT, GMM: eq.GMM, HeelCapDeg: capDeg,
				})
				if err != nil {
					return out, err
				}
				out.note(w.Notes...)
				weather = &w
				out.Weather = &w
			}
			th := c.Thresholds
			cr, err := compliance.Evaluate(compliance.Input{
				Curve: curve, GMM: eq.GMM, FSCM: eq.FSCM, Weather: weather, Thresholds: &th,
			})
			if err != nil {
				return out, err
			}
			out.warn(cr.Warnings...)
			out.Compliance = &cr
		}
	}

	if stages&Damage != 0 && lc.Damage != nil {
		d, err := damage.Evaluate(*lc.Damage, damage.Base{
			DisplacementT: eq.DisplacementT,
			KGM:           eq.KGM + eq.FSCM,
			KMM:           h.KMM,
			GMM:           eq.GMM,
			DraftM:        eq.MeanDraftM,
			BreadthM:      g.BreadthM,
			TPC:           h.TPC,
		})
		if err != nil && !errors.Is(err, calcerr.ErrNegativeResidualGM) {
			return out, err
		}
		out.Damage = &d
		out.warn(d.Warnings...)
		out.note(d.Notes...)
		if err != nil {
			return out, err
		}
	} else if stages == Damage {
		return out, calcerr.New(calcerr.InvalidInput, "damage", "load case has no damage scenario")
	}
	return out, nil
}

func (o *Output) note(s ...string) { o.Notes = append(o.Notes, s...) }

func (o *Output) warn(s ...string) { o.Warnings = append(o.Warnings, s...) }
