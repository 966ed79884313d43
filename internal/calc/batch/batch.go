// Package batch evaluates many independent load cases in parallel.
package batch

import (
	"context"
	"errors"
	"runtime"

	"Keel/internal/calc/calcerr"
	"Keel/internal/calc/scenario"
	"Keel/internal/vessel"

	"golang.org/x/sync/errgroup"
)

type Input struct {
	Cases []vessel.LoadCase `json:"cases"`
	// Stage is an operation name ("scenario" when empty).
	Stage string `json:"stage,omitempty"`
}

// Item is the outcome of one load case. A failed case carries its error and,
// for a capsizing damage case, the partial output.
type Item struct {
	Index  int              `json:"index"`
	ID     string           `json:"id,omitempty"`
	Output *scenario.Output `json:"output,omitempty"`
	Error  *calcerr.Error   `json:"error,omitempty"`
}

type Result struct {
	Items     []Item `json:"items"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

// Run evaluates every case with at most limit running at once (GOMAXPROCS
// when limit <= 0). Failing cases do not stop the others; only a cancelled
// context does. Items keep the input order.
func Run(ctx context.Context, cases []vessel.LoadCase, c scenario.Constants, stages scenario.Stage, limit int) (Result, error) {
	if len(cases) == 0 {
		return Result{}, calcerr.New(calcerr.InvalidInput, "batch", "no load cases")
	}
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	items := make([]Item, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range cases {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i] = evaluate(i, cases[i], c, stages)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{Items: items}
	for _, it := range items {
		if it.Error != nil {
			res.Failed++
		} else {
			res.Succeeded++
		}
	}
	return res, nil
}

func evaluate(i int, lc vessel.LoadCase, c scenario.Constants, stages scenario.Stage) Item {
	it := Item{Index: i, ID: lc.ID}
	out, err := scenario.Run(lc, c, stages)
	if err == nil {
		it.Output = &out
		return it
	}
	var ce *calcerr.Error
	if !errors.As(err, &ce) {
		ce = &calcerr.Error{Kind: "InternalError", Msg: err.Error()}
	}
	it.Error = ce
	if out.Damage != nil {
		it.Output = &out
	}
	return it
}
