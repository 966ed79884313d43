package scenario

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"Keel/internal/calc/calcerr"
	"Keel/internal/log"
	"Keel/internal/metrics"
)

const maxBody = 4 << 20

type Handler struct {
	Constants Constants
	Metrics   *metrics.Metrics
}

type envelope struct {
	Status string         `json:"status"`
	Result any            `json:"result,omitempty"`
	Error  *calcerr.Error `json:"error,omitempty"`
}

// Calc returns the endpoint for one stage. The body is a load case; the
// response is the status envelope with the requested part of the output.
func (h *Handler) Calc(stage Stage) http.HandlerFunc {
	op := stage.String()
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var input Input
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			ce := calcerr.New(calcerr.InvalidInput, op, "invalid request payload: %v", err)
			h.Metrics.Observe(op, string(ce.Kind), time.Since(start))
			Write(w, nil, ce)
			return
		}
		out, err := Run(input, h.Constants, stage)
		h.Metrics.Observe(op, string(calcerr.KindOf(err)), time.Since(start))
		if err != nil {
			log.Debugw("calculation failed", "op", op, "case", input.ID, "error", err)
			// a capsizing damage case still returns its numbers
			if out.Damage != nil {
				Write(w, out, err)
				return
			}
			Write(w, nil, err)
			return
		}
		Write(w, out, nil)
	}
}

// Write encodes the result envelope with a status code derived from the error kind.
func Write(w http.ResponseWriter, result any, err error) {
	env := envelope{Status: "ok", Result: result}
	code := http.StatusOK
	if err != nil {
		var ce *calcerr.Error
		if !errors.As(err, &ce) {
			ce = &calcerr.Error{Kind: "InternalError", Msg: err.Error()}
		}
		env.Status = "error"
		env.Error = ce
		code = StatusFor(ce.Kind)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Errorw("encoding response", "error", err)
	}
}

func StatusFor(k calcerr.Kind) int {
	switch k {
	case calcerr.InvalidInput, calcerr.InvalidGeometry, calcerr.EmptyLoadCase:
		return http.StatusBadRequest
	case calcerr.DegenerateEquilibrium, calcerr.CapacityExceeded, calcerr.NegativeResidualGM:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
