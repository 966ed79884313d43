package batch

import (
	"encoding/json"
	"net/http"
	"time"

	"Keel/internal/calc/calcerr"
	"Keel/internal/calc/scenario"
	"Keel/internal/log"
	"Keel/internal/metrics"
)

const maxBody = 32 << 20

type Handler struct {
	Constants scenario.Constants
	Metrics   *metrics.Metrics
	// Limit bounds the parallel evaluations of one request.
	Limit int
	// MaxCases rejects larger batches; zero means no cap.
	MaxCases int
}

func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var input Input
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		scenario.Write(w, nil, calcerr.New(calcerr.InvalidInput, "batch", "invalid request payload: %v", err))
		return
	}
	stage := scenario.All
	if input.Stage != "" {
		s, ok := scenario.ParseStage(input.Stage)
		if !ok {
			scenario.Write(w, nil, calcerr.New(calcerr.InvalidInput, "batch", "unknown stage %q", input.Stage))
			return
		}
		stage = s
	}
	if h.MaxCases > 0 && len(input.Cases) > h.MaxCases {
		scenario.Write(w, nil, calcerr.New(calcerr.InvalidInput, "batch", "%d load cases, at most %d allowed", len(input.Cases), h.MaxCases))
		return
	}

	res, err := Run(r.Context(), input.Cases, h.Constants, stage, h.Limit)
	h.Metrics.Observe("batch", string(calcerr.KindOf(err)), time.Since(start))
	if err != nil {
		scenario.Write(w, nil, err)
		return
	}
	h.Metrics.ObserveBatch(len(input.Cases))
	log.Debugw("batch evaluated", "cases", len(input.Cases), "failed", res.Failed, "duration", time.Since(start))
	scenario.Write(w, res, nil)
}
