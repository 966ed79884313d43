package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"Keel/internal/calc/calcerr"
	"Keel/internal/calc/scenario"
	"Keel/internal/log"
	"Keel/internal/metrics"
)

const maxBody = 4 << 20

type Handler struct {
	Constants scenario.Constants
	Metrics   *metrics.Metrics
}

// Generate runs the whole pipeline on the posted load case and returns the
// booklet. A case that capsizes after damage is still reported.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	const op = "report"
	start := time.Now()
	var input Input
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		ce := calcerr.New(calcerr.InvalidInput, op, "invalid request payload: %v", err)
		h.Metrics.Observe(op, string(ce.Kind), time.Since(start))
		scenario.Write(w, nil, ce)
		return
	}
	out, err := scenario.Run(input.LoadCase, h.Constants, scenario.All)
	h.Metrics.Observe(op, string(calcerr.KindOf(err)), time.Since(start))
	if err != nil && !errors.Is(err, calcerr.ErrNegativeResidualGM) {
		scenario.Write(w, nil, err)
		return
	}

	var buf bytes.Buffer
	if err := Render(&buf, input, out, time.Now()); err != nil {
		log.Errorw("rendering report", "case", input.LoadCase.ID, "error", err)
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"stability-report.pdf\"")
	w.Write(buf.Bytes())
}
