package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Keel/internal/auth"
	"Keel/internal/calc/scenario"
	"Keel/internal/config"
	"Keel/internal/metrics"
	"Keel/internal/vessel"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func server(t *testing.T) (http.Handler, string) {
	t.Helper()
	cfg := config.Config{TokenKey: "test-key", RateLimit: 1000, RateBurst: 1000, BatchLimit: 2, Calc: scenario.DefaultConstants()}
	r := mux.NewRouter()
	HandleList(r, deps{cfg: cfg, metrics: metrics.New(nil)})

	tok, _, err := (&auth.Authenv{JWTkey: []byte(cfg.TokenKey)}).IssueToken(1, "master")
	require.NoError(t, err)
	return CORS(r), tok
}

func TestCalcNeedsToken(t *testing.T) {
	h, _ := server(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/calc/scenario", strings.NewReader("{}")))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCalcHydrostatics(t *testing.T) {
	h, tok := server(t)
	body, _ := json.Marshal(vessel.LoadCase{Geometry: vessel.Geometry{
		LengthM: 150, BreadthM: 25, DepthM: 14, DraftM: 8, CB: 0.75, CWP: 0.85, DisplacementT: 25000,
	}})
	req := httptest.NewRequest("POST", "/api/calc/hydrostatics", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"km_m"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `keel_calc_requests_total{op="hydrostatics",status="ok"} 1`)
}

func TestPreflight(t *testing.T) {
	h, _ := server(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/api/calc/trim", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestListCorrectionRoute(t *testing.T) {
	h, tok := server(t)
	lc := vessel.LoadCase{
		Geometry: vessel.Geometry{LengthM: 150, BreadthM: 25, DepthM: 14, DraftM: 8, CB: 0.75, CWP: 0.85, DisplacementT: 25000},
		Weights:  []vessel.WeightItem{{ID: "lightship", WeightT: 24795, LCGM: 75, TCGM: 0.02, VCGM: 8}},
		Tanks: []vessel.Tank{
			{ID: "P", CapacityM3: 200, LevelPct: 50, LCGM: 60, TCGM: -4, VCGM: 1},
			{ID: "S", CapacityM3: 200, LevelPct: 50, LCGM: 60, TCGM: 4, VCGM: 1},
		},
		Correction: &vessel.CorrectionRequest{TankA: "P", TankB: "S"},
	}
	body, _ := json.Marshal(lc)
	req := httptest.NewRequest("POST", "/api/calc/list-correction", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"list_correction"`)
	assert.Contains(t, rec.Body.String(), `"from_tank":"S"`)
}
