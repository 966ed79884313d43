package scenario

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Keel/internal/vessel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type response struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/calc/x", strings.NewReader(body)))
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func encode(t *testing.T, lc vessel.LoadCase) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(lc))
	return buf.String()
}

func TestHandlerOK(t *testing.T) {
	h := &Handler{Constants: DefaultConstants()}
	rec, resp := post(t, h.Calc(Equilibrium), encode(t, loadCase()))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)

	var out Output
	require.NoError(t, json.Unmarshal(resp.Result, &out))
	require.NotNil(t, out.Equilibrium)
	assert.Nil(t, out.Curve)
	assert.Greater(t, out.Equilibrium.GMM, 0.0)
}

func TestHandlerErrors(t *testing.T) {
	negGM := loadCase()
	negGM.Weights[1].VCGM = 30
	badGeom := loadCase()
	badGeom.Geometry.LengthM = -1

	tests := []struct {
		name string
		body string
		code int
		kind string
	}{
		{"bad json", "{", http.StatusBadRequest, "InvalidInputError"},
		{"bad geometry", encode(t, badGeom), http.StatusBadRequest, "InvalidGeometryError"},
		{"negative GM", encode(t, negGM), http.StatusUnprocessableEntity, "DegenerateEquilibriumError"},
	}
	h := &Handler{Constants: DefaultConstants()}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := post(t, h.Calc(All), tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.kind, resp.Error.Kind)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestHandlerCapsizeKeepsResult(t *testing.T) {
	lc := loadCase()
	lc.Damage = &vessel.DamageScenario{VolumeM3: 20000, Permeability: 1, FloodKGM: 20}
	h := &Handler{Constants: DefaultConstants()}
	rec, resp := post(t, h.Calc(Damage), encode(t, lc))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NegativeResidualGMError", resp.Error.Kind)
	var out Output
	require.NoError(t, json.Unmarshal(resp.Result, &out))
	require.NotNil(t, out.Damage)
	assert.Less(t, out.Damage.ResidualGMM, 0.0)
}

func TestHandlerListCorrection(t *testing.T) {
	lc := loadCase()
	lc.Weights[1].TCGM = 0.1
	lc.Correction = &vessel.CorrectionRequest{TankA: "DB1P", TankB: "DB1S"}
	h := &Handler{Constants: DefaultConstants()}
	rec, resp := post(t, h.Calc(ListCorrection), encode(t, lc))
	require.Equal(t, http.StatusOK, rec.Code)

	var out Output
	require.NoError(t, json.Unmarshal(resp.Result, &out))
	require.NotNil(t, out.Correction)
	assert.Equal(t, "DB1S", out.Correction.FromTank)

	lc.Correction.TankB = "nowhere"
	rec, resp = post(t, h.Calc(ListCorrection), encode(t, lc))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidInputError", resp.Error.Kind)
}
