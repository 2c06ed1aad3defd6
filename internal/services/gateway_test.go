package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/territory-planner/server/internal/lib/territory"
)

func newTestGateway(t *testing.T) *runtime.ServeMux {
	t.Helper()
	conn := startBufconnServer(t, newTestService(t))
	mux := runtime.NewServeMux()
	require.NoError(t, RegisterTerritoryServiceHandler(context.Background(), mux, conn))
	return mux
}

func post(mux http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	mux.ServeHTTP(rec, req)
	return rec
}

func TestGateway_Assign(t *testing.T) {
	mux := newTestGateway(t)

	rec := post(mux, "/api/v1/territories/assign", `{
		"units": [
			{"id": 1, "centroid_lat": 52.5200, "centroid_lon": 13.4000, "weight": 3},
			{"id": 2, "centroid_lat": "52.5209", "centroid_lon": "13.4000"},
			{"id": 3, "centroid_lat": 52.5218, "centroid_lon": 13.4000, "weight": "abc"},
			{"id": 4, "centroid_lat": null, "centroid_lon": null}
		],
		"rep_ids": [10, 20]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var resp AssignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Territories, 2)
	assert.Equal(t, territory.NumberID("10"), resp.Territories[0].RepID)
	assert.InDelta(t, 6, resp.TotalWeight, 1e-9)
	assert.NotEmpty(t, resp.RunID)
}

func TestGateway_AssignKeepsIDForm(t *testing.T) {
	mux := newTestGateway(t)

	rec := post(mux, "/api/v1/territories/assign", `{
		"units": [
			{"id": "42", "centroid_lat": 52.5200, "centroid_lon": 13.4000},
			{"id": 43, "centroid_lat": 52.5209, "centroid_lon": 13.4000}
		],
		"rep_ids": ["7"]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var raw struct {
		Territories []struct {
			RepID   any   `json:"rep_id"`
			UnitIDs []any `json:"unit_ids"`
		} `json:"territories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Len(t, raw.Territories, 1)
	assert.Equal(t, "7", raw.Territories[0].RepID)
	assert.Equal(t, []any{"42", float64(43)}, raw.Territories[0].UnitIDs)
}

func TestGateway_Contains(t *testing.T) {
	mux := newTestGateway(t)

	rec := post(mux, "/api/v1/territories/contains", `{
		"lat": 52.505, "lon": 13.405,
		"polygon": "{\"type\":\"Polygon\",\"coordinates\":[[[13.40,52.50],[13.41,52.50],[13.41,52.51],[13.40,52.51],[13.40,52.50]]]}"
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"inside": true}`, rec.Body.String())
}

func TestGateway_KML(t *testing.T) {
	mux := newTestGateway(t)

	rec := post(mux, "/api/v1/territories/kml", `{
		"units": [{"id": "a", "centroid_lat": 52.52, "centroid_lon": 13.40}],
		"rep_ids": ["anna"]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, KMLContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<name>anna</name>")
}

func TestGateway_Errors(t *testing.T) {
	mux := newTestGateway(t)

	rec := post(mux, "/api/v1/territories/assign", `{"units": [], "rep_ids": ["a"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(mux, "/api/v1/territories/classify", `{"rep_id": "ghost", "lat": 52.5, "lon": 13.4}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = post(mux, "/api/v1/territories/assign", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/territories/assign", nil))
	assert.NotEqual(t, http.StatusOK, rec.Code)
}
