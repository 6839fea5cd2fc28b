package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/diacare-ai/readmission/pkg/common/models"
)

func newDashboardRouter(t *testing.T) (*mux.Router, *Service) {
	t.Helper()
	svc, _ := newTestService(t)
	router := mux.NewRouter()
	NewHTTPHandler(svc).Register(router)
	return router, svc
}

func getJSON(t *testing.T, router *mux.Router, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStatsEndpoint(t *testing.T) {
	router, svc := newDashboardRouter(t)
	appendRecords(t, svc, outcomeRecord("NO"), outcomeRecord("<30"))

	rec := getJSON(t, router, "/dashboard/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload models.StatsPayload
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Rows != 2 || payload.ReadmissionRate != 50 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestStatsEndpointEmptyStore(t *testing.T) {
	router, _ := newDashboardRouter(t)

	rec := getJSON(t, router, "/dashboard/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("empty store stats must still answer 200, got %d", rec.Code)
	}

	var payload models.StatsPayload
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Rows != 0 || payload.Message == "" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestChartEndpointNamedChart(t *testing.T) {
	router, svc := newDashboardRouter(t)
	appendRecords(t, svc, outcomeRecord("NO"), outcomeRecord("<30"))

	rec := getJSON(t, router, "/dashboard/chart?chart_type=readmission_by_diagnoses")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload models.ChartPayload
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.ChartType != ChartByDiagnoses || len(payload.Data) == 0 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestChartEndpointCustom(t *testing.T) {
	router, svc := newDashboardRouter(t)
	appendRecords(t, svc, outcomeRecord("NO"), outcomeRecord("<30"))

	rec := getJSON(t, router, "/dashboard/chart?chart_type=custom&feature=diabetesMed&chart_style=pie")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload models.ChartPayload
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.ChartType != "custom_pie" || payload.Style != "pie" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestChartEndpointEmptyStore(t *testing.T) {
	router, _ := newDashboardRouter(t)

	rec := getJSON(t, router, "/dashboard/chart?chart_type=readmission_by_diagnoses")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an empty store, got %d", rec.Code)
	}
}

func TestChartEndpointUnknownType(t *testing.T) {
	router, svc := newDashboardRouter(t)
	appendRecords(t, svc, outcomeRecord("NO"))

	rec := getJSON(t, router, "/dashboard/chart?chart_type=readmission_by_age")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["error"] == nil {
		t.Fatalf("expected an error message, got %v", payload)
	}
}

func TestChartEndpointMissingChartType(t *testing.T) {
	router, svc := newDashboardRouter(t)
	appendRecords(t, svc, outcomeRecord("NO"))

	rec := getJSON(t, router, "/dashboard/chart")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChartEndpointCustomWithoutFeature(t *testing.T) {
	router, svc := newDashboardRouter(t)
	appendRecords(t, svc, outcomeRecord("NO"))

	rec := getJSON(t, router, "/dashboard/chart?chart_type=custom")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChartsListEndpoint(t *testing.T) {
	router, _ := newDashboardRouter(t)

	rec := getJSON(t, router, "/dashboard/charts/list")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload models.ChartsListResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.AvailableCharts) != 4 {
		t.Fatalf("expected 4 chart descriptors, got %d", len(payload.AvailableCharts))
	}
	if payload.AvailableCharts[0].Type != ChartByDiagnoses {
		t.Fatalf("unexpected first descriptor %+v", payload.AvailableCharts[0])
	}
	for _, d := range payload.AvailableCharts {
		if d.Name == "" || d.Description == "" {
			t.Fatalf("descriptor missing name or description: %+v", d)
		}
	}
}
