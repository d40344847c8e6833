package handler_test

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	"github.com/visitlog/analytics-backend-go/internal/api"
	"github.com/visitlog/analytics-backend-go/internal/config"
	"github.com/visitlog/analytics-backend-go/internal/database"
	"github.com/visitlog/analytics-backend-go/internal/handler"
	"github.com/visitlog/analytics-backend-go/internal/models"
	"github.com/visitlog/analytics-backend-go/internal/repository"
	"github.com/visitlog/analytics-backend-go/internal/service"
	"github.com/visitlog/analytics-backend-go/internal/source"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	repo := repository.NewVisitRepository(db, time.UTC)
	ts, _ := time.Parse("2006-01-02T15:04", "2024-01-01T10:00")
	lat, lon := 48.2, 16.3
	if err := repo.ReplaceAll([]models.VisitRecord{
		{Timestamp: ts, IP: "1.2.3.4", Country: "US", Device: "mobile", Browser: "Chrome", Latitude: &lat, Longitude: &lon},
		{RawTimestamp: "garbage", Country: "AT", Device: "desktop", Browser: "Firefox"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	analyticsService := service.NewAnalyticsService(repo, 13, 50)
	refreshService := service.NewRefreshService(
		source.NewSheetClient("http://127.0.0.1:0", time.Second, time.UTC), repo)

	cfg := &config.Config{RateLimit: 1000, RateWindow: time.Minute}
	return api.SetupRouter(cfg, api.Handlers{
		Analytics: handler.NewAnalyticsHandler(analyticsService),
		Visits:    handler.NewVisitHandler(analyticsService),
		Refresh:   handler.NewRefreshHandler(refreshService),
	})
}

func doRequest(t *testing.T, router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, data interface{}) {
	t.Helper()

	var envelope struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Code != 0 {
		t.Fatalf("code: got %d (%s)", envelope.Code, envelope.Message)
	}
	if err := json.Unmarshal(envelope.Data, data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	w := doRequest(t, testRouter(t), http.MethodGet, "/health")
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", w.Code)
	}
}

func TestGetHourlyCountsEndpoint(t *testing.T) {
	w := doRequest(t, testRouter(t), http.MethodGet, "/api/v1/stats/hourly")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}

	var counts models.HourlyCounts
	decodeData(t, w, &counts)
	if len(counts) != 24 {
		t.Fatalf("len: got %d, want 24", len(counts))
	}
	if counts[10].Count != 1 {
		t.Errorf("hour 10: got %d, want 1", counts[10].Count)
	}
}

func TestGetBreakdownEndpoint(t *testing.T) {
	w := doRequest(t, testRouter(t), http.MethodGet, "/api/v1/stats/breakdown/country")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}

	var breakdown models.CategoryBreakdown
	decodeData(t, w, &breakdown)
	if len(breakdown) != 2 {
		t.Errorf("len: got %d, want 2", len(breakdown))
	}
}

func TestGetBreakdownUnknownDimension(t *testing.T) {
	w := doRequest(t, testRouter(t), http.MethodGet, "/api/v1/stats/breakdown/speed")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestGetVisitsEndpoint(t *testing.T) {
	w := doRequest(t, testRouter(t), http.MethodGet, "/api/v1/visits?country=US")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}

	var result models.VisitsResponse
	decodeData(t, w, &result)
	if result.Total != 1 {
		t.Errorf("Total: got %d, want 1", result.Total)
	}
}

func TestGetVisitsInvalidDate(t *testing.T) {
	w := doRequest(t, testRouter(t), http.MethodGet, "/api/v1/visits?startDate=01/02/2024")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestGetMapPointsEndpoint(t *testing.T) {
	w := doRequest(t, testRouter(t), http.MethodGet, "/api/v1/map/points")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}

	var result struct {
		Points models.GeoPoints `json:"points"`
		Count  int              `json:"count"`
	}
	decodeData(t, w, &result)
	if result.Count != 1 {
		t.Errorf("count: got %d, want 1", result.Count)
	}
}

func TestRefreshEndpointReportsFetchFailure(t *testing.T) {
	w := doRequest(t, testRouter(t), http.MethodPost, "/api/v1/refresh")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", w.Code)
	}
}
