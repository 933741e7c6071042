package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MouseMan32/PokHo/pkg/region"
	"github.com/MouseMan32/PokHo/pkg/saves"
	"github.com/MouseMan32/PokHo/pkg/species"
	"github.com/MouseMan32/PokHo/pkg/storage"
	"github.com/MouseMan32/PokHo/pkg/store"
)

// setupTestRouter stands up the full routed stack over temp stores.
func setupTestRouter(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "pokho_router_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	blobs, err := storage.NewBlobStore(filepath.Join(tmpDir, "blobs"))
	if err != nil {
		t.Fatalf("Failed to open blob store: %v", err)
	}
	t.Cleanup(func() { blobs.Close() })

	meta, err := store.NewMetaStore(store.MetaStoreConfig{
		DataDir:       filepath.Join(tmpDir, "meta"),
		FsyncInterval: 0,
	})
	if err != nil {
		t.Fatalf("Failed to create meta store: %v", err)
	}
	if _, err := meta.Open(); err != nil {
		t.Fatalf("Failed to open meta store: %v", err)
	}
	t.Cleanup(func() { meta.Close() })

	svc := saves.NewService(blobs, meta, region.DefaultScanParams())
	resolver := species.NewResolver(species.Config{Offline: true}, meta)

	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	hub := NewEventHub()
	hub.Start()

	server := NewServer(svc, resolver, ServerConfig{Port: 8080, APIKey: "test-key"}, metrics, hub)
	ts := httptest.NewServer(NewRouter(server, registry))
	t.Cleanup(ts.Close)

	return ts, server
}

func TestRouter_Auth(t *testing.T) {
	ts, _ := setupTestRouter(t)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{
			name:           "missing key",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong key",
			header:         "bad-key",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "valid key",
			header:         "test-key",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest("GET", ts.URL+"/api/v1/health", nil)
			if err != nil {
				t.Fatalf("Failed to build request: %v", err)
			}
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}

			resp, err := ts.Client().Do(req)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			resp.Body.Close()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, resp.StatusCode)
			}
		})
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	ts, _ := setupTestRouter(t)

	// An instrumented request first, so there is something to scrape
	req, err := http.NewRequest("GET", ts.URL+"/api/v1/health", nil)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("X-API-Key", "test-key")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("Health request failed: %v", err)
	}
	resp.Body.Close()

	resp, err = ts.Client().Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("Metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read metrics body: %v", err)
	}
	if !strings.Contains(string(body), "pokho_http_requests_total") {
		t.Error("Expected pokho_http_requests_total in metrics output")
	}
	if !strings.Contains(string(body), "pokho_health_checks_total") {
		t.Error("Expected pokho_health_checks_total in metrics output")
	}
}

func TestRouter_SwaggerJSON(t *testing.T) {
	ts, _ := setupTestRouter(t)

	resp, err := ts.Client().Get(ts.URL + "/swagger/swagger.json")
	if err != nil {
		t.Fatalf("Swagger request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read swagger body: %v", err)
	}
	if !json.Valid(body) {
		t.Fatal("Swagger document is not valid JSON")
	}
	if !strings.Contains(string(body), "PokHo REST API") {
		t.Error("Expected the API title in the swagger document")
	}

	var doc struct {
		Paths map[string]interface{} `json:"paths"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("Failed to decode swagger document: %v", err)
	}
	for _, path := range []string{"/health", "/saves", "/saves/{id}/scan", "/species/{code}"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("Swagger document is missing path %s", path)
		}
	}
}

func TestRouter_WebSocketFeed(t *testing.T) {
	ts, server := setupTestRouter(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to dial feed: %v", err)
	}
	defer conn.Close()

	waitForClients(t, server.hub, 1)

	server.hub.Broadcast(EventScanCompleted, map[string]interface{}{"id": "xyz"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}

	var event Event
	if err := json.Unmarshal(msg, &event); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}
	if event.Type != EventScanCompleted {
		t.Errorf("Expected type %q, got %q", EventScanCompleted, event.Type)
	}
}

func TestNewServer(t *testing.T) {
	server, _ := setupTestServer(t)

	if server.saves == nil {
		t.Error("Expected server to have a save service")
	}
	if server.species == nil {
		t.Error("Expected server to have a species directory")
	}
	if server.config.APIKey != "test-key" {
		t.Errorf("Expected API key to be 'test-key', got '%s'", server.config.APIKey)
	}
	if server.metrics == nil {
		t.Error("Expected server to have metrics")
	}
	if server.hub == nil {
		t.Error("Expected server to have an event hub")
	}
}
