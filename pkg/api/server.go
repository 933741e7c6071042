// Package api PokHo REST API
//
// @title           PokHo REST API
// @version         1.0.0
// @description     REST and WebSocket API for PokHo, a creature save decode-and-locate engine.
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"

	"github.com/MouseMan32/PokHo/pkg/saves"
	"github.com/MouseMan32/PokHo/pkg/species"
)

// StartServer starts the HTTP server with all routes configured
func StartServer(saveSvc *saves.Service, resolver *species.Resolver, config ServerConfig) error {
	// Set Swagger host with port
	if SwaggerInfo != nil {
		SwaggerInfo.Host = fmt.Sprintf("localhost:%d", config.Port)
	}

	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	hub := NewEventHub()
	hub.Start()

	server := NewServer(saveSvc, resolver, config, metrics, hub)
	router := NewRouter(server, registry)

	// Start background gauge updater
	go server.startStatsUpdater()

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	fmt.Printf("Starting PokHo REST API server on %s\n", addr)
	fmt.Printf("Metrics available at: http://%s/metrics\n", addr)
	fmt.Printf("WebSocket feed at: ws://%s/ws\n", addr)
	return http.ListenAndServe(addr, router)
}

// NewRouter builds the chi router for an API server. Metrics from registry
// are served on /metrics.
func NewRouter(server *Server, registry *prometheus.Registry) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// WebSocket event feed
	r.Get("/ws", server.hub.HandleWebSocket)

	// API key authentication middleware for protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(server.metrics.InstrumentAuthMiddleware(apiKeyMiddleware(server.config.APIKey)))

		m := server.metrics

		// Health check
		r.Get("/health", m.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		// Save operations
		r.Post("/saves", m.InstrumentHandler("POST", "/api/v1/saves", server.handleUploadSave))
		r.Get("/saves", m.InstrumentHandler("GET", "/api/v1/saves", server.handleListSaves))
		r.Get("/saves/{id}", m.InstrumentHandler("GET", "/api/v1/saves/{id}", server.handleGetSave))
		r.Delete("/saves/{id}", m.InstrumentHandler("DELETE", "/api/v1/saves/{id}", server.handleDeleteSave))
		r.Post("/saves/{id}/scan", m.InstrumentHandler("POST", "/api/v1/saves/{id}/scan", server.handleScanSave))
		r.Get("/saves/{id}/boxes", m.InstrumentHandler("GET", "/api/v1/saves/{id}/boxes", server.handleGetBoxes))
		r.Put("/saves/{id}/offset", m.InstrumentHandler("PUT", "/api/v1/saves/{id}/offset", server.handleSetOffset))
		r.Delete("/saves/{id}/offset", m.InstrumentHandler("DELETE", "/api/v1/saves/{id}/offset", server.handleClearOffset))
		r.Get("/saves/{id}/export/{box}/{slot}",
			m.InstrumentHandler("GET", "/api/v1/saves/{id}/export/{box}/{slot}", server.handleExportSlot))

		// Species directory
		r.Get("/species", m.InstrumentHandler("GET", "/api/v1/species", server.handleSearchSpecies))
		r.Get("/species/{code}", m.InstrumentHandler("GET", "/api/v1/species/{code}", server.handleGetSpecies))
	})

	// Swagger documentation (unprotected)
	r.Get("/swagger/*", handleSwagger)

	return r
}

// handleSwagger serves the Swagger UI and the generated specification.
func handleSwagger(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/swagger/" || path == "/swagger/index.html" {
		// Serve the Swagger UI HTML
		w.Header().Set("Content-Type", "text/html")
		html := `<!DOCTYPE html>
<html>
<head>
	 <title>PokHo API Documentation</title>
	 <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui.css" />
</head>
<body>
	 <div id="swagger-ui"></div>
	 <script src="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui-bundle.js"></script>
	 <script>
	   window.onload = function() {
	     SwaggerUIBundle({
	       url: '/swagger/swagger.json',
	       dom_id: '#swagger-ui',
	       presets: [
	         SwaggerUIBundle.presets.apis,
	         SwaggerUIBundle.presets.standalone
	       ]
	     });
	   };
	 </script>
</body>
</html>`
		w.Write([]byte(html))
		return
	}

	if path == "/swagger/swagger.json" {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			http.Error(w, "Failed to generate Swagger documentation", 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
		return
	}

	// For any other paths, return 404
	http.NotFound(w, r)
}
