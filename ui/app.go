package ui

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dxsim/app"
	"dxsim/internal"
	"dxsim/internal/report"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// App represents the UI application
type App struct {
	router      *chi.Mux
	simulations *app.SimulationService
	templates   *template.Template
	logger      *internal.Logger
	server      *http.Server
}

// Config holds UI application configuration
type Config struct {
	Port        string
	Simulations *app.SimulationService
	// API and Metrics are mounted when set
	API     http.Handler
	Metrics http.Handler
	Logger  *internal.Logger
}

// NewApp creates a new UI application
func NewApp(config Config) (*App, error) {
	if config.Simulations == nil {
		return nil, fmt.Errorf("simulation service cannot be nil")
	}
	logger := config.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}

	funcMap := template.FuncMap{
		"ratio": report.Ratio,
		"pct":   func(f float64) string { return fmt.Sprintf("%.2f%%", f) },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	a := &App{
		router:      chi.NewRouter(),
		simulations: config.Simulations,
		templates:   templates,
		logger:      logger.With("ui"),
	}

	a.setupMiddleware()
	a.setupRoutes(config)

	port := config.Port
	if port == "" {
		port = "8080"
	}
	a.server = &http.Server{
		Addr:              ":" + port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes(config Config) {
	a.router.Get("/", a.handleIndex)
	a.router.Post("/", a.handleSimulate)
	a.router.Get("/healthz", a.handleHealth)

	if config.API != nil {
		a.router.Mount("/api", config.API)
	}
	if config.Metrics != nil {
		a.router.Handle("/metrics", config.Metrics)
	}
}

// Handler exposes the router
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server and blocks until it stops
func (a *App) Start() error {
	a.logger.Info("Starting dxsim server on %s", a.server.Addr)
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Template helpers
func (a *App) renderTemplate(w http.ResponseWriter, status int, templateName string, data interface{}) {
	// render to a buffer first so a template error never sends half a page
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		a.logger.Error("Template error for %s: %v", templateName, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		a.logger.Warn("Error writing template response: %v", err)
	}
}
