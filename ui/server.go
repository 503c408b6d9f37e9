package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BurningYang107/sensor-data-viewer/internal/config"
	"github.com/BurningYang107/sensor-data-viewer/internal/session"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// Server hosts the dashboard: upload, filtering, charts and CSV export.
type Server struct {
	router    *gin.Engine
	templates *template.Template
	store     *session.Store
	cfg       *config.Config
}

// NewServer creates a dashboard server around a session store.
func NewServer(store *session.Store, cfg *config.Config) *Server {
	return &Server{
		router: gin.Default(),
		store:  store,
		cfg:    cfg,
	}
}

// Initialize parses the embedded templates and wires middleware and routes.
func (s *Server) Initialize() error {
	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"pct": func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
	}

	templatesFS, err := fs.Sub(embeddedFiles, "templates")
	if err != nil {
		return fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	rootFiles, err := fs.Glob(templatesFS, "*.html")
	if err != nil {
		return fmt.Errorf("failed to glob root templates: %w", err)
	}
	fragmentFiles, err := fs.Glob(templatesFS, "fragments/*.html")
	if err != nil {
		return fmt.Errorf("failed to glob fragment templates: %w", err)
	}

	files := append(rootFiles, fragmentFiles...)
	log.Printf("[TemplateInit] Found %d template files: %v", len(files), files)

	s.templates = template.New("").Funcs(funcMap)
	for _, file := range files {
		content, err := fs.ReadFile(templatesFS, file)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", file, err)
		}
		if _, err := s.templates.New(file).Parse(string(content)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", file, err)
		}
	}

	s.setupMiddleware()
	s.setupRoutes()

	return nil
}

// setupMiddleware serves static assets from the embedded filesystem.
func (s *Server) setupMiddleware() {
	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		log.Printf("[setupMiddleware] Error creating static filesystem: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}

// setupRoutes configures the application routes.
func (s *Server) setupRoutes() {
	// Dashboard pages
	s.router.GET("/", s.handleIndex)
	s.router.GET("/guide", s.handleGuide)

	// API endpoints
	s.router.POST("/api/upload", s.handleUpload)
	s.router.GET("/api/options", s.handleOptions)
	s.router.GET("/api/view", s.handleView)
	s.router.GET("/api/export", s.handleExport)

	// HTMX fragments
	s.router.GET("/fragments/overview", s.handleFragmentOverview)
	s.router.GET("/fragments/table", s.handleFragmentTable)
	s.router.GET("/fragments/preview", s.handleFragmentPreview)
}

// Start starts the web server.
func (s *Server) Start(addr string) error {
	log.Printf("Starting sensor data viewer on http://%s", addr)
	return s.router.Run(addr)
}

// renderTemplate executes a template into a buffer first so errors never leak
// a half-written page.
func (s *Server) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("Template error for %s: %v", templateName, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed"})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		log.Printf("Error writing template response: %v", err)
	}
}

func (s *Server) renderPartial(c *gin.Context, templateName string, data interface{}) {
	s.renderTemplate(c, templateName, data)
}
