// Package api exposes the analyzer over HTTP for dashboard-style
// consumers.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/stackscan/internal/analyzer"
	"github.com/example/stackscan/internal/core"
	"github.com/example/stackscan/internal/report"
)

// Server wires the analyzer and the artifact store into a gin router.
type Server struct {
	Router    *gin.Engine
	analyzer  *analyzer.Analyzer
	outputDir string
}

// NewServer builds the router. outputDir is where scan artifacts live and
// is served read-only through the domains endpoints.
func NewServer(a *analyzer.Analyzer, outputDir string) *Server {
	router := gin.Default()

	s := &Server{
		Router:    router,
		analyzer:  a,
		outputDir: outputDir,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	v1 := s.Router.Group("/api/v1")
	{
		v1.GET("/health", s.healthHandler)
		v1.POST("/analyze", s.analyzeHandler)
		v1.GET("/domains", s.domainsHandler)
		v1.GET("/domains/:domain", s.domainHandler)
	}
}

// Run starts the HTTP server on the given address.
func (s *Server) Run(addr string) error {
	return s.Router.Run(addr)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type analyzeRequest struct {
	Domain string `json:"domain" binding:"required"`
}

func (s *Server) analyzeHandler(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "domain is required"})
		return
	}

	rep, err := s.analyzer.AnalyzeDomain(c.Request.Context(), req.Domain)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (s *Server) domainsHandler(c *gin.Context) {
	reports, err := report.LoadDirectory(s.outputDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	type domainListing struct {
		Domain       string         `json:"domain"`
		Technologies int            `json:"technologies"`
		Categories   map[string]int `json:"categories"`
		GeneratedAt  string         `json:"generated_at"`
	}
	listings := make([]domainListing, 0, len(reports))
	for _, rep := range reports {
		listings = append(listings, domainListing{
			Domain:       rep.Domain,
			Technologies: len(rep.Technologies),
			Categories:   technologiesByCategory(rep.Technologies),
			GeneratedAt:  rep.GeneratedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"domains": listings})
}

func (s *Server) domainHandler(c *gin.Context) {
	domain := c.Param("domain")

	rep, err := report.Load(report.ArtifactPath(s.outputDir, domain))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis found for " + domain})
		return
	}

	// Serve propagated confidences when a prior propagate run exists.
	if adjusted, err := report.Load(report.AdjustedPath(s.outputDir, domain)); err == nil {
		rep = adjusted
	}
	c.JSON(http.StatusOK, rep)
}

func technologiesByCategory(technologies []core.MergedTechnology) map[string]int {
	counts := make(map[string]int)
	for _, tech := range technologies {
		counts[tech.Category]++
	}
	return counts
}
