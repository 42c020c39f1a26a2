package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"bloodbridge/internal/config"
	"bloodbridge/internal/export"
	"bloodbridge/internal/extract"
	"bloodbridge/internal/match"
	"bloodbridge/internal/repository"
)

// Server wires the extraction pipeline, matching and persistence behind the
// HTTP API.
type Server struct {
	cfg         *config.Config
	hybrid      *extract.Hybrid
	scorer      *match.Scorer
	donors      repository.DonorRepository
	needers     repository.NeederRepository
	extractions repository.ExtractionRepository
	exporter    *export.Service
	logger      *slog.Logger
}

type Deps struct {
	Config      *config.Config
	Hybrid      *extract.Hybrid
	Scorer      *match.Scorer
	Donors      repository.DonorRepository
	Needers     repository.NeederRepository
	Extractions repository.ExtractionRepository
	Exporter    *export.Service
	Logger      *slog.Logger
}

func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:         deps.Config,
		hybrid:      deps.Hybrid,
		scorer:      deps.Scorer,
		donors:      deps.Donors,
		needers:     deps.Needers,
		extractions: deps.Extractions,
		exporter:    deps.Exporter,
		logger:      logger,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	if s.cfg.Server.StrictMode() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.MaxMultipartMemory = s.cfg.Upload.MaxSizeMB << 20

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api/v1")
	{
		api.POST("/extract/id-card", s.handleExtractIDCard)
		api.POST("/extract/blood-report", s.handleExtractBloodReport)
		api.POST("/extract/preview", s.handlePreview)

		api.POST("/donors", s.handleRegisterDonor)
		api.GET("/donors", s.handleListDonors)
		api.GET("/donors/nearby", s.handleNearbyDonors)
		api.GET("/donors/:id", s.handleGetDonor)
		api.GET("/donors/:id/extractions", s.handleDonorExtractions)

		api.POST("/needers", s.handleCreateNeeder)
		api.GET("/needers/:id/matches", s.handleMatches)

		api.GET("/export/donors", s.handleExportDonors)
	}
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Info("http.request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
