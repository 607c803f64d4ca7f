// Package server exposes the HTTP surface: manual scoring runs, health and
// Prometheus metrics.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/churnscope/internal/config"
	"github.com/smallbiznis/churnscope/internal/filestore"
	"github.com/smallbiznis/churnscope/internal/frame"
	"github.com/smallbiznis/churnscope/internal/model"
	"github.com/smallbiznis/churnscope/internal/pipeline"
	"github.com/smallbiznis/churnscope/internal/schema"
	storedomain "github.com/smallbiznis/churnscope/internal/store/domain"
	"github.com/smallbiznis/churnscope/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log    *zap.Logger
	Config config.Config
	Store  filestore.Store
	Runner *pipeline.Runner
	Repo   storedomain.Repository
	Node   *snowflake.Node
}

type Server struct {
	engine *gin.Engine
	log    *zap.Logger
	cfg    config.Config
	store  filestore.Store
	runner *pipeline.Runner
	repo   storedomain.Repository
	node   *snowflake.Node
}

func New(p Params) *Server {
	if p.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		engine: gin.New(),
		log:    p.Log.Named("server"),
		cfg:    p.Config,
		store:  p.Store,
		runner: p.Runner,
		repo:   p.Repo,
		node:   p.Node,
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.engine.Group("/v1")
	v1.POST("/score", s.score)
	v1.GET("/scores", s.listScores)
}

type listScoresRequest struct {
	pagination.Pagination
	SnapshotDate string `form:"snapshot_date"`
	RiskBand     string `form:"risk_band"`
}

func (s *Server) listScores(c *gin.Context) {
	var req listScoresRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := storedomain.ScoreFilter{
		RiskBand: req.RiskBand,
		Limit:    req.Limit(),
	}
	if req.SnapshotDate != "" {
		d, err := time.Parse("2006-01-02", req.SnapshotDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "snapshot_date must be YYYY-MM-DD"})
			return
		}
		filter.SnapshotDate = &d
	}
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page_token"})
			return
		}
		filter.Cursor = cursor
	}

	scores, pageInfo, err := s.repo.List(c.Request.Context(), filter)
	if err != nil {
		s.log.Error("list scores failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list scores"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scores":    scores,
		"page_info": pageInfo,
	})
}

type scoreRequest struct {
	Object string `json:"object"`
}

// score triggers a run. The request either names an existing inbox object or
// carries the CSV itself, which is written into the inbox first.
func (s *Server) score(c *gin.Context) {
	object, ok := s.resolveObject(c)
	if !ok {
		return
	}

	result, err := s.runner.Run(c.Request.Context(), object)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":            result.RunID,
		"object":            result.Object,
		"snapshot_date":     result.SnapshotDate,
		"rows_scored":       result.RowsScored,
		"rows_loaded":       result.RowsLoaded,
		"duration_seconds":  result.Duration.Seconds(),
		"risk_distribution": result.Summary.RiskDistribution,
	})
}

func (s *Server) resolveObject(c *gin.Context) (string, bool) {
	contentType := c.GetHeader("Content-Type")
	if strings.Contains(contentType, "text/csv") {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil || len(raw) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty csv body"})
			return "", false
		}
		object := filestore.InboxPrefix + "upload-" + s.node.Generate().String() + ".csv"
		if err := s.store.Write(c.Request.Context(), object, raw); err != nil {
			s.log.Error("could not stage uploaded csv", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not stage uploaded csv"})
			return "", false
		}
		return object, true
	}

	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Object == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "object name or csv body required"})
		return "", false
	}
	object := req.Object
	if !strings.HasPrefix(object, filestore.InboxPrefix) {
		object = filestore.InboxPrefix + object
	}
	return object, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, frame.ErrEmptyCSV),
		errors.Is(err, schema.ErrEmptyInput),
		errors.Is(err, schema.ErrTooFewColumns),
		errors.Is(err, schema.ErrMissingColumns),
		errors.Is(err, schema.ErrDuplicateColumns):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrModelNotFound):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var Module = fx.Module("http.server",
	fx.Provide(New),
	fx.Invoke(run),
)

func run(lc fx.Lifecycle, cfg config.Config, s *Server) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
