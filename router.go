package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nexora/nexora/pkg/config"
	"github.com/nexora/nexora/pkg/db"
	"github.com/nexora/nexora/pkg/event"
	"github.com/nexora/nexora/pkg/handler"
	"github.com/nexora/nexora/pkg/models"
	"github.com/nexora/nexora/pkg/provider"
	"github.com/nexora/nexora/pkg/service"
	"github.com/nexora/nexora/pkg/utils"

	// Register all built-in agent tools
	_ "github.com/nexora/nexora/pkg/tools/all"
)

type Server struct {
	ginEngine  *gin.Engine
	logger     *slog.Logger
	cfg        *config.AppConfig
	archiveJob *service.ArchiveJob
	port       int
}

func NewServer(cfg *config.AppConfig) (*Server, error) {
	ginEngine := gin.New()
	ginEngine.Use(gin.Recovery())

	// CORS middleware for local frontends.
	ginEngine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// If there's no Origin header, it's not a browser CORS request.
		if origin != "" {
			allowed := strings.HasPrefix(origin, "http://localhost") ||
				strings.HasPrefix(origin, "http://127.0.0.1") ||
				strings.HasPrefix(origin, "https://localhost") ||
				strings.HasPrefix(origin, "https://127.0.0.1")

			if allowed {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-User-ID")
			} else {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	server := &Server{
		ginEngine: ginEngine,
		logger:    utils.GetLogger(),
		cfg:       cfg,
	}

	if err := server.SetupRoutes(); err != nil {
		return nil, err
	}
	return server, nil
}

func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host(), s.cfg.Port())
	srv := &http.Server{Addr: addr, Handler: s.ginEngine}

	// Attempt to listen on port first; if occupied return error immediately
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}

	if tcpAddr, ok := ln.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	} else {
		s.port = s.cfg.Port()
	}
	s.logger.Info("Server listening", "addr", addr)

	if s.archiveJob != nil && s.cfg.ArchiveEnabled() {
		s.archiveJob.Start(ctx)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ln)
	}()

	// Listen for context cancellation for graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	// Non-blocking: if startup fails immediately return error; otherwise return nil to let main continue
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	default:
	}
	return nil
}

func (s *Server) SetupRoutes() error {
	database, err := db.Open(s.cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	memoryService := service.NewMemoryService(database)
	if err := memoryService.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate memories: %w", err)
	}

	// Semantic memory search is optional; it needs an embedding API key.
	semanticIndex, err := service.NewSemanticIndex(context.Background(), s.cfg, database)
	if err != nil {
		s.logger.Warn("Semantic memory search disabled", "error", err)
	} else if semanticIndex != nil {
		memoryService.EnableSemanticSearch(semanticIndex)
	}

	registry := provider.NewRegistry(s.cfg)
	domain := models.NewUnconnectedDomain()

	agentService := service.NewAgentService(database, registry, memoryService, domain)
	if err := agentService.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate conversations: %w", err)
	}

	archiveService := service.NewArchiveService(database, registry, memoryService,
		s.cfg.ArchiveAfterDays(), s.cfg.ArchiveMinMessages())
	if err := archiveService.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate history: %w", err)
	}

	var locker service.Locker
	if addr := s.cfg.RedisAddr(); addr != "" {
		locker = service.NewRedisLocker(addr, s.cfg.RedisPassword(), s.cfg.RedisDB())
	} else {
		locker = service.NewLocalLocker()
	}
	s.archiveJob = service.NewArchiveJob(archiveService, locker, s.cfg.ArchiveHour())

	apiGroup := s.ginEngine.Group("/api")

	handler.NewAgentHandler(agentService, registry).RegisterRoutes(apiGroup.Group("/agent"))
	handler.NewMemoryHandler(memoryService).RegisterRoutes(apiGroup.Group("/memory"))
	handler.NewHistoryHandler(archiveService, s.archiveJob).RegisterRoutes(apiGroup.Group("/history"))

	// Event stream
	wsHandler := event.NewWSHandler()
	s.ginEngine.GET("/ws/events", wsHandler.Handle)

	s.ginEngine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return nil
}
