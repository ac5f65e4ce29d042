package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sunnyrajshrestha/CSIIbackened/core/consumer"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/broker"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/cache"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/ingest"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/metrics"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/query"
	"github.com/sunnyrajshrestha/CSIIbackened/internal/worker"
)

type Server struct {
	config      *ServerConfig
	cache       *cache.Cache
	coordinator *ingest.Coordinator
	engine      *query.Engine
	worker      *worker.Worker
	registry    *prometheus.Registry
	router      *gin.Engine
}

func NewServer(options ...ConfigOption) (*Server, error) {
	config := &ServerConfig{
		WorkerCount:  4,
		BatchSize:    100,
		HistoryLimit: query.DefaultHistoryLimit,
		Port:         "3001",
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return nil, err
		}
	}

	if config.Store == nil {
		return nil, errors.New("no data store configured")
	}

	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Queue == nil {
		config.Queue = broker.NewChannelQueue(broker.DefaultChannelBuffer)
	}
	if config.Consumer == nil {
		config.Consumer = consumer.NewLogConsumer("DefaultConsumer", config.Logger)
	}

	registry := prometheus.NewRegistry()
	stats := metrics.New(registry)

	hot := cache.New()

	server := &Server{
		config:      config,
		cache:       hot,
		coordinator: ingest.NewCoordinator(hot, config.Queue, config.Logger, stats),
		engine:      query.NewEngine(hot, config.Store, stats, config.HistoryLimit),
		worker:      worker.NewWorker(config.Store, config.Consumer, config.Logger, stats, config.WorkerCount, config.BatchSize),
		registry:    registry,
		router:      gin.Default(),
	}

	server.setupRoutes()
	return server, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := s.router.Group("/api")
	api.Use(cors.Default())
	{
		api.POST("/sensor-data", s.handleIngest)
		api.GET("/rooms", s.handleListRooms)
		api.GET("/rooms/:roomId", s.handleGetRoom)
		api.GET("/history/:roomId", s.handleHistory)
		api.GET("/stats/:roomId", s.handleStats)
	}
}

func (s *Server) handleIngest(c *gin.Context) {
	var payload ingest.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"accepted": false, "message": err.Error()})
		return
	}

	if err := s.coordinator.Ingest(c.Request.Context(), payload); err != nil {
		// only InvalidPayload reaches here; store trouble never fails an ingest
		c.JSON(http.StatusBadRequest, gin.H{"accepted": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accepted": true, "message": "data received and stored"})
}

func (s *Server) handleGetRoom(c *gin.Context) {
	reading, err := s.engine.Current(c.Param("roomId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, reading)
}

func (s *Server) handleListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.ListCurrent())
}

func (s *Server) handleHistory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	records, err := s.engine.History(ctx, c.Param("roomId"), hoursParam(c))
	if err != nil {
		s.config.Logger.Error("history query failed",
			zap.String("room_id", c.Param("roomId")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, records)
}

func (s *Server) handleStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	stats, err := s.engine.Stats(ctx, c.Param("roomId"), hoursParam(c))
	if err != nil {
		s.config.Logger.Error("stats query failed",
			zap.String("room_id", c.Param("roomId")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}

	if stats == nil {
		// no data in the window, not a fault
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	connected := s.config.Store.Ping(ctx) == nil

	c.JSON(http.StatusOK, gin.H{
		"status":            "online",
		"roomCount":         s.cache.Len(),
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
		"databaseConnected": connected,
	})
}

// hoursParam reads the lookback window; the engine substitutes the default
// for anything missing or unusable.
func hoursParam(c *gin.Context) int {
	hours, err := strconv.Atoi(c.Query("hours"))
	if err != nil {
		return 0
	}
	return hours
}

func (s *Server) Start(ctx context.Context) error {
	go func() {
		if err := s.worker.Start(ctx, s.config.Queue); err != nil {
			s.config.Logger.Error("store worker error", zap.Error(err))
		}
	}()

	server := &http.Server{
		Addr:    ":" + s.config.Port,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.config.Logger.Info("server starting", zap.String("port", s.config.Port))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) Close() error {
	if s.config.Queue != nil {
		s.config.Queue.Close()
	}
	if s.config.Store != nil {
		s.config.Store.Close()
	}
	return nil
}

// Router exposes the handler tree for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
