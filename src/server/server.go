package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"cycle-dashboard/src/helpers"
	"cycle-dashboard/src/logger"
	"cycle-dashboard/src/models"
	"cycle-dashboard/src/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config       *models.MConfig
	Logger       *logger.Logger
	Pipeline     *pipeline.Pipeline
	ErrorHandler *helpers.ErrorHandler

	engine  *gin.Engine
	httpSrv *http.Server
	started time.Time

	// WebSocket sessions, owned by the hub goroutine
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	sessions   atomic.Int64

	// canceled on Stop so in-flight refreshes give up
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

// errs is shared with the other boundaries so /api/health reports every failure.
func NewDashboardServer(cfg *models.MConfig, p *pipeline.Pipeline, errs *helpers.ErrorHandler, log *logger.Logger) *DashboardServer {
	if !strings.EqualFold(cfg.LogLevel, "DEBUG") {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &DashboardServer{
		Config:       cfg,
		Logger:       log.Named("Server"),
		Pipeline:     p,
		ErrorHandler: errs,
		engine:       gin.Default(),
		started:      time.Now(),
		clients:      make(map[*Client]struct{}),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		done:         make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}

	s.engine.Use(requestID())
	s.engine.Use(cors())
	s.engine.SetHTMLTemplate(template.Must(template.ParseFS(pageFS, "templates/*.html")))

	s.setupRoutes()

	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.runHub()
	return s
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// -----------------------------------------------------------------------------

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	s.engine.GET("/", s.getPage)

	// REST API endpoints
	s.engine.GET("/api/png", s.getPNG)
	s.engine.POST("/api/figure", s.postFigure)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Handler exposes the router, mainly for httptest.
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------

// Start blocks serving HTTP until Stop is called.
func (s *DashboardServer) Start() error {
	s.Logger.Info("Starting server on %s", s.httpSrv.Addr)

	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Stop closes every websocket session and drains HTTP requests until ctx expires.
func (s *DashboardServer) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.cancel()
		close(s.done)
	})
	return s.httpSrv.Shutdown(ctx)
}

// -----------------------------------------------------------------------------

// Sessions is the number of live websocket sessions.
func (s *DashboardServer) Sessions() int {
	return int(s.sessions.Load())
}
