package server

import (
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/existflow/neocount/internal/countdown"
	"github.com/existflow/neocount/internal/logger"
	"github.com/existflow/neocount/internal/store"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// ErrSecretRequired is returned when token checks are on without a signing secret
var ErrSecretRequired = errors.New("authentication requires identity.jwt_secret (NEOCOUNT_JWT_SECRET)")

// StoreResolver returns the event store for a request's user. userID is empty
// when the server runs without authentication.
type StoreResolver func(userID string) (store.Store, error)

// LocalStores serves every request from one local store
func LocalStores(s store.Store) StoreResolver {
	return func(string) (store.Store, error) {
		return s, nil
	}
}

// RemoteStores scopes the hosted events table to the token's subject
func RemoteStores(conn *sql.DB) StoreResolver {
	return func(userID string) (store.Store, error) {
		if userID == "" {
			return nil, store.ErrNoUser
		}
		return store.NewRemote(conn, userID), nil
	}
}

// Options configures the web host
type Options struct {
	Stores       StoreResolver
	RequireAuth  bool
	JWTSecret    string
	TickInterval time.Duration
}

// Server is the NeoCount web host
type Server struct {
	opts     Options
	hub      *countdown.Hub
	upgrader websocket.Upgrader
	echo     *echo.Echo

	mu       sync.Mutex
	installs map[string]int
}

// New creates a new server
func New(opts Options) (*Server, error) {
	if opts.Stores == nil {
		return nil, errors.New("server requires an event store")
	}
	if opts.RequireAuth && opts.JWTSecret == "" {
		return nil, ErrSecretRequired
	}

	s := &Server{
		opts: opts,
		hub:  countdown.NewHub(opts.TickInterval),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		installs: map[string]int{},
	}

	s.setupEcho()
	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	// Installable web app
	e.GET("/manifest.webmanifest", s.handleManifest)

	api := e.Group("/api/v1")
	api.POST("/install-outcome", s.handleInstallOutcome)

	// Event endpoints, token protected when auth is required
	events := api.Group("")
	events.Use(s.authMiddleware)
	events.GET("/events", s.handleListEvents)
	events.POST("/events", s.handleCreateEvent)
	events.GET("/events.ics", s.handleExportICS)
	events.PATCH("/events/:id", s.handleUpdateEvent)
	events.DELETE("/events/:id", s.handleDeleteEvent)
	events.PUT("/events/:id/notes", s.handleSaveNote)
	events.POST("/events/:id/detailed-notes", s.handleEnableDetailedNotes)
	events.GET("/countdown/ws", s.handleCountdownStream)

	s.echo = e
}

// Close stops every live countdown stream
func (s *Server) Close() error {
	s.hub.Close()
	return nil
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	logger.Info("Server listening", logger.F("addr", addr))
	return s.echo.Start(addr)
}

// ActiveStreams reports the countdown timers held by websocket clients
func (s *Server) ActiveStreams() int {
	return s.hub.Active()
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
