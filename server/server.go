// Package server streams generated planet meshes to browser renderers over
// websockets and serves them as plain JSON over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"planetgenerator/core"
	"planetgenerator/export"
	"planetgenerator/planet"
)

// ErrClosed is returned for work submitted after Close.
var ErrClosed = errors.New("server closed")

// Options bound the work a single request may cause.
type Options struct {
	MaxConcurrentJobs   int     // generations running at once across all clients
	MaxGridSize         int     // largest gridSize a client may request, 0 = unlimited
	AtmosphereThickness float64 // reported in MeshData.Shells
}

// Request is a client websocket message.
type Request struct {
	Type   string          `json:"type"` // "generate" or "defaults"
	ID     string          `json:"id,omitempty"`
	Params json.RawMessage `json:"params,omitempty"` // partial PlanetParams over the defaults
}

// ErrorMessage reports a failed request to the client.
type ErrorMessage struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Server owns the generation pool and the set of connected clients.
type Server struct {
	log      *zap.Logger
	cache    *planet.Cache
	pool     pond.Pool
	opts     Options
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	defaults core.PlanetParams

	clientsMu sync.Mutex
	clients   map[*client]struct{}
	closed    bool
	handlers  sync.WaitGroup
}

func New(log *zap.Logger, cache *planet.Cache, defaults core.PlanetParams, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxConcurrentJobs < 1 {
		opts.MaxConcurrentJobs = 1
	}
	return &Server{
		log:   log,
		cache: cache,
		pool:  pond.NewPool(opts.MaxConcurrentJobs),
		opts:  opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // renderers are served from other origins
			},
		},
		defaults: defaults,
		clients:  make(map[*client]struct{}),
	}
}

// Handler routes /healthz, /api/planet and /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/planet", s.handlePlanet)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return mux
}

func (s *Server) Defaults() core.PlanetParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults
}

// SetDefaults generates the mesh for p, makes p the default and pushes the
// mesh to every connected client.
func (s *Server) SetDefaults(ctx context.Context, p core.PlanetParams) error {
	m, err := s.generate(ctx, p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.defaults = p
	s.mu.Unlock()

	s.broadcast(s.meshData(m, p, ""))
	return nil
}

// ClientCount is the number of open websocket connections
func (s *Server) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

// ListenAndServe serves on addr until ctx is done, then shuts down and
// closes the server.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("Mesh service listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("mesh service: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	<-errCh
	return err
}

// Close disconnects every client, waits for their handlers and stops the
// generation pool.
func (s *Server) Close() error {
	s.clientsMu.Lock()
	if s.closed {
		s.clientsMu.Unlock()
		return nil
	}
	s.closed = true
	for c := range s.clients {
		c.conn.Close()
	}
	s.clientsMu.Unlock()

	s.handlers.Wait()
	s.pool.StopAndWait()
	return nil
}

func (s *Server) handlePlanet(w http.ResponseWriter, r *http.Request) {
	p, err := s.paramsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	m, err := s.generate(r.Context(), p)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrInvalidParameter) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := export.WriteJSON(w, s.meshData(m, p, uuid.NewString())); err != nil {
		s.log.Warn("Writing mesh response failed", zap.Error(err))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.clientsMu.Lock()
	if s.closed {
		s.clientsMu.Unlock()
		http.Error(w, ErrClosed.Error(), http.StatusServiceUnavailable)
		return
	}
	s.handlers.Add(1)
	s.clientsMu.Unlock()
	defer s.handlers.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}
	if !s.register(c) {
		conn.Close()
		return
	}
	defer s.unregister(c)

	log := s.log.With(zap.String("client", c.id))
	log.Info("Client connected", zap.String("remote", r.RemoteAddr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// initial mesh for the current defaults
	s.respond(ctx, c, log, "", s.Defaults())

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("WebSocket read ended", zap.Error(err))
			}
			break
		}

		switch req.Type {
		case "generate":
			p, err := s.paramsFromJSON(req.Params)
			if err != nil {
				s.sendError(c, log, req.ID, err)
				continue
			}
			s.respond(ctx, c, log, req.ID, p)
		case "defaults":
			s.respond(ctx, c, log, req.ID, s.Defaults())
		default:
			s.sendError(c, log, req.ID, fmt.Errorf("unknown message type %q", req.Type))
		}
	}
	log.Info("Client disconnected")
}

func (s *Server) register(c *client) bool {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if s.closed {
		return false
	}
	s.clients[c] = struct{}{}
	return true
}

func (s *Server) unregister(c *client) {
	s.clientsMu.Lock()
	delete(s.clients, c)
	s.clientsMu.Unlock()
	c.conn.Close()
}

// respond generates p and sends the mesh, or an error message, to c.
func (s *Server) respond(ctx context.Context, c *client, log *zap.Logger, id string, p core.PlanetParams) {
	m, err := s.generate(ctx, p)
	if err != nil {
		s.sendError(c, log, id, err)
		return
	}
	if id == "" {
		id = uuid.NewString()
	}
	if err := c.send(s.meshData(m, p, id)); err != nil {
		log.Debug("WebSocket write failed", zap.Error(err))
	}
}

func (s *Server) sendError(c *client, log *zap.Logger, id string, err error) {
	log.Info("Request failed", zap.String("id", id), zap.Error(err))
	if werr := c.send(ErrorMessage{Type: "error", ID: id, Error: err.Error()}); werr != nil {
		log.Debug("WebSocket write failed", zap.Error(werr))
	}
}

// broadcast sends d to every client and drops the ones that fail.
func (s *Server) broadcast(d export.MeshData) {
	s.clientsMu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		targets = append(targets, c)
	}
	s.clientsMu.Unlock()

	for _, c := range targets {
		if err := c.send(d); err != nil {
			s.log.Warn("Broadcast failed", zap.String("client", c.id), zap.Error(err))
			s.unregister(c)
		}
	}
}

// generate runs one generation on the shared pool through the cache.
func (s *Server) generate(ctx context.Context, p core.PlanetParams) (*core.GeneratedMesh, error) {
	if s.opts.MaxGridSize > 0 && p.GridSize > s.opts.MaxGridSize {
		return nil, fmt.Errorf("%w: gridSize %d exceeds the limit of %d", core.ErrInvalidParameter, p.GridSize, s.opts.MaxGridSize)
	}

	var m *core.GeneratedMesh
	task := s.pool.SubmitErr(func() error {
		var err error
		m, err = s.cache.Get(ctx, p)
		return err
	})
	if err := task.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Server) meshData(m *core.GeneratedMesh, p core.PlanetParams, id string) export.MeshData {
	d := export.NewMeshData(m, p, s.opts.AtmosphereThickness)
	d.ID = id
	return d
}

func (s *Server) paramsFromJSON(raw json.RawMessage) (core.PlanetParams, error) {
	p := s.Defaults()
	if len(raw) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("%w: %v", core.ErrInvalidParameter, err)
	}
	return p, p.Validate()
}

// paramsFromQuery overlays query values on the defaults.
func (s *Server) paramsFromQuery(r *http.Request) (core.PlanetParams, error) {
	p := s.Defaults()
	q := r.URL.Query()

	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return p, fmt.Errorf("%w: seed: %v", core.ErrInvalidParameter, err)
		}
		p.Seed = core.SeedFrom(seed)
	}
	if v := q.Get("gridSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("%w: gridSize: %v", core.ErrInvalidParameter, err)
		}
		p.GridSize = n
	}
	floats := map[string]*float64{
		"radius":        &p.Radius,
		"boxSize":       &p.BoxSize,
		"isoLevel":      &p.IsoLevel,
		"seaLevelWorld": &p.SeaLevelWorld,
		"beachBand":     &p.BeachBand,
		"foamBand":      &p.FoamBand,
	}
	for name, dst := range floats {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, fmt.Errorf("%w: %s: %v", core.ErrInvalidParameter, name, err)
		}
		*dst = f
	}
	if v := q.Get("noise"); v != "" {
		p.Noise = core.NoiseBasis(v)
	}
	return p, p.Validate()
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorMessage{Type: "error", Error: err.Error()})
}
