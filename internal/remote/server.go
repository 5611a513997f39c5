// ABOUTME: Remote-control server for a volume controller
// ABOUTME: chi HTTP routes plus a websocket that pushes state to every session
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Resonate-Protocol/volumekit/pkg/volume"
)

const (
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

// Player is the controller surface exposed remotely
type Player interface {
	SetVolume(percent float64) error
	Step(delta int) error
	Mute(muted bool)
	Play(ctx context.Context) error
	Pause(ctx context.Context)
	Status() volume.Status
}

// Config configures the remote-control server
type Config struct {
	// Addr to listen on (default: ":8928")
	Addr string

	// Name reported in /status and the websocket hello
	Name string

	// Version reported in /status and the websocket hello
	Version string

	// Player is the controlled instance (required)
	Player Player

	// Compatibility is reported by /status
	Compatibility volume.Compatibility

	Logger *slog.Logger
}

// Server serves remote commands for one player
type Server struct {
	config   Config
	logger   *slog.Logger
	router   chi.Router
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*session
	addr     net.Addr
}

type session struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// New creates a server. Call Serve to listen.
func New(config Config) (*Server, error) {
	if config.Player == nil {
		return nil, fmt.Errorf("player is required")
	}
	if config.Addr == "" {
		config.Addr = ":8928"
	}
	if config.Name == "" {
		config.Name = "volplay"
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:   config,
		logger:   logger.With(slog.String("component", "remote")),
		sessions: make(map[string]*session),
		upgrader: websocket.Upgrader{
			// Local network control surface, any origin may connect
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/status", s.handleStatus)
	r.Post("/volume", s.handleVolume)
	r.Post("/mute", s.handleMute)
	r.Post("/play", s.handlePlay)
	r.Post("/pause", s.handlePause)
	r.Get("/ws", s.handleWebSocket)
	s.router = r

	return s, nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the bound listen address once Serve is running
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Serve listens until ctx is done, then shuts down gracefully
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}

	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	httpServer := &http.Server{Handler: s.router}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	s.logger.Info("remote control listening", slog.String("addr", ln.Addr().String()))

	select {
	case <-ctx.Done():
	case err := <-errChan:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("http server shutdown error", slog.Any("error", err))
	}
	s.closeSessions()

	return ctx.Err()
}

func (s *Server) String() string {
	return "remote:" + s.config.Addr
}

// Notify pushes the current state to every websocket session
func (s *Server) Notify() {
	data, err := encode(TypeState, stateFrom(s.config.Player.Status()))
	if err != nil {
		s.logger.Warn("failed to encode state", slog.Any("error", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		select {
		case sess.send <- data:
		default:
			s.logger.Warn("session send buffer full, dropping state", slog.String("session", sess.id))
		}
	}
}

// Sessions returns the number of connected websocket sessions
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Name:          s.config.Name,
		Version:       s.config.Version,
		State:         stateFrom(s.config.Player.Status()),
		Compatibility: s.config.Compatibility,
	})
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	var req VolumeSet
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}
	if err := s.setVolume(req); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.respondState(w)
}

func (s *Server) handleMute(w http.ResponseWriter, r *http.Request) {
	var req MuteSet
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}
	s.config.Player.Mute(req.Muted)
	s.respondState(w)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	if err := s.config.Player.Play(r.Context()); err != nil {
		writeError(w, statusFor(err), err)
		s.Notify()
		return
	}
	s.respondState(w)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.config.Player.Pause(r.Context())
	s.respondState(w)
}

func (s *Server) respondState(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, stateFrom(s.config.Player.Status()))
	s.Notify()
}

func (s *Server) setVolume(req VolumeSet) error {
	if req.Volume == nil {
		return fmt.Errorf("%w: volume is required", volume.ErrInvalidArgument)
	}
	return s.config.Player.SetVolume(*req.Volume)
}

// handleWebSocket upgrades and serves one session
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade error", slog.Any("error", err))
		return
	}

	sess := &session{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Info("session connected", slog.String("session", sess.id), slog.String("remote", r.RemoteAddr))

	go s.writer(sess)

	hello, _ := encode(TypeHello, Hello{SessionID: sess.id, Name: s.config.Name, Version: s.config.Version})
	sess.send <- hello
	state, _ := encode(TypeState, stateFrom(s.config.Player.Status()))
	sess.send <- state

	s.reader(r.Context(), sess)

	s.removeSession(sess)
	s.logger.Info("session disconnected", slog.String("session", sess.id))
}

func (s *Server) reader(ctx context.Context, sess *session) {
	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket error", slog.String("session", sess.id), slog.Any("error", err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(sess, "", fmt.Errorf("invalid message: %w", err))
			continue
		}

		if err := s.dispatch(ctx, msg); err != nil {
			s.sendError(sess, msg.Type, err)
			continue
		}
		s.Notify()
	}
}

// dispatch applies one websocket command to the player
func (s *Server) dispatch(ctx context.Context, msg Message) error {
	switch msg.Type {
	case TypeVolumeSet:
		var req VolumeSet
		if err := unmarshalPayload(msg, &req); err != nil {
			return err
		}
		return s.setVolume(req)

	case TypeVolumeStep:
		var req VolumeStep
		if err := unmarshalPayload(msg, &req); err != nil {
			return err
		}
		return s.config.Player.Step(req.Delta)

	case TypeMute:
		var req MuteSet
		if err := unmarshalPayload(msg, &req); err != nil {
			return err
		}
		s.config.Player.Mute(req.Muted)
		return nil

	case TypePlay:
		return s.config.Player.Play(ctx)

	case TypePause:
		s.config.Player.Pause(ctx)
		return nil

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

func unmarshalPayload(msg Message, v any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%w: %s requires a payload", volume.ErrInvalidArgument, msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
	}
	return nil
}

func (s *Server) sendError(sess *session, request string, err error) {
	data, encErr := encode(TypeError, ErrorPayload{Request: request, Message: err.Error()})
	if encErr != nil {
		return
	}
	select {
	case sess.send <- data:
	default:
	}
}

func (s *Server) writer(sess *session) {
	for {
		select {
		case data := <-sess.send:
			sess.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := sess.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Warn("websocket write error", slog.String("session", sess.id), slog.Any("error", err))
				sess.conn.Close()
				return
			}
		case <-sess.done:
			return
		}
	}
}

func (s *Server) removeSession(sess *session) {
	s.mu.Lock()
	_, ok := s.sessions[sess.id]
	delete(s.sessions, sess.id)
	s.mu.Unlock()

	if ok {
		close(sess.done)
		sess.conn.Close()
	}
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		s.removeSession(sess)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, volume.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, volume.ErrDestroyed):
		return http.StatusGone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorPayload{Message: err.Error()})
}
