// Package server is the HTTP facade over the orchestrator. Every endpoint
// translates into exactly one orchestrator or agent call and wraps the
// outcome in a uniform envelope: a success flag plus either a result
// payload or an error string. Organ-level failures stay failures-as-data;
// only malformed requests become protocol-level errors.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/auralabs/aura/internal/bridge"
	"github.com/auralabs/aura/internal/config"
	"github.com/auralabs/aura/internal/journal"
	"github.com/auralabs/aura/internal/logging"
	"github.com/auralabs/aura/internal/orchestrator"
	"github.com/auralabs/aura/internal/organ"
	"github.com/auralabs/aura/internal/persona"
)

// maxUploadBytes bounds multipart media uploads (32MB).
const maxUploadBytes = 32 << 20

// Perceiver is the orchestrator surface the facade needs.
type Perceiver interface {
	PerceivePhoto(ctx context.Context, input, question string, who persona.Persona) organ.Perception
	PerceiveAudio(ctx context.Context, input, question string, who persona.Persona) organ.Perception
	Glance(ctx context.Context, question string, who persona.Persona) organ.Perception
	Read(ctx context.Context, path, question string, who persona.Persona) organ.Perception
	PerceiveMoment(ctx context.Context, who persona.Persona, includeScreen bool) orchestrator.MomentPerception
	ReadAndSee(ctx context.Context, path string, who persona.Persona) orchestrator.ReadAndSee
	StartMonitor(ctx context.Context, who persona.Persona, opts orchestrator.MonitorOptions) *orchestrator.Monitor
	Status() orchestrator.Status
}

// Chatter is the agent surface the facade needs.
type Chatter interface {
	Chat(ctx context.Context, message string, who persona.Persona) (string, error)
	History(ctx context.Context, limit int) ([]journal.Event, error)
}

// Server serves the JSON API and the monitor WebSocket.
type Server struct {
	cfg       *config.Config
	perceiver Perceiver
	chatter   Chatter
	deliverer *bridge.Deliverer
	log       *logging.Logger
}

// New builds the facade. The deliverer may be nil when the host has no
// delivery tools.
func New(cfg *config.Config, p Perceiver, c Chatter, d *bridge.Deliverer) *Server {
	return &Server{
		cfg:       cfg,
		perceiver: p,
		chatter:   c,
		deliverer: d,
		log:       logging.Global().WithComponent("server"),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/photo", s.handlePhoto)
	mux.HandleFunc("POST /api/voice", s.handleVoice)
	mux.HandleFunc("POST /api/screen", s.handleScreen)
	mux.HandleFunc("POST /api/perceive", s.handlePerceive)
	mux.HandleFunc("POST /api/read", s.handleRead)
	mux.HandleFunc("POST /api/deliver", s.handleDeliver)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /ws/monitor", s.handleMonitor)

	return s.logRequests(mux)
}

// ListenAndServe runs the facade until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.log.Request(r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
		s.log.Response(r.Method, r.URL.Path, http.StatusOK, time.Since(start))
	})
}

// ═══════════════════════════════════════════════════════════════════════════════
// ENVELOPE
// ═══════════════════════════════════════════════════════════════════════════════

type envelope struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func writeResult(w http.ResponseWriter, result interface{}) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Result: result})
}

func writeFailure(w http.ResponseWriter, status int, err string) {
	writeJSON(w, status, envelope{Success: false, Error: err})
}

// writePerception wraps an organ outcome; the perception's own success
// flag drives the envelope, never the HTTP status.
func writePerception(w http.ResponseWriter, p organ.Perception) {
	writeJSON(w, http.StatusOK, envelope{Success: p.Success, Result: p, Error: p.Error})
}

// ═══════════════════════════════════════════════════════════════════════════════
// HANDLERS
// ═══════════════════════════════════════════════════════════════════════════════

type chatRequest struct {
	Message string `json:"message"`
	Persona string `json:"persona"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeFailure(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := s.chatter.Chat(r.Context(), req.Message, persona.Parse(req.Persona))
	if err != nil {
		writeFailure(w, http.StatusOK, err.Error())
		return
	}
	writeResult(w, map[string]string{"reply": reply})
}

func (s *Server) handlePhoto(w http.ResponseWriter, r *http.Request) {
	who := persona.Parse(r.FormValue("persona"))
	question := r.FormValue("question")

	// A url field perceives a remote video without an upload.
	if url := r.FormValue("url"); url != "" {
		writePerception(w, s.perceiver.PerceivePhoto(r.Context(), url, question, who))
		return
	}

	path, cleanup, err := s.saveUpload(r, "file")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	writePerception(w, s.perceiver.PerceivePhoto(r.Context(), path, question, who))
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	who := persona.Parse(r.FormValue("persona"))
	question := r.FormValue("question")

	path, cleanup, err := s.saveUpload(r, "file")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	writePerception(w, s.perceiver.PerceiveAudio(r.Context(), path, question, who))
}

type screenRequest struct {
	Question string `json:"question"`
	Persona  string `json:"persona"`
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	var req screenRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	writePerception(w, s.perceiver.Glance(r.Context(), req.Question, persona.Parse(req.Persona)))
}

type perceiveRequest struct {
	Persona       string `json:"persona"`
	IncludeScreen bool   `json:"include_screen"`
}

func (s *Server) handlePerceive(w http.ResponseWriter, r *http.Request) {
	var req perceiveRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	moment := s.perceiver.PerceiveMoment(r.Context(), persona.Parse(req.Persona), req.IncludeScreen)
	writeResult(w, moment)
}

type readRequest struct {
	Path       string `json:"path"`
	Question   string `json:"question"`
	Persona    string `json:"persona"`
	WithScreen bool   `json:"with_screen"`
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	var req readRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Path == "" {
		writeFailure(w, http.StatusBadRequest, "path is required")
		return
	}

	who := persona.Parse(req.Persona)
	if req.WithScreen {
		res := s.perceiver.ReadAndSee(r.Context(), req.Path, who)
		writeJSON(w, http.StatusOK, envelope{
			Success: res.Document.Success || res.Screen.Success,
			Result:  res,
		})
		return
	}
	writePerception(w, s.perceiver.Read(r.Context(), req.Path, req.Question, who))
}

type deliverRequest struct {
	App      string `json:"app"`
	Question string `json:"question"`
	Persona  string `json:"persona"`
}

func (s *Server) handleDeliver(w http.ResponseWriter, r *http.Request) {
	var req deliverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	app, err := bridge.ParseApp(req.App)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.deliverer == nil || !s.deliverer.Available() {
		writeFailure(w, http.StatusOK, "delivery tools not available on this host")
		return
	}

	if err := s.deliverer.Deliver(r.Context(), app, req.Question, persona.Parse(req.Persona)); err != nil {
		writeFailure(w, http.StatusOK, err.Error())
		return
	}
	writeResult(w, map[string]string{"delivered_to": app.String()})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.Server.HistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeFailure(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	events, err := s.chatter.History(r.Context(), limit)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	if events == nil {
		events = []journal.Event{}
	}
	writeResult(w, events)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.perceiver.Status())
}

// ═══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ═══════════════════════════════════════════════════════════════════════════════

// saveUpload writes the named multipart file to a temp path. The cleanup
// func removes it once the organ call finishes; uploads never outlive the
// request.
func (s *Server) saveUpload(r *http.Request, field string) (string, func(), error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, fmt.Errorf("parse upload: %w", err)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("missing %q upload", field)
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "aura_upload_*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("save upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("save upload: %w", err)
	}

	path := tmp.Name()
	return path, func() { os.Remove(path) }, nil
}

// decodeOptionalJSON tolerates an empty body; these endpoints have
// sensible all-default requests.
func decodeOptionalJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}
	return err
}
