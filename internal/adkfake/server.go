// Package adkfake is an in-process fake of the ADK API server. It serves the
// session lifecycle, run, artifact and app listing endpoints from a volatile
// store so client code can be exercised without a real agent deployment.
package adkfake

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/hupe1980/adkclient/core"
)

// Route names, usable with FailNext.
const (
	RouteListApps      = "list_apps"
	RouteCreateSession = "create_session"
	RouteGetSession    = "get_session"
	RouteListSessions  = "list_sessions"
	RouteDeleteSession = "delete_session"
	RouteRun           = "run"

	RouteListArtifacts        = "list_artifacts"
	RouteListArtifactVersions = "list_artifact_versions"
	RouteLoadArtifact         = "load_artifact"
)

// Responder produces the events answering one run request.
type Responder func(req core.RunRequest) []core.Event

// EchoResponder answers every run with a single complete model event
// repeating the user's text.
func EchoResponder(req core.RunRequest) []core.Event {
	var texts []string
	for _, p := range req.NewMessage.Parts {
		if t, ok := core.PartText(p); ok {
			texts = append(texts, t)
		}
	}
	done := true
	return []core.Event{{
		Author:       "echo_agent",
		Content:      &core.Content{Role: core.RoleModel, Parts: []core.Part{core.TextPart{Text: strings.Join(texts, " ")}}},
		TurnComplete: &done,
	}}
}

// Recorded is one request observed by the server.
type Recorded struct {
	Method string
	Path   string
	Route  string
	Body   []byte
}

// Options configures a Server.
type Options struct {
	Apps      []string
	Responder Responder
	Clock     func() time.Time
}

type failure struct {
	status int
	body   string
}

// Server is the fake ADK API server.
type Server struct {
	apps      []string
	clock     func() time.Time
	store     *store
	router    *mux.Router
	ts        *httptest.Server
	mu        sync.Mutex
	responder Responder
	raw       *string
	failures  map[string][]failure
	requests  []Recorded
}

// New creates a server with optional overrides. Call Start to serve.
func New(optFns ...func(o *Options)) *Server {
	opts := Options{
		Apps:      []string{"multi_tool_agent"},
		Responder: EchoResponder,
		Clock:     time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	s := &Server{
		apps:      opts.Apps,
		clock:     opts.Clock,
		store:     newStore(),
		responder: opts.Responder,
		failures:  make(map[string][]failure),
	}
	s.setupRoutes()
	return s
}

// Start serves on a random local port and returns the base URL.
func (s *Server) Start() string {
	s.ts = httptest.NewServer(s.router)
	return s.ts.URL
}

// Close stops the server.
func (s *Server) Close() {
	if s.ts != nil {
		s.ts.Close()
	}
}

// Handler exposes the router, e.g. for a custom listener.
func (s *Server) Handler() http.Handler { return s.router }

// SetResponder replaces the run responder.
func (s *Server) SetResponder(r Responder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responder = r
}

// RespondRaw makes the next run answer with body verbatim and status 200.
func (s *Server) RespondRaw(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = &body
}

// FailNext makes the next request to route answer with status and body.
// Calls queue up.
func (s *Server) FailNext(route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], failure{status: status, body: body})
}

// Requests returns the requests observed so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// RequestsTo returns the requests observed for one route.
func (s *Server) RequestsTo(route string) []Recorded {
	var out []Recorded
	for _, r := range s.Requests() {
		if r.Route == route {
			out = append(out, r)
		}
	}
	return out
}

// Session returns the stored session, events included.
func (s *Server) Session(app, user, id string) (core.Session, bool) {
	return s.store.get(app, user, id)
}

// PutArtifact saves a new version of an artifact in a stored session and
// returns the version number. It reports false for unknown sessions.
func (s *Server) PutArtifact(app, user, id, name string, p core.Part) (int, bool) {
	return s.store.putArtifact(app, user, id, name, p)
}

func (s *Server) setupRoutes() {
	r := mux.NewRouter()
	r.Use(s.record, s.injectFailures)

	r.HandleFunc("/list-apps", s.handleListApps).Methods(http.MethodGet).Name(RouteListApps)

	sessions := r.PathPrefix("/apps/{app}/users/{user}/sessions").Subrouter()
	sessions.HandleFunc("", s.handleCreateSession).Methods(http.MethodPost).Name(RouteCreateSession)
	sessions.HandleFunc("", s.handleListSessions).Methods(http.MethodGet).Name(RouteListSessions)
	sessions.HandleFunc("/{id}", s.handleCreateSession).Methods(http.MethodPost).Name(RouteCreateSession)
	sessions.HandleFunc("/{id}", s.handleGetSession).Methods(http.MethodGet).Name(RouteGetSession)
	sessions.HandleFunc("/{id}", s.handleDeleteSession).Methods(http.MethodDelete).Name(RouteDeleteSession)
	sessions.HandleFunc("/{id}/artifacts", s.handleListArtifacts).Methods(http.MethodGet).Name(RouteListArtifacts)
	sessions.HandleFunc("/{id}/artifacts/{name}", s.handleLoadArtifact).Methods(http.MethodGet).Name(RouteLoadArtifact)
	sessions.HandleFunc("/{id}/artifacts/{name}/versions", s.handleListArtifactVersions).Methods(http.MethodGet).Name(RouteListArtifactVersions)

	r.HandleFunc("/run", s.handleRun).Methods(http.MethodPost).Name(RouteRun)

	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	s.router = r
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		return route.GetName()
	}
	return ""
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		s.mu.Lock()
		s.requests = append(s.requests, Recorded{Method: r.Method, Path: r.URL.EscapedPath(), Route: routeName(r), Body: body})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := routeName(r)
		s.mu.Lock()
		queue := s.failures[name]
		var f *failure
		if len(queue) > 0 {
			f = &queue[0]
			s.failures[name] = queue[1:]
		}
		s.mu.Unlock()
		if f != nil {
			writeJSON(w, f.status, map[string]any{"detail": f.body})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) now() float64 {
	return float64(s.clock().UnixNano()) / 1e9
}

func (s *Server) handleListApps(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.apps)
}

func (s *Server) knownApp(app string) bool {
	for _, a := range s.apps {
		if a == app {
			return true
		}
	}
	return false
}

// handleCreateSession accepts {"state": {...}} on the collection route and
// the bare state object on the id route.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !s.knownApp(vars["app"]) {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": fmt.Sprintf("App %s not found", vars["app"])})
		return
	}

	id, withID := vars["id"]
	var state map[string]any
	body, _ := io.ReadAll(r.Body)
	if len(strings.TrimSpace(string(body))) > 0 {
		var err error
		if withID {
			err = json.Unmarshal(body, &state)
		} else {
			var req struct {
				State map[string]any `json:"state"`
			}
			err = json.Unmarshal(body, &req)
			state = req.State
		}
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": err.Error()})
			return
		}
	}
	if !withID {
		id = uuid.NewString()
	}

	sess, ok := s.store.create(core.Session{
		ID:             id,
		AppName:        vars["app"],
		UserID:         vars["user"],
		State:          state,
		LastUpdateTime: s.now(),
	})
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": fmt.Sprintf("Session already exists: %s", id)})
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	writeJSON(w, http.StatusOK, s.store.list(vars["app"], vars["user"]))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sess, ok := s.store.get(vars["app"], vars["user"], vars["id"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Session not found"})
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.store.delete(vars["app"], vars["user"], vars["id"])
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	writeJSON(w, http.StatusOK, s.store.artifactNames(vars["app"], vars["user"], vars["id"]))
}

func (s *Server) handleListArtifactVersions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	writeJSON(w, http.StatusOK, s.store.artifactVersions(vars["app"], vars["user"], vars["id"], vars["name"]))
}

func (s *Server) handleLoadArtifact(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	version := -1
	if v := r.URL.Query().Get("version"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": err.Error()})
			return
		}
		version = n
	}
	p, ok := s.store.artifact(vars["app"], vars["user"], vars["id"], vars["name"], version)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Artifact not found"})
		return
	}
	raw, err := core.EncodePart(p)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, json.RawMessage(raw))
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req core.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": err.Error()})
		return
	}
	if _, ok := s.store.get(req.AppName, req.UserID, req.SessionID); !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Session not found"})
		return
	}

	s.mu.Lock()
	raw, responder := s.raw, s.responder
	s.raw = nil
	s.mu.Unlock()

	if raw != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, *raw)
		return
	}

	invocationID := "e-" + uuid.NewString()
	now := s.now()
	msg := req.NewMessage
	userEvent := core.Event{ID: uuid.NewString(), InvocationID: invocationID, Author: core.RoleUser, Content: &msg, Timestamp: now}

	events := responder(req)
	for i := range events {
		if events[i].ID == "" {
			events[i].ID = uuid.NewString()
		}
		if events[i].InvocationID == "" {
			events[i].InvocationID = invocationID
		}
		if events[i].Timestamp == 0 {
			events[i].Timestamp = now
		}
	}
	s.store.appendEvents(req.AppName, req.UserID, req.SessionID, now, append([]core.Event{userEvent}, events...)...)

	if events == nil {
		events = []core.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"detail": "Not Found",
		"path":   r.URL.Path,
		"method": r.Method,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
