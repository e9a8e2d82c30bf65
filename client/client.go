package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/hupe1980/adkclient/core"
	"github.com/hupe1980/adkclient/logging"
)

// DefaultBaseURL is the address of a locally started ADK API server.
const DefaultBaseURL = "http://127.0.0.1:8000"

// Operation names reported in errors and logs.
const (
	OpCreateSession = "create_session"
	OpGetSession    = "get_session"
	OpListSessions  = "list_sessions"
	OpDeleteSession = "delete_session"
	OpRun           = "run"
	OpListApps      = "list_apps"

	OpListArtifacts        = "list_artifacts"
	OpListArtifactVersions = "list_artifact_versions"
	OpLoadArtifact         = "load_artifact"
)

// LatestVersion asks LoadArtifact for the newest version of an artifact.
const LatestVersion = -1

// Options holds configuration overrides passed to New().
type Options struct {
	// BaseURL of the API server, without trailing slash.
	BaseURL string
	// HTTPClient used for every call. No timeout is imposed by default;
	// bound latency with the call context or a client of your own.
	HTTPClient *http.Client
	// Logger receives one entry per HTTP call.
	Logger logging.Logger
	// UserAgent header value.
	UserAgent string
	// Headers added to every request.
	Headers map[string]string
	// TokenSource, when set, authorizes every request with a bearer token
	// (e.g. an ID token for a server behind an identity aware proxy).
	TokenSource oauth2.TokenSource
	// Limiter, when set, paces outgoing requests. Waiting honours the call
	// context.
	Limiter *rate.Limiter
}

// Client talks to the session and run endpoints of an ADK API server.
// It holds no session state and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
	userAgent  string
	headers    map[string]string
	limiter    *rate.Limiter
}

// New constructs a Client with optional overrides.
func New(optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{},
		Logger:     logging.NoOpLogger{},
		UserAgent:  "adkclient",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	headers := make(map[string]string, len(opts.Headers))
	for k, v := range opts.Headers {
		headers[k] = v
	}

	httpClient := opts.HTTPClient
	if opts.TokenSource != nil {
		authorized := *httpClient
		authorized.Transport = &oauth2.Transport{Source: opts.TokenSource, Base: httpClient.Transport}
		httpClient = &authorized
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		logger:     opts.Logger,
		userAgent:  opts.UserAgent,
		headers:    headers,
		limiter:    opts.Limiter,
	}
}

// BaseURL returns the configured server address.
func (c *Client) BaseURL() string { return c.baseURL }

// CreateSessionOptions are the optional inputs of CreateSession.
type CreateSessionOptions struct {
	// SessionID requests a caller chosen id; empty lets the server assign one.
	SessionID string
	// State seeds the session state.
	State map[string]any
}

// CreateSession asks the server for a new session of (app, user). A non-2xx
// answer yields *core.SessionCreateError, a network failure
// *core.TransportError.
func (c *Client) CreateSession(ctx context.Context, app, user string, opts CreateSessionOptions) (core.Session, error) {
	if app == "" || user == "" {
		return core.EmptySession, fmt.Errorf("create session: app name and user id are required")
	}

	path := sessionsPath(app, user)
	var body any
	if opts.SessionID != "" {
		path += "/" + url.PathEscape(opts.SessionID)
		if opts.State != nil {
			body = opts.State
		}
	} else if opts.State != nil {
		body = map[string]any{"state": opts.State}
	}

	status, raw, err := c.do(ctx, OpCreateSession, http.MethodPost, path, body)
	if err != nil {
		return core.EmptySession, err
	}
	if !isSuccess(status) {
		return core.EmptySession, &core.SessionCreateError{Status: status, Body: string(raw)}
	}

	s, err := decodeSession(raw, app, user)
	if err != nil {
		return core.EmptySession, fmt.Errorf("create session: %w", err)
	}
	return s, nil
}

// GetSession fetches one session, events included.
func (c *Client) GetSession(ctx context.Context, app, user, id string) (core.Session, error) {
	if id == "" {
		return core.EmptySession, core.ErrInvalidSession
	}
	status, raw, err := c.do(ctx, OpGetSession, http.MethodGet, sessionsPath(app, user)+"/"+url.PathEscape(id), nil)
	if err != nil {
		return core.EmptySession, err
	}
	if !isSuccess(status) {
		return core.EmptySession, &core.StatusError{Op: OpGetSession, Status: status, Body: string(raw)}
	}
	s, err := decodeSession(raw, app, user)
	if err != nil {
		return core.EmptySession, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// ListSessions returns the sessions of (app, user). Both the bare array and
// the {"sessions": [...]} envelope are accepted.
func (c *Client) ListSessions(ctx context.Context, app, user string) ([]core.Session, error) {
	status, raw, err := c.do(ctx, OpListSessions, http.MethodGet, sessionsPath(app, user), nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, &core.StatusError{Op: OpListSessions, Status: status, Body: string(raw)}
	}

	list := gjson.ParseBytes(raw)
	if list.IsObject() {
		list = list.Get("sessions")
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("list sessions: unexpected body")
	}
	var sessions []core.Session
	if err := json.Unmarshal([]byte(list.Raw), &sessions); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// DeleteSession deletes s on the server. An empty session fails with
// core.ErrInvalidSession without touching the network. Any 2xx counts as
// success; otherwise *core.SessionTerminateError is returned.
func (c *Client) DeleteSession(ctx context.Context, s core.Session) error {
	if !s.IsActive() {
		return core.ErrInvalidSession
	}
	status, raw, err := c.do(ctx, OpDeleteSession, http.MethodDelete, sessionsPath(s.AppName, s.UserID)+"/"+url.PathEscape(s.ID), nil)
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return &core.SessionTerminateError{Status: status, Body: string(raw)}
	}
	return nil
}

// Run submits one turn and returns the events of the response in order.
// The request is validated first; an invalid one never reaches the network.
func (c *Client) Run(ctx context.Context, req core.RunRequest) ([]core.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	status, raw, err := c.do(ctx, OpRun, http.MethodPost, "/run", req)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, &core.StatusError{Op: OpRun, Status: status, Body: string(raw)}
	}

	events, err := core.ParseRunResponse(raw)
	if err != nil {
		var mre *core.MalformedResponseError
		if errors.As(err, &mre) {
			c.logger.Debug("malformed run response", "session_id", req.SessionID, "body", string(raw))
		}
		return nil, err
	}
	return events, nil
}

// ListApps returns the agent applications deployed on the server.
func (c *Client) ListApps(ctx context.Context) ([]string, error) {
	status, raw, err := c.do(ctx, OpListApps, http.MethodGet, "/list-apps", nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, &core.StatusError{Op: OpListApps, Status: status, Body: string(raw)}
	}
	var apps []string
	if err := json.Unmarshal(raw, &apps); err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}
	return apps, nil
}

// ListArtifacts returns the names of the artifacts saved in s.
func (c *Client) ListArtifacts(ctx context.Context, s core.Session) ([]string, error) {
	if !s.IsActive() {
		return nil, core.ErrInvalidSession
	}
	status, raw, err := c.do(ctx, OpListArtifacts, http.MethodGet, artifactsPath(s), nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, &core.StatusError{Op: OpListArtifacts, Status: status, Body: string(raw)}
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	return names, nil
}

// ListArtifactVersions returns the saved versions of one artifact.
func (c *Client) ListArtifactVersions(ctx context.Context, s core.Session, name string) ([]int, error) {
	if !s.IsActive() {
		return nil, core.ErrInvalidSession
	}
	path := artifactsPath(s) + "/" + url.PathEscape(name) + "/versions"
	status, raw, err := c.do(ctx, OpListArtifactVersions, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, &core.StatusError{Op: OpListArtifactVersions, Status: status, Body: string(raw)}
	}
	var versions []int
	if err := json.Unmarshal(raw, &versions); err != nil {
		return nil, fmt.Errorf("list artifact versions: %w", err)
	}
	return versions, nil
}

// LoadArtifact fetches one version of an artifact as a part. Pass
// LatestVersion for the newest one.
func (c *Client) LoadArtifact(ctx context.Context, s core.Session, name string, version int) (core.Part, error) {
	if !s.IsActive() {
		return nil, core.ErrInvalidSession
	}
	path := artifactsPath(s) + "/" + url.PathEscape(name)
	if version >= 0 {
		path += "?version=" + strconv.Itoa(version)
	}
	status, raw, err := c.do(ctx, OpLoadArtifact, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, &core.StatusError{Op: OpLoadArtifact, Status: status, Body: string(raw)}
	}
	if r := gjson.ParseBytes(raw); !r.IsObject() {
		return nil, &core.StatusError{Op: OpLoadArtifact, Status: http.StatusNotFound, Body: string(raw)}
	}
	return core.DecodePart(raw)
}

type httpCallLogger interface {
	LogHTTPCall(method, path string, status int, dur time.Duration, err error)
}

// do performs one call and returns the status and the full body. Only
// failures to obtain a response are returned as errors.
func (c *Client) do(ctx context.Context, op, method, path string, body any) (int, []byte, error) {
	u := c.baseURL + path

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, &core.TransportError{Op: op, URL: u, Err: err}
		}
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, nil, &core.TransportError{Op: op, URL: u, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	status, raw, err := c.roundTrip(req)
	if err != nil {
		err = &core.TransportError{Op: op, URL: u, Err: err}
	}
	c.logCall(method, path, status, time.Since(start), err)
	return status, raw, err
}

func (c *Client) roundTrip(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, raw, nil
}

func (c *Client) logCall(method, path string, status int, dur time.Duration, err error) {
	if l, ok := c.logger.(httpCallLogger); ok {
		l.LogHTTPCall(method, path, status, dur, err)
		return
	}
	if err != nil {
		c.logger.Error("HTTP call failed", "method", method, "path", path, "status", status, "duration", dur, "error", err)
		return
	}
	c.logger.Debug("HTTP call completed", "method", method, "path", path, "status", status, "duration", dur)
}

func sessionsPath(app, user string) string {
	return "/apps/" + url.PathEscape(app) + "/users/" + url.PathEscape(user) + "/sessions"
}

func artifactsPath(s core.Session) string {
	return sessionsPath(s.AppName, s.UserID) + "/" + url.PathEscape(s.ID) + "/artifacts"
}

func isSuccess(status int) bool { return status >= 200 && status < 300 }

// decodeSession decodes a session body and fills identity fields the server
// left out.
func decodeSession(raw []byte, app, user string) (core.Session, error) {
	var s core.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return core.EmptySession, err
	}
	if !s.IsActive() {
		return core.EmptySession, fmt.Errorf("server returned a session without id")
	}
	if s.AppName == "" {
		s.AppName = app
	}
	if s.UserID == "" {
		s.UserID = user
	}
	return s, nil
}
