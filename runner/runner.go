package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/adkclient/artifact"
	"github.com/hupe1980/adkclient/client"
	"github.com/hupe1980/adkclient/core"
	"github.com/hupe1980/adkclient/logging"
	"github.com/hupe1980/adkclient/session"
)

var (
	// ErrRunInProgress is returned when a turn is submitted while another one
	// on the same runner has not returned yet.
	ErrRunInProgress = errors.New("a run is already in progress")

	// ErrNoSuchChoice is returned by Choose for an index outside the current
	// choice list.
	ErrNoSuchChoice = errors.New("no such choice")
)

// Submitter posts one turn and returns the response events.
type Submitter interface {
	Run(ctx context.Context, req core.RunRequest) ([]core.Event, error)
}

var (
	_ Submitter        = (*client.Client)(nil)
	_ artifact.Fetcher = (*client.Client)(nil)
)

// Options holds configuration overrides passed to New().
type Options struct {
	// AppName of the agent application sessions are created for.
	AppName string
	// UserID sessions are created for.
	UserID string
	// CreateOptions are applied to every session created by Start.
	CreateOptions []session.CreateOption
	// Logger receives run outcomes and observed actions.
	Logger logging.Logger
	// Artifacts, when set, is filled with the artifact versions each turn
	// reports. The submitter must also implement artifact.Fetcher.
	Artifacts *artifact.InMemoryStore
}

// Runner drives a conversation: it starts and stops the session through a
// session.Manager, submits turns against the tracked session and keeps the
// text fragments of the last response as the list of branching choices.
// Public methods are safe for concurrent use; only one turn is in flight at
// a time.
type Runner struct {
	manager   *session.Manager
	submitter Submitter
	appName   string
	userID    string
	createOps []session.CreateOption
	logger    logging.Logger
	artifacts *artifact.InMemoryStore

	runMu sync.Mutex // held for the duration of a turn

	mu      sync.RWMutex
	last    core.RunResult
	choices []string
	cancel  context.CancelFunc
}

// New constructs a Runner with optional overrides.
func New(m *session.Manager, s Submitter, optFns ...func(o *Options)) *Runner {
	opts := Options{
		AppName: "multi_tool_agent",
		UserID:  "user_1",
		Logger:  logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		manager:   m,
		submitter: s,
		appName:   opts.AppName,
		userID:    opts.UserID,
		createOps: opts.CreateOptions,
		logger:    opts.Logger,
		artifacts: opts.Artifacts,
	}
}

// Session returns the tracked session.
func (r *Runner) Session() core.Session { return r.manager.Current() }

// Start creates a session for the configured app and user.
func (r *Runner) Start(ctx context.Context) (core.Session, error) {
	return r.manager.Create(ctx, r.appName, r.userID, r.createOps...)
}

// Stop cancels an in-flight turn, terminates the tracked session and clears
// the choice list.
func (r *Runner) Stop(ctx context.Context) error {
	r.Cancel()
	sess := r.manager.Current()
	if err := r.manager.Terminate(ctx, sess); err != nil {
		return err
	}
	if r.artifacts != nil {
		r.artifacts.DeleteSession(sess.ID)
	}
	r.mu.Lock()
	r.last = core.RunResult{}
	r.choices = nil
	r.mu.Unlock()
	return nil
}

// Cancel aborts the in-flight turn, if any.
func (r *Runner) Cancel() {
	r.mu.RLock()
	cancel := r.cancel
	r.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
}

// Send submits text as the next user turn of the tracked session. Errors
// carried inside events do not fail the call; inspect RunResult.Err.
func (r *Runner) Send(ctx context.Context, text string) (core.RunResult, error) {
	if !r.runMu.TryLock() {
		return core.RunResult{}, ErrRunInProgress
	}
	defer r.runMu.Unlock()

	return r.submit(ctx, text)
}

// Choose re-submits the index-th text fragment of the last response as the
// next user turn.
func (r *Runner) Choose(ctx context.Context, index int) (core.RunResult, error) {
	if !r.runMu.TryLock() {
		return core.RunResult{}, ErrRunInProgress
	}
	defer r.runMu.Unlock()

	r.mu.RLock()
	n := len(r.choices)
	var text string
	if index >= 0 && index < n {
		text = r.choices[index]
	}
	r.mu.RUnlock()

	if index < 0 || index >= n {
		return core.RunResult{}, fmt.Errorf("%w: %d (have %d)", ErrNoSuchChoice, index, n)
	}
	return r.submit(ctx, text)
}

// Choices returns the text fragments of the last response.
func (r *Runner) Choices() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.choices...)
}

// Last returns the aggregate of the last successful turn.
func (r *Runner) Last() core.RunResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

type runLogger interface {
	LogRun(sessionID string, events, texts int, dur time.Duration, err error)
}

func (r *Runner) submit(ctx context.Context, text string) (core.RunResult, error) {
	sess := r.manager.Current()
	req, err := core.BuildRunRequest(sess, text)
	if err != nil {
		return core.RunResult{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
	defer func() {
		cancel()
		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
	}()

	start := time.Now()
	events, err := r.submitter.Run(ctx, req)
	if err != nil {
		r.logRun(sess.ID, 0, 0, time.Since(start), err)
		return core.RunResult{}, err
	}

	res := core.Aggregate(events)
	r.logRun(sess.ID, len(res.Events), len(res.Texts), time.Since(start), nil)
	r.logActions(sess.ID, res)
	r.syncArtifacts(ctx, sess, res.ArtifactDelta)

	r.mu.Lock()
	r.last = res
	r.choices = append([]string(nil), res.Texts...)
	r.mu.Unlock()

	return res, nil
}

// syncArtifacts fetches reported artifact versions. Failures are logged and
// do not fail the turn.
func (r *Runner) syncArtifacts(ctx context.Context, sess core.Session, delta map[string]int) {
	if r.artifacts == nil || len(delta) == 0 {
		return
	}
	f, ok := r.submitter.(artifact.Fetcher)
	if !ok {
		r.logger.Warn("runner.artifacts.no_fetcher", "session_id", sess.ID)
		return
	}
	if err := r.artifacts.Sync(ctx, f, sess, delta); err != nil {
		r.logger.Warn("runner.artifacts.sync_failed", "session_id", sess.ID, "error", err)
	}
}

func (r *Runner) logRun(sessionID string, events, texts int, dur time.Duration, err error) {
	if l, ok := r.logger.(runLogger); ok {
		l.LogRun(sessionID, events, texts, dur, err)
		return
	}
	if err != nil {
		r.logger.Error("run failed", "session_id", sessionID, "duration", dur, "error", err)
		return
	}
	r.logger.Info("run completed", "session_id", sessionID, "event_count", events, "text_count", texts, "duration", dur)
}

func (r *Runner) logActions(sessionID string, res core.RunResult) {
	if res.TransferToAgent != "" {
		r.logger.Debug("runner.event.transfer_to_agent", "target", res.TransferToAgent, "session_id", sessionID)
	}
	if res.Escalated {
		r.logger.Debug("runner.event.escalate", "session_id", sessionID)
	}
	for id := range res.RequestedAuthConfigs {
		r.logger.Debug("runner.event.auth_requested", "function_call_id", id, "session_id", sessionID)
	}
	for _, e := range res.Errors {
		r.logger.Warn("runner.event.error", "session_id", sessionID, "index", e.Index, "code", e.Code, "message", e.Message)
	}
}
