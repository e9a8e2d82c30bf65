package adkfake

import (
	"sort"
	"sync"

	"github.com/hupe1980/adkclient/core"
)

type sessionKey struct {
	app, user, id string
}

// store is a volatile session table keyed by (app, user, id). It is safe for
// concurrent access. Each returned session is cloned to prevent external
// mutation of internal state.
type store struct {
	mu        sync.RWMutex
	sessions  map[sessionKey]*core.Session
	artifacts map[sessionKey]map[string][]core.Part
}

func newStore() *store {
	return &store{
		sessions:  make(map[sessionKey]*core.Session),
		artifacts: make(map[sessionKey]map[string][]core.Part),
	}
}

// create stores a new session and reports false when the id is taken.
func (s *store) create(sess core.Session) (core.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := sessionKey{sess.AppName, sess.UserID, sess.ID}
	if _, exists := s.sessions[k]; exists {
		return core.Session{}, false
	}
	if sess.State == nil {
		sess.State = map[string]any{}
	}
	s.sessions[k] = clone(&sess)
	return *clone(&sess), true
}

func (s *store) get(app, user, id string) (core.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionKey{app, user, id}]
	if !ok {
		return core.Session{}, false
	}
	return *clone(sess), true
}

// list returns the sessions of one (app, user) pair ordered by id, without
// their events.
func (s *store) list(app, user string) []core.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Session{}
	for k, sess := range s.sessions {
		if k.app != app || k.user != user {
			continue
		}
		c := clone(sess)
		c.Events = nil
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *store) delete(app, user, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey{app, user, id})
	delete(s.artifacts, sessionKey{app, user, id})
}

// putArtifact appends a new version of name and returns its number. It
// reports false for unknown sessions.
func (s *store) putArtifact(app, user, id, name string, p core.Part) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := sessionKey{app, user, id}
	if _, ok := s.sessions[k]; !ok {
		return 0, false
	}
	byName, ok := s.artifacts[k]
	if !ok {
		byName = make(map[string][]core.Part)
		s.artifacts[k] = byName
	}
	byName[name] = append(byName[name], p)
	return len(byName[name]) - 1, true
}

// artifactNames returns the sorted artifact names of a session.
func (s *store) artifactNames(app, user, id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := []string{}
	for name := range s.artifacts[sessionKey{app, user, id}] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// artifact returns one version, or the latest when version is negative.
func (s *store) artifact(app, user, id, name string, version int) (core.Part, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.artifacts[sessionKey{app, user, id}][name]
	if len(versions) == 0 {
		return nil, false
	}
	if version < 0 {
		version = len(versions) - 1
	}
	if version >= len(versions) {
		return nil, false
	}
	return versions[version], true
}

func (s *store) artifactVersions(app, user, id, name string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []int{}
	for v := range s.artifacts[sessionKey{app, user, id}][name] {
		out = append(out, v)
	}
	return out
}

// appendEvents adds events to an existing session, merges their state
// deltas and bumps the update time. It reports false for unknown sessions.
func (s *store) appendEvents(app, user, id string, now float64, events ...core.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionKey{app, user, id}]
	if !ok {
		return false
	}
	for _, ev := range events {
		sess.Events = append(sess.Events, ev)
		if ev.Actions == nil {
			continue
		}
		for k, v := range ev.Actions.StateDelta {
			sess.State[k] = v
		}
	}
	sess.LastUpdateTime = now
	return true
}

func clone(sess *core.Session) *core.Session {
	c := *sess
	if sess.State != nil {
		c.State = make(map[string]any, len(sess.State))
		for k, v := range sess.State {
			c.State[k] = v
		}
	}
	if sess.Events != nil {
		c.Events = append([]core.Event(nil), sess.Events...)
	}
	return &c
}
