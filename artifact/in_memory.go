package artifact

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/adkclient/core"
)

// Fetcher loads one artifact version of a session from the server.
type Fetcher interface {
	LoadArtifact(ctx context.Context, s core.Session, name string, version int) (core.Part, error)
}

// InMemoryStore is an in‑process cache of artifacts fetched from the server.
// It keeps every loaded version in a nested map guarded by an RWMutex.
//
// Layout: sessionID -> artifact name -> version -> part
//
// It does not enforce retention limits; drop a session with DeleteSession
// once it is terminated.
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]map[string]map[int]core.Part
}

// NewInMemoryStore returns an empty in‑memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[string]map[string]map[int]core.Part)}
}

// Save stores (or overwrites) one artifact version.
func (a *InMemoryStore) Save(sessionID, name string, version int, p core.Part) {
	a.mu.Lock()
	defer a.mu.Unlock()
	byName, ok := a.artifacts[sessionID]
	if !ok {
		byName = make(map[string]map[int]core.Part)
		a.artifacts[sessionID] = byName
	}
	versions, ok := byName[name]
	if !ok {
		versions = make(map[int]core.Part)
		byName[name] = versions
	}
	versions[version] = p
}

// Get returns one cached version or ErrNotFound.
func (a *InMemoryStore) Get(sessionID, name string, version int) (core.Part, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.artifacts[sessionID][name][version]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// Latest returns the highest cached version of name or ErrNotFound.
func (a *InMemoryStore) Latest(sessionID, name string) (core.Part, int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	versions, ok := a.artifacts[sessionID][name]
	if !ok || len(versions) == 0 {
		return nil, 0, ErrNotFound
	}
	latest := -1
	for v := range versions {
		if v > latest {
			latest = v
		}
	}
	return versions[latest], latest, nil
}

// List returns the artifact names cached for the session, sorted. The slice
// is a snapshot and safe for caller mutation.
func (a *InMemoryStore) List(sessionID string) []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.artifacts[sessionID]))
	for name := range a.artifacts[sessionID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Delete removes every version of name or returns ErrNotFound.
func (a *InMemoryStore) Delete(sessionID, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	byName, ok := a.artifacts[sessionID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := byName[name]; !ok {
		return ErrNotFound
	}
	delete(byName, name)
	return nil
}

// DeleteSession drops everything cached for the session.
func (a *InMemoryStore) DeleteSession(sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.artifacts, sessionID)
}

// syncConcurrency bounds the parallel fetches of one Sync call.
const syncConcurrency = 4

// Sync loads the versions named by an artifact delta that are not cached
// yet. Every name is attempted; failures are combined.
func (a *InMemoryStore) Sync(ctx context.Context, f Fetcher, s core.Session, delta map[string]int) error {
	names := make([]string, 0, len(delta))
	for name := range delta {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		mu     sync.Mutex
		result *multierror.Error
		g      errgroup.Group
	)
	g.SetLimit(syncConcurrency)
	for _, name := range names {
		version := delta[name]
		if _, err := a.Get(s.ID, name, version); err == nil {
			continue
		}
		g.Go(func() error {
			p, err := f.LoadArtifact(ctx, s, name, version)
			if err != nil {
				mu.Lock()
				result = multierror.Append(result, fmt.Errorf("artifact %s v%d: %w", name, version, err))
				mu.Unlock()
				return nil
			}
			a.Save(s.ID, name, version, p)
			return nil
		})
	}
	_ = g.Wait()
	return result.ErrorOrNil()
}
