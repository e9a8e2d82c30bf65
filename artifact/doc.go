// Package artifact caches the artifacts an agent saved during a session.
//
// Runs report new artifact versions through EventActions.ArtifactDelta
// (name -> version). InMemoryStore.Sync fetches the reported versions that
// are not cached yet through a Fetcher, normally a *client.Client, so
// callers can read them without issuing further requests.
package artifact
