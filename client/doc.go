// Package client is the HTTP transport to an ADK API server.
//
// It maps the session lifecycle onto
//
//	POST   /apps/{app}/users/{user}/sessions[/{id}]
//	GET    /apps/{app}/users/{user}/sessions[/{id}]
//	DELETE /apps/{app}/users/{user}/sessions/{id}
//
// and turn submission onto POST /run, whose body is a JSON array of events
// decoded with core.ParseRunResponse. Saved artifacts are read from
//
//	GET    /apps/{app}/users/{user}/sessions/{id}/artifacts[/{name}[/versions]]
//
// Failures are reported with the error types of package core; nothing is
// retried. Options.TokenSource and Options.Limiter add bearer authorization
// and client side pacing.
package client
