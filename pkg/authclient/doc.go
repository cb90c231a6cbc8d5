// Package authclient is the Go client for the studio auth API.
//
// A Session owns the stored token pair and a Coordinator. The Coordinator is an
// http.RoundTripper that attaches the access token to every request and, on a 401,
// runs at most one refresh exchange at a time. Requests that fail while a refresh is
// in flight are queued and replayed in arrival order once new tokens are stored. A
// failed refresh ends the session: stored credentials are cleared, every queued
// request is rejected with ErrSessionTerminated, and the termination hook runs once.
package authclient
