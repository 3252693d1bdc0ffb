// Package session implements the single-active-session state machine that
// coordinates the admin API client, the companion listener process and the
// login handshake, and owns the issue-tracking caches tied to a session.
package session

// State is the session lifecycle position. Exactly one session exists
// process-wide; transitions happen only inside the Orchestrator.
type State string

const (
	StateLoggedOut         State = "LoggedOut"
	StateConnecting        State = "Connecting"
	StateAwaitingHandshake State = "AwaitingHandshake"
	StateActive            State = "Active"
	StateFailed            State = "Failed"
)
