package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/mqsentinel/internal/mqadmin"
)

// ErrNoSession is returned by data-path operations while no session is active.
var ErrNoSession = errors.New("session: no active session")

// ValidationError reports missing required login fields. It is raised before
// any connection attempt.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("session: missing required fields: %s", strings.Join(e.Missing, ", "))
}

// ConnectError reports a failure to reach or authenticate against the admin
// API. No listener process is spawned.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("session: admin API connect: %v", e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Credential reports whether the failure was an authentication rejection
// rather than a network problem, so operators act on the right subsystem.
func (e *ConnectError) Credential() bool {
	var apiErr *mqadmin.APIError
	return errors.As(e.Err, &apiErr) && apiErr.Unauthorized()
}

// ManagerNotRunningError means the admin API answered but the queue manager
// is not in running state.
type ManagerNotRunningError struct {
	State string
}

func (e *ManagerNotRunningError) Error() string {
	return fmt.Sprintf("session: queue manager is not running (state %q)", e.State)
}

// HandshakeTimeoutError means the listener never called back within the bound.
type HandshakeTimeoutError struct {
	Timeout time.Duration
}

func (e *HandshakeTimeoutError) Error() string {
	return fmt.Sprintf("session: listener did not confirm startup within %s", e.Timeout)
}

// HandshakeFailure carries the listener's own startup failure diagnostic.
type HandshakeFailure struct {
	Message string
}

func (e *HandshakeFailure) Error() string {
	return fmt.Sprintf("session: listener reported startup failure: %s", e.Message)
}
