// Package chat provides the conversational assistant collaborator and the
// single-flight query slot that fronts it.
package chat

import "context"

// Mode selects how a question is framed to the assistant.
type Mode string

const (
	// ModeSystem frames the question as a system event to troubleshoot.
	ModeSystem Mode = "systemMessage"
	// ModeUser frames the question as a general operator query.
	ModeUser Mode = "userMessage"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeSystem || m == ModeUser
}

// Assistant answers MQ questions. Implementations are external collaborators;
// the session layer only depends on this interface.
type Assistant interface {
	Ask(ctx context.Context, question string, mode Mode) (string, error)
}
