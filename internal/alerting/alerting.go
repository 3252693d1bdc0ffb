// Package alerting fans detected queue issues out to chat platforms
// (Slack, Discord). Delivery is outbound-only and best-effort: a failing
// adapter never blocks issue detection.
package alerting

import (
	"context"
	"fmt"

	"github.com/zulandar/mqsentinel/internal/issues"
)

// Adapter is the interface platform-specific senders must satisfy.
type Adapter interface {
	// Connect establishes a connection to the chat platform.
	Connect(ctx context.Context) error

	// Send delivers one formatted event to the platform.
	Send(ctx context.Context, event Event) error

	// Close gracefully shuts down the adapter connection.
	Close() error
}

// Event is an issue formatted for display in chat.
type Event struct {
	Title    string  // headline, e.g. "Queue DEV.ORDERS is full"
	Body     string  // detail text
	Severity string  // "warning", "error"
	Color    string  // sidebar color hint
	Fields   []Field // key-value metadata pairs
}

// Field is a key-value pair displayed alongside an event.
type Field struct {
	Name  string
	Value string
	Short bool // hint: render side-by-side with another field
}

// Color constants for event severity.
const (
	ColorWarning = "#ff9800"
	ColorError   = "#e53935"
)

// severityColor maps a severity string to a sidebar color.
func severityColor(severity string) string {
	if severity == "error" {
		return ColorError
	}
	return ColorWarning
}

// issueSeverity maps an issue code to a display severity. A full queue is
// already losing messages; a crossed threshold is a warning.
func issueSeverity(code issues.Code) string {
	if code == issues.CodeQueueFull {
		return "error"
	}
	return "warning"
}

// FromIssue formats a detected issue as a chat event.
func FromIssue(issue issues.Issue) Event {
	severity := issueSeverity(issue.Code)

	var title string
	switch issue.Code {
	case issues.CodeQueueFull:
		title = fmt.Sprintf("Queue %s is full", issue.ObjectName)
	case issues.CodeThresholdExceeded:
		title = fmt.Sprintf("Queue %s crossed its depth threshold", issue.ObjectName)
	default:
		title = fmt.Sprintf("%s on %s %s", issue.Code, issue.ObjectType, issue.ObjectName)
	}

	return Event{
		Title:    title,
		Body:     issue.Message,
		Severity: severity,
		Color:    severityColor(severity),
		Fields: []Field{
			{Name: "Object", Value: issue.ObjectName, Short: true},
			{Name: "Type", Value: string(issue.ObjectType), Short: true},
			{Name: "Code", Value: string(issue.Code), Short: true},
		},
	}
}
