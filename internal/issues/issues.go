// Package issues tracks detected threshold and capacity conditions on
// monitored MQ objects, and operator acknowledgments that suppress them.
package issues

import "time"

// ObjectType identifies the kind of MQ object an issue refers to.
type ObjectType string

const (
	ObjectQueue       ObjectType = "queue"
	ObjectChannel     ObjectType = "channel"
	ObjectApplication ObjectType = "application"
)

// Code identifies the detected condition.
type Code string

const (
	CodeQueueFull         Code = "QUEUE_FULL"
	CodeThresholdExceeded Code = "THRESHOLD_EXCEEDED"
)

// Issue is an immutable record of one detected condition. The same logical
// issue may be recorded again on every polling cycle it remains true.
type Issue struct {
	ObjectType    ObjectType `json:"mqobjectType"`
	ObjectName    string     `json:"mqobjectName"`
	Code          Code       `json:"issueCode"`
	Message       string     `json:"message"`
	Timestamp     time.Time  `json:"timestamp"`
	ObjectDetails string     `json:"objectDetails,omitempty"` // snapshot dump, absent when not captured
}

// Key returns the identity used for resolution matching.
func (i Issue) Key() ResolutionKey {
	return ResolutionKey{ObjectName: i.ObjectName, Code: i.Code}
}

// ResolutionKey identifies an acknowledged (object, code) pair.
type ResolutionKey struct {
	ObjectName string
	Code       Code
}
