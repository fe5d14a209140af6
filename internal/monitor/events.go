package monitor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Event is one resource status transition reported by the deployment service.
type Event struct {
	// LogicalID is the logical name of the resource inside its stack.
	LogicalID string
	// Kind is the resource type, e.g. "AWS::CloudFormation::Stack".
	Kind string
	// Status is the raw status string, e.g. "CREATE_COMPLETE".
	Status string
	// Reason carries the service-provided explanation, usually only set on
	// failures.
	Reason string
	// Properties holds the resource properties when the event carried them
	// and they parsed as JSON. Best effort, may be nil.
	Properties map[string]any
	// ReceivedAt is when the message was pulled from the channel.
	ReceivedAt time.Time
}

// MalformedEventError reports a message body that could not be decoded into
// an Event. Such messages are dropped and never retried.
type MalformedEventError struct {
	Reason string
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed deployment event: %s", e.Reason)
}

// envelope is the outer JSON wrapper the notification service puts around
// each status line.
type envelope struct {
	Message string `json:"Message"`
}

// eventFieldPattern matches the key='value' pairs of a status line. Values
// are either single-quoted (and may contain spaces) or a bare token.
var eventFieldPattern = regexp.MustCompile(`(?s)(\S+)=('.*?'|\S+)`)

// parseEvent decodes a raw channel message into an Event. The body is a JSON
// envelope whose Message field holds newline-free key='value' pairs such as
//
//	StackName='staging' LogicalResourceId='staging' ResourceStatus='CREATE_COMPLETE'
func parseEvent(body []byte, receivedAt time.Time) (Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Event{}, &MalformedEventError{Reason: fmt.Sprintf("invalid envelope: %v", err)}
	}
	if env.Message == "" {
		return Event{}, &MalformedEventError{Reason: "envelope has no Message field"}
	}

	fields := make(map[string]string)
	for _, m := range eventFieldPattern.FindAllStringSubmatch(env.Message, -1) {
		fields[m[1]] = strings.Trim(m[2], "'")
	}

	ev := Event{
		LogicalID:  fields["LogicalResourceId"],
		Kind:       fields["ResourceType"],
		Status:     fields["ResourceStatus"],
		Reason:     fields["ResourceStatusReason"],
		ReceivedAt: receivedAt,
	}
	if ev.LogicalID == "" || ev.Status == "" {
		return Event{}, &MalformedEventError{Reason: "message is missing LogicalResourceId or ResourceStatus"}
	}

	if raw := fields["ResourceProperties"]; raw != "" && raw != "null" {
		var props map[string]any
		if err := json.Unmarshal([]byte(raw), &props); err == nil {
			ev.Properties = props
		}
	}

	return ev, nil
}

// Stack statuses that end a deployment. Anything else is an intermediate
// transition.
const (
	StatusCreateComplete   = "CREATE_COMPLETE"
	StatusUpdateComplete   = "UPDATE_COMPLETE"
	StatusRollbackComplete = "UPDATE_ROLLBACK_COMPLETE"
	StatusCreateFailed     = "CREATE_FAILED"
	StatusUpdateFailed     = "UPDATE_FAILED"
	StatusRollbackFailed   = "UPDATE_ROLLBACK_FAILED"
)

var terminalStatuses = map[string]bool{
	StatusCreateComplete:   true,
	StatusUpdateComplete:   true,
	StatusRollbackComplete: true,
	StatusCreateFailed:     true,
	StatusUpdateFailed:     true,
	StatusRollbackFailed:   true,
}

var successStatuses = map[string]bool{
	StatusCreateComplete: true,
	StatusUpdateComplete: true,
}

// IsTerminal reports whether a stack status ends the deployment.
func IsTerminal(status string) bool {
	return terminalStatuses[status]
}
