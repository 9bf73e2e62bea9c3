package codec

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/bandwire/internal/wire"
)

// Status classifies a command response.
type Status string

const (
	// StatusSuccess means the command was applied (or the query answered).
	StatusSuccess Status = "SUCCESS"
	// StatusError means the command was rejected: unknown name, bad arguments or missing record.
	StatusError Status = "ERROR"
	// StatusCorrupted means a supplied record failed domain validation.
	StatusCorrupted Status = "CORRUPTED"
)

// ValidStatuses defines allowed statuses.
var ValidStatuses = map[Status]bool{
	StatusSuccess:   true,
	StatusError:     true,
	StatusCorrupted: true,
}

const (
	typeRequest  = "request"
	typeResponse = "response"
)

// Request is a command invocation sent by a client.
// ID correlates retries and replies; it is assigned once, before the first send.
type Request struct {
	ID      string
	Command string
	Args    []wire.Value
}

// NewRequest builds a request with a fresh time-ordered UUIDv7 id.
func NewRequest(command string, args ...wire.Value) Request {
	if args == nil {
		args = []wire.Value{}
	}
	return Request{
		ID:      uuid.Must(uuid.NewV7()).String(),
		Command: command,
		Args:    args,
	}
}

// Response is the server's answer to a Request.
type Response struct {
	RequestID string
	Status    Status
	Message   string
	Payload   []wire.Value
}

// Success builds a SUCCESS response.
func Success(message string, payload ...wire.Value) Response {
	return newResponse(StatusSuccess, message, payload)
}

// Errorf builds an ERROR response.
func Errorf(format string, args ...any) Response {
	return newResponse(StatusError, fmt.Sprintf(format, args...), nil)
}

// Corrupted builds a CORRUPTED response.
func Corrupted(message string) Response {
	return newResponse(StatusCorrupted, message, nil)
}

func newResponse(status Status, message string, payload []wire.Value) Response {
	if payload == nil {
		payload = []wire.Value{}
	}
	return Response{Status: status, Message: message, Payload: payload}
}

// WithRequestID returns a copy of the response addressed to the given request.
func (r Response) WithRequestID(id string) Response {
	r.RequestID = id
	return r
}

// OK reports whether the response has status SUCCESS.
func (r Response) OK() bool {
	return r.Status == StatusSuccess
}

func (r Response) String() string {
	return fmt.Sprintf("%s: %s", r.Status, r.Message)
}
