package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/roach88/bandwire/internal/codec"
	"github.com/roach88/bandwire/internal/model"
	"github.com/roach88/bandwire/internal/wire"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Server replied ERROR/CORRUPTED, unreachable, or the server failed
	ExitCommandError = 2 // Command error (bad arguments, band file, configuration)
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeConfig      = "E002" // Configuration error
	ErrCodeArguments   = "E003" // Invalid command arguments
	ErrCodeBandFile    = "E004" // Band file unreadable or off-schema
	ErrCodeUnreachable = "E005" // No reply after every attempt
	ErrCodeExchange    = "E006" // Transport or decode failure
	ErrCodeRejected    = "E007" // Server replied ERROR
	ErrCodeCorrupted   = "E008" // Server replied CORRUPTED
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// Reported is set when the command already printed the failure
	// through its OutputFormatter.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// IsReported reports whether err was already printed by the command.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}

// markReported flags err as printed, wrapping plain errors as ExitFailure.
func markReported(err error) error {
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = WrapExitError(ExitFailure, "command failed", err)
		err = exitErr
	}
	exitErr.Reported = true
	return err
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Verbose bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// ServerReply is the JSON form of a server response.
type ServerReply struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	Payload   []any  `json:"payload"`
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Reply outputs a server response. SUCCESS goes through Success; ERROR and
// CORRUPTED go through Error with the reply as details.
func (f *OutputFormatter) Reply(resp codec.Response) error {
	if resp.OK() {
		if f.Format == "json" {
			reply, err := toServerReply(resp)
			if err != nil {
				return err
			}
			return f.Success(reply)
		}
		return f.Success(renderReply(resp))
	}

	code := ErrCodeRejected
	if resp.Status == codec.StatusCorrupted {
		code = ErrCodeCorrupted
	}
	var details any
	if f.Format == "json" || f.Verbose {
		details = map[string]string{"request_id": resp.RequestID, "status": string(resp.Status)}
	}
	return f.Error(code, resp.Message, details)
}

func toServerReply(resp codec.Response) (ServerReply, error) {
	payload, err := wire.ToNodes(resp.Payload)
	if err != nil {
		return ServerReply{}, fmt.Errorf("render payload: %w", err)
	}
	return ServerReply{
		RequestID: resp.RequestID,
		Status:    string(resp.Status),
		Message:   resp.Message,
		Payload:   payload,
	}, nil
}

// renderReply formats a SUCCESS reply as human-readable text.
func renderReply(resp codec.Response) string {
	var b strings.Builder
	b.WriteString(resp.Message)
	for _, v := range resp.Payload {
		switch val := v.(type) {
		case wire.Band:
			b.WriteString("\n")
			b.WriteString(renderBand(val.Model()))
		case wire.Bands:
			for _, band := range val {
				b.WriteString("\n")
				b.WriteString(renderBand(band))
			}
		case wire.String:
			// Message already lists string payloads (help, history).
		default:
			b.WriteString("\n")
			b.WriteString(wire.Describe(v))
		}
	}
	return b.String()
}

func renderBand(band model.Band) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s: participants=%d albums=%d coordinates=(%d, %s)",
		band.ID, band.Name, band.NumberOfParticipants, band.AlbumsCount,
		band.Coordinates.X, wire.Describe(wire.Float(band.Coordinates.Y)))
	if band.Genre != "" {
		fmt.Fprintf(&b, " genre=%s", band.Genre)
	}
	if band.BestAlbum != nil {
		fmt.Fprintf(&b, " best_album=%q (%d)", band.BestAlbum.Name, band.BestAlbum.Length)
	}
	if !band.CreationDate.IsZero() {
		fmt.Fprintf(&b, " created=%s", band.CreationDate.UTC().Format(time.RFC3339))
	}
	return b.String()
}
