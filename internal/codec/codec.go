package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/bandwire/internal/wire"
)

// EncodeRequest serialises a request envelope.
func EncodeRequest(req Request) ([]byte, error) {
	if req.Command == "" {
		return nil, fmt.Errorf("encode request: empty command name")
	}
	args, err := wire.ToNodes(req.Args)
	if err != nil {
		return nil, fmt.Errorf("encode request %q: %w", req.Command, err)
	}
	return wire.MarshalCanonical(map[string]any{
		"type":    typeRequest,
		"id":      req.ID,
		"command": req.Command,
		"args":    args,
	})
}

// DecodeRequest parses a request envelope.
func DecodeRequest(data []byte) (Request, error) {
	obj, err := decodeObject(data, typeRequest)
	if err != nil {
		return Request{}, err
	}
	id, err := stringMember(obj, "id", typeRequest)
	if err != nil {
		return Request{}, err
	}
	command, err := stringMember(obj, "command", typeRequest)
	if err != nil {
		return Request{}, err
	}
	if command == "" {
		return Request{}, &DecodeError{Kind: typeRequest, Reason: "empty command name"}
	}
	args, err := wire.FromNodes(obj["args"])
	if err != nil {
		return Request{}, &DecodeError{Kind: typeRequest, Reason: "bad args", Err: err}
	}
	return Request{ID: id, Command: command, Args: args}, nil
}

// EncodeResponse serialises a response envelope.
func EncodeResponse(resp Response) ([]byte, error) {
	if !ValidStatuses[resp.Status] {
		return nil, fmt.Errorf("encode response: invalid status %q", resp.Status)
	}
	payload, err := wire.ToNodes(resp.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return wire.MarshalCanonical(map[string]any{
		"type":       typeResponse,
		"request_id": resp.RequestID,
		"status":     string(resp.Status),
		"message":    resp.Message,
		"payload":    payload,
	})
}

// DecodeResponse parses a response envelope.
func DecodeResponse(data []byte) (Response, error) {
	obj, err := decodeObject(data, typeResponse)
	if err != nil {
		return Response{}, err
	}
	requestID, err := stringMember(obj, "request_id", typeResponse)
	if err != nil {
		return Response{}, err
	}
	status, err := stringMember(obj, "status", typeResponse)
	if err != nil {
		return Response{}, err
	}
	if !ValidStatuses[Status(status)] {
		return Response{}, &DecodeError{Kind: typeResponse, Reason: fmt.Sprintf("unknown status %q", status)}
	}
	message, err := stringMember(obj, "message", typeResponse)
	if err != nil {
		return Response{}, err
	}
	payload, err := wire.FromNodes(obj["payload"])
	if err != nil {
		return Response{}, &DecodeError{Kind: typeResponse, Reason: "bad payload", Err: err}
	}
	return Response{
		RequestID: requestID,
		Status:    Status(status),
		Message:   message,
		Payload:   payload,
	}, nil
}

// decodeObject parses exactly one JSON object and checks its type discriminator.
func decodeObject(data []byte, kind string) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &DecodeError{Kind: kind, Reason: "empty envelope"}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, &DecodeError{Kind: kind, Reason: "malformed JSON", Err: err}
	}
	if obj == nil {
		return nil, &DecodeError{Kind: kind, Reason: "envelope is not an object"}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, &DecodeError{Kind: kind, Reason: "trailing data after envelope"}
	}

	got, err := stringMember(obj, "type", kind)
	if err != nil {
		return nil, err
	}
	if got != kind {
		return nil, &DecodeError{Kind: kind, Reason: fmt.Sprintf("envelope type is %q", got)}
	}
	return obj, nil
}

func stringMember(obj map[string]any, key, kind string) (string, error) {
	raw, ok := obj[key]
	if !ok {
		return "", &DecodeError{Kind: kind, Reason: fmt.Sprintf("missing %q", key)}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &DecodeError{Kind: kind, Reason: fmt.Sprintf("%q has type %T", key, raw)}
	}
	return s, nil
}
