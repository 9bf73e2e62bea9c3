// Package transport provides the bound datagram endpoints used by clients
// and the server.
//
// A Channel (client side) and a Listener (server side) move raw bytes only:
// there is no retry, no correlation and no ordering here. Those belong to
// package exchange. Each datagram carries exactly one envelope; payloads larger
// than MaxDatagramSize are rejected rather than fragmented.
//
// Error classes:
//   - ErrTimeout: nothing arrived within the wait window (retryable upstream)
//   - ErrInterrupted: the caller's context was cancelled while waiting
//   - *TransportError: a local socket failure (never retried)
package transport
