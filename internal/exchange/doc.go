// Package exchange turns a best-effort datagram round trip into a bounded
// request/response operation.
//
// The Exchanger sends one encoded request, waits up to Timeout for the reply
// carrying the same request id, and resends the identical bytes on timeout
// until Attempts is exhausted. The call blocks for at most Attempts x Timeout.
//
// Failure classes seen by callers:
//   - ErrServerUnreachable: every attempt timed out
//   - *codec.DecodeError: the final attempt got a malformed reply
//   - *transport.TransportError: local socket failure, returned at once
//   - ErrInterrupted: the caller's context was cancelled
//
// ERROR and CORRUPTED responses are not failures here; they are valid
// responses the caller interprets via Status.
package exchange
