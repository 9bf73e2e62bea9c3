// Package server runs the datagram server loop.
//
// ARCHITECTURE:
//
// Reader + Single-Writer Dispatch Loop:
// One goroutine reads datagrams from the listener and enqueues them on a
// FIFO queue. A second goroutine (the caller of Run) dequeues them one at a
// time and processes each to completion: decode, dispatch, encode, reply.
// Network reads never block command execution, and no command spans more
// than one datagram. The queue is bounded (WithQueueSize); datagrams arriving
// while it is full are dropped and logged, as a full socket buffer would.
//
// Reply Cache:
// A client resends the identical request when a reply is merely slow. The
// server remembers the encoded reply per request id (bounded LRU) and
// answers a duplicate from the cache instead of applying the command again.
//
// The server never crashes on bad input: malformed envelopes, unknown
// commands and handler panics all produce a response.
package server
