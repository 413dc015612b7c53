// Package server wires and runs Lock Keeper's gRPC transport.
//
// It registers the single bidirectional-streaming RPC spec §6 describes
// against internal/dispatch, and provides startup, signal handling, and
// graceful shutdown for it.
package server
