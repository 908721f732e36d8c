// Package store defines the contracts for the shared state store: a
// string-keyed KV surface, a FIFO blocking queue, and the typed per-job
// record accessors layered on top of them. Implementations live under
// internal/platform; an in-memory implementation in this package backs
// tests and local development.
package store
