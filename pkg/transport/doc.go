// Package transport defines the boundary contracts between the HTTP layer
// and the rest of the system: the SampleStore persistence interface, the
// error-to-status mapping, and HTTP middleware for recovery, request IDs,
// and structured request logging.
//
// The concrete HTTP adapter lives in pkg/transport/http; storage adapters
// implementing SampleStore live under pkg/storage.
package transport
