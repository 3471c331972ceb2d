// Package common holds error sentinels shared across the hub, the scout
// client and the reconciliation tooling.
package common

import "errors"

var (

	// repository specific errors
	ErrNotFound = errors.New("not found")

	// ErrStorage marks a failure of the underlying durable store. Callers
	// surface it as a failed request; the producer retries the whole
	// submission later, relying on upsert idempotency.
	ErrStorage = errors.New("storage error")

	// ErrValidation marks malformed or missing request fields. Never retried.
	ErrValidation = errors.New("validation error")

	// ErrTransport marks an unreachable peer (hub or remote store). For the
	// offline queue this is the routine case: counted, not treated as an
	// application error.
	ErrTransport = errors.New("transport error")

	// ErrRemoteConflict means the remote store already resolved the write
	// under the natural key. Counts as handled, not as a failure.
	ErrRemoteConflict = errors.New("remote conflict")
)
