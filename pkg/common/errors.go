package common

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a source, chunk, node or edge that does not exist in
// the caller's tenant. A record owned by another tenant reports the same
// error so existence cannot be probed across tenants.
var ErrNotFound = errors.New("not found")

// ValidationError rejects caller input before any storage access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConsistencyError is raised synchronously when a dependent row would
// diverge from its parent's scope, for example a chunk whose tenant does
// not match its source. The enclosing write is aborted as a whole.
type ConsistencyError struct {
	Field string
	Have  string
	Want  string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s mismatch: have %q, parent has %q", e.Field, e.Have, e.Want)
}

// UpstreamError wraps a failure of an external provider (embedding or
// extraction) so callers can distinguish it from local errors and retry
// or degrade.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
