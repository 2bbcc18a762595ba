// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Sentinel errors for batch mutations and merge/export operations. Callers
// match them with errors.Is; operations wrap them with the offending path
// or entry name.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrNotFound          = errors.New("entry not found")
	ErrOutOfRange        = errors.New("position out of range")
	ErrDuplicateName     = errors.New("duplicate display name")
	ErrSourceMissing     = errors.New("source file missing")
	ErrCorruptSource     = errors.New("source file unreadable")
	ErrWritePermission   = errors.New("write permission denied")
	ErrBatchLocked       = errors.New("batch locked by running operation")
	ErrOperationActive   = errors.New("operation already in flight")
)
