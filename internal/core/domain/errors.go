package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotSupported indicates an adapter does not offer the requested capability.
	ErrNotSupported = errors.New("not supported")

	// Index Errors.

	// ErrIndexNotAvailable indicates neither a local nor a remote snapshot could be loaded.
	// Callers fall back to live search.
	ErrIndexNotAvailable = errors.New("index not available")

	// ErrSnapshotCorrupt indicates a snapshot decoded but failed validation.
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")

	// Jurisdiction Errors.

	// ErrUnknownJurisdiction indicates no adapter is registered for the jurisdiction id.
	ErrUnknownJurisdiction = errors.New("unknown jurisdiction")

	// ErrJurisdictionUnavailable indicates a jurisdiction could not be queried at all.
	ErrJurisdictionUnavailable = errors.New("jurisdiction unavailable")

	// ErrDiscoveryFailed indicates bulk discovery produced no publications for a jurisdiction.
	ErrDiscoveryFailed = errors.New("discovery failed")

	// ErrLiveSearchDisabled indicates the index is missing and live fallback is switched off.
	ErrLiveSearchDisabled = errors.New("live search disabled")

	// Upstream Errors.

	// ErrRateLimited indicates the upstream rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrUpstream indicates an upstream register returned an unusable response.
	ErrUpstream = errors.New("upstream error")
)
