package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrIntegrity indicates an observation that violates a data
	// integrity rule and must not be written
	ErrIntegrity = errors.New("integrity violation")

	// ErrStoreUnavailable indicates the state database cannot be
	// opened or is locked by another process
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNoTeams indicates no teams are configured
	ErrNoTeams = errors.New("no teams configured")
)
