package domain

import "errors"

var (
	// ErrProviderUnavailable means a telemetry provider could not be reached,
	// answered with a non-success status, or returned an implausibly short body.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrInsufficientData means a feed was fetched but fewer than
	// MinReadings rows could be decoded from it.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrUnknownRegion is returned for a region key absent from the registry.
	ErrUnknownRegion = errors.New("unknown region")

	// ErrClassifierUnavailable is returned for every prediction while the
	// model could not be loaded.
	ErrClassifierUnavailable = errors.New("classifier not loaded")

	// ErrMissingField marks a request without a required input field.
	ErrMissingField = errors.New("missing required field")
)
