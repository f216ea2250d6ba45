package domain

import "errors"

var (
	// ErrInvalidRange is returned for range input that matches neither accepted shape
	ErrInvalidRange = errors.New("invalid range")

	// ErrProbeLaunch is returned when the probe could not run or exited unexpectedly
	ErrProbeLaunch = errors.New("probe failed")

	// ErrProbeTimeout is returned when the probe did not finish within its deadline
	ErrProbeTimeout = errors.New("probe timed out")
)
