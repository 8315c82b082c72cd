package metrics

import "errors"

var (
	// ErrDuplicateName is returned when an instrument name is registered twice.
	ErrDuplicateName = errors.New("metrics: duplicate instrument name")

	// ErrLabelMismatch is returned when observation labels differ from the declared label names.
	ErrLabelMismatch = errors.New("metrics: label mismatch")

	// ErrInvalidLabelValue is returned when a label value is not valid UTF-8.
	ErrInvalidLabelValue = errors.New("metrics: invalid label value")

	// ErrInvalidObservation is returned for negative, NaN or infinite observations.
	ErrInvalidObservation = errors.New("metrics: invalid observation")

	// ErrInvalidInstrument is returned when instrument options fail validation.
	ErrInvalidInstrument = errors.New("metrics: invalid instrument")

	// ErrTimerStopped is returned when a Timer is completed more than once.
	ErrTimerStopped = errors.New("metrics: timer already stopped")
)
