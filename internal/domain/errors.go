package domain

import "errors"

var (
	// ErrMissingEnvironmentData means no usable temperature or humidity value
	// exists for the requested station and date.
	ErrMissingEnvironmentData = errors.New("missing environment data")

	// ErrInvalidObservation means the work/rest bout or activity input cannot be evaluated.
	ErrInvalidObservation = errors.New("invalid observation")

	// ErrUnclassifiableWBGT means the WBGT fell outside every recommended-ratio range.
	ErrUnclassifiableWBGT = errors.New("unclassifiable WBGT")

	// ErrUnknownCamp means no weather station is mapped to the camp.
	ErrUnknownCamp = errors.New("unknown camp")
)
