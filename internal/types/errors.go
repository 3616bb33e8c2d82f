package types

import "errors"

var (
	// ErrValidation marks malformed or missing input/output fields. Never retried.
	ErrValidation = errors.New("validation error")

	// ErrParse is returned when no normalization tier recovers usable content.
	ErrParse = errors.New("unparseable model response")

	// ErrLookup marks a missing key or index in an upstream payload. Never retried.
	ErrLookup = errors.New("lookup error")

	ErrTranscriptUnavailable = errors.New("transcript unavailable")
	ErrNotFound              = errors.New("not found")
	ErrNotAccessible         = errors.New("not found or not accessible")
	ErrRateLimited           = errors.New("rate limited")
	ErrServer                = errors.New("upstream server error")
	ErrTimeout               = errors.New("timed out")

	ErrEmptyBatch       = errors.New("batch must contain at least one transcript")
	ErrNothingToProcess = errors.New("failed to fetch any transcripts")
)

// KindOf maps an error to the failure kind reported for a single item.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrTranscriptUnavailable):
		return KindTranscriptUnavailable
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotAccessible):
		return KindNotFound
	default:
		return KindProcessing
	}
}
