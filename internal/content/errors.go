package content

import "errors"

// ErrGenerationFailed wraps a validation rejection of provider output.
// Recoverable: the caller decides whether and when to retry; nothing is
// ever stored on this path.
var ErrGenerationFailed = errors.New("generation failed")

// ErrGenerationUnavailable means no provider could produce a passage at
// all (remote failed and no fallback matched).
var ErrGenerationUnavailable = errors.New("generation unavailable")

// Validation reasons. All are surfaced wrapped in ErrGenerationFailed by
// the daily service.
var (
	ErrWordCountOutOfRange   = errors.New("passage word count out of range")
	ErrQuestionCountMismatch = errors.New("question count mismatch")
	ErrOptionCountMismatch   = errors.New("option count mismatch")
	ErrBadLabelSet           = errors.New("option labels must be exactly A-D")
	ErrBadCorrectLabel       = errors.New("correct label not among options")
	ErrMissingRationale      = errors.New("missing rationale entry")
)
