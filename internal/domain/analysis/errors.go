package analysis

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrInvalidResult indicates the analyzer response did not match the expected schema.
var ErrInvalidResult = errors.New("invalid analyzer result")
