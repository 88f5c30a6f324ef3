package services

import "fmt"

// Fixed sampling penalties applied identically on every completion call, for providers whose wire
// format supports them. These are not user-configurable.
const (
	presencePenalty  float32 = 0.3
	frequencyPenalty float32 = 0.2
)

// ProviderError reports a failed completion call: authentication, rate limiting, network failure,
// a malformed response, or a response with no usable content. The affected turn is abandoned;
// callers do not retry.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
