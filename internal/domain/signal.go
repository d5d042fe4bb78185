package domain

// SignalState tags how a fetched signal was obtained. A degraded or
// missing signal contributes zero risk but stays visible in the result,
// so "we could not determine" is distinguishable from "clean".
type SignalState string

const (
	// SignalFetched means the upstream returned usable data.
	SignalFetched SignalState = "fetched"
	// SignalDegraded means the fetch failed or timed out and the
	// documented neutral default was substituted.
	SignalDegraded SignalState = "degraded"
	// SignalMissing means the upstream has no data for this token.
	SignalMissing SignalState = "missing"
)

// Signal wraps an external fetch result with its provenance tag.
type Signal[T any] struct {
	Value T
	State SignalState
	Err   string // reason for degradation, empty when fetched
}

// Fetched builds a signal holding usable data.
func Fetched[T any](v T) Signal[T] {
	return Signal[T]{Value: v, State: SignalFetched}
}

// Degraded builds a signal holding the neutral default for a failed fetch.
func Degraded[T any](v T, err error) Signal[T] {
	s := Signal[T]{Value: v, State: SignalDegraded}
	if err != nil {
		s.Err = err.Error()
	}
	return s
}

// Missing builds a signal for an upstream that has no data.
func Missing[T any](v T) Signal[T] {
	return Signal[T]{Value: v, State: SignalMissing}
}

// OK reports whether the signal carries usable data.
func (s Signal[T]) OK() bool {
	return s.State == SignalFetched
}
