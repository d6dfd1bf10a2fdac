package snapshot

import "fmt"

// ErrorKind says which stage of an aggregation failed.
type ErrorKind int

const (
	// Unreachable: the batch itself failed or came back empty.
	Unreachable ErrorKind = iota + 1
	// StatusUnknown: the new-user check failed, so nothing else can be trusted.
	StatusUnknown
	// ProfileUnavailable: an existing user's name could not be read.
	ProfileUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case Unreachable:
		return "unreachable"
	case StatusUnknown:
		return "status unknown"
	case ProfileUnavailable:
		return "profile unavailable"
	default:
		return "unknown"
	}
}

// AggregationError is a fatal aggregation failure. Message is the text shown
// to the user.
type AggregationError struct {
	Kind ErrorKind
	Err  error
}

func (e *AggregationError) Message() string {
	switch e.Kind {
	case StatusUnknown:
		return "failed to check user status"
	case ProfileUnavailable:
		return "failed to fetch user name"
	default:
		return "failed to fetch user data"
	}
}

func (e *AggregationError) Error() string {
	if e.Err == nil {
		return e.Message()
	}
	return fmt.Sprintf("%s: %v", e.Message(), e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }
