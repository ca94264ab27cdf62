package services

import (
	"fmt"
	"net/http"

	"github.com/desertthunder/muzee/internal/shared"
)

// OutcomeKind tags the shape of an [Outcome].
type OutcomeKind int

const (
	// NetworkFailure means the transport could not complete the request.
	NetworkFailure OutcomeKind = iota
	// ApplicationError means the backend answered with an "error" field.
	ApplicationError
	// Success means a usable payload was received.
	Success
	// Unauthorized means the session was rejected and the login redirect has been initiated.
	// It never carries data.
	Unauthorized
)

func (k OutcomeKind) String() string {
	switch k {
	case NetworkFailure:
		return "network_failure"
	case ApplicationError:
		return "application_error"
	case Success:
		return "success"
	case Unauthorized:
		return "unauthorized"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Response represents a raw API response with status and body.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Outcome is the uniform result of every dispatched call.
//
// Callers switch on Kind instead of checking a Go error.
type Outcome struct {
	Kind     OutcomeKind
	Response *Response // nil for NetworkFailure and Unauthorized
	Payload  any       // parsed body, set by the domain hook
	Message  string    // backend error message for ApplicationError
	Err      error     // underlying cause, if any
}

// OK reports whether the outcome carries a usable payload.
func (o *Outcome) OK() bool { return o != nil && o.Kind == Success }

// Error converts a non-success outcome into an error wrapping the matching shared sentinel.
func (o *Outcome) Error() error {
	if o == nil {
		return fmt.Errorf("%w: no outcome", shared.ErrNetwork)
	}
	switch o.Kind {
	case Success:
		return nil
	case NetworkFailure:
		return fmt.Errorf("%w: %v", shared.ErrNetwork, o.Err)
	case Unauthorized:
		if o.Err != nil {
			return fmt.Errorf("%w: %v", shared.ErrUnauthorized, o.Err)
		}
		return shared.ErrUnauthorized
	default:
		if o.Err != nil {
			return fmt.Errorf("%w: %s: %v", shared.ErrApplication, o.Message, o.Err)
		}
		return fmt.Errorf("%w: %s", shared.ErrApplication, o.Message)
	}
}

func networkFailure(err error) *Outcome {
	return &Outcome{Kind: NetworkFailure, Err: err}
}
