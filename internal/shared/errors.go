package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed     = fmt.Errorf("authentication failed")
	ErrUnauthorized   = fmt.Errorf("session unauthorized")
	ErrRedirectFailed = fmt.Errorf("login redirect failed")
	ErrTimeout        = fmt.Errorf("operation timed out")

	// API and service errors
	ErrNetwork            = fmt.Errorf("network failure")
	ErrApplication        = fmt.Errorf("application error")
	ErrInvalidResponse    = fmt.Errorf("invalid response")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Storage errors
	ErrStorage = fmt.Errorf("storage failure")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
