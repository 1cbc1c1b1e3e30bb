package errors

import "fmt"

var (
	ErrDuplicateSession     = fmt.Errorf("connection already identified")
	ErrBlankDisplayName     = fmt.Errorf("display name required")
	ErrSessionNotFound      = fmt.Errorf("no session for connection")
	ErrStorageUnavailable   = fmt.Errorf("transcript store unavailable")
	ErrDeliveryBackpressure = fmt.Errorf("subscriber buffer full")
	ErrRelayBackpressure    = fmt.Errorf("relay pipeline overloaded")

	ErrUserAlreadyExists  = fmt.Errorf("username already taken")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")

	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no words have been found")
)
