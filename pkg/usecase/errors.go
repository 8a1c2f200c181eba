package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for the orchestration layer
var (
	// ErrUnknownUser is returned when a single refresh targets a username
	// that is not on the roster
	ErrUnknownUser = goerr.New("user is not on the roster")
)
