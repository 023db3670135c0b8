package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrNoProfiles       = errors.New("no profiles configured")
	ErrNoDefaultProfile = errors.New("several profiles and no default, pass --profile")
)

// Errors for configuration validation.
var (
	ErrInvalidEndpoint = errors.New("endpoint must be an http or https URL")
	ErrInvalidStage    = errors.New("stage name may only contain letters, digits, '-' and '_'")
	ErrConfigRequired  = errors.New("config is required")
)

// Errors for input validation.
var (
	ErrNoPaths   = errors.New("no paths provided")
	ErrEmptyPath = errors.New("path is required")
	ErrEmptyKey  = errors.New("document key is required")
)
