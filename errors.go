package docrepo

import "errors"

var (
	// ErrNotFound is returned when a document key does not exist in storage
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest is returned when a required field is missing or the action is unknown
	ErrInvalidRequest = errors.New("invalid request")
	// ErrValidation is returned when a file fails the upload policy
	ErrValidation = errors.New("validation failed")
	// ErrParse is returned when an upload body cannot be decoded
	ErrParse = errors.New("parse failure")
	// ErrBackend is returned when a storage call fails
	ErrBackend = errors.New("backend failure")
)
