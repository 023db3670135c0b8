package formdata

import "errors"

var (
	// ErrNotMultipart is returned when the content type is not multipart/form-data
	// or carries no usable boundary.
	ErrNotMultipart = errors.New("not a multipart/form-data request")
	// ErrNoFile is returned when the body is well formed but holds no file part.
	ErrNoFile = errors.New("no file found in request")
	// ErrFileTooLarge is returned when the file part exceeds the size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size")
	// ErrMalformed is returned for syntax errors in the body.
	ErrMalformed = errors.New("malformed multipart body")
	// ErrUnexpectedEnd is returned when the body ends before the closing delimiter.
	ErrUnexpectedEnd = errors.New("unexpected end of multipart body")
)
