package http

import "errors"

// ErrInvalidProxyResponse is returned when the gateway produces a response
// that cannot be written, such as a malformed base64 body.
var ErrInvalidProxyResponse = errors.New("invalid proxy response")
