package errs

import "net/http"

var (
	ErrValidation   = NewCodeError(http.StatusBadRequest, "validation failed")
	ErrNotFound     = NewCodeError(http.StatusNotFound, "not found")
	ErrUnauthorized = NewCodeError(http.StatusForbidden, "unauthorized")
	ErrTokenExpired = NewCodeError(http.StatusForbidden, "token expired")
)
