package api

import (
	apierror "github.com/robertosw/gamepad-bridge/internal/server/api/error"
)

// Re-exported error helpers so handlers and the server share one vocabulary.
var (
	ErrBadRequest = apierror.ErrBadRequest
	ErrNotFound   = apierror.ErrNotFound
	ErrConflict   = apierror.ErrConflict
	ErrInternal   = apierror.ErrInternal
	WrapError     = apierror.WrapError
)
