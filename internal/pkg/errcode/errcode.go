package errcode

import "net/http"

const (
	ErrUnknown = 10000000 + iota
	ErrUnauthorized
	ErrForbidden
	ErrNotFound
	ErrInvalid
	ErrInternal
	ErrInvalidFile
	ErrStoreUnavailable
	ErrBackendFailed
	ErrTooMany
)

// HTTPStatus maps a business code to the HTTP status sent with it.
func HTTPStatus(code int) int {
	switch code {
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrInvalid, ErrInvalidFile:
		return http.StatusBadRequest
	case ErrStoreUnavailable:
		return http.StatusServiceUnavailable
	case ErrBackendFailed:
		return http.StatusBadGateway
	case ErrTooMany:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
