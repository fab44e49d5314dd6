package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrInternal     = errors.New("internal")

	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrExtraction        = errors.New("extraction failure")
	ErrStore             = errors.New("store error")
	ErrBackend           = errors.New("backend error")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsStore(err error) bool {
	return errors.Is(err, ErrStore)
}

func IsBackend(err error) bool {
	return errors.Is(err, ErrBackend)
}
