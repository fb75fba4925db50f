package errors

import (
	stdErrors "errors"
)

func AsStorageError(err error) (*StorageError, bool) {
	var se *StorageError
	if stdErrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stdErrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// HasCode reports whether err carries the given storage error code.
func HasCode(err error, code ErrorCode) bool {
	if se, ok := AsStorageError(err); ok {
		return se.Code() == code
	}
	if ve, ok := AsValidationError(err); ok {
		return ve.Code() == code
	}
	return false
}
