package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidRequest   = errors.New("invalid request")
	ErrNoFieldsToUpdate = errors.New("at least one field must be provided for update")
)
