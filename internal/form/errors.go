package form

import "errors"

var (
	// ErrIndexOutOfRange is returned when an edit targets an entry that does not exist.
	ErrIndexOutOfRange = errors.New("entry index out of range")
	// ErrUnknownList is returned for a list other than products or boxes.
	ErrUnknownList = errors.New("unknown entry list")
	// ErrUnknownField is returned for a field other than name or dimensions.
	ErrUnknownField = errors.New("unknown entry field")
)
