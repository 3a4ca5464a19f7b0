package common

import "errors"

// UnknownStr is printed for enum values outside their declared range.
const UnknownStr = "unknown"

// ErrConfiguration classifies caller mistakes that abort a manufacture call
// before or during construction: bad hints, missing type arguments, unknown
// container kinds.
var ErrConfiguration = errors.New("configuration error")
