package viewstate

import "errors"

// ErrInvalidArgument is returned when a page is addressed without a name.
var ErrInvalidArgument = errors.New("viewstate: invalid argument")
