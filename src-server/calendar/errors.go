package calendar

import (
	"errors"
	"fmt"

	"calman/src-server/timezone"
)

var (
	ErrDuplicateName    = errors.New("calendar name already exists")
	ErrCalendarNotFound = errors.New("calendar not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrConflict         = errors.New("event conflicts with an existing event")
	ErrInvalidEvent     = errors.New("invalid event")
	ErrInvalidTimezone  = timezone.ErrInvalidTimezone
)

var (
	ErrUnsupportedProperty = fmt.Errorf("%w: unsupported property", ErrInvalidEvent)
	ErrInvalidCalendarName = errors.New("invalid calendar name")
)
