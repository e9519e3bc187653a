package ical

import (
	"fmt"
	"slices"
	"strings"
)

// ImportError describes one VEVENT that could not be imported.
type ImportError struct {
	msg  string
	args map[string]any
	err  error
}

func NewImportError(msg string, err error, args map[string]any) *ImportError {
	if args == nil {
		args = make(map[string]any)
	}
	return &ImportError{
		msg:  msg,
		args: args,
		err:  err,
	}
}

func (e *ImportError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.msg)
	keys := make([]string, 0, len(e.args))
	for key := range e.args {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	if len(keys) > 0 {
		sb.WriteString(" |")
	}
	for _, key := range keys {
		sb.WriteString(fmt.Sprintf(" %s: %v", key, e.args[key]))
	}
	if e.err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.err.Error())
	}
	return sb.String()
}

func (e *ImportError) Unwrap() error {
	return e.err
}
