package script

import (
	"errors"
	"fmt"
)

// ErrInputs is raised when a compiled function is called with fewer inputs
// than its source indexes.
var ErrInputs = errors.New("script: wrong number of inputs")

// ErrNoReturn is raised when execution reaches the end of the function
// without a return statement.
var ErrNoReturn = errors.New("script: function did not return")

// SyntaxError wraps a parse failure of the function source.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return "script: syntax error: " + e.Err.Error()
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// UnsupportedError reports valid JavaScript outside the supported subset.
// Offset is the 0-based byte offset of the construct in the source.
type UnsupportedError struct {
	Construct string
	Source    string
	Offset    int
}

func (e *UnsupportedError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("script: unsupported %s at offset %d", e.Construct, e.Offset)
	}
	return fmt.Sprintf("script: unsupported %s at offset %d: %s", e.Construct, e.Offset, e.Source)
}
