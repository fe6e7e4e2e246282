package s3mfile

import (
	"errors"
	"fmt"
)

// ErrBadSignature is wrapped by the ParseError returned for
// files that do not carry the "SCRM" signature.
var ErrBadSignature = errors.New("not an S3M module")

// ParseError describes a fatal decoding failure.
// No partial module is returned together with it.
type ParseError struct {
	Message string

	// Offset is a data position at which the parser stopped.
	Offset int

	// Err is an optional cause, see ErrBadSignature.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (offset=%d)", e.Message, e.Offset)
}

func (e *ParseError) Unwrap() error { return e.Err }
