package worksheet

import (
	"github.com/olekukonko/errors"
)

// WriteError is the result code table shared by every write operation.
type WriteError int

const (
	NoError WriteError = iota
	RangeError
	StringTableError
	StringLengthError
	CapacityError
	End // enumeration sentinel, never returned
)

var writeErrorNames = [...]string{
	NoError:           "NoError",
	RangeError:        "RangeError",
	StringTableError:  "StringTableError",
	StringLengthError: "StringLengthError",
	CapacityError:     "CapacityError",
	End:               "End",
}

func (c WriteError) String() string {
	if c < NoError || c > End {
		return "WriteError(?)"
	}
	return writeErrorNames[c]
}

// Sentinels for errors.Is. Errors returned by a Worksheet carry the same name
// and code as the matching sentinel.
var (
	ErrRange        = errors.Named(RangeError.String()).WithCode(int(RangeError))
	ErrStringTable  = errors.Named(StringTableError.String()).WithCode(int(StringTableError))
	ErrStringLength = errors.Named(StringLengthError.String()).WithCode(int(StringLengthError))
	ErrCapacity     = errors.Named(CapacityError.String()).WithCode(int(CapacityError))
)

func newWriteError(code WriteError, format string, args ...any) *errors.Error {
	return errors.Newf(format, args...).WithName(code.String()).WithCode(int(code))
}

// Code maps an error returned by this package back to its WriteError code.
// A nil error is NoError; errors that did not originate from a write
// operation report End.
func Code(err error) WriteError {
	if err == nil {
		return NoError
	}
	code := End
	errors.Walk(err, func(e error) {
		if code != End {
			return
		}
		if we, ok := e.(*errors.Error); ok {
			if c := WriteError(we.Code()); c > NoError && c < End {
				code = c
			}
		}
	})
	return code
}
