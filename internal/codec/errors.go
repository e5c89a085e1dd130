package codec

import (
	"errors"
	"fmt"
)

// ErrCorruptFormat marks log content that cannot be parsed in any known
// format. Decoding is all-or-nothing: no partial recovery is attempted.
var ErrCorruptFormat = errors.New("corrupt log format")

// UnsupportedVersionError is returned for files written by a newer (or
// unknown) format version than this build understands.
type UnsupportedVersionError struct {
	Version int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported log format version %d (current is %d)", e.Version, CurrentVersion)
}

// corruptf wraps ErrCorruptFormat with positional context.
func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptFormat, fmt.Sprintf(format, args...))
}
