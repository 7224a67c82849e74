package reslib

import (
	"io/fs"
	"strings"
)

// ReservedChars lists the characters that may not appear in a resource path.
const ReservedChars = `\?%*:|"<>,;=`

// ValidatePath returns an error wrapping ErrInvalidPath if path contains any
// of ReservedChars.
func ValidatePath(path string) error {
	if i := strings.IndexAny(path, ReservedChars); i >= 0 {
		return &fs.PathError{Op: "validate", Path: path, Err: &invalidCharError{char: path[i]}}
	}
	return nil
}

type invalidCharError struct {
	char byte
}

func (e *invalidCharError) Error() string {
	return "reslib: invalid path: character " + string(rune(e.char)) + " is not allowed"
}

func (e *invalidCharError) Is(target error) bool {
	return target == ErrInvalidPath
}
