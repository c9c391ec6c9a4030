package archive

import "errors"

var (
	ErrNotFound      = errors.New("archive: not found")
	ErrInvalidCID    = errors.New("archive: invalid cid")
	ErrCIDMismatch   = errors.New("archive: cid mismatch")
	ErrImmutable     = errors.New("archive: immutable snapshot mismatch")
	ErrEmptySnapshot = errors.New("archive: empty snapshot")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
