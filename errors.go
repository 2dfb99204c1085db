package collision

import (
	"errors"

	"github.com/facebookgo/stackerr"
)

// Sentinel errors are declared once and wrapped with stackerr.Wrap at the
// point they are returned, the same split the memcached protocol layer
// this codebase grew from used: a plain comparable sentinel for callers,
// a stack trace attached for whoever reads the log.
var (
	// ErrReservedNaNPayload is returned by Insert when a Hitbox's A1 field
	// is a NaN bit pattern, which would be indistinguishable from the
	// engine's own bucket discriminator tag.
	ErrReservedNaNPayload = errors.New("hitbox A1 field is a reserved NaN bit pattern")

	// ErrNilPayload is returned by Insert and Remove when given a nil
	// *Hitbox.
	ErrNilPayload = errors.New("payload must not be nil")

	// ErrKeyNotFound is returned by Remove when no payload is indexed
	// under the given key.
	ErrKeyNotFound = errors.New("key not present in index")

	// ErrPayloadNotFound is returned by Remove when the key exists but
	// the specific payload pointer is not among its values.
	ErrPayloadNotFound = errors.New("payload not present under key")

	// ErrNotImplemented is returned by Remove when removing the named
	// payload would require deleting a leaf key outright (the payload is
	// the sole value under its key). Full key-level delete needs
	// underflow rebalancing, which this engine does not implement.
	ErrNotImplemented = errors.New("removing the last payload under a key is not implemented")
)

// wrap attaches a stack trace (via stackerr, for anyone logging the
// error) while keeping err itself reachable through errors.Is/errors.As,
// so callers can still compare against the sentinels above.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	return &stackTraced{traced: stackerr.Wrap(err), cause: err}
}

type stackTraced struct {
	traced error
	cause  error
}

func (e *stackTraced) Error() string { return e.traced.Error() }
func (e *stackTraced) Unwrap() error { return e.cause }
