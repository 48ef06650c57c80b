package termcat

import (
	"errors"
	"fmt"
)

// Kind classifies the failures that can abort a run
type Kind int

const (
	// KindNotFound means an input path does not exist or is unreadable
	KindNotFound Kind = iota + 1
	// KindDecode means the image codec could not parse the input
	KindDecode
	// KindEncode means a protocol encoder rejected the image
	KindEncode
	// KindIO means reading an input or writing/flushing the sink failed
	KindIO
	// KindLock means the advisory output lock could not be taken
	KindLock
)

// Sentinel values for errors.Is checks against an *Error's kind
var (
	ErrNotFound = errors.New("not found")
	ErrDecode   = errors.New("decode failure")
	ErrEncode   = errors.New("encode failure")
	ErrIO       = errors.New("i/o failure")
	ErrLock     = errors.New("lock failure")
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindDecode:
		return "DecodeFailure"
	case KindEncode:
		return "EncodeFailure"
	case KindIO:
		return "IoFailure"
	case KindLock:
		return "LockFailure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindDecode:
		return ErrDecode
	case KindEncode:
		return ErrEncode
	case KindIO:
		return ErrIO
	case KindLock:
		return ErrLock
	default:
		return nil
	}
}

// Error carries the failing input and the operation that was attempted
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Path != "" {
		return e.Path + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the kind of the first *Error in err's chain, or 0
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind Kind, path, op string, err error) error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}
