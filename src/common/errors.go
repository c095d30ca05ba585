package common

// ErrType classifies the errors returned by the transport handlers.
type ErrType uint32

const (
	// SchemaError is returned when a request does not match the expected shape.
	SchemaError ErrType = iota
	// ApplicationError wraps a rejection from a downstream subsystem.
	ApplicationError
	// ProtocolViolation is a malformed payload attributable to a peer. The
	// peer is penalized.
	ProtocolViolation
	// AuthError is returned when an internal call presents a bad auth key.
	AuthError
	// TransportError is a failure to reach or talk to a peer.
	TransportError
)

// String ...
func (t ErrType) String() string {
	switch t {
	case SchemaError:
		return "SchemaError"
	case ApplicationError:
		return "ApplicationError"
	case ProtocolViolation:
		return "ProtocolViolation"
	case AuthError:
		return "AuthError"
	case TransportError:
		return "TransportError"
	default:
		return "Unknown"
	}
}

// Err is a classified error. Its message is the stable text reported to the
// caller; the underlying cause, if any, is only meant for logs.
type Err struct {
	errType ErrType
	msg     string
	cause   error
}

// NewErr ...
func NewErr(errType ErrType, msg string) Err {
	return Err{
		errType: errType,
		msg:     msg,
	}
}

// WrapErr attaches a cause to a classified error.
func WrapErr(errType ErrType, msg string, cause error) Err {
	return Err{
		errType: errType,
		msg:     msg,
		cause:   cause,
	}
}

// Error returns the caller-facing message.
func (e Err) Error() string {
	return e.msg
}

// Type ...
func (e Err) Type() ErrType {
	return e.errType
}

// Internal returns the underlying failure, or nil.
func (e Err) Internal() error {
	return e.cause
}

// Is checks that an error is a classified Err of type t. Errors wrapped with
// github.com/pkg/errors are unwrapped first.
func Is(err error, t ErrType) bool {
	for err != nil {
		if e, ok := err.(Err); ok {
			return e.errType == t
		}
		c, ok := err.(interface{ Cause() error })
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}
