package bcn

import "errors"

// ErrorCode is an API error code for the encoder entry points.
type ErrorCode uint32

const (
	// Success reports a successful call.
	Success ErrorCode = 0

	// ErrOutOfMem reports an undersized caller-provided output buffer.
	ErrOutOfMem ErrorCode = 1

	// ErrBadParam reports an invalid argument.
	ErrBadParam ErrorCode = 2

	// ErrBadFormat reports an unknown block compression format.
	ErrBadFormat ErrorCode = 3

	// ErrBadQuality reports an out-of-range quality tier.
	ErrBadQuality ErrorCode = 4

	// ErrBadContext reports misuse of a compression context.
	ErrBadContext ErrorCode = 5

	// ErrBadHeader reports a malformed or unsupported DDS header.
	ErrBadHeader ErrorCode = 6
)

// ErrorString returns a stable name for an error code.
//
// For unknown codes, it returns "".
func ErrorString(code ErrorCode) string {
	switch code {
	case Success:
		return "BCN_SUCCESS"
	case ErrOutOfMem:
		return "BCN_ERR_OUT_OF_MEM"
	case ErrBadParam:
		return "BCN_ERR_BAD_PARAM"
	case ErrBadFormat:
		return "BCN_ERR_BAD_FORMAT"
	case ErrBadQuality:
		return "BCN_ERR_BAD_QUALITY"
	case ErrBadContext:
		return "BCN_ERR_BAD_CONTEXT"
	case ErrBadHeader:
		return "BCN_ERR_BAD_HEADER"
	default:
		return ""
	}
}

// Error is a typed error that carries an API error code.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if s := ErrorString(e.Code); s != "" {
		return "bcn: " + s
	}
	return "bcn: error"
}

// ErrorCodeOf returns the error code for err, or Success for nil.
//
// For non-*Error errors it returns ErrBadParam as a conservative fallback.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrBadParam
}

func newError(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}
