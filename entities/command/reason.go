package command

import "fmt"

// Code is a machine-readable rejection reason.
type Code string

const (
	CodeNoValidPayload     Code = "NO_VALID_PAYLOAD"
	CodeUnsupportedVersion Code = "UNSUPPORTED_VERSION"
	CodeSchemaMismatch     Code = "SCHEMA_MISMATCH"
	CodeLimitExceeded      Code = "LIMIT_EXCEEDED"
	CodeInvalidShape       Code = "INVALID_SHAPE"
	CodeInvalidOperation   Code = "INVALID_OPERATION"
)

// Rejection is returned when text or a command cannot be accepted. Message is
// short enough to show to the user as is.
type Rejection struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (r *Rejection) Error() string {
	return r.Message
}

func (r *Rejection) Unwrap() error {
	return r.Cause
}

// Is reports whether target is a Rejection with the same code.
func (r *Rejection) Is(target error) bool {
	if t, ok := target.(*Rejection); ok {
		return r.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is.
var (
	ErrNoValidPayload     = &Rejection{Code: CodeNoValidPayload, Message: "no valid payload"}
	ErrUnsupportedVersion = &Rejection{Code: CodeUnsupportedVersion, Message: "unsupported version"}
	ErrSchemaMismatch     = &Rejection{Code: CodeSchemaMismatch, Message: "schema mismatch"}
	ErrLimitExceeded      = &Rejection{Code: CodeLimitExceeded, Message: "limit exceeded"}
	ErrInvalidShape       = &Rejection{Code: CodeInvalidShape, Message: "invalid shape"}
	ErrInvalidOperation   = &Rejection{Code: CodeInvalidOperation, Message: "invalid operation"}
)

func noValidPayload(cause error) *Rejection {
	return &Rejection{Code: CodeNoValidPayload, Message: "no valid command payload found", Cause: cause}
}

func unsupportedVersion(v any) *Rejection {
	return &Rejection{
		Code:     CodeUnsupportedVersion,
		Message:  fmt.Sprintf("unsupported protocol version %v (expected %d)", v, Version),
		Metadata: map[string]string{"version": fmt.Sprint(v)},
	}
}

func schemaMismatch(format string, args ...any) *Rejection {
	return &Rejection{Code: CodeSchemaMismatch, Message: fmt.Sprintf(format, args...)}
}

func limitExceeded(kind string, count, limit int) *Rejection {
	return &Rejection{
		Code:    CodeLimitExceeded,
		Message: fmt.Sprintf("too many %s: %d (limit %d)", kind, count, limit),
		Metadata: map[string]string{
			"kind":  kind,
			"count": fmt.Sprint(count),
			"limit": fmt.Sprint(limit),
		},
	}
}

// InvalidShape builds an INVALID_SHAPE rejection for the element at path.
func InvalidShape(path string, cause error) *Rejection {
	return &Rejection{
		Code:     CodeInvalidShape,
		Message:  fmt.Sprintf("%s: %v", path, cause),
		Metadata: map[string]string{"path": path},
		Cause:    cause,
	}
}

// InvalidOperation builds an INVALID_OPERATION rejection for the element at path.
func InvalidOperation(path, format string, args ...any) *Rejection {
	return &Rejection{
		Code:     CodeInvalidOperation,
		Message:  path + ": " + fmt.Sprintf(format, args...),
		Metadata: map[string]string{"path": path},
	}
}
