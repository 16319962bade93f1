package availability

import "fmt"

const (
	CodeInvalidParameters     = "invalidParameters"
	CodeInvalidDuration       = "invalidDuration"
	CodeInvalidRecurrenceRule = "invalidRecurrenceRule"
	CodeFetchFailure          = "fetchFailure"
)

type EngineError struct {
	Code    string
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on Code so callers can use errors.Is with the sentinels below.
// An invalid duration is also an invalid parameter.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	if t.Code == e.Code {
		return true
	}
	return t.Code == CodeInvalidParameters && e.Code == CodeInvalidDuration
}

var (
	ErrInvalidParameters     = &EngineError{Code: CodeInvalidParameters}
	ErrInvalidDuration       = &EngineError{Code: CodeInvalidDuration}
	ErrInvalidRecurrenceRule = &EngineError{Code: CodeInvalidRecurrenceRule}
	ErrFetchFailure          = &EngineError{Code: CodeFetchFailure}
)

func newEngineError(code, format string, args ...any) error {
	return &EngineError{Code: code, Message: fmt.Sprintf(format, args...)}
}
