package appointment

import "fmt"

const (
	CodeInvalidParameters    = "invalidParameters"
	CodeInvalidTransition    = "invalidTransition"
	CodePersistFailure       = "persistFailure"
	CodeNotFound             = "notFound"
	CodeConfirmationRequired = "confirmationRequired"
)

type LifecycleError struct {
	Code    string
	Message string
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LifecycleError) Is(target error) bool {
	t, ok := target.(*LifecycleError)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidParameters    = &LifecycleError{Code: CodeInvalidParameters}
	ErrInvalidTransition    = &LifecycleError{Code: CodeInvalidTransition}
	ErrPersistFailure       = &LifecycleError{Code: CodePersistFailure}
	ErrNotFound             = &LifecycleError{Code: CodeNotFound}
	ErrConfirmationRequired = &LifecycleError{Code: CodeConfirmationRequired}
)

func newLifecycleError(code, format string, args ...any) error {
	return &LifecycleError{Code: code, Message: fmt.Sprintf(format, args...)}
}
