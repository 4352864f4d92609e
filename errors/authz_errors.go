// errors/authz_errors.go
package errors

import "errors"

var (
	ErrNilExpressionEngine = errors.New("expression engine cannot be nil")
	ErrPolicyParse         = errors.New("failed to parse policy expression")
	ErrNonBooleanResult    = errors.New("policy expression did not evaluate to a boolean")
	ErrEvaluation          = errors.New("policy expression evaluation failed")
	ErrInternalServer      = errors.New("internal server error")
)
