package zerror

import "fmt"

// ZError is an application error carrying a Status, a stable code and a client-facing message.
// Predefined errors are values. WrapParent returns a copy, so the catalogue is never mutated.
type ZError struct {
	parent error
	status Status
	code   string
	msg    string
}

// NewZError initializes a ZError instance.
//
// code example: PRODUCT_NOT_FOUND
func NewZError(parent error, status Status, code, msg string) ZError {
	return ZError{
		parent: parent,
		status: status,
		code:   code,
		msg:    msg,
	}
}

func NewNotFound(code, msg string) ZError {
	return NewZError(nil, StatusNotFound, code, msg)
}

func NewValidationFailed(code, msg string) ZError {
	return NewZError(nil, StatusValidationFailed, code, msg)
}

func (e ZError) Error() string {
	if e.parent == nil {
		return fmt.Sprintf("Code=%s, Msg=%s", e.code, e.msg)
	}
	return fmt.Sprintf("Code=%s, Msg=%s, Parent=(%v)", e.code, e.msg, e.parent)
}

// WrapParent returns a copy of e caused by parent.
func (e ZError) WrapParent(parent error) ZError {
	if parent != nil {
		e.parent = parent
	}
	return e
}

// Unwrap exposes the parent to errors.Is and errors.As.
func (e ZError) Unwrap() error { return e.parent }

func (e ZError) Status() Status { return e.status }

func (e ZError) Code() string { return e.code }

func (e ZError) Msg() string { return e.msg }

func (e ZError) Parent() error { return e.parent }
