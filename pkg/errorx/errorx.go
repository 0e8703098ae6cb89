package errorx

import (
	"errors"
	"fmt"
)

// CodeError is a business error carrying the response code the
// controller layer writes back to the client.
type CodeError struct {
	Code int
	Msg  string
}

func (e *CodeError) Error() string {
	return e.Msg
}

// Is matches by code so wrapped copies made with WithMsg still compare
// equal to the predefined instance.
func (e *CodeError) Is(target error) bool {
	t, ok := target.(*CodeError)
	return ok && t.Code == e.Code
}

// WithMsg returns a copy of e with a more specific message.
func (e *CodeError) WithMsg(format string, args ...any) *CodeError {
	return Newf(e.Code, format, args...)
}

func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// As extracts the CodeError from err, if any.
func As(err error) (*CodeError, bool) {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

const (
	CodeSuccess           = 1000
	CodeInvalidParam      = 1001
	CodeUserExist         = 1002
	CodeUserNotExist      = 1003
	CodeInvalidPassword   = 1004
	CodeServerBusy        = 1005
	CodeNeedLogin         = 1006
	CodeInvalidToken      = 1007
	CodeNotFound          = 1008
	CodeRateLimitExceeded = 1009
	CodeDuplicateEmail    = 1010
	CodeTokenExpired      = 1011
	CodeSessionRevoked    = 1012
	CodeSessionUserGone   = 1013
	CodeForbidden         = 1014
	CodeThreadLocked      = 1015
	CodeReportExists      = 1016
	CodeInvalidTransition = 1017
	CodeProfilePrivate    = 1018
	CodeSelfFollow        = 1019
	CodeAssistantDisabled = 1020
	CodeTimeout           = 1021
)

var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid request parameters")
	ErrDuplicateUsername  = New(CodeUserExist, "username is already taken")
	ErrDuplicateEmail     = New(CodeDuplicateEmail, "email is already registered")
	ErrUserNotExist       = New(CodeUserNotExist, "user not found")
	ErrInvalidPassword    = New(CodeInvalidPassword, "invalid email or password")
	ErrServerBusy         = New(CodeServerBusy, "server busy")
	ErrNeedLogin          = New(CodeNeedLogin, "login required")
	ErrTokenMalformed     = New(CodeInvalidToken, "invalid token")
	ErrTokenExpired       = New(CodeTokenExpired, "session expired")
	ErrSessionRevoked     = New(CodeSessionRevoked, "session was signed out or replaced by a newer login")
	ErrSessionUserMissing = New(CodeSessionUserGone, "session user no longer exists")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrRateLimitExceeded  = New(CodeRateLimitExceeded, "too many requests, try again later")
	ErrForbidden          = New(CodeForbidden, "permission denied")
	ErrThreadLocked       = New(CodeThreadLocked, "thread is locked")
	ErrReportExists       = New(CodeReportExists, "you have already reported this content")
	ErrInvalidTransition  = New(CodeInvalidTransition, "report is no longer pending")
	ErrProfilePrivate     = New(CodeProfilePrivate, "this profile is private")
	ErrSelfFollow         = New(CodeSelfFollow, "you cannot follow yourself")
	ErrAssistantDisabled  = New(CodeAssistantDisabled, "moderation assistant is not configured")
	ErrTimeout            = New(CodeTimeout, "request timed out")
)
