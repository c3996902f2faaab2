package errs

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// CodeError carries an HTTP status alongside the message so handlers can map
// failures to responses without switching on sentinel values.
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

func (e *CodeError) clone() *CodeError {
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: e.Detail}
}

// WithDetail returns a copy with extra detail appended; the predefined
// errors stay untouched.
func (e *CodeError) WithDetail(detail string) *CodeError {
	c := e.clone()
	if c.Detail == "" {
		c.Detail = detail
	} else {
		c.Detail += ", " + detail
	}
	return c
}

func (e *CodeError) Is(err error) bool {
	var ce *CodeError
	if !errors.As(err, &ce) {
		return false
	}
	return e.Code == ce.Code
}

// Wrap attaches a stack trace to err.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return pkgerrors.WithStack(err)
}

// WrapMsg attaches a stack trace and a message.
func WrapMsg(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrapf(err, format, args...)
}

func New(msg string) error {
	return pkgerrors.New(msg)
}

// CodeOf resolves err to an HTTP status and client-facing message. Unknown
// errors map to 500 with the underlying message surfaced (internal tool).
func CodeOf(err error) (int, string) {
	var ce *CodeError
	if errors.As(err, &ce) {
		msg := ce.Msg
		if ce.Detail != "" {
			msg = ce.Msg + ": " + ce.Detail
		}
		return ce.Code, msg
	}
	return http.StatusInternalServerError, err.Error()
}
