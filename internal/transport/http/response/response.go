package response

import (
	"errors"

	"github.com/gin-gonic/gin"

	"user-account-api/internal/domain"
)

type Resp struct {
	Code   int         `json:"code"`
	Msg    string      `json:"msg"`
	Reason string      `json:"reason,omitempty"`
	Data   interface{} `json:"data"`
}

// New keeps data non-null.
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error builds a failure body; an empty customMsg falls back to the code's text.
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// FromError converts err into an HTTP status and body. Internal errors never
// expose their cause.
func FromError(err error) (int, Resp) {
	var de *domain.Error
	if !errors.As(err, &de) {
		return CodeServerError, withReason(Error(CodeServerError, "Server error"), domain.KindInternal)
	}
	status := de.Kind.Status()
	switch de.Kind {
	case domain.KindInternal:
		return status, withReason(Error(status, "Server error"), de.Kind)
	case domain.KindValidation:
		r := New(status, de.Msg, gin.H{"errors": de.Fields})
		return status, withReason(r, de.Kind)
	default:
		return status, withReason(Error(status, de.Msg), de.Kind)
	}
}

// Fail aborts the request with the response for err.
func Fail(c *gin.Context, err error) {
	status, body := FromError(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func withReason(r Resp, k domain.Kind) Resp {
	r.Reason = string(k)
	return r
}
