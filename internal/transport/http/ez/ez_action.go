package ez

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"user-account-api/internal/domain"
	resp "user-account-api/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// Binder selects where the action input comes from.
type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none" // handler reads c.Param itself
)

// Action is a single route: I is the bound input, O the data payload.
type Action[I any, O any] struct {
	Method string
	Path   string
	Binder Binder
	// Use runs before the handler (auth, per-route limits).
	Use []gin.HandlerFunc
	// Status is the success HTTP status, 200 when zero.
	Status int
	// Msg is the success message, "OK" when empty.
	Msg     string
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction mounts a on e. Handler errors go through response.Fail.
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	msg := a.Msg
	if msg == "" {
		msg = resp.CodeMsgMap[resp.CodeOK]
	}

	h := func(c *gin.Context) {
		var in I
		if err := bind(c, a.Binder, &in); err != nil {
			resp.Fail(c, domain.Invalid([]domain.FieldError{{Field: "body", Message: err.Error()}}))
			return
		}
		out, err := a.Handler(c, &in)
		if err != nil {
			resp.Fail(c, err)
			return
		}
		c.JSON(status, resp.New(resp.CodeOK, msg, out))
	}

	chain := append(append([]gin.HandlerFunc(nil), a.Use...), h)
	e.g.Handle(strings.ToUpper(a.Method), a.Path, chain...)
}

func bind(c *gin.Context, b Binder, in any) error {
	switch b {
	case BindJSON:
		err := c.ShouldBindJSON(in)
		// an empty body binds to the zero input
		if errors.Is(err, io.EOF) {
			return nil
		}
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return errors.New("request body too large")
		}
		if err != nil {
			return errors.New("invalid JSON body")
		}
		return nil
	case BindQuery:
		if err := c.ShouldBindQuery(in); err != nil {
			return errors.New("invalid query parameters")
		}
	}
	return nil
}
