package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"user-account-api/internal/domain"
	httpez "user-account-api/internal/transport/http/ez"
)

type UserLister interface {
	List(ctx context.Context, f domain.ListFilter) ([]domain.User, int64, error)
}

// AdminHandler serves the read-only back office routes.
type AdminHandler struct{ svc UserLister }

func NewAdminHandler(svc UserLister) *AdminHandler { return &AdminHandler{svc: svc} }

type listQ struct {
	Offset int    `form:"offset,default=0"`
	Limit  int    `form:"limit,default=20"`
	Q      string `form:"q"` // matches email or name
}

type adminRow struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type listOut struct {
	Total int64      `json:"total"`
	Items []adminRow `json:"items"`
}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	httpez.RegisterAction(httpez.New(admin), httpez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			us, total, err := h.svc.List(c.Request.Context(), domain.ListFilter{
				Offset: in.Offset, Limit: in.Limit, Query: in.Q,
			})
			if err != nil {
				return listOut{}, err
			}
			out := listOut{Total: total, Items: make([]adminRow, 0, len(us))}
			for _, u := range us {
				out.Items = append(out.Items, adminRow{
					ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, CreatedAt: u.CreatedAt,
				})
			}
			return out, nil
		},
	})
}
