package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"user-account-api/internal/core/auth"
	"user-account-api/internal/domain"
	"user-account-api/internal/feature/user"
	httpez "user-account-api/internal/transport/http/ez"
	mdw "user-account-api/internal/transport/http/middleware"
)

// UserService is what the public handlers need from feature/user.
type UserService interface {
	Create(ctx context.Context, in user.CreateInput) (*domain.User, error)
	Login(ctx context.Context, in user.LoginInput) (string, *domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, subject *auth.Claims, id string, in user.UpdateInput) (*domain.User, error)
}

type UserHandler struct {
	svc        UserService
	auth       gin.HandlerFunc
	loginLimit gin.HandlerFunc
}

// NewUserHandler wires the /users routes. loginLimit may be nil.
func NewUserHandler(svc UserService, authMW, loginLimit gin.HandlerFunc) *UserHandler {
	return &UserHandler{svc: svc, auth: authMW, loginLimit: loginLimit}
}

func (h *UserHandler) Priority() int { return 10 }

type loginOut struct {
	Token string `json:"token"`
}

func (h *UserHandler) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api.Group("/users"))

	httpez.RegisterAction(ez, httpez.Action[user.CreateInput, *domain.User]{
		Method: http.MethodPost,
		Path:   "",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Msg:    "User created successfully",
		Handler: func(c *gin.Context, in *user.CreateInput) (*domain.User, error) {
			return h.svc.Create(c.Request.Context(), *in)
		},
	})

	var loginMW []gin.HandlerFunc
	if h.loginLimit != nil {
		loginMW = append(loginMW, h.loginLimit)
	}
	httpez.RegisterAction(ez, httpez.Action[user.LoginInput, loginOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: httpez.BindJSON,
		Use:    loginMW,
		Msg:    "Login successful",
		Handler: func(c *gin.Context, in *user.LoginInput) (loginOut, error) {
			tok, _, err := h.svc.Login(c.Request.Context(), *in)
			if err != nil {
				return loginOut{}, err
			}
			return loginOut{Token: tok}, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: httpez.BindNone,
		Use:    []gin.HandlerFunc{h.auth},
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})

	httpez.RegisterAction(ez, httpez.Action[user.UpdateInput, *domain.User]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: httpez.BindJSON,
		Use:    []gin.HandlerFunc{h.auth},
		Msg:    "Profile updated successfully",
		Handler: func(c *gin.Context, in *user.UpdateInput) (*domain.User, error) {
			claims, ok := mdw.ClaimsFrom(c)
			if !ok {
				return nil, domain.Unauthenticated("Access denied. Token missing.")
			}
			return h.svc.Update(c.Request.Context(), claims, c.Param("id"), *in)
		},
	})
}
