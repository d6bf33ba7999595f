package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ErrEmailTaken is returned by the store when the unique email index rejects a write.
var ErrEmailTaken = errors.New("email already taken")

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Role      string    `json:"role"` // "user"/"admin"
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate is the schema-level check every row passes before it is written.
func (u User) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.ID, validation.Required),
		validation.Field(&u.Name, validation.Required),
		validation.Field(&u.Email, validation.Required, is.Email),
		validation.Field(&u.Role, validation.Required, validation.In(RoleUser, RoleAdmin)),
	)
}

// UserPatch is a sparse update: nil fields are left as stored.
type UserPatch struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Address == nil
}

// Fields lists the json names of the fields the patch touches.
func (p UserPatch) Fields() []string {
	var out []string
	if p.Name != nil {
		out = append(out, "name")
	}
	if p.Email != nil {
		out = append(out, "email")
	}
	if p.Phone != nil {
		out = append(out, "phone")
	}
	if p.Address != nil {
		out = append(out, "address")
	}
	return out
}

func (p UserPatch) ApplyTo(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
}

type ListFilter struct {
	Offset int
	Limit  int
	Query  string
}

func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Query = strings.TrimSpace(f.Query)
	return f
}

// UserRepository returns (nil, nil) when a lookup matches nothing.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdateByID(ctx context.Context, id string, patch UserPatch) (*User, error)
	List(ctx context.Context, f ListFilter) ([]User, int64, error)
}
