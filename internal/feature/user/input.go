package user

import (
	"strings"

	"user-account-api/internal/domain"
)

// CreateInput is the signup body. Any "role" key sent by the client is ignored.
type CreateInput struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// UpdateInput is the profile update body. A nil field was absent from the JSON.
type UpdateInput struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type LoginInput struct {
	Email string `json:"email"`
}

// normalize trims before validation: a whitespace-only name counts as empty,
// and stored values never carry surrounding blanks.
func (in *CreateInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	trimPtr(in.Address)
}

func (in *UpdateInput) normalize() {
	trimPtr(in.Name)
	trimPtr(in.Address)
}

// Patch keeps only present, non-empty allow-listed fields.
func (in UpdateInput) Patch() domain.UserPatch {
	return domain.UserPatch{
		Name:    nonEmpty(in.Name),
		Email:   nonEmpty(in.Email),
		Phone:   nonEmpty(in.Phone),
		Address: nonEmpty(in.Address),
	}
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
