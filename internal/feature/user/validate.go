package user

import (
	"errors"
	"sort"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"

	"user-account-api/internal/domain"
)

// fieldOrder fixes the order violations are reported in.
var fieldOrder = []string{"name", "email", "phone", "address"}

// Rules holds the create/update rule sets.
type Rules struct {
	// PhoneRegion is used for numbers given without a +country prefix.
	PhoneRegion string
}

func (r Rules) phone(msg string) validation.Rule {
	return validation.By(func(value interface{}) error {
		v, isNil := validation.Indirect(value)
		if isNil {
			return nil
		}
		s, _ := v.(string)
		if !IsPhoneNumber(s, r.PhoneRegion) {
			return errors.New(msg)
		}
		return nil
	})
}

// IsPhoneNumber reports whether s is a valid number. Numbers without a
// +country prefix are tried against region first, then every other region.
func IsPhoneNumber(s, region string) bool {
	if s == "" {
		return false
	}
	if validIn(s, region) {
		return true
	}
	if strings.HasPrefix(strings.TrimSpace(s), "+") {
		return false
	}
	for _, rc := range supportedRegions() {
		if rc != region && validIn(s, rc) {
			return true
		}
	}
	return false
}

func validIn(s, region string) bool {
	n, err := phonenumbers.Parse(s, region)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(n)
}

var supportedRegions = sync.OnceValue(func() []string {
	out := make([]string, 0, 256)
	for rc := range phonenumbers.GetSupportedRegions() {
		out = append(out, rc)
	}
	sort.Strings(out)
	return out
})

func (r Rules) ValidateCreate(in *CreateInput) error {
	fields := []*validation.FieldRules{
		validation.Field(&in.Name, validation.Required.Error("Name is required")),
		validation.Field(&in.Email,
			validation.Required.Error("Valid email is required"),
			is.Email.Error("Valid email is required")),
	}
	if in.Phone != nil {
		fields = append(fields, validation.Field(&in.Phone, r.phone("Invalid phone number")))
	}
	if in.Address != nil {
		fields = append(fields, validation.Field(&in.Address,
			validation.Required.Error("Address must be at least 5 characters"),
			validation.RuneLength(5, 0).Error("Address must be at least 5 characters")))
	}
	return toDomainErr(validation.ValidateStruct(in, fields...))
}

// ValidateUpdate checks only the fields present in in; a present empty string is a violation.
func (r Rules) ValidateUpdate(in *UpdateInput) error {
	var fields []*validation.FieldRules
	if in.Name != nil {
		fields = append(fields, validation.Field(&in.Name,
			validation.Required.Error("Name must be at least 2 characters"),
			validation.RuneLength(2, 0).Error("Name must be at least 2 characters")))
	}
	if in.Email != nil {
		fields = append(fields, validation.Field(&in.Email,
			validation.Required.Error("Invalid email format"),
			is.Email.Error("Invalid email format")))
	}
	if in.Phone != nil {
		fields = append(fields, validation.Field(&in.Phone, r.phone("Invalid phone number")))
	}
	if in.Address != nil {
		fields = append(fields, validation.Field(&in.Address,
			validation.Required.Error("Address must be at least 5 characters"),
			validation.RuneLength(5, 0).Error("Address must be at least 5 characters")))
	}
	if len(fields) == 0 {
		return nil
	}
	return toDomainErr(validation.ValidateStruct(in, fields...))
}

func toDomainErr(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return domain.Internal("validation failed", err)
	}
	out := make([]domain.FieldError, 0, len(errs))
	for _, f := range fieldOrder {
		if e, ok := errs[f]; ok {
			out = append(out, domain.FieldError{Field: f, Message: e.Error()})
		}
	}
	return domain.Invalid(out)
}
