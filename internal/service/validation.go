package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"usermgmt/internal/model"
	"usermgmt/internal/session"
)

// Messages shown under the form fields.
const (
	MsgNameTooShort = "Name must be at least 2 characters"
	MsgNameTooLong  = "Name must be less than 50 characters"
	MsgEmailInvalid = "Please enter a valid email address"
)

var fieldMessages = map[string]map[string]string{
	"name": {
		"required": MsgNameTooShort,
		"min":      MsgNameTooShort,
		"max":      MsgNameTooLong,
	},
	"email": {
		"required": MsgEmailInvalid,
		"email":    MsgEmailInvalid,
	},
}

// FieldErrors maps a form field name to the message to show under it.
type FieldErrors map[string]string

// Validator checks form input against the create and update schemas declared
// as struct tags on model.UserCreate and model.UserUpdate.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a Validator reporting fields by their JSON names.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Engine exposes the underlying validator for echo's CustomValidator.
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

// Create validates a create submission.
func (v *Validator) Create(in session.FormValues) (model.UserCreate, FieldErrors) {
	payload := model.UserCreate{Name: in.Name, Email: in.Email}
	return payload, v.check(payload)
}

// Update validates an edit submission. Fields equal to the current record are
// left out of the payload so the backend keeps them untouched.
func (v *Validator) Update(in session.FormValues, current model.User) (model.UserUpdate, FieldErrors) {
	var payload model.UserUpdate
	if in.Name != current.Name {
		name := in.Name
		payload.Name = &name
	}
	if in.Email != current.Email {
		email := in.Email
		payload.Email = &email
	}
	return payload, v.check(payload)
}

func (v *Validator) check(payload any) FieldErrors {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"form": err.Error()}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		msg, ok := fieldMessages[fe.Field()][fe.Tag()]
		if !ok {
			msg = "Invalid " + fe.Field()
		}
		out[fe.Field()] = msg
	}
	return out
}
