package checkout

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form fields, as named in requests and field errors.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldAddress = "address"
	FieldPromo   = "promo"
)

// RequiredFieldsNotice is shown once the shopper has attempted a submit with errors.
const RequiredFieldsNotice = "Please fill in all required fields."

const shopperEmailTag = "shopper_email"

var shopperEmailPattern = regexp.MustCompile(`^\S+@\S+$`)

// Form is the checkout form. Rules are declared on the struct and evaluated on submit attempts.
type Form struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,shopper_email"`
	Address string `json:"address" validate:"required,min=6"`
	Promo   string `json:"promo"`
}

// FieldErrors maps a field name to its message.
type FieldErrors map[string]string

var fieldMessages = map[string]map[string]string{
	FieldName: {
		"required": "Name is required",
		"min":      "Min 2 characters",
	},
	FieldEmail: {
		"required":      "Email is required",
		shopperEmailTag: "Invalid email",
	},
	FieldAddress: {
		"required": "Address is required",
		"min":      "Add more address details",
	},
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation(shopperEmailTag, func(fl validator.FieldLevel) bool {
		return shopperEmailPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate returns the first failing rule per field, or nil when the form is valid.
func (f Form) Validate() FieldErrors {
	err := formValidator.Struct(f)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"form": err.Error()}
	}
	out := FieldErrors{}
	for _, fe := range errs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		if msg, ok := fieldMessages[field][fe.Tag()]; ok {
			out[field] = msg
			continue
		}
		out[field] = "is invalid"
	}
	return out
}

// set assigns one field by name and reports whether the name is known.
func (f *Form) set(field, value string) bool {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldAddress:
		f.Address = value
	case FieldPromo:
		f.Promo = value
	default:
		return false
	}
	return true
}
