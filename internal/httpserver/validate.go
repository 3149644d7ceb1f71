package httpserver

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Skotchmaster/storefront/internal/service"
)

// Validator plugs validator/v10 into echo's c.Validate.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	t := reflect.TypeOf(i)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	fields := make([]service.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, service.FieldError{Field: fe.Field(), Message: message(t, fe)})
	}
	return &service.ValidationError{Fields: fields}
}

func message(t reflect.Type, fe validator.FieldError) string {
	if sf, ok := t.FieldByName(fe.StructField()); ok {
		if m := sf.Tag.Get("msg_" + fe.Tag()); m != "" {
			return m
		}
		if m := sf.Tag.Get("msg"); m != "" {
			return m
		}
	}
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Please provide a valid email"
	case "uuid":
		return "Invalid " + fe.Field()
	default:
		return fe.Field() + " is invalid"
	}
}
