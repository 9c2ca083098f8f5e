package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var v *validator.Validate

func init() {
	v = validator.New(validator.WithRequiredStructEnabled())

	// エラーメッセージには json タグ名を使う
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", notBlank)
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimFunc(fl.Field().String(), unicode.IsSpace) != ""
}

type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Msg   string `json:"message"`
}

// Struct validates s and returns one message per failing field, nil when s is valid.
func Struct(s any) []FieldError {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Msg: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag(), Msg: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("Kolom '%s' wajib diisi.", fe.Field())
	case "min":
		return fmt.Sprintf("Kolom '%s' harus memiliki minimal %s karakter.", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("Kolom '%s' harus memiliki maksimal %s karakter.", fe.Field(), fe.Param())
	case "email":
		return "Format email tidak valid."
	case "oneof":
		return fmt.Sprintf("Kolom '%s' harus salah satu dari: %s.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("Kolom '%s' gagal validasi untuk tag '%s'.", fe.Field(), fe.Tag())
	}
}

// Join flattens field errors into a single human-readable message.
func Join(errs []FieldError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Msg)
	}
	return strings.Join(msgs, " ")
}
