package validation

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/routekit/errors"
)

var validate = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return v
})

// fieldName reports a field under its config key: the first of the
// mapstructure, yaml and json tags, else the snake-cased Go name.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"mapstructure", "yaml", "json"} {
		switch name, _, _ := strings.Cut(fld.Tag.Get(tag), ","); name {
		case "", "-":
			continue
		default:
			return name
		}
	}
	return snake(fld.Name)
}

// Validate checks s against its `validate` struct tags. Failures come back
// as one INVALID_INPUT error whose fields are named by config key, such as
// "hello_world.base_url".
func Validate(s any) error {
	err := validate().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Validation("validation failed").WithCause(err)
	}

	fields := make([]FieldError, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{Field: trimRoot(fe.Namespace()), Message: describe(fe)}
	}
	return fieldsError(fields)
}

// trimRoot drops the struct type from a namespace like "Config.logging.level".
func trimRoot(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

var tagMessages = map[string]string{
	"required":      "is required",
	"gte":           "must be greater than or equal to %s",
	"lte":           "must be less than or equal to %s",
	"gt":            "must be greater than %s",
	"url":           "must be a valid URL",
	"http_url":      "must be a valid URL",
	"hostname_port": "must be a host:port address",
	"oneof":         "must be one of: %s",
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		return "must be " + bound + " " + fe.Param() + lengthUnit(fe.Kind())
	}
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		return "is invalid (" + fe.Tag() + ")"
	}
	if strings.Contains(msg, "%s") {
		return strings.Replace(msg, "%s", fe.Param(), 1)
	}
	return msg
}

func lengthUnit(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Map:
		return " items"
	default:
		return ""
	}
}

func snake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
