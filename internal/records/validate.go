package records

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (e FieldError) String() string {
	switch e.Rule {
	case "required":
		return e.Field + " cannot be blank"
	case "max":
		return fmt.Sprintf("%s should contain at most %s characters", e.Field, e.Param)
	case "unique":
		return fmt.Sprintf("%s %q has already been taken", e.Field, e.Param)
	default:
		return fmt.Sprintf("%s failed %s %s", e.Field, e.Rule, e.Param)
	}
}

// ValidationError lists every rule a record failed.
type ValidationError struct {
	Record string       `json:"record"`
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.String()
	}
	return fmt.Sprintf("invalid %s: %s", e.Record, strings.Join(msgs, "; "))
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("db"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkStruct runs the struct tag rules of r and returns the failures.
func checkStruct(r any) ([]FieldError, error) {
	err := validate.Struct(r)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	out := make([]FieldError, len(verrs))
	for i, fe := range verrs {
		out[i] = FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()}
	}
	return out, nil
}

func invalid(record string, fields []FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Record: record, Fields: fields}
}
