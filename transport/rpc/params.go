package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BadRequestError rejects a request before it reaches the game handlers.
type BadRequestError struct {
	Message string
}

func (that *BadRequestError) Error() string {
	return that.Message
}

func invalidParams(issues ...string) *BadRequestError {
	return &BadRequestError{Message: "Invalid params: " + strings.Join(issues, ". ")}
}

func newValidator() *validator.Validate {
	validate := validator.New()

	// report fields by their wire names
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return validate
}

// decodeParams fills dst from raw and checks it against its validate tags.
// Missing params decode as an empty object.
func (that *Router) decodeParams(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "params"
			}

			return invalidParams(fmt.Sprintf("%s: Expected %s, received %s", field, typeErr.Type.Kind(), typeErr.Value))
		}

		return invalidParams(fmt.Sprintf("params: %v", err))
	}

	err := that.validate.Struct(dst)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("failed to validate params: %w", err)
	}

	issues := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		issues = append(issues, fmt.Sprintf("%s: %s", fieldErr.Field(), describeRule(fieldErr)))
	}

	return invalidParams(issues...)
}

func describeRule(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "Required"
	case "oneof":
		return fmt.Sprintf("Expected one of %s", strings.ReplaceAll(fieldErr.Param(), " ", " | "))
	default:
		return fmt.Sprintf("Failed on %s", fieldErr.Tag())
	}
}

// validateID accepts string and number ids only.
func validateID(raw json.RawMessage) error {
	var id any
	if err := json.Unmarshal(raw, &id); err != nil || id == nil {
		return invalidParams("id: Required")
	}

	switch id.(type) {
	case string, float64:
		return nil
	default:
		return invalidParams("id: Expected string or number")
	}
}
