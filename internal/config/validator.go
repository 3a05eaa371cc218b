package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers core-specific validation rules.
// Must be called before validating CoreConfig.
func RegisterCustomValidators(v *validator.Validate) error {
	return nil
}

// Validate validates the CoreConfig using struct tags and custom
// cross-field rules. Returns an error if validation fails, with
// actionable error messages.
func (c *CoreConfig) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if err := c.validateEmailSinks(); err != nil {
		return err
	}

	return nil
}

// validateEmailSinks ensures every email_transport sink names both a
// from and a to address; the struct tags alone can't express that an
// optional field becomes required conditional on another field's value.
func (c *CoreConfig) validateEmailSinks() error {
	for i, sink := range c.Alert.Sinks {
		if sink.Type != "email_transport" {
			continue
		}
		if sink.From == "" || sink.To == "" {
			return fmt.Errorf("alert.sinks[%d]: email_transport sink requires both from and to", i)
		}
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors to user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			msg := formatSingleValidationError(e)
			messages = append(messages, msg)
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a single validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s items", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "hostname_port":
		return fmt.Sprintf("%s must be a valid host:port", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}
