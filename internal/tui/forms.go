package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator used by the auth forms. Form checks run
// before any network call so bad input never leaves the process.
var validate = validator.New()

// loginForm carries the login credentials through validation.
type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// registerForm carries the registration credentials through validation.
type registerForm struct {
	Email    string `validate:"required,email"`
	Username string `validate:"required,min=3"`
	Password string `validate:"required,min=6"`
	Confirm  string `validate:"required,eqfield=Password"`
}

// validationMessage converts the first field error into a line the form can
// render inline.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "eqfield":
		return "passwords do not match"
	default:
		return field + " is invalid"
	}
}

// maskPassword renders a password field as dots.
func maskPassword(s string) string {
	return strings.Repeat("•", len([]rune(s)))
}

// renderFormField renders one labeled form line with a block cursor on the
// focused field.
func renderFormField(label, value string, focused bool) string {
	line := " " + metaStyle.Render(fmt.Sprintf("%-10s", label))
	if focused {
		return line + normalStyle.Render(value) + accentStyle.Render("█")
	}
	if value == "" {
		return line + inputPlaceholderStyle.Render("...")
	}
	return line + dimStyle.Render(value)
}
