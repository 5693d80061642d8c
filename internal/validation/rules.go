// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

var (
	// identifierRegex bounds client ids, operations, and action names
	identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._\-]{0,127}$`)

	// resourcePatternRegex allows path segments, "*" and "{name}" wildcards
	resourcePatternRegex = regexp.MustCompile(`^[a-zA-Z0-9._\-/*{}]{1,512}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Identifier validates client ids, operation names, and action names: it must
// start alphanumeric and may continue with dots, underscores, and hyphens.
var Identifier = validation.NewStringRuleWithError(
	func(s string) bool {
		return identifierRegex.MatchString(s)
	},
	validation.NewError(
		"validation_identifier_format",
		"must start with a letter or digit and contain only letters, digits, dots, underscores, and hyphens",
	),
)

// ResourcePattern validates the character set of a resource pattern. Pattern
// compilation performs the structural check.
var ResourcePattern = validation.NewStringRuleWithError(
	func(s string) bool {
		return resourcePatternRegex.MatchString(s)
	},
	validation.NewError(
		"validation_resource_pattern_format",
		"must contain only path characters and the * and {name} wildcards",
	),
)

// NoWhitespace validates that a string doesn't contain leading or trailing
// whitespace.
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
