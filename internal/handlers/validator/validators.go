package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"ip_addr":       "is not an ip address",
	"protocol":      "is not a protocol number or name",
	"packet_filter": "is not a valid packet filter",
	"time_window":   "must not be before startTimeMs",
	"gte":           "must be greater than or equal to %s",
	"lte":           "must be less than or equal to %s",
	"gt":            "must be greater than %s",
}

type ValidationRule struct {
	Rule func(v *validator.Validate)
}

// Validator is a wrapper around the actual validator
// It sets up the validator and extract the rule error message from the underlying error
type Validator struct {
	validator *validator.Validate
	rules     []ValidationRule
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return &Validator{validator: v}
}

func (v *Validator) Register(rules ...ValidationRule) {
	for _, validationRule := range rules {
		validationRule.Rule(v.validator)
	}
	v.rules = append(v.rules, rules...)
}

func (v *Validator) Struct(s any) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return NewErrInvalidRequest("%s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	msg, found := messages[fe.Tag()]
	if !found {
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
	if strings.Contains(msg, "%s") {
		msg = fmt.Sprintf(msg, fe.Param())
	}
	return fmt.Sprintf("%s %s", fe.Field(), msg)
}
