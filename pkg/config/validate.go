package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// identifierPattern limits collection names to safe SQL identifiers.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
			return identifierPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// Validate checks struct tag constraints and the cross-field rules that tags
// cannot express. It does not modify cfg.
func Validate(cfg *Config) error {
	if err := getValidator().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return formatValidationErrors(verrs)
		}
		return err
	}

	if err := cfg.API.CheckTLS(); err != nil {
		return err
	}

	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	return nil
}

// formatValidationErrors renders validator errors as
// "Config.Logging.Level: failed 'oneof' (value: "x")" lines.
func formatValidationErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s: failed '%s'", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s: failed '%s=%s'", fe.Namespace(), fe.Tag(), fe.Param())
		}
		msgs = append(msgs, fmt.Sprintf("%s (value: %v)", msg, fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
