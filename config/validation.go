package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks the configuration using struct tags plus the rules
// tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

func validateCustomRules(cfg *Config) error {
	if strings.ContainsRune(cfg.Connection.Zone, '/') {
		return fmt.Errorf("connection.zone: %q must be a single collection name", cfg.Connection.Zone)
	}

	for i, name := range cfg.Adapter.Protected {
		if name == "" || strings.ContainsRune(name, '/') {
			return fmt.Errorf("adapter.protected[%d]: %q must be a single collection name", i, name)
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly
// messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}

	return err
}
