package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shinji-kodama/mergepom/internal/charset"
)

// ValidationError represents a specific invalid setting.
type ValidationError struct {
	// Field is the config key that failed validation.
	Field string

	// Message describes what's wrong with the value.
	Message string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s: %s", e.Field, e.Message)
}

// Validate checks the configuration and returns every problem found
// (empty list = valid configuration).
func (c Config) Validate() []ValidationError {
	var errs []ValidationError

	nameFields := []struct {
		field string
		value string
	}{
		{"driverName", c.DriverName},
		{"propertiesElement", c.PropertiesElement},
		{"versionElement", c.VersionElement},
	}
	for _, nf := range nameFields {
		if msg := checkName(nf.value); msg != "" {
			errs = append(errs, ValidationError{Field: nf.field, Message: msg})
		}
	}

	if strings.TrimSpace(c.TrunkBranch) == "" {
		errs = append(errs, ValidationError{Field: "trunkBranch", Message: "must not be empty"})
	}

	encFields := []struct {
		field string
		value string
	}{
		{"defaultEncoding", c.DefaultEncoding},
		{"fallbackEncoding", c.FallbackEncoding},
	}
	for _, ef := range encFields {
		if !charset.Supported(ef.value) {
			errs = append(errs, ValidationError{
				Field:   ef.field,
				Message: fmt.Sprintf("unsupported encoding %q", ef.value),
			})
		}
	}

	if c.GitBinary == "" {
		errs = append(errs, ValidationError{Field: "gitBinary", Message: "must not be empty"})
	}

	return errs
}

// Err joins the validation errors into one error, or returns nil.
func (c Config) Err() error {
	problems := c.Validate()
	if len(problems) == 0 {
		return nil
	}

	joined := make([]error, len(problems))
	for i := range problems {
		joined[i] = &problems[i]
	}
	return errors.Join(joined...)
}

// checkName validates an element or driver name. Names are pasted into
// literal tags and git config keys, so markup characters, whitespace and
// quotes are rejected.
func checkName(name string) string {
	if name == "" {
		return "must not be empty"
	}
	if strings.ContainsAny(name, "<>/\"' \t\r\n&=") {
		return fmt.Sprintf("%q contains characters not allowed in an element name", name)
	}
	return ""
}
