package provider

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ValidateConfigFields checks a provider configuration against the
// provider's declared field list. Required fields must be present and
// non-empty; present fields are checked against type, length and pattern
// constraints.
func ValidateConfigFields(fields []ConfigField, conf map[string]string) error {
	for _, field := range fields {
		value, exists := conf[field.Key]
		value = strings.TrimSpace(value)

		if field.Required && (!exists || value == "") {
			return NewConfigError(fmt.Sprintf("required field %q is missing", field.Key), nil)
		}
		if !exists || value == "" {
			continue
		}

		if field.MinLength > 0 && len(value) < field.MinLength {
			return NewConfigError(fmt.Sprintf("field %q must be at least %d characters", field.Key, field.MinLength), nil)
		}
		if field.MaxLength > 0 && len(value) > field.MaxLength {
			return NewConfigError(fmt.Sprintf("field %q must be at most %d characters", field.Key, field.MaxLength), nil)
		}

		switch field.Type {
		case "number":
			if _, err := strconv.ParseInt(value, 10, 64); err != nil {
				return NewConfigError(fmt.Sprintf("field %q must be numeric", field.Key), nil)
			}
		case "url":
			if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
				return NewConfigError(fmt.Sprintf("field %q must be an http(s) URL", field.Key), nil)
			}
		case "email":
			if !strings.Contains(value, "@") {
				return NewConfigError(fmt.Sprintf("field %q must be an email address", field.Key), nil)
			}
		case "boolean":
			if _, err := strconv.ParseBool(value); err != nil {
				return NewConfigError(fmt.Sprintf("field %q must be a boolean", field.Key), nil)
			}
		}

		if field.Pattern != "" {
			re, err := regexp.Compile(field.Pattern)
			if err != nil {
				return NewConfigError(fmt.Sprintf("field %q has an invalid validation pattern", field.Key), err)
			}
			if !re.MatchString(value) {
				return NewConfigError(fmt.Sprintf("field %q does not match the required format", field.Key), nil)
			}
		}
	}
	return nil
}
