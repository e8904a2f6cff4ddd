package validation

import (
	"fmt"
	"strings"
)

// ValidationErrors collects every problem found while checking a configuration
// so that all of them can be reported in one pass.
type ValidationErrors struct {
	errors []string
}

func (v *ValidationErrors) Add(format string, args ...interface{}) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *ValidationErrors) AddError(path, message string) {
	v.errors = append(v.errors, fmt.Sprintf("%s: %s", path, message))
}

func (v *ValidationErrors) Error() string {
	if len(v.errors) == 0 {
		return ""
	}
	return strings.Join(v.errors, "\n")
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.errors) > 0
}

func (v *ValidationErrors) Count() int {
	return len(v.errors)
}

// GetErrors returns all validation errors as a slice.
func (v *ValidationErrors) GetErrors() []string {
	return v.errors
}

// Err returns nil when nothing was recorded, otherwise the accumulator itself.
// Returning a typed nil pointer through an error interface is the usual trap
// this avoids.
func (v *ValidationErrors) Err() error {
	if v == nil || len(v.errors) == 0 {
		return nil
	}
	return v
}

// RequireNonEmpty records an error for path when value is blank.
func (v *ValidationErrors) RequireNonEmpty(path, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(path, "must not be empty")
	}
}
