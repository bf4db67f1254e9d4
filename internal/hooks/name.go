package hooks

import (
	"fmt"
	"regexp"
	"strings"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_./-]*$`)

// ValidateName reports whether name can be used as a hook name. The error
// wraps ErrInvalidHookName.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: the hook name must be a non empty string", ErrInvalidHookName)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: the hook name %q can only contain numbers, letters, dashes, periods, underscores and slashes", ErrInvalidHookName, name)
	}
	return nil
}
