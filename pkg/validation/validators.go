// Package validation checks Roblox identifiers and decoded payloads.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jamesprial/go-wrapblox/pkg/types"
)

// Username length limits enforced by Roblox at sign-up.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 20
)

// usernameRegex matches letters, digits and underscores only
var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// IsValidUsername checks if a string is a valid Roblox username
func IsValidUsername(s string) bool {
	return ValidateUsername(s) == nil
}

// ValidateUsername reports why s cannot be a Roblox username.
// Usernames are 3 to 20 characters of letters, digits and at most one
// underscore, which may not be the first or last character.
func ValidateUsername(s string) error {
	switch {
	case s == "":
		return errors.New("username cannot be empty")
	case len(s) < MinUsernameLength || len(s) > MaxUsernameLength:
		return fmt.Errorf("username must be %d-%d characters, got %d", MinUsernameLength, MaxUsernameLength, len(s))
	case !usernameRegex.MatchString(s):
		return errors.New("username may only contain letters, digits and underscores")
	case strings.Count(s, "_") > 1:
		return errors.New("username may contain at most one underscore")
	case strings.HasPrefix(s, "_") || strings.HasSuffix(s, "_"):
		return errors.New("username cannot start or end with an underscore")
	}
	return nil
}

// ValidateUser checks the fields every user payload must carry.
func ValidateUser(u *types.User) error {
	if u == nil {
		return errors.New("user is nil")
	}

	var errs []error
	if u.ID <= 0 {
		errs = append(errs, fmt.Errorf("user id must be positive, got %d", u.ID))
	}
	if u.DisplayName != "" && u.Name == "" {
		errs = append(errs, errors.New("user has a display name but no username"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("user validation failed: %w", joinValidationErrors(errs))
	}
	return nil
}

// joinValidationErrors combines multiple errors into a single error message
func joinValidationErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}

	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return errors.New(strings.Join(msgs, "; "))
}
