package validators

import (
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"reviewhub/internal/microservices/http-api/apperr"
)

const (
	// ReservedUsername collides with the /users/me route.
	ReservedUsername = "me"
	// DefaultUsernamePattern accepts letters and digits of any script.
	DefaultUsernamePattern = `^[\p{L}\p{N}_.@+-]+$`
)

var (
	ErrInvalidUsername = fmt.Errorf("%w: invalid username", apperr.ErrValidation)
	ErrInvalidYear     = fmt.Errorf("%w: invalid year", apperr.ErrValidation)
)

var usernamePattern atomic.Pointer[regexp.Regexp]

func init() {
	usernamePattern.Store(regexp.MustCompile(DefaultUsernamePattern))
}

// SetUsernamePattern replaces the allowed-symbol pattern. Called once at startup
// from configuration.
func SetUsernamePattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compile username pattern: %w", err)
	}
	usernamePattern.Store(re)
	return nil
}

// ValidateUsername returns value unchanged when it is an acceptable username.
func ValidateUsername(value string) (string, error) {
	if value == ReservedUsername {
		return "", fmt.Errorf("%w: %q is reserved", ErrInvalidUsername, ReservedUsername)
	}

	re := usernamePattern.Load()
	if re.MatchString(value) {
		return value, nil
	}

	// check symbol by symbol so the error names every offending occurrence
	var bad strings.Builder
	for _, symbol := range value {
		if !re.MatchString(string(symbol)) {
			bad.WriteRune(symbol)
		}
	}
	if bad.Len() == 0 {
		return "", fmt.Errorf("%w: must match %s", ErrInvalidUsername, re.String())
	}
	return "", fmt.Errorf("%w: forbidden characters %q", ErrInvalidUsername, bad.String())
}

func ValidateYear(value int) error {
	return ValidateYearAt(value, time.Now())
}

func ValidateYearAt(value int, now time.Time) error {
	if value > now.Year() {
		return fmt.Errorf("%w: %d is later than %d", ErrInvalidYear, value, now.Year())
	}
	return nil
}

// UsernameRule plugs ValidateUsername into ozzo-validation. Empty values are
// left to validation.Required.
var UsernameRule = validation.By(func(value interface{}) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return validation.NewError("validation_username_type", "must be a string")
	}
	if s == "" {
		return nil
	}
	_, err := ValidateUsername(s)
	return err
})

var YearRule = validation.By(func(value interface{}) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	year, ok := v.(int)
	if !ok {
		return validation.NewError("validation_year_type", "must be an integer")
	}
	return ValidateYear(year)
})
