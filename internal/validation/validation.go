// Package validation holds the input rules shared by the service layer.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxUsernameLength matches the users.username column width, in characters.
	MaxUsernameLength = 30
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
	MaxBioLength     = 500
)

var ErrEmptyContent = errors.New("Empty content")

// ValidateUsername checks presence and the column length. Any characters are
// allowed and usernames are case-sensitive.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return errors.New("username is required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLength)
	}
	return nil
}

// ValidatePassword only enforces presence and the bcrypt length limit.
func ValidatePassword(password string) error {
	if password == "" {
		return errors.New("password is required")
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password must not exceed %d bytes", MaxPasswordBytes)
	}
	return nil
}

// ValidateBio limits profile text length in characters.
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return fmt.Errorf("bio must not exceed %d characters", MaxBioLength)
	}
	return nil
}

// NormalizeTweetContent trims surrounding whitespace and rejects empty content.
// Length is bounded only by the request body limit.
func NormalizeTweetContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", ErrEmptyContent
	}
	return trimmed, nil
}
