package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Username identifies a tracked user. Matching is always case-insensitive,
// but the original casing is preserved for display and storage.
type Username string

// ErrBlankUsername is returned when a username is empty after trimming
var ErrBlankUsername = goerr.New("username must not be blank")

// NewUsername trims surrounding whitespace and validates the result
func NewUsername(s string) (Username, error) {
	u := Username(strings.TrimSpace(s))
	if err := u.Validate(); err != nil {
		return "", err
	}
	return u, nil
}

// Validate checks that the username is non-blank
func (u Username) Validate() error {
	if strings.TrimSpace(string(u)) == "" {
		return goerr.Wrap(ErrBlankUsername, "invalid username")
	}
	return nil
}

// Fold returns the canonical lowercase form used as a lookup key
func (u Username) Fold() string {
	return strings.ToLower(strings.TrimSpace(string(u)))
}

// Equal reports whether two usernames identify the same user
func (u Username) Equal(other Username) bool {
	return u.Fold() == other.Fold()
}

// String returns the username as entered
func (u Username) String() string {
	return string(u)
}
