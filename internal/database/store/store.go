// Package store wraps the database handles behind small injectable
// types so handlers never touch a package-global connection.
package store

import (
	"errors"
	"strings"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// NormalizeEmail lowercases and trims so uniqueness is
// case-insensitive regardless of what the client sent.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
