// Package identity builds the identifier a node announces in scans.
package identity

import (
	"context"
	"errors"
	"os"
	"strings"
	"unicode"

	"github.com/shirou/gopsutil/v3/host"
)

const (
	// MaxUsernameLength is the longest username accepted, in bytes
	MaxUsernameLength = 62
	// MaxIdentifierLength matches the longest identifier peers keep
	MaxIdentifierLength = 319
)

var (
	ErrEmptyUsername     = errors.New("username is empty")
	ErrUsernameTooLong   = errors.New("username is too long")
	ErrInvalidUsername   = errors.New("username contains whitespace or '@'")
	ErrEmptyHostname     = errors.New("hostname is empty")
	ErrIdentifierTooLong = errors.New("identifier is too long")
)

// ValidateUsername checks the user part of an identifier
func ValidateUsername(username string) error {
	switch {
	case username == "":
		return ErrEmptyUsername
	case len(username) > MaxUsernameLength:
		return ErrUsernameTooLong
	case strings.ContainsRune(username, '@') || strings.IndexFunc(username, unicode.IsSpace) >= 0:
		return ErrInvalidUsername
	}
	return nil
}

// New returns the identifier username@hostname
func New(username, hostname string) (string, error) {
	if err := ValidateUsername(username); err != nil {
		return "", err
	}
	hostname = strings.TrimSpace(hostname)
	if hostname == "" {
		return "", ErrEmptyHostname
	}
	identifier := username + "@" + hostname
	if len(identifier) > MaxIdentifierLength {
		return "", ErrIdentifierTooLong
	}
	return identifier, nil
}

// Hostname returns the local host name
func Hostname(ctx context.Context) (string, error) {
	info, err := host.InfoWithContext(ctx)
	if err == nil && info.Hostname != "" {
		return info.Hostname, nil
	}
	return os.Hostname()
}

// Local returns the identifier of username on this host
func Local(ctx context.Context, username string) (string, error) {
	hostname, err := Hostname(ctx)
	if err != nil {
		return "", err
	}
	return New(username, hostname)
}
