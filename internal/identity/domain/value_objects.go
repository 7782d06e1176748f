package domain

import (
	"regexp"
	"strings"

	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
)

var (
	ErrInvalidEmail = sharedDomain.NewKindError(sharedDomain.KindValidation, "invalid email address")
	ErrEmptyName    = sharedDomain.NewKindError(sharedDomain.KindValidation, "name cannot be empty")
	ErrNameTooLong  = sharedDomain.NewKindError(sharedDomain.KindValidation, "name exceeds maximum length")
)

// MaxNameLength bounds display names.
const MaxNameLength = 255

var emailPattern = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9-]+(\.[a-z0-9-]+)*\.[a-z]{2,}$`)

// Email is a normalized, validated email address.
type Email struct {
	value string
}

// NewEmail lower-cases and validates value.
func NewEmail(value string) (Email, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if !emailPattern.MatchString(value) {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: value}, nil
}

func (e Email) String() string { return e.value }

// Name is a trimmed, non-empty display name.
type Name struct {
	value string
}

// NewName validates value.
func NewName(value string) (Name, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return Name{}, ErrEmptyName
	case len(value) > MaxNameLength:
		return Name{}, ErrNameTooLong
	}
	return Name{value: value}, nil
}

func (n Name) String() string { return n.value }
