package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmail(t *testing.T) {
	e, err := NewEmail("  Closer@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "closer@example.com", e.String())

	for _, bad := range []string{"", "no-at-sign", "a@b", "two@@example.com"} {
		_, err := NewEmail(bad)
		assert.ErrorIs(t, err, ErrInvalidEmail, bad)
	}
}

func TestNewName(t *testing.T) {
	n, err := NewName("  Dana Rep ")
	require.NoError(t, err)
	assert.Equal(t, "Dana Rep", n.String())

	_, err = NewName("   ")
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = NewName(strings.Repeat("x", MaxNameLength+1))
	assert.ErrorIs(t, err, ErrNameTooLong)
}

func TestUser(t *testing.T) {
	email, _ := NewEmail("dana@example.com")
	name, _ := NewName("Dana")

	u := NewUser(email, name)

	require.Len(t, u.PendingEvents(), 1)
	registered := u.PendingEvents()[0].(*UserRegistered)
	assert.Equal(t, "dana@example.com", registered.Email)

	u.ClearPendingEvents()
	u.Rename(name)
	assert.Empty(t, u.PendingEvents())

	other, _ := NewName("Dana Quota-Crusher")
	u.Rename(other)
	assert.Equal(t, other, u.Name())
	assert.Equal(t, EventUserRenamed, u.PendingEvents()[0].EventType())
}
