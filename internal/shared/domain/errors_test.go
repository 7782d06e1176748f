package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	errBadInput := domain.NewKindError(domain.KindValidation, "bad input")

	tests := []struct {
		name string
		err  error
		want domain.ErrorKind
	}{
		{"nil", nil, domain.KindUnknown},
		{"plain", errors.New("boom"), domain.KindUnknown},
		{"sentinel", errBadInput, domain.KindValidation},
		{"wrapped sentinel", fmt.Errorf("create: %w", errBadInput), domain.KindValidation},
		{"outer kind wins", domain.Wrap(domain.KindPersistence, "save", errBadInput), domain.KindPersistence},
		{"not found", domain.ErrNotFound, domain.KindNotFound},
		{"conflict", fmt.Errorf("save: %w", domain.ErrConcurrencyConflict), domain.KindConcurrencyConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.KindOf(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	assert.NoError(t, domain.Wrap(domain.KindPersistence, "save", nil))

	cause := errors.New("disk full")
	err := domain.Wrap(domain.KindPersistence, "save team", cause)
	assert.EqualError(t, err, "save team: disk full")
	assert.ErrorIs(t, err, cause)
	assert.True(t, domain.IsKind(err, domain.KindPersistence))
}

func TestErrorIsMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("find: %w", domain.ErrNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrPermissionDenied)
}
