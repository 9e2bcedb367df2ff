package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})

	t.Run("domain errors pass through wrapping", func(t *testing.T) {
		err := fmt.Errorf("toggle: %w", NewForbidden("Cannot vote on your own complaint"))
		de := ToDomainError(err)
		assert.Equal(t, CodeForbidden, de.Code)
		assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
	})

	t.Run("no rows maps to not found", func(t *testing.T) {
		de := ToDomainError(fmt.Errorf("load: %w", pgx.ErrNoRows))
		assert.Equal(t, CodeNotFound, de.Code)
	})

	t.Run("unknown errors become generic internal errors", func(t *testing.T) {
		de := ToDomainError(errors.New("connection reset by peer"))
		assert.Equal(t, CodeInternal, de.Code)
		assert.Equal(t, "internal server error", de.Message)
		assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	})
}

func TestWindowExpiredIsGone(t *testing.T) {
	err := NewWindowExpired("Retention window passed. The complaint can no longer be restored.")
	assert.True(t, HasCode(err, CodeWindowExpired))
	assert.Equal(t, http.StatusGone, ToDomainError(err).HTTPStatus)
	assert.False(t, HasCode(err, CodeInvalidTransition))
}
