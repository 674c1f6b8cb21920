package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	t.Parallel()

	t.Run("formats details when present", func(t *testing.T) {
		err := BadRequest("invalid body", "title")
		require.Equal(t, "BAD_REQUEST: invalid body (title)", err.Error())
		require.Equal(t, http.StatusBadRequest, StatusOf(err))
	})

	t.Run("wrap keeps cause for errors.Is", func(t *testing.T) {
		sentinel := errors.New("db down")
		err := fmt.Errorf("login: %w", Wrap(sentinel, "STORE_UNAVAILABLE", "try again later", http.StatusServiceUnavailable))

		require.ErrorIs(t, err, sentinel)
		require.Equal(t, http.StatusServiceUnavailable, StatusOf(err))
		require.NotContains(t, err.Error(), "db down")
	})

	t.Run("unknown errors map to 500", func(t *testing.T) {
		require.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
	})
}
