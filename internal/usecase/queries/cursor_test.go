//go:build unit

package queries_test

import (
	"encoding/base64"
	"testing"
	"time"

	"voucher-engine/internal/pkg/errs"
	"voucher-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfterCursor(t *testing.T) {
	t.Run("round trip keeps microsecond precision", func(t *testing.T) {
		createdAt := time.Date(2025, 3, 1, 10, 0, 0, 123456789, time.UTC)
		id := uuid.New()

		key, err := queries.DecodeAfterCursor(queries.EncodeAfterCursor(createdAt, id))

		require.NoError(t, err)
		assert.Equal(t, createdAt.Truncate(time.Microsecond), key.CreatedAt)
		assert.Equal(t, id, key.ID)
	})

	t.Run("empty cursor means first page", func(t *testing.T) {
		key, err := queries.DecodeAfterCursor("")

		require.NoError(t, err)
		assert.Nil(t, key)
	})

	invalid := []struct {
		name   string
		cursor string
	}{
		{name: "not base64", cursor: "%%%"},
		{name: "unknown version", cursor: encode("v9:1700000000000000-" + uuid.NewString())},
		{name: "missing separator", cursor: encode("v1:1700000000000000")},
		{name: "non-numeric timestamp", cursor: encode("v1:yesterday-" + uuid.NewString())},
		{name: "bad uuid", cursor: encode("v1:1700000000000000-not-a-uuid")},
	}
	for _, tc := range invalid {
		t.Run("invalid: "+tc.name, func(t *testing.T) {
			_, err := queries.DecodeAfterCursor(tc.cursor)

			require.Error(t, err)
			assert.True(t, errs.Is(err, queries.ErrInvalidCursor))
		})
	}
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, queries.DefaultListLimit, queries.ValidateLimit(0))
	assert.Equal(t, queries.DefaultListLimit, queries.ValidateLimit(-5))
	assert.Equal(t, 7, queries.ValidateLimit(7))
	assert.Equal(t, queries.MaxListLimit, queries.ValidateLimit(queries.MaxListLimit+1))
}

func encode(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}
