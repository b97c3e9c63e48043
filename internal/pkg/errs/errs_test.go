//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"voucher-engine/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestMark(t *testing.T) {
	t.Run("marked error matches both the cause and the marker", func(t *testing.T) {
		cause := errors.New("serialization failure")
		marked := errs.Mark(cause, errs.ErrTransient)

		assert.True(t, errs.Is(marked, errs.ErrTransient))
		assert.True(t, errors.Is(marked, cause))
		assert.False(t, errs.Is(marked, errs.ErrDatabaseOperationFailed))
	})

	t.Run("nil cause returns the marker itself", func(t *testing.T) {
		assert.Equal(t, errs.ErrTransient, errs.Mark(nil, errs.ErrTransient))
	})

	t.Run("wrap keeps the mark", func(t *testing.T) {
		marked := errs.Mark(errors.New("deadlock"), errs.ErrTransient)
		wrapped := errs.Wrap(marked, "redeem voucher")

		assert.True(t, errs.Is(wrapped, errs.ErrTransient))
		assert.Contains(t, wrapped.Error(), "redeem voucher")
	})
}

func TestExtractStackLines(t *testing.T) {
	assert.Nil(t, errs.ExtractStackLines(nil, 3))

	lines := errs.ExtractStackLines(errs.New("boom"), 2)
	assert.LessOrEqual(t, len(lines), 2)
	assert.Contains(t, lines[0], "boom")
}
