package order_test

import (
	"strings"
	"testing"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderNote(t *testing.T) {
	t.Run("should accept two short lines", func(t *testing.T) {
		note, err := order.NewOrderNote("call after 18\r\nleave at door  ")

		require.NoError(t, err)
		assert.Equal(t, "call after 18\nleave at door", note)
	})

	t.Run("should return empty note for blank input", func(t *testing.T) {
		note, err := order.NewOrderNote("   ")

		require.NoError(t, err)
		assert.Empty(t, note)
	})

	t.Run("should count characters not bytes", func(t *testing.T) {
		note, err := order.NewOrderNote("Ștefan cel Mare și Sfânt")
		require.Error(t, err)
		assert.Empty(t, note)

		note, err = order.NewOrderNote(strings.Repeat("ș", order.MaxNoteLineLength))
		require.NoError(t, err)
		assert.Equal(t, order.MaxNoteLineLength, len([]rune(note)))
	})

	t.Run("should normalize decomposed characters before counting", func(t *testing.T) {
		decomposed := strings.Repeat("s\u0326", order.MaxNoteLineLength)

		note, err := order.NewOrderNote(decomposed)

		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("\u0219", order.MaxNoteLineLength), note)
	})

	t.Run("should reject a third line", func(t *testing.T) {
		_, err := order.NewOrderNote("a\nb\nc")

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestNewCancelNote(t *testing.T) {
	t.Run("should strip markup", func(t *testing.T) {
		note, err := order.NewCancelNote("<b>customer</b> refused & asked <script>alert(1)</script>again")

		require.NoError(t, err)
		assert.Equal(t, "customer refused & asked again", note)
	})

	t.Run("should reject very long notes", func(t *testing.T) {
		_, err := order.NewCancelNote(strings.Repeat("x", order.MaxCancelNoteLength+1))

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}
