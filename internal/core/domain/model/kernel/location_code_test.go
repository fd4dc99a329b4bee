package kernel_test

import (
	"strings"
	"testing"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocationCode(t *testing.T) {
	t.Run("should create code and trim surrounding whitespace", func(t *testing.T) {
		code, err := kernel.NewLocationCode("  LIB-1 ")

		require.NoError(t, err)
		require.NoError(t, code.Validate())
		assert.Equal(t, "LIB-1", code.String())
	})

	t.Run("should reject blank code", func(t *testing.T) {
		_, err := kernel.NewLocationCode("   ")

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("should reject overly long code", func(t *testing.T) {
		_, err := kernel.NewLocationCode(strings.Repeat("X", kernel.MaxLocationCodeLength+1))

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should accept code at max length", func(t *testing.T) {
		_, err := kernel.NewLocationCode(strings.Repeat("X", kernel.MaxLocationCodeLength))

		require.NoError(t, err)
	})
}

func TestLocationCode_IsEqual(t *testing.T) {
	a := kernel.MustLocationCode("LIB-1")
	b := kernel.MustLocationCode("LIB-1")
	c := kernel.MustLocationCode("lib-1")
	var zero kernel.LocationCode

	assert.True(t, a.IsEqual(b))
	assert.False(t, a.IsEqual(c), "codes are case-sensitive")
	assert.False(t, zero.IsEqual(zero))
	assert.Equal(t, kernel.ErrLocationCodeIsNotConstructed, zero.Validate())
}

func TestMustLocationCode_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { kernel.MustLocationCode("") })
}
