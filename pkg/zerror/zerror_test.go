package zerror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/product-api/pkg/zerror"
)

func TestZError(t *testing.T) {
	notFound := zerror.NewNotFound("PRODUCT_NOT_FOUND", "product not found")

	t.Run("Should format without parent", func(t *testing.T) {
		assert.Equal(t, "Code=PRODUCT_NOT_FOUND, Msg=product not found", notFound.Error())
		assert.Equal(t, zerror.StatusNotFound, notFound.Status())
		assert.Nil(t, notFound.Parent())
	})

	t.Run("Should keep predefined error untouched when wrapping", func(t *testing.T) {
		parent := errors.New("no rows")
		wrapped := notFound.WrapParent(parent)

		assert.Equal(t, parent, wrapped.Parent())
		assert.Nil(t, notFound.Parent())
		assert.Contains(t, wrapped.Error(), "Parent=(no rows)")
	})

	t.Run("Should ignore nil parent", func(t *testing.T) {
		assert.Equal(t, notFound, notFound.WrapParent(nil))
	})

	t.Run("Should be found with errors.As through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("service get product: %w", notFound.WrapParent(errors.New("no rows")))

		var zErr zerror.ZError
		assert.True(t, errors.As(err, &zErr))
		assert.Equal(t, "PRODUCT_NOT_FOUND", zErr.Code())
		assert.Equal(t, "product not found", zErr.Msg())
	})

	t.Run("Should expose the parent to errors.Is", func(t *testing.T) {
		sentinel := errors.New("no rows")
		err := fmt.Errorf("service get product: %w", notFound.WrapParent(sentinel))

		assert.ErrorIs(t, err, sentinel)
		assert.NotErrorIs(t, notFound, sentinel)
	})
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", zerror.StatusNotFound.String())
	assert.Equal(t, "VALIDATION_FAILED", zerror.StatusValidationFailed.String())
	assert.Equal(t, "UNKNOWN", zerror.Status(255).String())
}
