package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/product-api/internal/config"
	"github.com/tuanvumaihuynh/product-api/internal/telemetry"
)

func TestInitTracer(t *testing.T) {
	t.Run("Should only install propagation without a collector", func(t *testing.T) {
		cleanup, err := telemetry.InitTracer(context.Background(), config.Otel{ServiceName: "product-api"})
		require.NoError(t, err)
		assert.NoError(t, cleanup(context.Background()))

		assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
	})
}
