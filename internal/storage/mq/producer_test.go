package mq

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/product-api/pkg/ptr"
)

func TestBuildProduceRecord(t *testing.T) {
	t.Run("Should map topic, payload, headers and key", func(t *testing.T) {
		rec := buildProduceRecord(ProduceMsg{
			Topic:        "product.saved",
			Headers:      map[string]string{"X-Correlation-ID": "corr-1"},
			Payload:      []byte(`{"product_id":"p-1"}`),
			PartitionKey: ptr.New("p-1"),
		})

		assert.Equal(t, "product.saved", rec.Topic)
		assert.Equal(t, []byte(`{"product_id":"p-1"}`), rec.Value)
		assert.Equal(t, []byte("p-1"), rec.Key)
		if assert.Len(t, rec.Headers, 1) {
			assert.Equal(t, "X-Correlation-ID", rec.Headers[0].Key)
			assert.Equal(t, []byte("corr-1"), rec.Headers[0].Value)
		}
	})

	t.Run("Should leave key empty without partition key", func(t *testing.T) {
		rec := buildProduceRecord(ProduceMsg{Topic: "product.cleared", Payload: []byte(`{}`)})

		assert.Nil(t, rec.Key)
		assert.Empty(t, rec.Headers)
	})
}
