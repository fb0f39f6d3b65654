package mq

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestMessageHeaderCarrier(t *testing.T) {
	c := &MessageHeaderCarrier{}
	c.Set("traceparent", "00-abc-def-01")

	assert.Equal(t, "00-abc-def-01", c.Get("traceparent"))
	assert.Equal(t, []string{"traceparent"}, c.Keys())
	assert.Empty(t, c.Get("missing"))

	c.Headers["x-retry"] = int32(3)
	assert.Empty(t, c.Get("x-retry"), "non-string header values are ignored")
	assert.IsType(t, amqp.Table{}, c.Headers)
}
