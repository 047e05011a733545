package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/ghuser/stockledger/services/inventory"

// transitions counts lifecycle writes, labelled by operation.
type transitions struct {
	c metric.Int64Counter
}

func newTransitions() transitions {
	c, err := otel.Meter(meterName).Int64Counter("inventory.item.transitions",
		metric.WithDescription("Item lifecycle writes by operation"))
	if err != nil {
		return transitions{c: noop.Int64Counter{}}
	}
	return transitions{c: c}
}

func (t transitions) add(ctx context.Context, op string, n int) {
	if n == 0 {
		return
	}
	t.c.Add(ctx, int64(n), metric.WithAttributes(attribute.String("op", op)))
}
