package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/fsdevblog/placement-billing/internal/service"

// operations учет операций сервиса: span на каждую операцию и наблюдение в метриках.
type operations struct {
	spanPrefix string
	tracer     trace.Tracer
	metrics    MetricsRecorder
}

func newOperations(spanPrefix string) operations {
	return operations{
		spanPrefix: spanPrefix,
		tracer:     otel.Tracer(tracerName),
		metrics:    nopMetrics{},
	}
}

func (o *operations) setMetrics(m MetricsRecorder) {
	if m != nil {
		o.metrics = m
	}
}

// track открывает span операции и возвращает функцию, которая закрывает его и учитывает результат в метриках.
func (o *operations) track(
	ctx context.Context,
	operation string,
	attrs ...attribute.KeyValue,
) (context.Context, func(*error)) {
	ctx, span := o.tracer.Start(ctx, o.spanPrefix+"."+operation, trace.WithAttributes(attrs...))
	start := time.Now()
	return ctx, func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		o.metrics.ObserveOperation(operation, err, time.Since(start))
	}
}
