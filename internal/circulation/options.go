package circulation

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Option configures the circulation service.
type Option func(*service)

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *service) {
		s.tracer = tp.Tracer(instrumentationName)
	}
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *service) {
		s.meter = mp.Meter(instrumentationName)
	}
}
