// Package tracing exports reactor engine activity as OpenTelemetry spans.
//
// The Sink implements reactor.Sink. Each scheduler flush becomes one span;
// computation runs within the flush are recorded as span events. The tracer
// comes from the global OpenTelemetry tracer provider, so configure that in
// main() before creating the sink:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//
//	sink := tracing.NewSink(tracing.WithTracerName("my-app"))
//	s := reactor.NewScheduler(reactor.WithSink(sink))
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/reactor-go/reactor/pkg/reactor"
)

// Default tracer name for reactor applications.
const defaultTracerName = "reactor"

// Config configures the OpenTelemetry sink.
type Config struct {
	// TracerName is the name of the tracer (default: "reactor").
	TracerName string

	// RecordRuns controls whether individual computation runs are recorded
	// as span events. Enabled by default; disable for very chatty graphs.
	RecordRuns bool

	// AttributeExtractor adds custom attributes to every flush span.
	AttributeExtractor func() []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// Option configures the OpenTelemetry sink.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithRecordRuns enables or disables per-run span events.
func WithRecordRuns(record bool) Option {
	return func(c *Config) {
		c.RecordRuns = record
	}
}

// WithAttributeExtractor sets a custom attribute extractor for flush spans.
func WithAttributeExtractor(extractor func() []attribute.KeyValue) Option {
	return func(c *Config) {
		c.AttributeExtractor = extractor
	}
}

func defaultConfig() Config {
	return Config{
		TracerName: defaultTracerName,
		RecordRuns: true,
	}
}

var _ reactor.Sink = (*Sink)(nil)

// Sink records reactor engine activity through an OpenTelemetry tracer.
//
// A sink belongs to exactly one scheduler: it relies on the engine's
// single-threaded execution model to pair FlushStarted with FlushFinished.
type Sink struct {
	config Config

	// span is the in-progress flush span, nil between flushes.
	span trace.Span
}

// NewSink creates an OpenTelemetry sink using the global tracer provider.
func NewSink(opts ...Option) *Sink {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)
	return &Sink{config: config}
}

// FlushStarted implements reactor.Sink: it opens the flush span.
func (s *Sink) FlushStarted() {
	var attrs []attribute.KeyValue
	if s.config.AttributeExtractor != nil {
		attrs = s.config.AttributeExtractor()
	}
	_, s.span = s.config.tracer.Start(
		context.Background(),
		"reactor.flush",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// FlushFinished implements reactor.Sink: it annotates and closes the flush
// span.
func (s *Sink) FlushFinished(stats reactor.FlushStats) {
	if s.span == nil {
		return
	}
	s.span.SetAttributes(
		attribute.Int("reactor.passes", stats.Passes),
		attribute.Int("reactor.runs", stats.Runs),
		attribute.Int("reactor.errors", stats.Errors),
		attribute.Bool("reactor.aborted", stats.Aborted),
	)
	switch {
	case stats.Aborted:
		s.span.SetStatus(codes.Error, fmt.Sprintf("flush aborted after %d passes", stats.Passes))
	case stats.Errors > 0:
		s.span.SetStatus(codes.Error, fmt.Sprintf("%d computation runs failed", stats.Errors))
	default:
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
	s.span = nil
}

// ComputationRan implements reactor.Sink: each run becomes a span event on
// the enclosing flush span.
func (s *Sink) ComputationRan(stats reactor.RunStats) {
	if s.span == nil || !s.config.RecordRuns {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("reactor.computation", stats.Computation),
		attribute.Int64("reactor.duration_us", stats.Duration.Microseconds()),
	}
	if stats.Err != nil {
		s.span.RecordError(stats.Err, trace.WithAttributes(attrs...))
		return
	}
	s.span.AddEvent("computation.ran", trace.WithAttributes(attrs...))
}

// DependenciesReconciled implements reactor.Sink.
func (s *Sink) DependenciesReconciled(stats reactor.TrackerStats) {
	if s.span == nil || !s.config.RecordRuns {
		return
	}
	if stats.Resubscribed == 0 && stats.Dropped == 0 {
		return
	}
	s.span.AddEvent("dependencies.reconciled", trace.WithAttributes(
		attribute.String("reactor.computation", stats.Computation),
		attribute.Int("reactor.resubscribed", stats.Resubscribed),
		attribute.Int("reactor.dropped", stats.Dropped),
	))
}

// DisposalFailed implements reactor.Sink. Teardown panics can surface
// outside any flush, in which case a short standalone span is emitted.
func (s *Sink) DisposalFailed(owner string, recovered any) {
	attrs := trace.WithAttributes(
		attribute.String("reactor.owner", owner),
		attribute.String("reactor.recovered", fmt.Sprintf("%v", recovered)),
	)
	if s.span != nil {
		s.span.AddEvent("disposal.failed", attrs)
		return
	}
	_, span := s.config.tracer.Start(context.Background(), "reactor.disposal_failure", attrs)
	span.SetStatus(codes.Error, "teardown panicked")
	span.End()
}
