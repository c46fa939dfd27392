package api

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName          = "collabboard/api"
	mutationEventName   = "mutation.request"
	mutationEventDomain = "collabboard"
)

// mutationMetrics collects per-request timings for a mutation handler
// and emits them as one span plus one structured log entry when the
// request completes.
type mutationMetrics struct {
	logger *log.Logger
	span   trace.Span
	route  string
	start  time.Time

	authDuration    time.Duration
	mutateDuration  time.Duration
	errorStage      string
	idempotencyMiss bool
}

func newMutationMetrics(ctx context.Context, logger *log.Logger, route string) (*mutationMetrics, context.Context) {
	spanCtx, span := otel.Tracer(tracerName).Start(ctx, route)
	return &mutationMetrics{
		logger: logger,
		span:   span,
		route:  route,
		start:  time.Now(),
	}, spanCtx
}

func (m *mutationMetrics) ObserveAuth(d time.Duration) {
	if d > 0 {
		m.authDuration = d
	}
}

func (m *mutationMetrics) ObserveMutate(d time.Duration) {
	if d > 0 {
		m.mutateDuration = d
	}
}

func (m *mutationMetrics) SetErrorStage(stage string) {
	if stage != "" {
		m.errorStage = stage
	}
}

// SetDuplicate marks the request as rejected by the idempotency check.
func (m *mutationMetrics) SetDuplicate() {
	m.idempotencyMiss = true
}

// Log finishes the span and writes the observability entry.
func (m *mutationMetrics) Log(status int, err error) {
	if m == nil {
		return
	}
	total := time.Since(m.start)

	if m.span != nil {
		attrs := []attribute.KeyValue{
			attribute.String("http.route", m.route),
			attribute.Int("http.status_code", status),
			attribute.Float64("collabboard.mutation.total_ms", durationToMillis(total)),
			attribute.Bool("collabboard.mutation.duplicate", m.idempotencyMiss),
		}
		if m.authDuration > 0 {
			attrs = append(attrs, attribute.Float64("collabboard.mutation.auth_ms", durationToMillis(m.authDuration)))
		}
		if m.mutateDuration > 0 {
			attrs = append(attrs, attribute.Float64("collabboard.mutation.mutate_ms", durationToMillis(m.mutateDuration)))
		}
		if m.errorStage != "" {
			attrs = append(attrs, attribute.String("collabboard.mutation.error_stage", m.errorStage))
		}
		m.span.SetAttributes(attrs...)
		if err != nil {
			m.span.RecordError(err)
			m.span.SetStatus(codes.Error, err.Error())
		}
		m.span.End()
	}

	if m.logger == nil {
		return
	}
	fields := log.Fields{
		"event.name":   mutationEventName,
		"event.domain": mutationEventDomain,
		"route":        m.route,
		"status":       status,
		"total_ms":     durationToMillis(total),
	}
	if m.authDuration > 0 {
		fields["auth_ms"] = durationToMillis(m.authDuration)
	}
	if m.mutateDuration > 0 {
		fields["mutate_ms"] = durationToMillis(m.mutateDuration)
	}
	if m.idempotencyMiss {
		fields["duplicate"] = true
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	m.logger.WithFields(fields).Info("observability.event")
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
