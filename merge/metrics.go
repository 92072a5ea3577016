package merge

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/LiXizhi/nplmerge/document"
)

const instrumentationName = "nplmerge.merge"

var (
	meter  = otel.Meter(instrumentationName)
	tracer = otel.Tracer(instrumentationName)
)

var (
	operationTotal  metric.Int64Counter
	commitTotal     metric.Int64Counter
	abandonTotal    metric.Int64Counter
	sessionDuration metric.Float64Histogram
	sessionEdits    metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

var metricsEnabled atomic.Bool

func init() {
	metricsEnabled.Store(true)
}

// SetMetricsEnabled controls whether metrics and commit spans are recorded.
//
// Thread Safety: Safe for concurrent use.
func SetMetricsEnabled(enabled bool) {
	metricsEnabled.Store(enabled)
}

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		operationTotal, err = meter.Int64Counter(
			"merge_operation_total",
			metric.WithDescription("Edit operations by kind and result"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		commitTotal, err = meter.Int64Counter(
			"merge_commit_total",
			metric.WithDescription("Session commits by document kind and status"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		abandonTotal, err = meter.Int64Counter(
			"merge_abandon_total",
			metric.WithDescription("Sessions closed without commit"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		sessionDuration, err = meter.Float64Histogram(
			"merge_session_duration_seconds",
			metric.WithDescription("Time from session open to commit"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		sessionEdits, err = meter.Int64Histogram(
			"merge_session_edits",
			metric.WithDescription("Edits journaled per committed session"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func statusOf(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

func recordOperation(ctx context.Context, kind EditKind, success bool) {
	if !metricsEnabled.Load() {
		return
	}
	if err := initMetrics(); err != nil {
		return
	}
	operationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", string(kind)),
		attribute.String("status", statusOf(success)),
	))
}

func recordCommit(ctx context.Context, kind document.Kind, duration time.Duration, edits int, success bool) {
	if !metricsEnabled.Load() {
		return
	}
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("kind", kind.String()),
		attribute.String("status", statusOf(success)),
	)
	commitTotal.Add(ctx, 1, attrs)
	sessionDuration.Record(ctx, duration.Seconds(), attrs)
	sessionEdits.Record(ctx, int64(edits), attrs)
}

func recordAbandon(ctx context.Context, kind document.Kind, edits int) {
	if !metricsEnabled.Load() {
		return
	}
	if err := initMetrics(); err != nil {
		return
	}
	abandonTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind.String()),
		attribute.Bool("had_edits", edits > 0),
	))
}

func startCommitSpan(ctx context.Context, s *Session) (context.Context, trace.Span) {
	if !metricsEnabled.Load() {
		return ctx, noop.Span{}
	}
	return tracer.Start(ctx, "merge.Session.Commit",
		trace.WithAttributes(
			attribute.String("merge.session_id", s.id.String()),
			attribute.String("merge.path", s.doc.Path()),
			attribute.String("merge.kind", s.doc.Kind().String()),
			attribute.Int("merge.edits", len(s.journal)),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func endCommitSpan(span trace.Span, err error) {
	defer span.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
