package tracing

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/syncbench/internal/runner"
)

// SuiteTracer records one span per suite and one child span per trial.
// It implements runner.Observer.
type SuiteTracer struct {
	tracer trace.Tracer

	mu    sync.Mutex
	ctx   context.Context
	suite trace.Span
	trial trace.Span
}

// NewSuiteTracer creates an observer that emits spans through tracer.
func NewSuiteTracer(tracer trace.Tracer) *SuiteTracer {
	return &SuiteTracer{tracer: tracer, ctx: context.Background()}
}

// StartSuite opens the parent span. The returned context carries it.
func (s *SuiteTracer) StartSuite(ctx context.Context, threads, iterations int) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, "syncbench suite",
		trace.WithAttributes(
			attribute.Int("syncbench.threads", threads),
			attribute.Int("syncbench.iterations", iterations),
		),
	)
	s.ctx = ctx
	s.suite = span
	return ctx
}

// EndSuite closes the parent span, tagging it with the report's run id.
func (s *SuiteTracer) EndSuite(runID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.trial != nil {
		EndSpan(s.trial, err)
		s.trial = nil
	}
	if s.suite == nil {
		return
	}
	if runID != "" {
		s.suite.SetAttributes(attribute.String("syncbench.run_id", runID))
	}
	EndSpan(s.suite, err)
	s.suite = nil
}

func (s *SuiteTracer) TrialStarted(t runner.Trial) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := "trial " + t.Strategy.Label
	if t.Baseline {
		name = "baseline " + t.Strategy.Label
	}
	attrs := []attribute.KeyValue{
		attribute.String("syncbench.strategy", t.Strategy.Kind.String()),
		attribute.Bool("syncbench.baseline", t.Baseline),
		attribute.Bool("syncbench.concurrent", t.Strategy.Concurrent() && !t.Baseline),
		attribute.Int("syncbench.threads", t.Threads),
		attribute.Int("syncbench.iterations", t.Iterations),
	}
	if t.Strategy.Order != "" {
		attrs = append(attrs, attribute.String("syncbench.memory_order", string(t.Strategy.Order)))
	}
	_, s.trial = s.tracer.Start(s.ctx, name, trace.WithAttributes(attrs...))
}

func (s *SuiteTracer) TrialFinished(res runner.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.trial == nil {
		return
	}
	EndSpan(s.trial, nil,
		attribute.Float64("syncbench.elapsed_ms", res.ElapsedMs),
		attribute.Int64("syncbench.final_value", res.FinalValue),
		attribute.Int64("syncbench.expected", res.Expected),
		attribute.Int64("syncbench.lost_updates", res.Lost),
		attribute.Float64("syncbench.worker_spread_ms", res.Workers.SpreadMs),
	)
	s.trial = nil
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
