package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"mercator-hq/loupe/pkg/capture"
	"mercator-hq/loupe/pkg/format"
	"mercator-hq/loupe/pkg/journal"
	"mercator-hq/loupe/pkg/proxy/middleware"
	"mercator-hq/loupe/pkg/telemetry/logging"
	"mercator-hq/loupe/pkg/telemetry/metrics"
	"mercator-hq/loupe/pkg/telemetry/tracing"
)

// Journal receives one entry per completed exchange. Record must not block.
type Journal interface {
	Record(exchange *journal.Exchange)
}

// Handler is the proxy's request handler. It captures the request, logs it,
// forwards it and logs and returns the upstream response. ServeHTTP always
// writes a response; forwarding failures become 500s.
type Handler struct {
	forwarder *Forwarder
	format    format.Options
	logger    *logging.Logger
	metrics   *metrics.Collector
	tracer    *tracing.Tracer
	journal   Journal
}

// Option configures optional Handler collaborators.
type Option func(*Handler)

// WithMetrics records pipeline metrics in collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(h *Handler) {
		h.metrics = collector
	}
}

// WithTracer wraps each forward call in a span.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(h *Handler) {
		h.tracer = tracer
	}
}

// WithJournal records every completed exchange in j.
func WithJournal(j Journal) Option {
	return func(h *Handler) {
		h.journal = j
	}
}

// NewHandler creates a handler. The format options are copied and never
// change afterwards.
func NewHandler(forwarder *Forwarder, opts format.Options, logger *logging.Logger, options ...Option) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}

	opts.RedactHeaders = append([]string(nil), opts.RedactHeaders...)

	h := &Handler{
		forwarder: forwarder,
		format:    opts,
		logger:    logger,
	}
	for _, option := range options {
		option(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	startedAt := middleware.GetStartTime(ctx)
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	requestID := middleware.GetRequestID(ctx)
	if requestID == "" {
		requestID = middleware.AssignRequestID(r.Header)
		ctx = logging.WithRequestID(ctx, requestID)
	}

	exchange := &journal.Exchange{
		RequestID: requestID,
		StartedAt: startedAt,
		Method:    r.Method,
		Path:      r.URL.Path,
		ClientIP:  ClientIP(r),
	}

	req, err := capture.Capture(r)
	if err != nil {
		h.fail(ctx, w, exchange, newFailure(KindTransport, "failed to read request body", err))
		return
	}
	exchange.Query = req.Query
	exchange.RequestHeaders = format.RedactHeaders(req.Header, h.format.RedactHeaders)
	exchange.RequestBytes = req.Len()
	h.metrics.RecordBodySize("request", req.Len())

	// The request event is rendered off the forwarding path and joined
	// before any later log line for this request.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.emit(ctx, format.NewRequestEvent(requestID, req, h.format))
	}()

	resp, err := h.forward(ctx, requestID, exchange.ClientIP, r, req)
	wg.Wait()

	if ctx.Err() != nil {
		h.logger.DebugContext(ctx, "client disconnected before upstream responded",
			"method", r.Method,
			"path", r.URL.Path,
			"error", ctx.Err(),
		)
		return
	}

	if err != nil {
		h.fail(ctx, w, exchange, AsFailure(err))
		return
	}

	h.metrics.RecordBodySize("response", resp.Len())
	h.emit(ctx, format.NewResponseEvent(requestID, resp, h.format))

	header := w.Header()
	for name, values := range resp.Header {
		header[name] = append([]string(nil), values...)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		h.logger.DebugContext(ctx, "failed to write response body", "error", err)
	}

	exchange.StatusCode = resp.StatusCode
	exchange.ResponseHeaders = format.RedactHeaders(resp.Header, h.format.RedactHeaders)
	exchange.ResponseBytes = resp.Len()
	h.finish(exchange)
}

// forward runs the forward call inside a span.
func (h *Handler) forward(ctx context.Context, requestID, clientIP string, r *http.Request, req *capture.Message) (*capture.Message, error) {
	spanCtx := tracing.Extract(ctx, r.Header)
	spanCtx, span := h.tracer.Start(spanCtx, tracing.SpanForward,
		tracing.ForwardStartOptions(requestID, r.Method, r.URL.Path, h.forwarder.Destination().Host, req.Len())...)
	defer span.End()

	h.metrics.ForwardStarted()
	start := time.Now()
	resp, err := h.forwarder.Forward(spanCtx, clientIP, r, req.Body)
	h.metrics.RecordForward(time.Since(start))
	h.metrics.ForwardDone()

	if err != nil {
		tracing.SetFailureAttributes(span, AsFailure(err).Kind.String(), err)
		return nil, err
	}
	tracing.SetResponseAttributes(span, resp.StatusCode, resp.Len())
	return resp, nil
}

// emit writes a request or response event. A panic while rendering is
// logged and never reaches the client.
func (h *Handler) emit(ctx context.Context, event interface {
	logging.Event
	Type() string
}) {
	defer func() {
		if p := recover(); p != nil {
			h.reportPanic(ctx, event.Type(), p)
		}
	}()

	if !h.logger.Enabled(ctx, slog.LevelInfo) {
		return
	}
	h.logger.Event(ctx, event)
	h.metrics.RecordEvent(event.Type())
}

// reportPanic logs a recovered emission panic. The sink that panicked is
// usually the one being written to, so a second panic is discarded.
func (h *Handler) reportPanic(ctx context.Context, eventType string, p any) {
	defer func() { _ = recover() }()
	h.logger.WarnContext(ctx, "log event panicked", "type", eventType, "panic", fmt.Sprint(p))
}

// fail writes the failure response, logs it once at error level and records
// the exchange.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, exchange *journal.Exchange, f *Failure) {
	h.logger.ErrorContext(ctx, "forwarding failed",
		"method", exchange.Method,
		"path", exchange.Path,
		"kind", f.Kind.String(),
		"error", f.Error(),
	)
	h.metrics.RecordFailure(f.Kind.String())

	WriteFailure(w, f)

	exchange.StatusCode = http.StatusInternalServerError
	exchange.FailureKind = f.Kind.String()
	exchange.Error = f.Error()
	h.finish(exchange)
}

func (h *Handler) finish(exchange *journal.Exchange) {
	exchange.Duration = time.Since(exchange.StartedAt)
	h.metrics.RecordRequest(exchange.Method, exchange.StatusCode, exchange.Duration)
	if h.journal != nil {
		h.journal.Record(exchange)
	}
}
