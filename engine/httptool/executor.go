package httptool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/compozy/http-client-mcp/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
)

// Executor dispatches tool invocations and owns the default header state.
// It is safe for concurrent use.
type Executor struct {
	defaults       *DefaultHeaders
	transport      *transport
	metrics        *metrics
	defaultTimeout int
}

type options struct {
	userAgent      string
	headers        map[string]string
	defaultTimeout time.Duration
	meter          metric.Meter
	roundTripper   http.RoundTripper
	log            logger.Logger
}

type Option func(*options)

// WithUserAgent overrides the initial User-Agent default.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithDefaultHeaders adds startup defaults on top of the User-Agent.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.headers = headers
	}
}

// WithDefaultTimeout sets the timeout used when a request names none.
func WithDefaultTimeout(d time.Duration) Option {
	return func(o *options) {
		o.defaultTimeout = d
	}
}

func WithMeter(meter metric.Meter) Option {
	return func(o *options) {
		o.meter = meter
	}
}

// WithTransport replaces the HTTP round tripper used for outbound calls.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.roundTripper = rt
	}
}

func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func NewExecutor(opts ...Option) (*Executor, error) {
	o := &options{
		userAgent:      DefaultUserAgent,
		defaultTimeout: DefaultTimeoutMs * time.Millisecond,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.NewLogger(nil)
	}
	if o.defaultTimeout < time.Millisecond {
		return nil, fmt.Errorf("default timeout must be at least 1ms, got %s", o.defaultTimeout)
	}
	initial := map[string]string{}
	if o.userAgent != "" {
		initial["User-Agent"] = o.userAgent
	}
	merged, err := mergeHeaders(initial, o.headers)
	if err != nil {
		return nil, fmt.Errorf("failed to build default headers: %w", err)
	}
	m, err := newMetrics(o.meter)
	if err != nil {
		return nil, err
	}
	return &Executor{
		defaults:       NewDefaultHeaders(merged),
		transport:      newTransport(o.roundTripper, o.log),
		metrics:        m,
		defaultTimeout: int(o.defaultTimeout / time.Millisecond),
	}, nil
}

// DefaultHeaders exposes the executor's default header store.
func (e *Executor) DefaultHeaders() *DefaultHeaders {
	return e.defaults
}

// Execute runs the named tool. A non-nil error is always a *Fault; domain
// failures are reported through the returned envelope instead.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) (env Envelope, err error) {
	start := time.Now()
	log := logger.FromContext(ctx).With("tool", name, "invocation_id", uuid.NewString())
	ctx = logger.ContextWithLogger(ctx, log)
	defer func() {
		if r := recover(); r != nil {
			env = nil
			err = Internal(fmt.Errorf("panic: %v", r), nil)
		}
		e.finish(ctx, name, start, env, err)
	}()
	if args == nil {
		args = map[string]any{}
	}
	log.Debug("Tool invocation started")
	env, err = e.dispatch(ctx, name, args)
	if err != nil {
		return nil, AsFault(err)
	}
	return env, nil
}

func (e *Executor) dispatch(ctx context.Context, name string, args map[string]any) (Envelope, error) {
	switch name {
	case ToolRequest, ToolGet:
		if isAbsent(args["url"]) {
			return nil, InvalidParams("URL is required", map[string]any{"field": "url"})
		}
		var req RequestArgs
		if err := decodeArgs(name, args, &req); err != nil {
			return nil, err
		}
		if name == ToolGet {
			return e.Get(ctx, req)
		}
		return e.Request(ctx, req)
	case ToolPost:
		if isAbsent(args["data"]) {
			return nil, InvalidParams("data is required for POST", map[string]any{"field": "data"})
		}
		var post PostArgs
		if err := decodeArgs(name, args, &post); err != nil {
			return nil, err
		}
		return e.Post(ctx, post)
	case ToolSetDefaultHeaders:
		if _, ok := args["headers"].(map[string]any); !ok {
			return nil, InvalidParams("headers object is required", map[string]any{"field": "headers"})
		}
		var set SetDefaultHeadersArgs
		if err := decodeArgs(name, args, &set); err != nil {
			return nil, err
		}
		return e.SetDefaultHeaders(ctx, set)
	default:
		return nil, MethodNotFound(name)
	}
}

// Get issues a GET; every other field of args passes through unchanged.
func (e *Executor) Get(ctx context.Context, args RequestArgs) (Envelope, error) {
	args.Method = http.MethodGet
	return e.Request(ctx, args)
}

// Post sends data with a Content-Type header, letting explicit headers win.
// Only the URL, headers and body reach the underlying request.
func (e *Executor) Post(ctx context.Context, args PostArgs) (Envelope, error) {
	if isAbsent(args.Data) {
		return nil, InvalidParams("data is required for POST", map[string]any{"field": "data"})
	}
	contentType := args.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	headers, err := mergeHeaders(map[string]string{"Content-Type": contentType}, args.Headers)
	if err != nil {
		return nil, Internal(fmt.Errorf("failed to merge headers: %w", err), nil)
	}
	return e.Request(ctx, RequestArgs{
		URL:     args.URL,
		Method:  http.MethodPost,
		Headers: headers,
		Body:    args.Data,
	})
}

// SetDefaultHeaders merges headers into the defaults, or replaces them when
// Merge is false.
func (e *Executor) SetDefaultHeaders(ctx context.Context, args SetDefaultHeadersArgs) (Envelope, error) {
	if args.Headers == nil {
		return nil, InvalidParams("headers object is required", map[string]any{"field": "headers"})
	}
	merge := args.Merge == nil || *args.Merge
	var current map[string]string
	if merge {
		var err error
		current, err = e.defaults.Merge(args.Headers)
		if err != nil {
			return nil, Internal(fmt.Errorf("failed to merge default headers: %w", err), nil)
		}
	} else {
		current = e.defaults.Replace(args.Headers)
	}
	logger.FromContext(ctx).Info("Default headers updated", "merge", merge, "count", len(current))
	return DefaultsEnvelope{
		Success:         true,
		Message:         "Default headers updated",
		CurrentDefaults: current,
	}, nil
}

func (e *Executor) finish(ctx context.Context, name string, start time.Time, env Envelope, err error) {
	duration := time.Since(start)
	log := logger.FromContext(ctx)
	status := StatusSuccess
	faultCode := ""
	switch {
	case err != nil:
		fault := AsFault(err)
		status = StatusFault
		faultCode = fault.Code
		log.Warn("Tool invocation faulted", "code", fault.Code, "error", fault.Message)
	case env != nil && !env.Succeeded():
		status = StatusFailure
	}
	e.metrics.record(ctx, name, status, duration, responseSize(env), faultCode)
	log.Debug("Tool invocation finished", "status", status, "duration_ms", duration.Milliseconds())
}

func responseSize(env Envelope) int {
	resp, ok := env.(ResponseEnvelope)
	if !ok {
		return 0
	}
	switch body := resp.Body.(type) {
	case json.RawMessage:
		return len(body)
	case string:
		return len(body)
	default:
		return 0
	}
}
