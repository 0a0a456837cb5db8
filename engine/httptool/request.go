package httptool

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/compozy/http-client-mcp/pkg/logger"
	"github.com/go-resty/resty/v2"
)

// transport holds one resty client per redirect policy so a request never
// mutates shared client state.
type transport struct {
	follow *resty.Client
	manual *resty.Client
}

func newTransport(rt http.RoundTripper, log logger.Logger) *transport {
	build := func() *resty.Client {
		c := resty.New().SetLogger(restyLogger{log: log}).SetCookieJar(nil)
		if rt != nil {
			c.SetTransport(rt)
		}
		return c
	}
	manual := build().SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	return &transport{follow: build(), manual: manual}
}

func (t *transport) client(follow bool) *resty.Client {
	if follow {
		return t.follow
	}
	return t.manual
}

// Request performs one HTTP call described by args. Transport failures come
// back as an ErrorEnvelope; only missing arguments and timeouts are faults.
func (e *Executor) Request(ctx context.Context, args RequestArgs) (Envelope, error) {
	if isAbsent(args.URL) {
		return nil, InvalidParams("URL is required", map[string]any{"field": "url"})
	}
	if args.Timeout != nil && *args.Timeout <= 0 {
		return nil, InvalidParams("timeout must be a positive number of milliseconds", map[string]any{"field": "timeout"})
	}
	method := normalizeMethod(args.Method)
	target, err := e.resolveTarget(args)
	if err != nil {
		return failureEnvelope(args.URL, err), nil
	}
	payload, isJSON, err := requestBody(method, args.Body)
	if err != nil {
		return ErrorEnvelope{Error: err.Error(), Type: FailureBodyEncode, URL: args.URL}, nil
	}
	headers, err := mergeHeaders(e.defaults.Snapshot(), args.Headers)
	if err != nil {
		return nil, Internal(fmt.Errorf("failed to merge headers: %w", err), nil)
	}
	if isJSON {
		if _, ok := headers["Content-Type"]; !ok {
			headers["Content-Type"] = "application/json"
		}
	}
	timeoutMs := e.defaultTimeout
	if args.Timeout != nil {
		timeoutMs = *args.Timeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()
	req := e.transport.client(args.ShouldFollowRedirects()).R().
		SetContext(reqCtx).
		SetHeaders(headers)
	if payload != "" {
		req.SetBody(payload)
	}
	start := time.Now()
	resp, err := req.Execute(method, target)
	duration := time.Since(start)
	if err != nil {
		return e.requestFailure(ctx, reqCtx, args, timeoutMs, err)
	}
	envelope := ResponseEnvelope{
		Success: true,
		Status:  resp.StatusCode(),
		Headers: flattenHeaders(resp.Header()),
		Body:    decodeBody(resp.Body()),
		URL:     finalURL(resp, target),
	}
	logger.FromContext(ctx).Info(
		"Executed HTTP request",
		"method", method,
		"url", target,
		"final_url", envelope.URL,
		"status_code", envelope.Status,
		"duration_ms", duration.Milliseconds(),
		"response_bytes", len(resp.Body()),
	)
	return envelope, nil
}

// resolveTarget validates the URL and applies query parameters. Without
// parameters the caller's URL is sent exactly as given.
func (e *Executor) resolveTarget(args RequestArgs) (string, error) {
	if _, err := parseTarget(args.URL); err != nil {
		return "", err
	}
	return buildURL(args.URL, args.QueryParams)
}

func (e *Executor) requestFailure(
	ctx context.Context,
	reqCtx context.Context,
	args RequestArgs,
	timeoutMs int,
	err error,
) (Envelope, error) {
	if ctx.Err() != nil {
		return nil, Internal(ctx.Err(), map[string]any{"url": args.URL})
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		logger.FromContext(ctx).Warn("HTTP request timed out", "url", args.URL, "timeout_ms", timeoutMs)
		return nil, Timeout(timeoutMs, err)
	}
	envelope := failureEnvelope(args.URL, err)
	logger.FromContext(ctx).Warn(
		"HTTP request failed",
		"url", args.URL,
		"type", envelope.Type,
		"error", envelope.Error,
	)
	return envelope, nil
}

func failureEnvelope(rawURL string, err error) ErrorEnvelope {
	return ErrorEnvelope{
		Success: false,
		Error:   failureMessage(err),
		Type:    classifyFailure(err),
		URL:     rawURL,
	}
}

func finalURL(resp *resty.Response, fallback string) string {
	if resp.RawResponse != nil && resp.RawResponse.Request != nil && resp.RawResponse.Request.URL != nil {
		return resp.RawResponse.Request.URL.String()
	}
	return fallback
}

func normalizeMethod(method string) string {
	upper := strings.ToUpper(strings.TrimSpace(method))
	if upper == "" {
		return http.MethodGet
	}
	return upper
}

// restyLogger routes resty's internal warnings into the structured logger.
type restyLogger struct {
	log logger.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}
