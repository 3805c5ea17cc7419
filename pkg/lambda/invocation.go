package lambda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"trader-portfolio-api/internal/repositories"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sirupsen/logrus"
)

// The safety margin never takes more than 1/maxMarginShare of the time left
const maxMarginShare = 4

// ContextHandler serves one normalized request
type ContextHandler func(ctx context.Context, req *Request) (*Response, error)

// Invoker runs a handler within the invocation deadline
type Invoker struct {
	handler ContextHandler
	margin  time.Duration
	headers map[string]string
	logger  *logrus.Logger

	clampOnce sync.Once
}

// NewInvoker creates an Invoker. margin is kept free before the platform deadline
// so a timeout response can still be returned; headers are attached to the
// responses the Invoker builds itself.
func NewInvoker(handler ContextHandler, margin time.Duration, headers map[string]string, logger *logrus.Logger) *Invoker {
	if logger == nil {
		logger = logrus.New()
	}
	if margin < 0 {
		margin = 0
	}
	logger.WithField("deadline_margin", margin.String()).Info("Invocation budget configured")

	return &Invoker{
		handler: handler,
		margin:  margin,
		headers: headers,
		logger:  logger,
	}
}

type result struct {
	resp *Response
	err  error
}

// Invoke parses a raw event and serves it. Errors are invocation failures.
func (i *Invoker) Invoke(ctx context.Context, raw json.RawMessage) (*Response, error) {
	start := time.Now()

	req, err := ParseEvent(raw)
	if err != nil {
		i.logger.WithError(err).Error("Failed to parse invocation event")
		return nil, err
	}

	requestID := req.RequestID
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		requestID = lc.AwsRequestID
	}
	ctx = repositories.WithRequestID(ctx, requestID)

	resp, err := i.serve(ctx, req)

	fields := logrus.Fields{
		"aws_request_id": requestID,
		"method":         req.Method,
		"path":           req.Path,
		"latency_ms":     float64(time.Since(start).Nanoseconds()) / 1000000,
	}
	if err != nil {
		i.logger.WithFields(fields).WithError(err).Error("Invocation failed")
		return nil, err
	}
	fields["status_code"] = resp.StatusCode
	i.logger.WithFields(fields).Info("Invocation completed")

	return resp, nil
}

// serve runs the handler, answering 504 when the budget runs out first
func (i *Invoker) serve(ctx context.Context, req *Request) (*Response, error) {
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline.Add(-i.budgetMargin(time.Until(deadline))))
		defer cancel()
	}

	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				i.logger.WithFields(logrus.Fields{
					"panic": fmt.Sprint(r),
					"stack": string(debug.Stack()),
				}).Error("Recovered from panic in handler")
				done <- result{resp: i.errorResponse(http.StatusInternalServerError, "Internal Server Error")}
			}
		}()

		resp, err := i.handler(ctx, req)
		done <- result{resp: resp, err: err}
	}()

	select {
	case r := <-done:
		return r.resp, r.err
	case <-ctx.Done():
		i.logger.WithField("path", req.Path).Warn("Invocation budget exhausted")
		return i.errorResponse(http.StatusGatewayTimeout, "Request timed out."), nil
	}
}

// budgetMargin returns the margin to keep before a deadline remaining away
func (i *Invoker) budgetMargin(remaining time.Duration) time.Duration {
	limit := remaining / maxMarginShare
	if i.margin <= limit {
		return i.margin
	}

	i.clampOnce.Do(func() {
		i.logger.WithFields(logrus.Fields{
			"deadline_margin": i.margin.String(),
			"remaining":       remaining.String(),
		}).Warn("Deadline margin exceeds the invocation time left, clamping it")
	})
	if limit < 0 {
		return 0
	}
	return limit
}

func (i *Invoker) errorResponse(status int, message string) *Response {
	headers := make(map[string]string, len(i.headers))
	for k, v := range i.headers {
		headers[k] = v
	}
	body, _ := json.Marshal(map[string]string{"error": message})
	return &Response{StatusCode: status, Headers: headers, Body: body}
}
