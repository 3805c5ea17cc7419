package lambda

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Request represents a generic HTTP request for serverless functions.
// Method is empty when the event did not carry one.
type Request struct {
	Method          string            `json:"method"`
	Path            string            `json:"path"`
	Headers         map[string]string `json:"headers"`
	QueryParams     map[string]string `json:"query_params"`
	PathParams      map[string]string `json:"path_params"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"is_base64_encoded"`
	RequestID       string            `json:"request_id"`
}

// Header returns a request header, matching the name case-insensitively
func (r *Request) Header(name string) string {
	if v, ok := r.Headers[name]; ok {
		return v
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Response represents a generic HTTP response for serverless functions
type Response struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       []byte            `json:"body"`
}

// ToProxyResponse converts the response to the API Gateway proxy shape
func (r *Response) ToProxyResponse() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: r.StatusCode,
		Headers:    r.Headers,
		Body:       string(r.Body),
	}
}

// eventShape holds the fields used to tell event versions apart
type eventShape struct {
	HTTPMethod     string `json:"httpMethod"`
	RawPath        string `json:"rawPath"`
	RequestContext struct {
		HTTP struct {
			Method string `json:"method"`
		} `json:"http"`
	} `json:"requestContext"`
}

// ParseEvent normalizes an invocation payload. REST API (v1) and HTTP API (v2)
// proxy events are recognized; any other JSON object becomes a request with no
// method and no body.
func ParseEvent(raw json.RawMessage) (*Request, error) {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(raw, &object); err != nil || object == nil {
		return nil, fmt.Errorf("event payload must be a JSON object")
	}

	var shape eventShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, fmt.Errorf("failed to read event: %w", err)
	}

	switch {
	case shape.HTTPMethod != "":
		var event events.APIGatewayProxyRequest
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, fmt.Errorf("failed to read REST API event: %w", err)
		}
		return FromProxyRequest(event), nil

	case shape.RequestContext.HTTP.Method != "" || shape.RawPath != "":
		var event events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, fmt.Errorf("failed to read HTTP API event: %w", err)
		}
		return FromV2Request(event), nil
	}

	// direct invocations may still carry a body
	req := &Request{Headers: map[string]string{}}
	if body, ok := object["body"]; ok {
		var s string
		if err := json.Unmarshal(body, &s); err == nil {
			req.Body = s
		}
	}
	if flag, ok := object["isBase64Encoded"]; ok {
		_ = json.Unmarshal(flag, &req.IsBase64Encoded)
	}
	return req, nil
}

// FromProxyRequest converts a REST API (v1) proxy event
func FromProxyRequest(event events.APIGatewayProxyRequest) *Request {
	return &Request{
		Method:          event.HTTPMethod,
		Path:            event.Path,
		Headers:         nonNil(event.Headers),
		QueryParams:     nonNil(event.QueryStringParameters),
		PathParams:      nonNil(event.PathParameters),
		Body:            event.Body,
		IsBase64Encoded: event.IsBase64Encoded,
		RequestID:       event.RequestContext.RequestID,
	}
}

// FromV2Request converts an HTTP API (v2) event
func FromV2Request(event events.APIGatewayV2HTTPRequest) *Request {
	path := event.RawPath
	if path == "" {
		path = event.RequestContext.HTTP.Path
	}
	return &Request{
		Method:          event.RequestContext.HTTP.Method,
		Path:            path,
		Headers:         nonNil(event.Headers),
		QueryParams:     nonNil(event.QueryStringParameters),
		PathParams:      nonNil(event.PathParameters),
		Body:            event.Body,
		IsBase64Encoded: event.IsBase64Encoded,
		RequestID:       event.RequestContext.RequestID,
	}
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
