package lambda

import (
	"encoding/json"
	"testing"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name       string
		event      string
		wantMethod string
		wantPath   string
		wantBody   string
		wantBase64 bool
		wantID     string
	}{
		{
			name:       "rest api event",
			event:      `{"httpMethod":"POST","path":"/fetch-trader-port","headers":{"Content-Type":"application/json"},"body":"{\"category\":\"whales\"}","isBase64Encoded":false,"requestContext":{"requestId":"rest-1"}}`,
			wantMethod: "POST",
			wantPath:   "/fetch-trader-port",
			wantBody:   `{"category":"whales"}`,
			wantID:     "rest-1",
		},
		{
			name:       "http api event",
			event:      `{"version":"2.0","rawPath":"/fetch-trader-port","requestContext":{"requestId":"http-1","http":{"method":"options","path":"/fetch-trader-port"}},"body":"e30=","isBase64Encoded":true}`,
			wantMethod: "options",
			wantPath:   "/fetch-trader-port",
			wantBody:   "e30=",
			wantBase64: true,
			wantID:     "http-1",
		},
		{
			name:  "direct invocation",
			event: `{"category":"whales"}`,
		},
		{
			name:     "direct invocation with body",
			event:    `{"body":"{\"category\":\"whales\"}"}`,
			wantBody: `{"category":"whales"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseEvent(json.RawMessage(tt.event))
			if err != nil {
				t.Fatalf("ParseEvent() failed: %v", err)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method = %q, want %q", req.Method, tt.wantMethod)
			}
			if req.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", req.Path, tt.wantPath)
			}
			if req.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", req.Body, tt.wantBody)
			}
			if req.IsBase64Encoded != tt.wantBase64 {
				t.Errorf("IsBase64Encoded = %v, want %v", req.IsBase64Encoded, tt.wantBase64)
			}
			if req.RequestID != tt.wantID {
				t.Errorf("RequestID = %q, want %q", req.RequestID, tt.wantID)
			}
			if req.Headers == nil {
				t.Error("Expected non-nil headers")
			}
		})
	}
}

func TestParseEvent_NotAnObject(t *testing.T) {
	for _, event := range []string{`null`, `[]`, `"event"`, `{`} {
		if _, err := ParseEvent(json.RawMessage(event)); err == nil {
			t.Errorf("Expected error for %s", event)
		}
	}
}

func TestRequestHeader(t *testing.T) {
	req := &Request{Headers: map[string]string{"authorization": "Bearer abc"}}
	if got := req.Header("Authorization"); got != "Bearer abc" {
		t.Errorf("Header() = %q, want case-insensitive match", got)
	}
	if got := req.Header("X-Missing"); got != "" {
		t.Errorf("Header() = %q, want empty", got)
	}
}

func TestToProxyResponse(t *testing.T) {
	resp := &Response{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(`{"data":{}}`),
	}

	proxy := resp.ToProxyResponse()
	if proxy.StatusCode != 200 || proxy.Body != `{"data":{}}` || proxy.Headers["Content-Type"] != "application/json" {
		t.Errorf("Unexpected proxy response %+v", proxy)
	}
}
