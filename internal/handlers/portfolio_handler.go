package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"trader-portfolio-api/internal/middleware"
	"trader-portfolio-api/internal/models"
	"trader-portfolio-api/internal/services"
	"trader-portfolio-api/pkg/lambda"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// maxLoggedBody caps the event body written to debug logs
const maxLoggedBody = 10 * 1024

// PortfolioHandler handles portfolio requests from Lambda events and the dev server
type PortfolioHandler struct {
	portfolioService services.PortfolioService
	authService      *middleware.AuthService
	headers          map[string]string
	logger           *logrus.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(
	portfolioService services.PortfolioService,
	authService *middleware.AuthService,
	allowedOrigin string,
	logger *logrus.Logger,
) *PortfolioHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &PortfolioHandler{
		portfolioService: portfolioService,
		authService:      authService,
		headers:          middleware.CORSHeaders(allowedOrigin),
		logger:           logger,
	}
}

// Headers returns a copy of the headers attached to every response
func (h *PortfolioHandler) Headers() map[string]string {
	headers := make(map[string]string, len(h.headers))
	for k, v := range h.headers {
		headers[k] = v
	}
	return headers
}

// HandlePortfolio serves one normalized Lambda request
func (h *PortfolioHandler) HandlePortfolio(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	h.logEvent(req)

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodPost
	}

	switch method {
	case http.MethodOptions:
		return &lambda.Response{StatusCode: http.StatusOK, Headers: h.Headers(), Body: []byte{}}, nil
	case http.MethodPost:
	default:
		return h.respond(http.StatusMethodNotAllowed, ErrorResponse{Error: "Method Not Allowed"})
	}

	if _, err := h.authService.Authorize(req.Header("Authorization")); err != nil {
		h.logger.WithError(err).WithField("path", req.Path).Warn("Rejected unauthorized request")
		return h.respond(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return h.respond(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body encoding."})
		}
		body = decoded
	}

	status, payload := h.serve(ctx, body)
	return h.respond(status, payload)
}

// @Summary Fetch trader portfolio
// @Description Returns the latest portfolio aggregates, traders and token data of a category
// @Tags portfolio
// @Accept json
// @Produce json
// @Param request body models.PortfolioRequest true "Portfolio request"
// @Success 200 {object} PortfolioResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Security BearerAuth
// @Router /portfolio [post]
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON payload."})
		return
	}

	status, payload := h.serve(c.Request.Context(), body)
	c.JSON(status, payload)
}

// serve runs the payload checks and the service call, returning the status and body
func (h *PortfolioHandler) serve(ctx context.Context, body []byte) (int, any) {
	req, badRequest := ParsePortfolioRequest(body)
	if badRequest != nil {
		return http.StatusBadRequest, badRequest
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Message: err.Error()}
	}

	portfolio, err := h.portfolioService.GetPortfolio(ctx, req)
	if err != nil {
		status, message := statusForError(err)
		h.logger.WithError(err).WithFields(logrus.Fields{
			"category": req.Category,
			"status":   status,
		}).Error("Failed to fetch portfolio")
		return status, ErrorResponse{Error: message}
	}

	if !portfolio.FetchDate.Valid {
		return http.StatusOK, PortfolioResponse{Data: struct{}{}}
	}
	return http.StatusOK, PortfolioResponse{Data: portfolio}
}

func (h *PortfolioHandler) respond(status int, payload any) (*lambda.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &lambda.Response{StatusCode: status, Headers: h.Headers(), Body: body}, nil
}

func (h *PortfolioHandler) logEvent(req *lambda.Request) {
	if !h.logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	body := req.Body
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody]
	}
	h.logger.WithFields(logrus.Fields{
		"method": req.Method,
		"path":   req.Path,
		"body":   body,
	}).Debug("Received event")
}

// PortfolioResponse wraps a successful portfolio response
type PortfolioResponse struct {
	Data any `json:"data"`
}

// ParsePortfolioRequest decodes a request body and checks the shape of its fields.
// A non-nil ErrorResponse describes why the body was rejected.
func ParsePortfolioRequest(body []byte) (*models.PortfolioRequest, *ErrorResponse) {
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return nil, &ErrorResponse{Error: "Invalid JSON payload."}
	}

	req := &models.PortfolioRequest{}

	category, ok := payload["category"]
	if !ok || isFalsy(category) {
		return nil, &ErrorResponse{Error: `Missing "category" in request payload.`}
	}
	if err := json.Unmarshal(category, &req.Category); err != nil {
		return nil, &ErrorResponse{Error: `"category" should be a string.`}
	}

	if addresses, ok := payload["addresses"]; ok && !isFalsy(addresses) {
		var items []json.RawMessage
		if err := json.Unmarshal(addresses, &items); err != nil {
			return nil, &ErrorResponse{Error: `"addresses" should be a list.`}
		}
		req.Addresses = make([]string, 0, len(items))
		for _, item := range items {
			var address string
			if err := json.Unmarshal(item, &address); err != nil {
				return nil, &ErrorResponse{Error: `"addresses" should be a list of strings.`}
			}
			req.Addresses = append(req.Addresses, address)
		}
	}

	if includePrices, ok := payload["include_prices"]; ok {
		req.IncludePrices = !isFalsy(includePrices)
	}

	return req, nil
}

// isFalsy reports whether a JSON value is null, false, zero, or empty
func isFalsy(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", "false", `""`, "[]", "{}":
		return true
	}

	var number float64
	if err := json.Unmarshal(trimmed, &number); err == nil {
		return number == 0
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &object); err == nil {
		return len(object) == 0
	}
	var list []json.RawMessage
	if err := json.Unmarshal(trimmed, &list); err == nil {
		return len(list) == 0
	}
	return false
}
