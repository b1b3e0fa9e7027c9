// Package handler exposes the bot as a signed webhook endpoint on AWS Lambda.
package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"faq-agent/internal/domain"
	"faq-agent/internal/usecase"
)

const (
	headerSignature     = "X-Signature"
	headerCorrelationID = "X-Correlation-Id"
)

// useCase is the dispatcher consumed by the handler.
type useCase interface {
	HandleEvent(ctx context.Context, ev domain.Event) error
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler verifies, decodes and dispatches webhook deliveries.
type Handler struct {
	uc            useCase
	signingSecret string
	log           *slog.Logger
}

func NewHandler(uc useCase, signingSecret string, log *slog.Logger) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: usecase must not be nil")
	}
	if strings.TrimSpace(signingSecret) == "" {
		return nil, errors.New("handler: signing secret must not be empty")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{uc: uc, signingSecret: signingSecret, log: log}, nil
}

// Handle processes one webhook delivery. A single bad interaction never
// takes the process down: panics are recovered and answered with a 500.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	correlationID := headerValue(req.Headers, headerCorrelationID)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	defer func() {
		if r := recover(); r != nil {
			h.log.Error("panic during event handling", "panic", r, "correlation_id", correlationID)
			resp = respond(http.StatusInternalServerError, correlationID,
				errorResponse{Error: string(usecase.ErrorInternal)})
			err = nil
		}
	}()

	// API Gateway proxy integrations may deliver the body base64-encoded;
	// the signature covers the decoded payload.
	body := req.Body
	if req.IsBase64Encoded {
		raw, decErr := base64.StdEncoding.DecodeString(req.Body)
		if decErr != nil {
			return respond(http.StatusBadRequest, correlationID,
				errorResponse{Error: string(usecase.ErrorInvalidInput)}), nil
		}
		body = string(raw)
	}

	if !h.validSignature(req.Headers, body) {
		return respond(http.StatusUnauthorized, correlationID,
			errorResponse{Error: "INVALID_SIGNATURE"}), nil
	}

	var ev domain.Event
	if decErr := json.Unmarshal([]byte(body), &ev); decErr != nil || ev.Type == "" {
		return respond(http.StatusBadRequest, correlationID,
			errorResponse{Error: string(usecase.ErrorInvalidInput)}), nil
	}

	if ucErr := h.uc.HandleEvent(ctx, ev); ucErr != nil {
		status, code := mapError(ucErr)
		h.log.Error("event handling failed",
			"status", status, "code", code, "correlation_id", correlationID, "err", ucErr)
		return respond(status, correlationID, errorResponse{Error: code}), nil
	}

	return respond(http.StatusOK, correlationID, statusResponse{Status: "ok"}), nil
}

// validSignature checks the hex HMAC-SHA256 of the raw body against the
// signature header using a constant-time comparison.
func (h *Handler) validSignature(headers map[string]string, body string) bool {
	provided := headerValue(headers, headerSignature)
	if provided == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.signingSecret))
	mac.Write([]byte(body))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(provided)))
}

func mapError(err error) (status int, code string) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return http.StatusInternalServerError, string(usecase.ErrorInternal)
	}
	switch ucErr.Code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest, string(ucErr.Code)
	case usecase.ErrorForbidden:
		return http.StatusForbidden, string(ucErr.Code)
	case usecase.ErrorNotFound:
		return http.StatusNotFound, string(ucErr.Code)
	case usecase.ErrorDuplicate:
		return http.StatusConflict, string(ucErr.Code)
	case usecase.ErrorUpstream:
		return http.StatusBadGateway, string(ucErr.Code)
	default:
		return http.StatusInternalServerError, string(usecase.ErrorInternal)
	}
}

func respond(status int, correlationID string, body any) events.APIGatewayProxyResponse {
	raw, err := json.Marshal(body)
	if err != nil {
		raw = []byte(`{"error":"INTERNAL_ERROR"}`)
		status = http.StatusInternalServerError
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":      "application/json",
			headerCorrelationID: correlationID,
		},
		Body: string(raw),
	}
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
