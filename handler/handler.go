// Package handler adapts gateway HTTP traffic to the USSD dialogue.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"lovtiti-ussd/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	contentTypeText   = "text/plain; charset=utf-8"
	contentTypeJSON   = "application/json"
	maxBodyBytes      = 64 << 10

	msgBadRequest  = "END Invalid request."
	msgUnavailable = "END Service temporarily unavailable. Please try again later."
)

// Dialogue computes the next USSD screen.
type Dialogue interface {
	Handle(ctx context.Context, in usecase.Request) (usecase.Response, error)
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

var healthBody = mustJSON(healthResponse{Status: "ok", Service: "lovtiti-ussd"})

type Handler struct {
	dialogue Dialogue
	metrics  http.Handler
	logger   *slog.Logger
}

type Option func(*Handler)

// WithMetrics mounts a Prometheus handler at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(hd *Handler) {
		hd.metrics = h
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(hd *Handler) {
		if l != nil {
			hd.logger = l
		}
	}
}

func NewHandler(d Dialogue, opts ...Option) (*Handler, error) {
	if d == nil {
		return nil, errors.New("handler: dialogue must not be nil")
	}
	h := &Handler{dialogue: d, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Routes returns the gateway's HTTP surface.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /{$}", h.serveUSSD)
	mux.HandleFunc("POST /ussd", h.serveUSSD)
	mux.HandleFunc("GET /{$}", h.serveHealth)
	mux.HandleFunc("GET /health", h.serveHealth)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
	return mux
}

func (h *Handler) serveHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(healthBody)
}

func (h *Handler) serveUSSD(w http.ResponseWriter, r *http.Request) {
	correlationID := correlationIDFrom(r.Header.Get(correlationHeader))
	w.Header().Set(correlationHeader, correlationID)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeText(w, http.StatusRequestEntityTooLarge, msgBadRequest)
		return
	}
	status, text := h.dispatch(r.Context(), correlationID, r.Header.Get("Content-Type"), body)
	h.writeText(w, status, text)
}

// dispatch decodes a gateway body, runs the dialogue and maps the outcome to
// an HTTP status and response text.
func (h *Handler) dispatch(ctx context.Context, correlationID, contentType string, body []byte) (int, string) {
	in, err := decodeRequest(contentType, body)
	if err != nil {
		h.logger.Debug("undecodable ussd request",
			slog.String("correlation_id", correlationID),
			slog.Any("err", err),
		)
		return http.StatusBadRequest, msgBadRequest
	}

	resp, err := h.dialogue.Handle(ctx, in)
	if err != nil {
		status, text := statusFor(err)
		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		h.logger.Log(ctx, level, "ussd request failed",
			slog.String("correlation_id", correlationID),
			slog.String("session_id", in.SessionID),
			slog.Any("err", err),
		)
		return status, text
	}
	return http.StatusOK, resp.String()
}

func (h *Handler) writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", contentTypeText)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, text)
}

func statusFor(err error) (int, string) {
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) && ucErr.Code == usecase.ErrorInvalidInput {
		return http.StatusBadRequest, msgBadRequest
	}
	return http.StatusInternalServerError, msgUnavailable
}

func correlationIDFrom(v string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return newUUID()
}

var newUUID = func() string {
	return uuid.NewString()
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("handler: marshal %T: %w", v, err))
	}
	return b
}
