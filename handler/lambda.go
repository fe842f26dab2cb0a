package handler

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Handle serves API Gateway proxy events so the same dialogue can run on
// Lambda.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if strings.EqualFold(event.HTTPMethod, http.MethodGet) {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    map[string]string{"Content-Type": contentTypeJSON},
			Body:       string(healthBody),
		}, nil
	}

	correlationID := correlationIDFrom(headerValue(event.Headers, correlationHeader))
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return textResponse(http.StatusBadRequest, msgBadRequest, correlationID), nil
		}
		body = decoded
	}

	status, text := h.dispatch(ctx, correlationID, headerValue(event.Headers, "Content-Type"), body)
	return textResponse(status, text, correlationID), nil
}

func textResponse(status int, text, correlationID string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    contentTypeText,
			correlationHeader: correlationID,
		},
		Body: text,
	}
}

// headerValue looks a header up case-insensitively; API Gateway preserves
// whatever casing the client sent.
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
