package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/url"

	"lovtiti-ussd/internal/usecase"
)

// wireRequest mirrors the fields USSD gateways post on every hit.
type wireRequest struct {
	SessionID   string `json:"sessionId"`
	ServiceCode string `json:"serviceCode"`
	PhoneNumber string `json:"phoneNumber"`
	NetworkCode string `json:"networkCode"`
	Text        string `json:"text"`
}

var errMissingSessionID = errors.New("handler: missing form field `sessionId`")

type binder func(r *wireRequest, value string)

var binders = map[string]binder{
	"text":        func(r *wireRequest, v string) { r.Text = v },
	"sessionId":   func(r *wireRequest, v string) { r.SessionID = v },
	"serviceCode": func(r *wireRequest, v string) { r.ServiceCode = v },
	"phoneNumber": func(r *wireRequest, v string) { r.PhoneNumber = v },
	"networkCode": func(r *wireRequest, v string) { r.NetworkCode = v },
}

// decodeRequest accepts either a JSON object or a urlencoded form, chosen by
// content type and falling back to sniffing the body.
func decodeRequest(contentType string, body []byte) (usecase.Request, error) {
	var (
		wire wireRequest
		err  error
	)
	if isJSON(contentType, body) {
		if err = json.Unmarshal(body, &wire); err != nil {
			return usecase.Request{}, fmt.Errorf("handler: decode json body: %w", err)
		}
	} else {
		var form url.Values
		if form, err = url.ParseQuery(string(body)); err != nil {
			return usecase.Request{}, fmt.Errorf("handler: decode form body: %w", err)
		}
		for field, bind := range binders {
			if form.Has(field) {
				bind(&wire, form.Get(field))
			}
		}
	}
	if wire.SessionID == "" {
		return usecase.Request{}, errMissingSessionID
	}
	return usecase.Request{
		SessionID:   wire.SessionID,
		PhoneNumber: wire.PhoneNumber,
		ServiceCode: wire.ServiceCode,
		Text:        wire.Text,
	}, nil
}

func isJSON(contentType string, body []byte) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "application/json":
			return true
		case "application/x-www-form-urlencoded":
			return false
		}
	}
	return bytes.HasPrefix(bytes.TrimSpace(body), []byte("{"))
}
