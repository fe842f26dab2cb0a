package profileapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lovtiti-ussd/internal/domain"
)

type fakeGetter struct {
	val   string
	err   error
	calls int
}

func (f *fakeGetter) GetParameter(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.val, f.err
}

func sampleSubmission() domain.Submission {
	return domain.Submission{
		ID:          "sub-42",
		SessionID:   "ATUid_42",
		PhoneNumber: "+254711000000",
		Role:        domain.RoleBuyer,
		Fields:      map[string]string{domain.FieldPhone: "+254711000000", domain.FieldWalletAddress: "0.0.42"},
		SubmittedAt: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewClient_Validates(t *testing.T) {
	_, err := NewClient(" ")
	require.Error(t, err)

	_, err = NewClient("https://app.example", WithTokenParameter(nil, "/p/token"))
	require.Error(t, err)

	c, err := NewClient("https://app.example/")
	require.NoError(t, err)
	require.Equal(t, "https://app.example", c.baseURL)
}

func TestSubmitKYC_PostsSubmission(t *testing.T) {
	var got kycRequest
	var auth, idem string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/kyc/ussd", r.URL.Path)
		auth = r.Header.Get("Authorization")
		idem = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	g := &fakeGetter{val: `{"token":"tok-123"}`}
	c, err := NewClient(srv.URL, WithTokenParameter(g, "/lovtiti/ussd/profile-api-token"))
	require.NoError(t, err)

	require.NoError(t, c.SubmitKYC(context.Background(), sampleSubmission()))
	require.NoError(t, c.SubmitKYC(context.Background(), sampleSubmission()))

	require.Equal(t, 1, g.calls)
	require.Equal(t, "Bearer tok-123", auth)
	require.Equal(t, "sub-42", idem)
	require.Equal(t, "Buyer", got.Role)
	require.Equal(t, "ussd", got.Channel)
	require.Equal(t, "0.0.42", got.Fields[domain.FieldWalletAddress])
	require.Equal(t, "2026-05-04T10:00:00Z", got.SubmittedAt)
}

func TestSubmitKYC_NoTokenConfigured(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	require.NoError(t, c.SubmitKYC(context.Background(), sampleSubmission()))
	require.Empty(t, auth)
}

func TestSubmitKYC_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"wallet invalid"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	err = c.SubmitKYC(context.Background(), sampleSubmission())

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusUnprocessableEntity, statusErr.HTTPStatusCode())
	require.Contains(t, statusErr.Body, "wallet invalid")
}

func TestSubmitKYC_TokenErrors(t *testing.T) {
	cases := []struct {
		name   string
		getter *fakeGetter
		want   string
	}{
		{"ssm failure", &fakeGetter{err: errors.New("denied")}, "fetch token"},
		{"not json", &fakeGetter{val: "plain"}, "unmarshal"},
		{"empty token", &fakeGetter{val: `{"token":""}`}, "empty"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewClient("http://127.0.0.1:1", WithTokenParameter(tc.getter, "/p/token"))
			require.NoError(t, err)
			err = c.SubmitKYC(context.Background(), sampleSubmission())
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}
