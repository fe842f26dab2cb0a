package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lovtiti-ussd/handler"
	"lovtiti-ussd/internal/kyc"
	"lovtiti-ussd/internal/session"
	"lovtiti-ussd/internal/usecase"
)

func newLocal(t *testing.T) *localFetcher {
	t.Helper()
	store := session.NewMemoryStore(0, 0, nil)
	t.Cleanup(func() { _ = store.Close() })
	d, err := usecase.NewDialogue(store, kyc.NewLogSink(nil))
	require.NoError(t, err)
	return &localFetcher{dialogue: d, sessionID: "sim-test", phone: "+2348012345678"}
}

func TestRunSession_StopsOnEnd(t *testing.T) {
	var out bytes.Buffer
	err := runSession(context.Background(), newLocal(t), strings.NewReader("1\n2\n"), &out)
	require.NoError(t, err)

	got := out.String()
	require.Contains(t, got, "CON Welcome to Lovtiti Agro Mart")
	require.Contains(t, got, "CON Select Category:")
	require.Contains(t, got, "END Listings for this category will be sent to you via SMS.")
}

func TestRunSession_EOF(t *testing.T) {
	var out bytes.Buffer
	err := runSession(context.Background(), newLocal(t), strings.NewReader("4\n"), &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "CON Select your role:")
}

func TestReplay_FarmerFlow(t *testing.T) {
	var out bytes.Buffer
	entries := []string{"4", "1", "John Doe", "+2348012345678", "Nigeria", "Kaduna", "A1", "50", "Rice, Maize", "0.0.123456"}
	require.NoError(t, replay(context.Background(), newLocal(t), entries, &out))
	require.Contains(t, out.String(), "END KYC submitted successfully! Your Farmer registration is under review.")
}

func TestReplay_EndedEarly(t *testing.T) {
	var out bytes.Buffer
	err := replay(context.Background(), newLocal(t), []string{"2", "1"}, &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ended after 1 of 2")
}

func TestRemoteFetcher(t *testing.T) {
	store := session.NewMemoryStore(0, 0, nil)
	defer store.Close()
	d, err := usecase.NewDialogue(store, kyc.NewLogSink(nil))
	require.NoError(t, err)
	h, err := handler.NewHandler(d)
	require.NoError(t, err)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	f := &remoteFetcher{url: srv.URL + "/ussd", sessionID: "remote-1", phone: "+1", client: &http.Client{Timeout: 5 * time.Second}}
	screen, err := f.Next(context.Background(), "4")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(screen, "CON Select your role:"), screen)

	bad := &remoteFetcher{url: srv.URL + "/ussd", client: http.DefaultClient}
	_, err = bad.Next(context.Background(), "1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "400")
}

func TestRootCmd_Replay(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"replay", "--session", "cli-1", "3"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "END For help call +234-800-LOVTITI")
}
