package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"lovtiti-ussd/internal/usecase"
)

// fetcher returns the screen for the accumulated text.
type fetcher interface {
	Next(ctx context.Context, text string) (string, error)
}

type localFetcher struct {
	dialogue    *usecase.Dialogue
	sessionID   string
	phone       string
	serviceCode string
}

func (f *localFetcher) Next(ctx context.Context, text string) (string, error) {
	resp, err := f.dialogue.Handle(ctx, usecase.Request{
		SessionID:   f.sessionID,
		PhoneNumber: f.phone,
		ServiceCode: f.serviceCode,
		Text:        text,
	})
	if err != nil {
		return "", err
	}
	return resp.String(), nil
}

type remoteFetcher struct {
	url         string
	sessionID   string
	phone       string
	serviceCode string
	client      *http.Client
}

func (f *remoteFetcher) Next(ctx context.Context, text string) (string, error) {
	form := url.Values{
		"sessionId":   {f.sessionID},
		"phoneNumber": {f.phone},
		"serviceCode": {f.serviceCode},
		"text":        {text},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("ussd-sim: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ussd-sim: post: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(res.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("ussd-sim: read response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ussd-sim: gateway returned %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return strings.TrimRight(string(body), "\n"), nil
}

// runSession prints each screen and reads the caller's next entry from in
// until the gateway ends the session or input runs out.
func runSession(ctx context.Context, f fetcher, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	var entries []string
	for {
		screen, err := f.Next(ctx, strings.Join(entries, usecase.PathSeparator))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, screen)
		if strings.HasPrefix(screen, "END") {
			return nil
		}
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		entries = append(entries, strings.TrimSpace(scanner.Text()))
	}
}

// replay sends the empty request and then every prefix of entries.
func replay(ctx context.Context, f fetcher, entries []string, out io.Writer) error {
	for i := 0; i <= len(entries); i++ {
		text := strings.Join(entries[:i], usecase.PathSeparator)
		screen, err := f.Next(ctx, text)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "[%s]\n%s\n\n", text, screen)
		if strings.HasPrefix(screen, "END") && i < len(entries) {
			return fmt.Errorf("ussd-sim: session ended after %d of %d entries", i, len(entries))
		}
	}
	return nil
}
