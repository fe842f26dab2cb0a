// Command ussd-sim plays the part of a feature phone against the gateway,
// either in-process or over HTTP, accumulating entries the way a USSD
// gateway does.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"lovtiti-ussd/internal/kyc"
	"lovtiti-ussd/internal/session"
	"lovtiti-ussd/internal/usecase"
)

type options struct {
	url         string
	sessionID   string
	phone       string
	serviceCode string
	verbose     bool
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "ussd-sim",
		Short: "Interactive USSD session against the Lovtiti Agro Mart gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, cleanup, err := newFetcher(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()
			return runSession(cmd.Context(), f, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.PersistentFlags().StringVar(&opts.url, "url", "", "gateway endpoint; empty runs the dialogue in-process")
	cmd.PersistentFlags().StringVar(&opts.sessionID, "session", "", "session id (random when empty)")
	cmd.PersistentFlags().StringVar(&opts.phone, "phone", "+254700000000", "caller MSISDN")
	cmd.PersistentFlags().StringVar(&opts.serviceCode, "service-code", "*384*123#", "dialled service code")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log submissions in in-process mode")

	cmd.AddCommand(replayCmd(opts))
	return cmd
}

func replayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "replay [entry...]",
		Short:   "Send each prefix of the given entries and print every screen",
		Example: `  ussd-sim replay 4 1 "John Doe" +2348012345678 Nigeria "12 Farm Rd" A123 50 "Rice, Maize" 0.0.123456`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, cleanup, err := newFetcher(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()
			return replay(cmd.Context(), f, args, cmd.OutOrStdout())
		},
	}
}

func newFetcher(opts *options, logOut io.Writer) (fetcher, func(), error) {
	sessionID := opts.sessionID
	if sessionID == "" {
		sessionID = "sim-" + uuid.NewString()
	}
	if opts.url != "" {
		return &remoteFetcher{
			url:         opts.url,
			sessionID:   sessionID,
			phone:       opts.phone,
			serviceCode: opts.serviceCode,
			client:      &http.Client{Timeout: 10 * time.Second},
		}, func() {}, nil
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	store := session.NewMemoryStore(0, 0, logger)
	d, err := usecase.NewDialogue(store, kyc.NewLogSink(logger), usecase.WithLogger(logger))
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return &localFetcher{dialogue: d, sessionID: sessionID, phone: opts.phone, serviceCode: opts.serviceCode},
		func() { _ = store.Close() }, nil
}
