// Package kyc delivers completed KYC submissions to the systems that persist
// or react to them.
package kyc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lovtiti-ussd/internal/domain"
)

// Sink receives a completed submission.
type Sink interface {
	Submit(ctx context.Context, sub domain.Submission) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, sub domain.Submission) error

func (f SinkFunc) Submit(ctx context.Context, sub domain.Submission) error {
	return f(ctx, sub)
}

// LogSink writes the full record to the structured log.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Submit(_ context.Context, sub domain.Submission) error {
	s.logger.Info("kyc data received",
		slog.String("submission_id", sub.ID),
		slog.String("role", sub.Role.String()),
		slog.String("session_id", sub.SessionID),
		slog.Any("kyc_data", sub.Fields),
	)
	return nil
}

type named struct {
	name string
	sink Sink
}

// Fanout delivers each submission to every registered sink, continuing past
// failures and reporting them together.
type Fanout struct {
	sinks []named
}

func NewFanout() *Fanout {
	return &Fanout{}
}

// Add registers a sink under a name used in error messages.
func (f *Fanout) Add(name string, s Sink) *Fanout {
	if s != nil {
		f.sinks = append(f.sinks, named{name: name, sink: s})
	}
	return f
}

func (f *Fanout) Len() int {
	return len(f.sinks)
}

func (f *Fanout) Submit(ctx context.Context, sub domain.Submission) error {
	var errs []error
	for _, n := range f.sinks {
		if err := n.sink.Submit(ctx, sub); err != nil {
			errs = append(errs, fmt.Errorf("kyc: %s: %w", n.name, err))
		}
	}
	return errors.Join(errs...)
}
