package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"lovtiti-ussd/internal/domain"
)

// kycMenuDepth counts the KYC menu entry and the role selection that precede
// the first collected field.
const kycMenuDepth = 2

// advance runs the step engine for the session's stored role. The current step
// is derived from the path length alone; only the most recent entry is read.
func (d *Dialogue) advance(ctx context.Context, sess *domain.Session, path []string) Response {
	spec, ok := domain.SpecFor(sess.Role)
	if !ok {
		d.logger.Debug("kyc step without role", slog.String("session_id", sess.ID))
		return end(msgInvalidRole)
	}
	if sess.Submitted {
		return end(msgInvalidStep)
	}

	level := len(path)
	step := level - kycMenuDepth
	entry, ok := spec.Step(step)
	if !ok {
		return end(msgInvalidStep)
	}

	if entry.Field != "" {
		sess.KYCData[entry.Field] = strings.TrimSpace(path[level-1])
	}
	sess.Step = step

	if step < spec.TerminalStep() {
		return con(entry.Next)
	}

	d.submit(ctx, sess)
	sess.Submitted = true
	return end(fmt.Sprintf(msgKYCSubmittedFmt, sess.Role))
}

// submit hands the record to the sink. Sink failures are logged, never shown
// to the caller.
func (d *Dialogue) submit(ctx context.Context, sess *domain.Session) {
	sub := domain.Submission{
		ID:          newUUID(),
		SessionID:   sess.ID,
		PhoneNumber: sess.PhoneNumber,
		Role:        sess.Role,
		Fields:      maps.Clone(sess.KYCData),
		SubmittedAt: now().UTC(),
	}
	err := d.sink.Submit(ctx, sub)
	d.recorder.ObserveSubmission(sess.Role, err)
	if err != nil {
		d.logger.Error("kyc submission failed",
			slog.String("session_id", sess.ID),
			slog.String("submission_id", sub.ID),
			slog.String("role", sess.Role.String()),
			slog.Any("err", err),
		)
		return
	}
	d.logger.Info("kyc submitted",
		slog.String("session_id", sess.ID),
		slog.String("submission_id", sub.ID),
		slog.String("role", sess.Role.String()),
		slog.Int("fields", len(sub.Fields)),
	)
}
