package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"lovtiti-ussd/internal/domain"
)

// Branch labels used for logging and metrics.
const (
	BranchMenu    = "menu"
	BranchBrowse  = "browse"
	BranchOrders  = "orders"
	BranchHelp    = "help"
	BranchKYC     = "kyc"
	BranchTrack   = "track"
	BranchInvalid = "invalid"
)

// SessionStore persists dialogue state between gateway requests.
type SessionStore interface {
	GetOrCreate(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
}

// Submitter receives completed KYC records.
type Submitter interface {
	Submit(ctx context.Context, sub domain.Submission) error
}

// Recorder observes dialogue outcomes.
type Recorder interface {
	ObserveRequest(branch, kind string, elapsed time.Duration)
	ObserveSubmission(role domain.Role, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRequest(string, string, time.Duration) {}
func (nopRecorder) ObserveSubmission(domain.Role, error)         {}

// Request is one decoded gateway hit.
type Request struct {
	SessionID   string
	PhoneNumber string
	ServiceCode string
	Text        string
}

// Dialogue routes accumulated USSD input to the next screen.
type Dialogue struct {
	store    SessionStore
	sink     Submitter
	recorder Recorder
	logger   *slog.Logger
}

type Option func(*Dialogue)

func WithRecorder(r Recorder) Option {
	return func(d *Dialogue) {
		if r != nil {
			d.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Dialogue) {
		if l != nil {
			d.logger = l
		}
	}
}

func NewDialogue(store SessionStore, sink Submitter, opts ...Option) (*Dialogue, error) {
	if store == nil {
		return nil, errors.New("usecase: session store must not be nil")
	}
	if sink == nil {
		return nil, errors.New("usecase: kyc submitter must not be nil")
	}
	d := &Dialogue{
		store:    store,
		sink:     sink,
		recorder: nopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Handle loads the caller's session, computes the next screen from the
// accumulated text and stores the session back.
func (d *Dialogue) Handle(ctx context.Context, in Request) (Response, error) {
	started := now()
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return Response{}, newError(ErrorInvalidInput, "missing_session_id", nil)
	}

	sess, err := d.store.GetOrCreate(ctx, sessionID)
	if err != nil {
		return Response{}, newError(ErrorInternal, "session_load_error", err)
	}
	if sess.PhoneNumber == "" {
		sess.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	}

	branch, resp := d.route(ctx, sess, in.Text)

	sess.UpdatedAt = now()
	if err := d.store.Save(ctx, sess); err != nil {
		return Response{}, newError(ErrorInternal, "session_save_error", err)
	}

	d.recorder.ObserveRequest(branch, resp.Kind(), now().Sub(started))
	d.logger.Debug("ussd request handled",
		slog.String("session_id", sessionID),
		slog.String("branch", branch),
		slog.String("kind", resp.Kind()),
		slog.String("role", sess.Role.String()),
	)
	return resp, nil
}

func (d *Dialogue) route(ctx context.Context, sess *domain.Session, raw string) (string, Response) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return BranchMenu, mainMenu
	}

	path := ParsePath(text)
	level := len(path)

	switch strings.TrimSpace(path[0]) {
	case optionBrowse:
		switch level {
		case 1:
			return BranchBrowse, categoryMenu
		case 2:
			return BranchBrowse, end(msgListingsBySMS)
		default:
			return BranchBrowse, end(msgInvalidSelection)
		}
	case optionOrders:
		return BranchOrders, end(msgOrdersBySMS)
	case optionHelp:
		return BranchHelp, end(msgHelp)
	case optionKYC:
		return BranchKYC, d.kyc(ctx, sess, path)
	case optionTrack:
		return BranchTrack, end(msgTrackOrder)
	default:
		return BranchInvalid, end(msgInvalidSelection)
	}
}

func (d *Dialogue) kyc(ctx context.Context, sess *domain.Session, path []string) Response {
	switch level := len(path); {
	case level == 1:
		return roleMenu
	case level == 2:
		return d.selectRole(sess, path[1])
	default:
		return d.advance(ctx, sess, path)
	}
}

func (d *Dialogue) selectRole(sess *domain.Session, selection string) Response {
	role, ok := domain.RoleForSelection(selection)
	if !ok {
		return end(msgInvalidSelection)
	}
	if sess.Submitted {
		return end(msgInvalidStep)
	}
	if sess.Role != domain.RoleNone && sess.Role != role {
		d.logger.Debug("role change rejected",
			slog.String("session_id", sess.ID),
			slog.String("stored", sess.Role.String()),
			slog.String("requested", role.String()),
		)
		return end(msgInvalidRole)
	}
	spec, _ := domain.SpecFor(role)
	sess.Role = role
	sess.ResetKYC()
	return con(fmt.Sprintf(msgRegistrationFmt, role), spec.OpeningPrompt)
}

var now = time.Now

var newUUID = func() string {
	return uuid.NewString()
}
