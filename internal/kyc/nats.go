package kyc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"lovtiti-ussd/internal/domain"
)

// DefaultSubjectPrefix is where submissions are announced; the lowercase role
// is appended, e.g. lovtiti.kyc.submitted.farmer.
const DefaultSubjectPrefix = "lovtiti.kyc.submitted"

// publisher is satisfied by *nats.Conn.
type publisher interface {
	PublishMsg(m *nats.Msg) error
}

// NATSSink announces submissions on a NATS subject per role.
type NATSSink struct {
	pub    publisher
	prefix string
}

func NewNATSSink(pub publisher, subjectPrefix string) (*NATSSink, error) {
	if pub == nil {
		return nil, errors.New("kyc: nats publisher must not be nil")
	}
	subjectPrefix = strings.TrimRight(strings.TrimSpace(subjectPrefix), ".")
	if subjectPrefix == "" {
		subjectPrefix = DefaultSubjectPrefix
	}
	return &NATSSink{pub: pub, prefix: subjectPrefix}, nil
}

// Subject returns the subject a role's submissions are published on.
func (s *NATSSink) Subject(role domain.Role) string {
	return s.prefix + "." + strings.ToLower(string(role))
}

func (s *NATSSink) Submit(_ context.Context, sub domain.Submission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("kyc: marshal submission: %w", err)
	}
	msg := nats.NewMsg(s.Subject(sub.Role))
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, sub.ID)
	msg.Header.Set("Content-Type", "application/json")
	if err := s.pub.PublishMsg(msg); err != nil {
		return fmt.Errorf("kyc: nats publish: %w", err)
	}
	return nil
}
