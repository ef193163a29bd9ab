package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Action is the reviewer's decision on a suggested reply.
type Action string

const (
	ActionApprove     Action = "APPROVE"
	ActionEditApprove Action = "EDIT"
	ActionReject      Action = "REJECT"
)

var (
	ErrInvalidAction  = errors.New("invalid action")
	ErrEmptyReply     = errors.New("final reply text is required")
	ErrMissingID      = errors.New("interaction id is required")
	ErrHeaderMismatch = errors.New("decision log header mismatch")
)

// Actions lists every action kind in display order.
var Actions = []Action{ActionApprove, ActionEditApprove, ActionReject}

// ParseAction accepts the stored form as well as a few reviewer-friendly spellings.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approve", "approved", "a":
		return ActionApprove, nil
	case "edit", "edit_approve", "edit-approve", "editapprove", "e":
		return ActionEditApprove, nil
	case "reject", "rejected", "r":
		return ActionReject, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

func (a Action) Valid() bool {
	return a == ActionApprove || a == ActionEditApprove || a == ActionReject
}

// Sent reports whether the decision resulted in a reply being sent.
func (a Action) Sent() bool {
	return a == ActionApprove || a == ActionEditApprove
}

// Entry is one human decision. Entries are appended in decision order and
// never rewritten; several entries may share an interaction id.
type Entry struct {
	InteractionID  string    `json:"interaction_id"`
	Action         Action    `json:"action"`
	FinalReplyText string    `json:"final_reply_text"`
	DecidedAt      time.Time `json:"decided_at"`
	DecisionID     string    `json:"decision_id"`
	Platform       string    `json:"platform,omitempty"`
	UserHandle     string    `json:"user_handle,omitempty"`
	OriginalReply  string    `json:"original_reply,omitempty"`
}

// NewEntry validates a decision and stamps it with a decision id.
// A rejection never carries reply text.
func NewEntry(interactionID string, action Action, finalText string, now time.Time) (Entry, error) {
	if strings.TrimSpace(interactionID) == "" {
		return Entry{}, ErrMissingID
	}
	if !action.Valid() {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	if action == ActionReject {
		finalText = ""
	} else if strings.TrimSpace(finalText) == "" {
		return Entry{}, ErrEmptyReply
	}
	return Entry{
		InteractionID:  interactionID,
		Action:         action,
		FinalReplyText: finalText,
		DecidedAt:      now.UTC(),
		DecisionID:     uuid.NewString(),
	}, nil
}

// Recorder abstracts persistence of decisions.
// Append must have durably stored the entry when it returns nil.
// Load returns entries in the order they were appended.
// Implementations must be safe for concurrent use.
type Recorder interface {
	Append(entry Entry) error
	Load() ([]Entry, error)
	Close() error
}

// LogAction builds an entry and appends it to rec.
func LogAction(rec Recorder, interactionID string, action Action, finalText string, now time.Time) (Entry, error) {
	e, err := NewEntry(interactionID, action, finalText, now)
	if err != nil {
		return Entry{}, err
	}
	if err := rec.Append(e); err != nil {
		return Entry{}, err
	}
	return e, nil
}
