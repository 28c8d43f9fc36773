// Package turnnode holds the per-node functions of the turn pipeline graph.
// Each function takes the shared GraphState, does one thing, and hands the
// state to the next node.
package turnnode

import (
	"errors"
	"strings"
	"time"

	statex "github.com/clinicdesk/scheduling-agent/agent/state"
)

var ErrInvalidSession = errors.New("session id is empty")

// FallbackReply is returned when a turn produced no user-visible utterance.
const FallbackReply = "I'm sorry, I'm having trouble responding. Could you please try again?"

// RetryReply is returned when a capability invocation failed mid-turn.
const RetryReply = "I'm sorry, something went wrong on my end. Could you please try that again?"

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	SessionID string
	Reply     string
}

type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session *statex.ConversationState

	// Reply accumulates the user-visible utterance produced this turn.
	Reply string

	// NoOp marks an empty inbound message; the pipeline skips the workflow
	// and the save so re-entry after a finished conversation mutates nothing.
	NoOp bool
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
		NoOp:      text == "",
	}, nil
}
