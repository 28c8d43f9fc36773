package turnnode

import (
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/clinicdesk/scheduling-agent/agent/contract"
	intentx "github.com/clinicdesk/scheduling-agent/agent/intent"
)

// ExtractUserChoice applies the free-text heuristics to the inbound message
// and appends it to the transcript. No-op turns touch nothing.
func ExtractUserChoice(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.NoOp {
		return in, nil
	}

	update := intentx.Extract(in.Session, in.Text)
	if intentx.Apply(in.Session, update) {
		log.Debug().
			Str("session_id", in.SessionID).
			Msg("applied user choice extraction")
	}

	in.Session.AppendUser(in.Text, in.Now)
	return in, nil
}
