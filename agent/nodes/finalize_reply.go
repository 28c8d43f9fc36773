package turnnode

import (
	"fmt"
	"strings"

	contractx "github.com/clinicdesk/scheduling-agent/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		reply = FallbackReply
	}
	return GraphOutput{
		SessionID: in.SessionID,
		Reply:     reply,
	}, nil
}
