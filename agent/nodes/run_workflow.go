package turnnode

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/clinicdesk/scheduling-agent/agent/contract"
	decisionx "github.com/clinicdesk/scheduling-agent/agent/decision"
	routerx "github.com/clinicdesk/scheduling-agent/agent/router"
	statex "github.com/clinicdesk/scheduling-agent/agent/state"
)

// Dispatcher executes capability requests and folds their results into state.
type Dispatcher interface {
	Dispatch(ctx context.Context, st *statex.ConversationState, requests []contractx.Request, now time.Time) []contractx.Result
}

// maxWorkflowSteps bounds the decide/dispatch/route loop within one turn. A
// well-behaved turn needs at most a handful of steps (decide, a few capability
// hops, a scripted prompt); hitting the bound means the policy is looping.
const maxWorkflowSteps = 12

// RunWorkflow drives the turn loop: ask the router what runs next, execute
// it, repeat until the router terminates the turn or a user-visible utterance
// is produced.
func RunWorkflow(
	ctx context.Context,
	in *GraphState,
	engine contractx.Engine,
	dispatcher Dispatcher,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.NoOp {
		in.Reply = in.Session.LastAssistantUtterance()
		return in, nil
	}

steps:
	for step := 0; step < maxWorkflowSteps; step++ {
		directive := routerx.Next(in.Session)

		switch directive.Kind {
		case routerx.DirectiveDecide:
			// A plain utterance from the engine ends the turn; the next
			// router pass sees the assistant tail and terminates.
			if done := runDecide(ctx, in, engine, dispatcher); done {
				break steps
			}

		case routerx.DirectiveInvoke:
			results := dispatcher.Dispatch(ctx, in.Session, []contractx.Request{directive.Invoke}, in.Now)
			if anyFailed(results) {
				in.Reply = RetryReply
			}

		case routerx.DirectivePrompt:
			text := routerx.RenderPrompt(directive.Prompt, in.Session)
			in.Session.AppendAssistant(text, nil, in.Now)
			in.Reply = text
			break steps

		case routerx.DirectiveTerminate:
			break steps

		default:
			break steps
		}
	}

	if in.Reply == "" {
		in.Reply = in.Session.LastAssistantUtterance()
	}
	if in.Reply == "" {
		in.Reply = FallbackReply
	}
	return in, nil
}

// runDecide consults the Decision Engine once and either dispatches its
// capability requests or records its utterance. Returns true when the turn
// is finished.
func runDecide(
	ctx context.Context,
	in *GraphState,
	engine contractx.Engine,
	dispatcher Dispatcher,
) bool {
	out, err := engine.Decide(ctx, contractx.DecisionRequest{
		UserMessage:   in.Text,
		StatusSummary: decisionx.Summarize(in.Session),
		Transcript:    transcriptLines(in.Session),
		Now:           in.Now,
	})
	if err != nil {
		log.Error().
			Str("session_id", in.SessionID).
			Err(err).
			Msg("decision engine failed")
		in.Reply = FallbackReply
		return true
	}

	if !out.WantsCapabilities() {
		in.Session.AppendAssistant(out.Utterance, nil, in.Now)
		in.Reply = out.Utterance
		return true
	}

	// A failed dispatch never loops back into the engine; the retry happens
	// only via the user's next message.
	if anyFailed(dispatcher.Dispatch(ctx, in.Session, out.Requests, in.Now)) {
		in.Reply = RetryReply
		return true
	}
	return false
}

func anyFailed(results []contractx.Result) bool {
	for _, res := range results {
		if !res.OK() {
			return true
		}
	}
	return false
}

func transcriptLines(st *statex.ConversationState) []string {
	if st == nil {
		return nil
	}
	lines := make([]string, 0, len(st.Transcript))
	for _, m := range st.Transcript {
		switch m.Role {
		case statex.RoleUser:
			lines = append(lines, "user: "+m.Content)
		case statex.RoleAssistant:
			if m.Content != "" {
				lines = append(lines, "assistant: "+m.Content)
			}
			for _, c := range m.Calls {
				lines = append(lines, fmt.Sprintf("assistant requested %s", c.Name))
			}
		case statex.RoleCapability:
			lines = append(lines, fmt.Sprintf("%s result: %s", m.Capability, m.Content))
		}
	}
	return lines
}
