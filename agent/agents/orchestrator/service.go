// Package orchestrator wires the turn pipeline: load session state, apply
// user-choice extraction, run the decide/dispatch/route loop, persist, reply.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/clinicdesk/scheduling-agent/agent/contract"
	nodex "github.com/clinicdesk/scheduling-agent/agent/nodes"
	statex "github.com/clinicdesk/scheduling-agent/agent/state"
)

var ErrInvalidSession = nodex.ErrInvalidSession

type Orchestrator struct {
	store      statex.Store
	engine     contractx.Engine
	dispatcher nodex.Dispatcher

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(
	store statex.Store,
	engine contractx.Engine,
	dispatcher nodex.Dispatcher,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if engine == nil {
		return nil, errors.New("decision engine is required")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}

	o := &Orchestrator{
		store:      store,
		engine:     engine,
		dispatcher: dispatcher,
		now:        time.Now,
	}

	graphRunner, err := o.compileProcessTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// ProcessTurn handles one inbound user message for a session and returns the
// assistant's reply. Calls for the same session id continue the conversation;
// a new session id starts fresh. Turns for one session must not run
// concurrently; different sessions are independent.
func (o *Orchestrator) ProcessTurn(ctx context.Context, sessionID string, text string) (string, error) {
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}
