// Package dispatch executes capability requests and maps their results back
// into conversation state. It is the only writer of the capability-driven
// state fields.
package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	capabilityx "github.com/clinicdesk/scheduling-agent/agent/capability"
	contractx "github.com/clinicdesk/scheduling-agent/agent/contract"
	statex "github.com/clinicdesk/scheduling-agent/agent/state"
)

type Dispatcher struct {
	gateway contractx.Gateway
	newID   func() string
}

type Option func(*Dispatcher)

// WithIDGenerator overrides correlation id generation, for tests.
func WithIDGenerator(fn func() string) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.newID = fn
		}
	}
}

func New(gateway contractx.Gateway, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		gateway: gateway,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Dispatch executes the requests in order against the gateway. It appends one
// assistant message carrying the correlated calls, then one capability-result
// message per executed request, applying the capability's extraction rule to
// state on success. Execution stops at the first failed result; requests after
// it are not invoked.
//
// Malformed requests (unknown name, missing required args) become error-tagged
// results without reaching the gateway as a structured error, never a crash.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	st *statex.ConversationState,
	requests []contractx.Request,
	now time.Time,
) []contractx.Result {
	if st == nil || len(requests) == 0 {
		return nil
	}

	calls := make([]statex.CapabilityCall, 0, len(requests))
	for i := range requests {
		requests[i].CorrelationID = d.newID()
		calls = append(calls, statex.CapabilityCall{
			ID:   requests[i].CorrelationID,
			Name: requests[i].Name,
			Args: requests[i].Args,
		})
	}
	st.AppendAssistant("", calls, now)

	results := make([]contractx.Result, 0, len(requests))
	for _, req := range requests {
		res := d.invokeOne(ctx, req)
		st.AppendCapabilityResult(res, now)

		if res.OK() {
			applyExtraction(st, req, res)
		}
		results = append(results, res)

		if !res.OK() {
			break
		}
	}

	st.Touch(now)
	return results
}

func (d *Dispatcher) invokeOne(ctx context.Context, req contractx.Request) contractx.Result {
	if err := capabilityx.ValidateRequest(req); err != nil {
		log.Warn().
			Str("capability", string(req.Name)).
			Err(err).
			Msg("rejected capability request")
		return rejectedResult(req, err)
	}

	res, err := d.gateway.Invoke(ctx, req)
	if err != nil {
		log.Error().
			Str("capability", string(req.Name)).
			Err(err).
			Msg("gateway invocation failed")
		return contractx.Result{
			CorrelationID: req.CorrelationID,
			Name:          req.Name,
			Status:        contractx.StatusError,
			ErrKind:       contractx.ErrKindInternal,
			Text:          "ERROR: An unexpected error occurred while handling the request.",
		}
	}
	return res
}

func rejectedResult(req contractx.Request, err error) contractx.Result {
	kind := contractx.ErrKindBadArgs
	text := "ERROR: The request was missing required details."
	if errors.Is(err, contractx.ErrUnknownCapability) {
		kind = contractx.ErrKindUnknown
		text = "ERROR: The requested operation is not supported."
	}
	return contractx.Result{
		CorrelationID: req.CorrelationID,
		Name:          req.Name,
		Status:        contractx.StatusError,
		ErrKind:       kind,
		Text:          text,
	}
}
