package contract

import "context"

// Engine is the policy function behind the conversation: given identical
// input it must return the same decision, with no hidden mutation.
type Engine interface {
	Decide(ctx context.Context, req DecisionRequest) (Decision, error)
}

// Gateway executes a single capability request. Implementations own all side
// effects (database writes, outbound calls); callers treat the returned Result
// as the only observable outcome. A non-nil error means the gateway itself
// failed, not the capability.
type Gateway interface {
	Invoke(ctx context.Context, req Request) (Result, error)
}
