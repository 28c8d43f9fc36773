package turnnode

import (
	"context"
	"fmt"

	contractx "github.com/clinicdesk/scheduling-agent/agent/contract"
	statex "github.com/clinicdesk/scheduling-agent/agent/state"
)

// ValidateAndSaveState checks the sequencing invariants and persists the
// session. No-op turns skip the save so they leave the stored state untouched.
func ValidateAndSaveState(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.NoOp {
		return in, nil
	}

	if err := in.Session.Validate(); err != nil {
		return nil, err
	}
	if err := store.Save(ctx, in.Session); err != nil {
		return nil, err
	}
	return in, nil
}
