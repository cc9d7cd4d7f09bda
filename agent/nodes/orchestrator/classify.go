package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
)

// Classify never fails on oracle problems; the dispatcher resolves them to a default.
func Classify(ctx context.Context, in *GraphState, dispatcher contractx.Dispatcher) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	decision, sess := dispatcher.Dispatch(ctx, in.Session)
	if sess == nil {
		return nil, fmt.Errorf("%w: dispatcher returned nil session", contractx.ErrValidation)
	}
	in.Decision = decision
	in.Session = sess
	return in, nil
}
