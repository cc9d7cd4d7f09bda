package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
	statex "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/state"
)

func SaveSession(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if in.Session.ID != in.SessionID {
		return nil, fmt.Errorf("%w: session id changed from %q to %q", contractx.ErrValidation, in.SessionID, in.Session.ID)
	}

	in.Session.Touch(in.Now)
	if err := store.Save(ctx, in.Session); err != nil {
		return nil, err
	}
	return in, nil
}
