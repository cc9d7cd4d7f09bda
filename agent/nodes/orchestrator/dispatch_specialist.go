package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
)

func DispatchSpecialist(ctx context.Context, in *GraphState, models contractx.Registry) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	specialist := models.Specialist(in.Decision.Specialist)
	if specialist == nil {
		return nil, fmt.Errorf("%w: no specialist registered for %s", contractx.ErrValidation, in.Decision.Specialist)
	}

	resp, err := specialist.Run(ctx, contractx.SpecialistRequest{
		Session:  in.Session,
		Decision: in.Decision,
	})
	if err != nil {
		return nil, err
	}
	if resp.Session != nil {
		in.Session = resp.Session
	}
	in.Reply = strings.TrimSpace(resp.Reply)
	return in, nil
}
