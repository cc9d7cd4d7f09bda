package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
)

func AppendUserMessage(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	in.Session.AppendUser(in.Text, in.Now)
	return in, nil
}
