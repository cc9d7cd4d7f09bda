package contract

import (
	"context"

	"github.com/cloudwego/eino/schema"
	statex "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/state"
)

type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (Classification, error)
}

type Responder interface {
	Respond(ctx context.Context, req RespondRequest, tools ToolInvoker) (string, error)
}

// Oracle is the external text-reasoning service. It is non-deterministic and may fail.
type Oracle interface {
	Classifier
	Responder
}

// ToolInvoker is what a specialist exposes to the oracle for one turn.
type ToolInvoker interface {
	Tools() []*schema.ToolInfo
	Invoke(ctx context.Context, req ToolRequest) ToolResult
}

type Dispatcher interface {
	Dispatch(ctx context.Context, sess *statex.Session) (Decision, *statex.Session)
}

type Specialist interface {
	Run(ctx context.Context, req SpecialistRequest) (SpecialistResponse, error)
}

type Registry interface {
	Specialist(id SpecialistID) Specialist
}
