package specialist

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
)

func compileSpecialistRuntimeGraph(
	ctx context.Context,
	id contractx.SpecialistID,
	prepare func(context.Context, contractx.SpecialistRequest) (*specialistGraphState, error),
	respond func(context.Context, *specialistGraphState) (*specialistGraphState, error),
	record func(context.Context, *specialistGraphState) (contractx.SpecialistResponse, error),
) (compose.Runnable[contractx.SpecialistRequest, contractx.SpecialistResponse], error) {
	graph := compose.NewGraph[contractx.SpecialistRequest, contractx.SpecialistResponse]()

	if err := graph.AddLambdaNode("validate_and_prepare", compose.InvokableLambda(prepare)); err != nil {
		return nil, fmt.Errorf("add specialist runtime validate node: %w", err)
	}
	if err := graph.AddLambdaNode("respond", compose.InvokableLambda(respond)); err != nil {
		return nil, fmt.Errorf("add specialist runtime respond node: %w", err)
	}
	if err := graph.AddLambdaNode("record_reply", compose.InvokableLambda(record)); err != nil {
		return nil, fmt.Errorf("add specialist runtime record node: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_and_prepare"},
		{"validate_and_prepare", "respond"},
		{"respond", "record_reply"},
		{"record_reply", compose.END},
	}
	for _, e := range edges {
		if err := graph.AddEdge(e[0], e[1]); err != nil {
			return nil, fmt.Errorf("add specialist runtime edge %s->%s: %w", e[0], e[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("specialist.runtime_graph."+id.String()))
	if err != nil {
		return nil, fmt.Errorf("compile specialist runtime graph: %w", err)
	}
	return runner, nil
}
