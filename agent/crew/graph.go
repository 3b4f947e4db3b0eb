package crew

import (
	"context"
	"fmt"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// compilePromptGraph renders the system and user text into the opening
// message list of a task conversation.
func compilePromptGraph(ctx context.Context, graphName string) (compose.Runnable[map[string]any, []*schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, []*schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add prompt node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add prompt edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", compose.END); err != nil {
		return nil, fmt.Errorf("add prompt edge prompt->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile prompt graph: %w", err)
	}
	return runner, nil
}
