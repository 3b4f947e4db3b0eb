package llm

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	contractx "github.com/tanpawarit/crew-assistants/agent/contract"
	openrouterx "github.com/tanpawarit/crew-assistants/pkg/openrouter"
)

// NewModel builds the OpenRouter chat model for role. It satisfies
// crew.ModelFactory.
func (c Config) NewModel(ctx context.Context, role contractx.Role) (einomodel.ToolCallingChatModel, error) {
	modelCfg := c.OpenRouterFor(role)
	m, err := modelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create model for role=%s: %v", contractx.ErrModelInvoke, role.ID, err)
	}
	return m, nil
}

// Verify checks the default model with the provider when VerifyModel is set.
func (c Config) Verify(ctx context.Context) error {
	if !c.VerifyModel {
		return nil
	}
	return openrouterx.VerifyModel(ctx, c.OpenRouterFor(contractx.Role{}))
}
