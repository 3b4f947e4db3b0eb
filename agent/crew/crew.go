package crew

import (
	"context"
	"errors"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	contractx "github.com/tanpawarit/crew-assistants/agent/contract"
	pipelinex "github.com/tanpawarit/crew-assistants/agent/pipeline"
	toolx "github.com/tanpawarit/crew-assistants/agent/tool"
)

// ModelFactory builds the chat model a role talks to.
type ModelFactory func(ctx context.Context, role contractx.Role) (einomodel.ToolCallingChatModel, error)

type Config struct {
	MaxToolRounds int `envconfig:"MAX_TOOL_ROUNDS" split_words:"true" default:"5"`
}

var _ contractx.Completer = (*Crew)(nil)

// Crew answers completion requests with the member bound to the request's role.
type Crew struct {
	members map[string]*member
}

// New resolves every role's model and tool set up front; a role that cannot
// be built fails the whole crew.
func New(
	ctx context.Context,
	p contractx.Pipeline,
	factory ModelFactory,
	catalog *toolx.Catalog,
	cfg Config,
) (*Crew, error) {
	if factory == nil {
		return nil, errors.New("model factory is required")
	}
	if catalog == nil {
		return nil, errors.New("tool catalog is required")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	rounds := cfg.MaxToolRounds
	if rounds <= 0 {
		rounds = 5
	}

	members := make(map[string]*member, len(p.Roles))
	for id, role := range p.Roles {
		role.ID = id
		chatModel, err := factory(ctx, role)
		if err != nil {
			return nil, err
		}
		m, err := newMember(ctx, role, chatModel, catalog, rounds)
		if err != nil {
			return nil, err
		}
		members[id] = m
	}

	return &Crew{members: members}, nil
}

func (c *Crew) Complete(ctx context.Context, req contractx.CompletionRequest) (string, error) {
	m, ok := c.members[req.Role.ID]
	if !ok {
		return "", fmt.Errorf("%w: no crew member for role=%q", contractx.ErrValidation, req.Role.ID)
	}
	return m.complete(ctx, req)
}

// Build wires a crew and a runner for p.
func Build(
	ctx context.Context,
	p contractx.Pipeline,
	factory ModelFactory,
	catalog *toolx.Catalog,
	crewCfg Config,
	runCfg pipelinex.Config,
) (*pipelinex.Runner, error) {
	c, err := New(ctx, p, factory, catalog, crewCfg)
	if err != nil {
		return nil, err
	}
	return pipelinex.New(p, c, runCfg)
}
