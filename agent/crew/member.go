package crew

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/crew-assistants/agent/contract"
	toolx "github.com/tanpawarit/crew-assistants/agent/tool"
)

type member struct {
	role          contractx.Role
	model         einomodel.ToolCallingChatModel
	promptRunner  compose.Runnable[map[string]any, []*schema.Message]
	execute       toolx.Executor
	maxToolRounds int
	jsonParser    schema.MessageParser[map[string]any]
}

func newMember(
	ctx context.Context,
	role contractx.Role,
	chatModel einomodel.ToolCallingChatModel,
	catalog *toolx.Catalog,
	maxToolRounds int,
) (*member, error) {
	infos, executor, err := catalog.Bind(role.Tools)
	if err != nil {
		return nil, fmt.Errorf("role %s: %w", role.ID, err)
	}

	boundModel := chatModel
	if len(infos) > 0 {
		boundModel, err = chatModel.WithTools(infos)
		if err != nil {
			return nil, fmt.Errorf("%w: bind tools for role=%s: %v", contractx.ErrModelInvoke, role.ID, err)
		}
	}

	promptRunner, err := compilePromptGraph(ctx, "crew."+role.ID+".prompt")
	if err != nil {
		return nil, fmt.Errorf("%w: role %s: %v", contractx.ErrConfig, role.ID, err)
	}

	return &member{
		role:          role,
		model:         boundModel,
		promptRunner:  promptRunner,
		execute:       executor,
		maxToolRounds: maxToolRounds,
		jsonParser: schema.NewMessageJSONParser[map[string]any](&schema.MessageJSONParseConfig{
			ParseFrom: schema.MessageParseFromContent,
		}),
	}, nil
}

func (m *member) complete(ctx context.Context, req contractx.CompletionRequest) (string, error) {
	messages, err := m.promptRunner.Invoke(ctx, map[string]any{
		"system": systemText(m.role),
		"input":  taskText(req.Task, req.Context),
	})
	if err != nil {
		return "", fmt.Errorf("%w: render prompt: %v", contractx.ErrValidation, err)
	}

	applied := false
	for round := 0; ; round++ {
		out, next, err := m.step(ctx, req.Task, messages, round, &applied)
		if err != nil {
			if applied {
				return "", fmt.Errorf("%w: %w", contractx.ErrToolApplied, err)
			}
			return "", err
		}
		if next == nil {
			return out, nil
		}
		messages = next
	}
}

// step runs one model round. It returns the final answer, or the extended
// conversation when the model asked for tools. applied is set once any tool
// has executed.
func (m *member) step(ctx context.Context, task contractx.Task, messages []*schema.Message, round int, applied *bool) (string, []*schema.Message, error) {
	msg, err := m.model.Generate(ctx, messages)
	if err != nil {
		return "", nil, fmt.Errorf("%w: role=%s: %v", contractx.ErrModelInvoke, m.role.ID, err)
	}
	if msg == nil {
		return "", nil, fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation)
	}

	if len(msg.ToolCalls) == 0 {
		out, err := m.finalize(ctx, task, msg)
		return out, nil, err
	}
	if round >= m.maxToolRounds {
		return "", nil, fmt.Errorf("%w: role=%s exceeded %d tool rounds", contractx.ErrSchemaViolation, m.role.ID, m.maxToolRounds)
	}

	messages = append(messages, msg)
	for _, call := range msg.ToolCalls {
		content, err := m.runTool(ctx, call)
		if err != nil {
			return "", nil, err
		}
		*applied = true
		messages = append(messages, schema.ToolMessage(content, call.ID))
	}
	return "", messages, nil
}

func (m *member) runTool(ctx context.Context, call schema.ToolCall) (string, error) {
	req, err := toToolRequest(call)
	if err != nil {
		return "", err
	}

	log.Debug().Str("role", m.role.ID).Str("tool", req.Tool).Interface("args", req.Args).Msg("tool call")
	result, err := m.execute(ctx, req.Tool, req.Args)
	if err != nil {
		return "", fmt.Errorf("%w: role=%s: %w", contractx.ErrSchemaViolation, m.role.ID, err)
	}

	var payload any = result.Result
	if result.Error != "" {
		payload = map[string]string{"error": result.Error}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal result of tool=%s: %w", req.Tool, err)
	}
	return string(raw), nil
}

func (m *member) finalize(ctx context.Context, task contractx.Task, msg *schema.Message) (string, error) {
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return "", fmt.Errorf("%w: role=%s returned empty content", contractx.ErrSchemaViolation, m.role.ID)
	}
	if task.OutputFormat != contractx.OutputJSON {
		return content, nil
	}

	parsed, err := m.jsonParser.Parse(ctx, &schema.Message{
		Role:    msg.Role,
		Content: stripCodeFence(content),
	})
	if err != nil {
		return "", fmt.Errorf("%w: task %s expects json: %v", contractx.ErrSchemaViolation, task.ID, err)
	}
	normalized, err := json.Marshal(parsed)
	if err != nil {
		return "", fmt.Errorf("%w: task %s: %v", contractx.ErrSchemaViolation, task.ID, err)
	}
	return string(normalized), nil
}

func toToolRequest(call schema.ToolCall) (contractx.ToolRequest, error) {
	name := strings.TrimSpace(call.Function.Name)
	if name == "" {
		return contractx.ToolRequest{}, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
	}

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return contractx.ToolRequest{}, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, name, err)
		}
	}
	return contractx.ToolRequest{Tool: name, Args: args}, nil
}

func systemText(role contractx.Role) string {
	return fmt.Sprintf("You are %s. %s\nYour personal goal is: %s", role.Title, role.Backstory, role.Goal)
}

func taskText(task contractx.Task, context string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current Task: %s\n\n", task.Description)
	fmt.Fprintf(&b, "This is the expected criteria for your final answer: %s\n", task.ExpectedOutput)
	if task.OutputFormat == contractx.OutputJSON {
		b.WriteString("Respond with the JSON object only.\n")
	}
	if strings.TrimSpace(context) != "" {
		fmt.Fprintf(&b, "\nThis is the context you're working with:\n%s\n", context)
	}
	return b.String()
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
