package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/crew-assistants/agent/contract"
)

const (
	ToolAppointmentDB = "appointment_db"
	ToolNewsAPI       = "news_api"
)

type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

type handler func(ctx context.Context, args map[string]any) (any, error)

type entry struct {
	info *schema.ToolInfo
	run  handler
}

// Catalog holds every tool a role may be bound to.
type Catalog struct {
	entries map[string]entry
}

func NewCatalog(store contractx.RecordStore) *Catalog {
	appointments := NewAppointmentTool(store)
	return &Catalog{
		entries: map[string]entry{
			ToolAppointmentDB: {info: appointmentInfo(), run: appointments.Run},
			ToolNewsAPI:       {info: newsInfo(), run: runNewsAPI},
		},
	}
}

// Bind resolves a role's tool names into tool infos and an executor limited
// to those tools. Unknown names are configuration errors.
func (c *Catalog) Bind(names []string) ([]*schema.ToolInfo, Executor, error) {
	infos := make([]*schema.ToolInfo, 0, len(names))
	bound := make(map[string]handler, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		e, ok := c.entries[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: unknown tool %q", contractx.ErrConfig, name)
		}
		if _, dup := bound[name]; dup {
			continue
		}
		infos = append(infos, e.info)
		bound[name] = e.run
	}
	return infos, newExecutor(bound), nil
}

func newExecutor(bound map[string]handler) Executor {
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		run, ok := bound[tool]
		if !ok {
			return contractx.ToolResult{
				Tool:  tool,
				Error: fmt.Sprintf("tool=%s is unavailable", tool),
			}, fmt.Errorf("%w: %s", contractx.ErrToolNotAllowed, tool)
		}
		out, err := run(ctx, args)
		if err != nil {
			return contractx.ToolResult{Tool: tool, Error: err.Error()}, nil
		}
		return contractx.ToolResult{Tool: tool, Result: out}, nil
	}
}

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
