package contract

import (
	"fmt"
	"strings"
	"time"
)

type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

type Role struct {
	ID          string   `yaml:"-" json:"id"`
	Title       string   `yaml:"role" json:"role"`
	Goal        string   `yaml:"goal" json:"goal"`
	Backstory   string   `yaml:"backstory" json:"backstory"`
	Tools       []string `yaml:"tools,omitempty" json:"tools,omitempty"`
	Model       string   `yaml:"model,omitempty" json:"model,omitempty"`
	Temperature *float32 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
}

type Task struct {
	ID             string       `yaml:"id" json:"id"`
	Description    string       `yaml:"description" json:"description"`
	ExpectedOutput string       `yaml:"expected_output" json:"expected_output"`
	Role           string       `yaml:"role" json:"role"`
	Context        []string     `yaml:"context,omitempty" json:"context,omitempty"`
	OutputFormat   OutputFormat `yaml:"output_format,omitempty" json:"output_format,omitempty"`
}

// Pipeline is an ordered list of tasks and the roles they are bound to.
type Pipeline struct {
	Name  string          `yaml:"name" json:"name"`
	Roles map[string]Role `yaml:"roles" json:"roles"`
	Tasks []Task          `yaml:"tasks" json:"tasks"`
}

// RoleFor returns the role bound to task.
func (p Pipeline) RoleFor(task Task) (Role, bool) {
	r, ok := p.Roles[task.Role]
	return r, ok
}

// Validate checks required fields and that every task's context names
// only tasks declared before it.
func (p Pipeline) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: pipeline name is required", ErrConfig)
	}
	if len(p.Tasks) == 0 {
		return fmt.Errorf("%w: pipeline %s has no tasks", ErrConfig, p.Name)
	}

	for id, r := range p.Roles {
		switch {
		case r.Title == "":
			return fmt.Errorf("%w: role %s: role is required", ErrConfig, id)
		case r.Goal == "":
			return fmt.Errorf("%w: role %s: goal is required", ErrConfig, id)
		case r.Backstory == "":
			return fmt.Errorf("%w: role %s: backstory is required", ErrConfig, id)
		}
	}

	seen := make(map[string]struct{}, len(p.Tasks))
	for i, t := range p.Tasks {
		if t.ID == "" {
			return fmt.Errorf("%w: task #%d: id is required", ErrConfig, i)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: task %s declared twice", ErrConfig, t.ID)
		}
		if t.Description == "" {
			return fmt.Errorf("%w: task %s: description is required", ErrConfig, t.ID)
		}
		if t.ExpectedOutput == "" {
			return fmt.Errorf("%w: task %s: expected_output is required", ErrConfig, t.ID)
		}
		if _, ok := p.RoleFor(t); !ok {
			return fmt.Errorf("%w: task %s: unknown role %q", ErrConfig, t.ID, t.Role)
		}
		switch t.OutputFormat {
		case "", OutputText, OutputJSON:
		default:
			return fmt.Errorf("%w: task %s: unsupported output_format %q", ErrConfig, t.ID, t.OutputFormat)
		}
		for _, dep := range t.Context {
			if _, ok := seen[dep]; !ok {
				return fmt.Errorf("%w: task %s: context %q must name an earlier task", ErrConfig, t.ID, dep)
			}
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

type CompletionRequest struct {
	Role    Role   `json:"role"`
	Task    Task   `json:"task"`
	Context string `json:"context"`
}

type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"patient_name"`
	Timestamp string    `json:"appointment_time"`
	Category  string    `json:"specialty"`
	CreatedAt time.Time `json:"created_at"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}
