package tool

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/tanpawarit/crew-assistants/agent/contract"
	storex "github.com/tanpawarit/crew-assistants/agent/store"
)

func TestCatalogBindKnownTools(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(storex.NewMemoryStore())
	infos, executor, err := catalog.Bind([]string{ToolAppointmentDB, ToolAppointmentDB})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 tool info, got %d", len(infos))
	}
	if infos[0].Name != ToolAppointmentDB {
		t.Fatalf("unexpected tool: %s", infos[0].Name)
	}
	if executor == nil {
		t.Fatal("executor must not be nil")
	}
}

func TestCatalogBindUnknownTool(t *testing.T) {
	t.Parallel()

	_, _, err := NewCatalog(storex.NewMemoryStore()).Bind([]string{"calendar"})
	if !errors.Is(err, contractx.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestExecutorRejectsUnboundTool(t *testing.T) {
	t.Parallel()

	_, executor, err := NewCatalog(storex.NewMemoryStore()).Bind([]string{ToolNewsAPI})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	out, err := executor(context.Background(), ToolAppointmentDB, map[string]any{"action": ActionCheckAvailability})
	if !errors.Is(err, contractx.ErrToolNotAllowed) {
		t.Fatalf("expected ErrToolNotAllowed, got %v", err)
	}
	if out.Error == "" {
		t.Fatal("expected non-empty error message")
	}
}

func TestExecutorNewsMissingTopic(t *testing.T) {
	t.Parallel()

	_, executor, err := NewCatalog(storex.NewMemoryStore()).Bind([]string{ToolNewsAPI})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	out, err := executor(context.Background(), ToolNewsAPI, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error != "topic is required" {
		t.Fatalf("unexpected tool error: %q", out.Error)
	}
}
