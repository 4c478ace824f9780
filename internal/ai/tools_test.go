package ai_test

import (
	"context"
	"testing"

	"inventory-costing/internal/ai"
)

func TestDefaultRegistry(t *testing.T) {
	called := false
	registry := ai.DefaultRegistry(func(context.Context, map[string]any) (string, error) {
		called = true
		return "[]", nil
	})

	listGoods, ok := registry.Get(ai.ToolListGoods)
	if !ok {
		t.Fatal("list_goods not registered")
	}
	if !listGoods.IsReadTool || listGoods.Handler == nil {
		t.Error("list_goods must be an executable read tool")
	}
	if _, err := listGoods.Handler(context.Background(), nil); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !called {
		t.Error("handler was not invoked")
	}

	for _, name := range []string{ai.ToolCalculateCostOfSales, ai.ToolResetCostOfSales} {
		tool, ok := registry.Get(name)
		if !ok {
			t.Fatalf("%s not registered", name)
		}
		if tool.IsReadTool || tool.Handler != nil {
			t.Errorf("%s must be a proposal-only write tool", name)
		}
		if tool.InputSchema == nil {
			t.Errorf("%s has no input schema", name)
		}
	}

	if _, ok := registry.Get("unknown_tool"); ok {
		t.Error("Get must report unknown tools")
	}
	if got := len(registry.ToOpenAITools()); got != 3 {
		t.Errorf("ToOpenAITools returned %d tools, want 3", got)
	}
}
