package ai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

// Tool names the agent can propose. Both are write tools: they mutate the
// ledger and therefore always require human confirmation before execution.
const (
	ToolCalculateCostOfSales = "calculate_cost_of_sales"
	ToolResetCostOfSales     = "reset_cost_of_sales"
	ToolListGoods            = "list_goods"
)

// ToolHandler is the execution function for a read tool. It receives parsed
// JSON parameters and returns a JSON-encoded result string. Write tools do
// not have handlers; they are proposed to the user for confirmation.
type ToolHandler func(ctx context.Context, params map[string]any) (string, error)

// ToolDefinition describes a single tool in the registry. Read tools execute
// autonomously; write tools surface a proposed action for human confirmation.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any // JSON Schema for the tool's input parameters
	IsReadTool  bool
	Handler     ToolHandler // non-nil for read tools only
}

// ToolRegistry holds all tools available to the agent for a given call.
type ToolRegistry struct {
	tools []ToolDefinition
}

// NewToolRegistry creates an empty ToolRegistry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{}
}

// Register adds a tool to the registry.
func (r *ToolRegistry) Register(t ToolDefinition) {
	r.tools = append(r.tools, t)
}

// Get returns the ToolDefinition for a given tool name, and whether it was found.
func (r *ToolRegistry) Get(name string) (ToolDefinition, bool) {
	for _, t := range r.tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolDefinition{}, false
}

// All returns all registered tools.
func (r *ToolRegistry) All() []ToolDefinition {
	return r.tools
}

// ToOpenAITools converts the registry to the OpenAI Responses API tool
// format. Read and write tools are both included; the read/write distinction
// is enforced in the interpretation loop, not in the API payload.
func (r *ToolRegistry) ToOpenAITools() []responses.ToolUnionParam {
	out := make([]responses.ToolUnionParam, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  t.InputSchema,
			},
		})
	}
	return out
}

// DefaultRegistry returns the costing tool set. listGoods is the read tool
// used to resolve account references; the write tools are proposed only.
func DefaultRegistry(listGoods ToolHandler) *ToolRegistry {
	r := NewToolRegistry()
	r.Register(ToolDefinition{
		Name:        ToolListGoods,
		Description: "List all tracked goods with their inventory account ids, rebuild flags, and last calculation dates.",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		IsReadTool:  true,
		Handler:     listGoods,
	})
	r.Register(ToolDefinition{
		Name:        ToolCalculateCostOfSales,
		Description: "Run a FIFO cost-of-sales calculation for one tracked good, optionally as of a date.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"account_id": map[string]any{"type": "string", "description": "Inventory account id of the tracked good"},
				"as_of_date": map[string]any{"type": "string", "description": "Optional YYYY-MM-DD as-of date"},
			},
			"required": []string{"account_id"},
		},
	})
	r.Register(ToolDefinition{
		Name:        ToolResetCostOfSales,
		Description: "Undo all synthesized cost-of-sales state for one tracked good so it can be recomputed.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"account_id": map[string]any{"type": "string", "description": "Inventory account id of the tracked good"},
			},
			"required": []string{"account_id"},
		},
	})
	return r
}
