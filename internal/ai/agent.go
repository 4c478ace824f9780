package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// ActionProposal is the agent's proposed costing action, pending human
// confirmation.
type ActionProposal struct {
	Tool       string  `json:"tool" jsonschema_description:"The tool to run: 'calculate_cost_of_sales' or 'reset_cost_of_sales'"`
	AccountID  string  `json:"account_id" jsonschema_description:"The inventory account id of the tracked good, taken from the provided goods list"`
	AsOfDate   string  `json:"as_of_date,omitempty" jsonschema_description:"Optional YYYY-MM-DD as-of date for calculations; empty means today"`
	Confidence float64 `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
	Reasoning  string  `json:"reasoning" jsonschema_description:"Explanation for the proposed action"`
}

// AgentResponse wraps the AI output to handle branching between a proposed
// action and a clarifying question. The AI must return exactly one of these.
type AgentResponse struct {
	IsQuestion bool            `json:"is_question" jsonschema_description:"Set to true ONLY if you lack enough information to propose a confident action."`
	Question   string          `json:"question,omitempty" jsonschema_description:"Required if is_question is true: a message asking the user for missing details."`
	Proposal   *ActionProposal `json:"proposal,omitempty" jsonschema_description:"Required if is_question is false."`
}

// Agent interprets operator requests against the costing tool set.
type Agent struct {
	client *openai.Client
}

// NewAgent constructs an Agent with the given OpenAI API key.
func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// Interpret maps a natural language request to a costing action. goods is a
// formatted listing of the tracked goods (the agent must use exact account
// ids from it); the registry describes the tools it may propose.
func (a *Agent) Interpret(ctx context.Context, text, goods string, registry *ToolRegistry) (*AgentResponse, error) {
	var toolDocs string
	for _, t := range registry.All() {
		if t.IsReadTool {
			continue
		}
		toolDocs += fmt.Sprintf("- %s: %s\n", t.Name, t.Description)
	}

	prompt := fmt.Sprintf(`You are the operator assistant of an inventory costing engine.
Your goal is to interpret an operator request and propose exactly one costing action.
Rules:
1. Use ONLY account ids from the goods list below.
2. Propose an action only when the request names a good unambiguously; otherwise ask a question.
3. A good flagged needs_rebuild can still be calculated: the engine resets it first.
4. Provide a confidence score (0.0-1.0).
5. Explain your reasoning.

Available actions:
%s
Tracked goods:
%s

Request: %s`, toolDocs, goods, text)

	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "costing_action_proposal",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A proposed inventory costing action or a clarifying question"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var response AgentResponse
	if err := json.Unmarshal([]byte(content), &response); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	if !response.IsQuestion {
		if response.Proposal == nil {
			return nil, fmt.Errorf("agent returned neither a proposal nor a question")
		}
		if _, ok := registry.Get(response.Proposal.Tool); !ok {
			return nil, fmt.Errorf("agent proposed unknown tool %q", response.Proposal.Tool)
		}
	}
	return &response, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v AgentResponse
	return reflector.Reflect(v)
}
