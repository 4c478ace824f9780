package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"inventory-costing/internal/ai"
	"inventory-costing/internal/costing"
)

type appService struct {
	costing *costing.Service
	agent   *ai.Agent
}

// NewAppService constructs an appService that satisfies ApplicationService.
// agent may be nil when no OpenAI key is configured; the AI entry points then
// return an error and everything else works normally.
func NewAppService(costingService *costing.Service, agent *ai.Agent) ApplicationService {
	return &appService{costing: costingService, agent: agent}
}

// CalculateCostOfSales runs a FIFO cost-of-sales pass for one tracked good.
func (s *appService) CalculateCostOfSales(ctx context.Context, accountID, asOfDate string) (*CalculationResult, error) {
	var asOf *time.Time
	if asOfDate != "" {
		t, err := time.Parse("2006-01-02", asOfDate)
		if err != nil {
			return nil, fmt.Errorf("invalid as-of date %q (want YYYY-MM-DD): %w", asOfDate, err)
		}
		asOf = &t
	}
	summary, err := s.costing.CalculateCostOfSales(ctx, accountID, asOf)
	if err != nil {
		return nil, err
	}
	return &CalculationResult{Summary: summary}, nil
}

// ResetCostOfSales reverses all synthesized cost-of-sales state for one good.
func (s *appService) ResetCostOfSales(ctx context.Context, accountID string) (*CalculationResult, error) {
	summary, err := s.costing.ResetCostOfSales(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &CalculationResult{Summary: summary}, nil
}

// ListGoods returns all tracked goods.
func (s *appService) ListGoods(ctx context.Context) (*GoodListResult, error) {
	goods, err := s.costing.ListGoods(ctx)
	if err != nil {
		return nil, err
	}
	result := &GoodListResult{}
	for _, g := range goods {
		info := GoodInfo{
			AccountID:    g.ID(),
			Name:         g.Name(),
			ExchangeCode: g.ExchangeCode(),
			NeedsRebuild: g.NeedsRebuild(),
		}
		if t, ok := g.LastCalculationDate(); ok {
			info.LastCalculationDate = t.Format("2006-01-02")
		}
		result.Goods = append(result.Goods, info)
	}
	return result, nil
}

// FlagGoodForRebuild marks a good's calculation state stale.
func (s *appService) FlagGoodForRebuild(ctx context.Context, accountID string) error {
	return s.costing.FlagForRebuild(ctx, accountID)
}

// InterpretOperatorRequest routes a natural language request through the AI
// agent, which either proposes a costing action or asks a question.
func (s *appService) InterpretOperatorRequest(ctx context.Context, text string) (*ActionResult, error) {
	if s.agent == nil {
		return nil, fmt.Errorf("AI agent is not configured (OPENAI_API_KEY unset)")
	}

	goods, err := s.fetchGoodsListing(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch goods listing: %w", err)
	}
	registry := ai.DefaultRegistry(s.listGoodsTool)

	response, err := s.agent.Interpret(ctx, text, goods, registry)
	if err != nil {
		return nil, err
	}
	if response.IsQuestion {
		return &ActionResult{IsQuestion: true, Question: response.Question}, nil
	}
	return &ActionResult{Proposal: response.Proposal}, nil
}

// ExecuteAction executes a previously proposed action after human confirmation.
func (s *appService) ExecuteAction(ctx context.Context, tool, accountID, asOfDate string) (*CalculationResult, error) {
	switch tool {
	case ai.ToolCalculateCostOfSales:
		return s.CalculateCostOfSales(ctx, accountID, asOfDate)
	case ai.ToolResetCostOfSales:
		return s.ResetCostOfSales(ctx, accountID)
	default:
		return nil, fmt.Errorf("unknown action %q", tool)
	}
}

// ── private helpers ───────────────────────────────────────────────────────────

// fetchGoodsListing renders the tracked goods as a formatted string for the
// AI prompt.
func (s *appService) fetchGoodsListing(ctx context.Context) (string, error) {
	result, err := s.ListGoods(ctx)
	if err != nil {
		return "", err
	}
	var lines []string
	for _, g := range result.Goods {
		line := fmt.Sprintf("- %s %s", g.AccountID, g.Name)
		if g.NeedsRebuild {
			line += " (needs_rebuild)"
		}
		if g.LastCalculationDate != "" {
			line += " (last calculated " + g.LastCalculationDate + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// listGoodsTool is the read-tool handler backing the agent's list_goods call.
func (s *appService) listGoodsTool(ctx context.Context, _ map[string]any) (string, error) {
	result, err := s.ListGoods(ctx)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(result.Goods)
	if err != nil {
		return "", fmt.Errorf("failed to encode goods: %w", err)
	}
	return string(raw), nil
}
