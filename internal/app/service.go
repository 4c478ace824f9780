package app

import "context"

// ApplicationService is the single interface all delivery adapters (web
// webhook, CLI, AI) call. It decouples delivery from the costing engine.
// Implementations must contain no fmt.Println, no ANSI codes, and no display
// logic of any kind.
type ApplicationService interface {
	// CalculateCostOfSales runs a FIFO cost-of-sales pass for one tracked
	// good. asOfDate is optional ("" means today in the book's time zone).
	CalculateCostOfSales(ctx context.Context, accountID, asOfDate string) (*CalculationResult, error)

	// ResetCostOfSales reverses all synthesized cost-of-sales state for one
	// tracked good.
	ResetCostOfSales(ctx context.Context, accountID string) (*CalculationResult, error)

	// ListGoods returns all tracked goods with their rebuild flag and last
	// calculation date.
	ListGoods(ctx context.Context) (*GoodListResult, error)

	// FlagGoodForRebuild marks a good's calculation state stale, e.g. when a
	// webhook reports a source purchase was edited after calculation.
	FlagGoodForRebuild(ctx context.Context, accountID string) error

	// InterpretOperatorRequest routes a natural language request through the
	// AI agent. The agent either proposes a costing action for human
	// confirmation or asks a clarifying question.
	InterpretOperatorRequest(ctx context.Context, text string) (*ActionResult, error)

	// ExecuteAction executes a previously proposed action after human
	// confirmation.
	ExecuteAction(ctx context.Context, tool, accountID, asOfDate string) (*CalculationResult, error)
}
