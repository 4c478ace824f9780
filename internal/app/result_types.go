package app

import (
	"inventory-costing/internal/ai"
	"inventory-costing/internal/costing"
)

// CalculationResult is returned by calculation, reset, and action execution.
type CalculationResult struct {
	Summary costing.Summary
}

// GoodInfo is one tracked good as shown to operators.
type GoodInfo struct {
	AccountID           string `json:"account_id"`
	Name                string `json:"name"`
	ExchangeCode        string `json:"exchange_code,omitempty"`
	NeedsRebuild        bool   `json:"needs_rebuild"`
	LastCalculationDate string `json:"last_calculation_date,omitempty"`
}

// GoodListResult is returned by ListGoods.
type GoodListResult struct {
	Goods []GoodInfo
}

// ActionResult is returned by InterpretOperatorRequest.
type ActionResult struct {
	Proposal   *ai.ActionProposal
	Question   string
	IsQuestion bool
}
