package costing

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"inventory-costing/internal/ledger"
)

// Config binds the engine to a financial/inventory book pair.
type Config struct {
	FinancialBookID string
	InventoryBookID string
	// COGSAccountName is the fixed financial account debited by synthesized
	// cost-of-sale postings.
	COGSAccountName string
	// CostWindowMonths bounds the search for additional costs and credit
	// notes around each lot's purchase date.
	CostWindowMonths int
}

const (
	defaultCOGSAccountName  = "Cost of goods sold"
	defaultCostWindowMonths = 3
)

func (c Config) withDefaults() Config {
	if c.COGSAccountName == "" {
		c.COGSAccountName = defaultCOGSAccountName
	}
	if c.CostWindowMonths <= 0 {
		c.CostWindowMonths = defaultCostWindowMonths
	}
	return c
}

// ConfigFromEnv reads the engine configuration from the environment.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		FinancialBookID: os.Getenv("FINANCIAL_BOOK_ID"),
		InventoryBookID: os.Getenv("INVENTORY_BOOK_ID"),
		COGSAccountName: os.Getenv("COGS_ACCOUNT"),
	}
	if cfg.FinancialBookID == "" || cfg.InventoryBookID == "" {
		return Config{}, fmt.Errorf("FINANCIAL_BOOK_ID and INVENTORY_BOOK_ID environment variables must be set")
	}
	if raw := os.Getenv("COST_WINDOW_MONTHS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid COST_WINDOW_MONTHS %q: %w", raw, err)
		}
		cfg.CostWindowMonths = n
	}
	return cfg, nil
}

// Service computes cost of goods sold for tracked goods by matching sales
// against purchase lots in FIFO order. One invocation runs one synchronous
// pass over one account; invocations for different accounts are independent,
// concurrent invocations for the same account must be serialized by the
// caller.
type Service struct {
	ledger ledger.Service
	cfg    Config
}

// NewService constructs the engine on top of the external ledger service.
func NewService(svc ledger.Service, cfg Config) *Service {
	return &Service{ledger: svc, cfg: cfg.withDefaults()}
}

// pass carries the per-invocation state: the book pair, the good under
// calculation, the lazily resolved financial counterpart account, and the
// mutation buffer.
type pass struct {
	ledger  ledger.Service
	cfg     Config
	finBook *ledger.Book
	invBook *ledger.Book
	good    *Good
	proc    *Processor

	finAccount *ledger.Account
}

func (s *Service) newPass(ctx context.Context, accountID string) (*pass, error) {
	invBook, err := s.ledger.GetBook(ctx, s.cfg.InventoryBookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory book: %w", err)
	}
	finBook, err := s.ledger.GetBook(ctx, s.cfg.FinancialBookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load financial book: %w", err)
	}
	account, err := s.ledger.GetAccount(ctx, invBook.ID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory account %s: %w", accountID, err)
	}
	return &pass{
		ledger:  s.ledger,
		cfg:     s.cfg,
		finBook: finBook,
		invBook: invBook,
		good:    NewGood(account),
		proc:    NewProcessor(s.ledger, invBook.ID, finBook.ID),
	}, nil
}

// financialAccount resolves the good's counterpart account in the financial
// book, which shares the good's name.
func (p *pass) financialAccount(ctx context.Context) (*ledger.Account, error) {
	if p.finAccount != nil {
		return p.finAccount, nil
	}
	account, err := p.ledger.GetAccount(ctx, p.finBook.ID, p.good.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve financial account for %s: %w", p.good.Name(), err)
	}
	p.finAccount = account
	return account, nil
}

// CalculateCostOfSales runs one FIFO matching pass for the given inventory
// account as of the given date (today in the book's time zone when nil).
// All validation happens before any mutation is staged and all mutation lands
// in one batched commit, so a returned error summary implies the ledger was
// not touched. Idempotent given identical ledger state: matched records are
// checked and excluded from later passes.
func (s *Service) CalculateCostOfSales(ctx context.Context, accountID string, asOf *time.Time) (Summary, error) {
	p, err := s.newPass(ctx, accountID)
	if err != nil {
		return Summary{}, err
	}

	// A stale account must be reset before its costs can be recomputed;
	// matching is not attempted in the same invocation.
	if p.good.NeedsRebuild() {
		if sum, err := s.reset(ctx, p); err != nil || sum.IsError {
			return sum, err
		}
		return summaryOK(p.good.ID(), msgRebuildRequired), nil
	}

	asOfDate := time.Now().In(p.invBook.Location())
	if asOf != nil {
		asOfDate = *asOf
	}

	b, err := p.classify(ctx, asOfDate)
	if err != nil {
		return Summary{}, err
	}
	if len(b.sales) == 0 {
		return summaryOK(p.good.ID(), msgNothing), nil
	}
	if b.totalSold.GreaterThan(b.totalPurchased) {
		return summaryError(p.good.ID(), msgQuantityError), nil
	}

	if errSum := p.applyCreditNotes(b); errSum != nil {
		return *errSum, nil
	}

	lots := make([]*ledger.Transaction, 0, len(b.purchases))
	for _, lot := range b.purchases {
		lots = append(lots, lot)
	}
	sortFIFO(lots)
	sortFIFO(b.sales)

	unmatched := 0
	for _, sale := range b.sales {
		matched, err := p.matchSale(ctx, sale, lots)
		if err != nil {
			return Summary{}, err
		}
		if !matched {
			unmatched++
		}
	}

	// Locks abort before anything is committed; a partial commit would
	// leave FIFO state inconsistent.
	if p.proc.HasLockedTransaction() {
		return summaryError(p.good.ID(), msgLockError), nil
	}
	if err := p.proc.Commit(ctx); err != nil {
		return Summary{}, fmt.Errorf("commit failed: %w", err)
	}

	p.good.SetLastCalculationDate(p.invBook, asOfDate)
	if _, err := s.ledger.UpdateAccount(ctx, p.invBook.ID, p.good.Account()); err != nil {
		return Summary{}, fmt.Errorf("failed to store last calculation date: %w", err)
	}

	sum := summaryOK(p.good.ID(), msgCalculated)
	if unmatched > 0 {
		sum = sum.withWarning("%d sale(s) left unmatched; purchase lots changed during the pass", unmatched)
	}
	return sum, nil
}

// ResetCostOfSales undoes all state synthesized for the account so a
// recomputation can restart from source data.
func (s *Service) ResetCostOfSales(ctx context.Context, accountID string) (Summary, error) {
	p, err := s.newPass(ctx, accountID)
	if err != nil {
		return Summary{}, err
	}
	return s.reset(ctx, p)
}

// ListGoods returns every tracked good in the inventory book.
func (s *Service) ListGoods(ctx context.Context) ([]*Good, error) {
	accounts, err := s.ledger.ListAccounts(ctx, s.cfg.InventoryBookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory accounts: %w", err)
	}
	var goods []*Good
	for _, a := range accounts {
		if a.Type == ledger.Asset {
			goods = append(goods, NewGood(a))
		}
	}
	return goods, nil
}

// FlagForRebuild marks the good's calculation state stale. The next
// calculation for the account will reset before recomputing.
func (s *Service) FlagForRebuild(ctx context.Context, accountID string) error {
	account, err := s.ledger.GetAccount(ctx, s.cfg.InventoryBookID, accountID)
	if err != nil {
		return fmt.Errorf("failed to load inventory account %s: %w", accountID, err)
	}
	good := NewGood(account)
	if good.NeedsRebuild() {
		return nil
	}
	good.SetNeedsRebuild(true)
	if _, err := s.ledger.UpdateAccount(ctx, s.cfg.InventoryBookID, account); err != nil {
		return fmt.Errorf("failed to flag account %s for rebuild: %w", accountID, err)
	}
	return nil
}
