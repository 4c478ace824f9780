package costing

import (
	"context"
	"fmt"

	"inventory-costing/internal/ledger"
	"github.com/google/uuid"
)

// Processor is the batch mutation buffer. All writes of a pass are staged
// here and land in a single Commit; validation failures before Commit
// therefore never leave partial state behind.
//
// Creates are keyed by a locally generated temporary id (no real id exists
// yet), updates and trashes by the real ledger id. Staging the same record
// twice overwrites the earlier staging, so repeated mutation of one record
// collapses into one operation.
type Processor struct {
	svc       ledger.Service
	invBookID string
	finBookID string

	invCreates *stagedSet
	invUpdates *stagedSet
	finCreates *stagedSet
	finUpdates *stagedSet
	invTrash   *stagedSet
	finTrash   *stagedSet

	locked bool
}

// NewProcessor creates an empty buffer bound to the inventory/financial book pair.
func NewProcessor(svc ledger.Service, invBookID, finBookID string) *Processor {
	return &Processor{
		svc:        svc,
		invBookID:  invBookID,
		finBookID:  finBookID,
		invCreates: newStagedSet(),
		invUpdates: newStagedSet(),
		finCreates: newStagedSet(),
		finUpdates: newStagedSet(),
		invTrash:   newStagedSet(),
		finTrash:   newStagedSet(),
	}
}

// Observe records that a transaction was touched by the pass, tracking
// administrative locks. The matcher polls HasLockedTransaction before Commit.
func (p *Processor) Observe(tx *ledger.Transaction) {
	if tx.Locked {
		p.locked = true
	}
}

// HasLockedTransaction reports whether any touched record was locked.
func (p *Processor) HasLockedTransaction() bool { return p.locked }

// IsEmpty reports whether nothing has been staged.
func (p *Processor) IsEmpty() bool {
	return p.invCreates.len()+p.invUpdates.len()+p.finCreates.len()+
		p.finUpdates.len()+p.invTrash.len()+p.finTrash.len() == 0
}

// StageInventoryCreate stages a new inventory transaction and returns its
// temporary id. The record is sent with a temp remote id so the created
// ledger record stays correlated with the staged object.
func (p *Processor) StageInventoryCreate(tx *ledger.Transaction) string {
	tempID := uuid.NewString()
	tx.AgentID = AgentID
	tx.AddRemoteID(tempRemoteID(tempID))
	p.invCreates.put(tempID, tx)
	return tempID
}

// StageInventoryUpdate stages an update to an existing inventory transaction.
func (p *Processor) StageInventoryUpdate(tx *ledger.Transaction) {
	p.Observe(tx)
	p.invUpdates.put(tx.ID, tx)
}

// StageInventoryTrash stages an inventory transaction for deletion.
func (p *Processor) StageInventoryTrash(tx *ledger.Transaction) {
	p.Observe(tx)
	p.invTrash.put(tx.ID, tx)
}

// StageFinancialCreate stages a new financial posting and returns its temporary id.
func (p *Processor) StageFinancialCreate(tx *ledger.Transaction) string {
	tempID := uuid.NewString()
	tx.AgentID = AgentID
	tx.AddRemoteID(tempRemoteID(tempID))
	p.finCreates.put(tempID, tx)
	return tempID
}

// StageFinancialUpdate stages an update to an existing financial posting.
func (p *Processor) StageFinancialUpdate(tx *ledger.Transaction) {
	p.Observe(tx)
	p.finUpdates.put(tx.ID, tx)
}

// StageFinancialTrash stages a financial posting for deletion.
func (p *Processor) StageFinancialTrash(tx *ledger.Transaction) {
	p.Observe(tx)
	p.finTrash.put(tx.ID, tx)
}

// Commit applies all staged mutations: creates, then updates, then trashes,
// then re-links temporary ids to the platform-assigned real ids. Updates may
// reference newly created records and re-linking needs the create responses,
// so the order is fixed. A ledger failure mid-commit propagates as a hard
// error; the caller re-runs the full pass, which the checked-flag guards make
// idempotent.
func (p *Processor) Commit(ctx context.Context) error {
	if p.locked {
		return fmt.Errorf("refusing to commit: locked transaction staged")
	}

	if err := p.commitCreates(ctx, p.invBookID, p.invCreates); err != nil {
		return fmt.Errorf("inventory create batch: %w", err)
	}
	if err := p.commitUpdates(ctx, p.invBookID, p.invUpdates); err != nil {
		return fmt.Errorf("inventory update batch: %w", err)
	}
	if err := p.commitCreates(ctx, p.finBookID, p.finCreates); err != nil {
		return fmt.Errorf("financial create batch: %w", err)
	}
	if err := p.commitUpdates(ctx, p.finBookID, p.finUpdates); err != nil {
		return fmt.Errorf("financial update batch: %w", err)
	}
	if err := p.commitTrashes(ctx, p.invBookID, p.invTrash); err != nil {
		return fmt.Errorf("inventory trash batch: %w", err)
	}
	if err := p.commitTrashes(ctx, p.finBookID, p.finTrash); err != nil {
		return fmt.Errorf("financial trash batch: %w", err)
	}
	return nil
}

func (p *Processor) commitCreates(ctx context.Context, bookID string, set *stagedSet) error {
	if set.len() == 0 {
		return nil
	}
	created, err := p.svc.CreateTransactions(ctx, bookID, set.values())
	if err != nil {
		return err
	}
	// Resolve each temporary id back to its staged object and attach the
	// real id, so later phases can address the record by id.
	for i, tempID := range set.keys {
		set.byKey[tempID].ID = created[i].ID
	}
	return nil
}

func (p *Processor) commitUpdates(ctx context.Context, bookID string, set *stagedSet) error {
	if set.len() == 0 {
		return nil
	}
	return p.svc.UpdateTransactions(ctx, bookID, set.values())
}

func (p *Processor) commitTrashes(ctx context.Context, bookID string, set *stagedSet) error {
	if set.len() == 0 {
		return nil
	}
	ids := make([]string, 0, set.len())
	for _, tx := range set.values() {
		ids = append(ids, tx.ID)
	}
	return p.svc.TrashTransactions(ctx, bookID, ids)
}

// stagedSet is an insertion-ordered map of staged transactions.
type stagedSet struct {
	byKey map[string]*ledger.Transaction
	keys  []string
}

func newStagedSet() *stagedSet {
	return &stagedSet{byKey: map[string]*ledger.Transaction{}}
}

func (s *stagedSet) put(key string, tx *ledger.Transaction) {
	if _, ok := s.byKey[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.byKey[key] = tx
}

func (s *stagedSet) len() int { return len(s.byKey) }

func (s *stagedSet) values() []*ledger.Transaction {
	out := make([]*ledger.Transaction, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.byKey[k])
	}
	return out
}
