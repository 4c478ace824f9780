package costing_test

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"inventory-costing/internal/ledger"
)

// fakeLedger is an in-memory ledger.Service. It evaluates the query forms the
// engine renders (account:'NAME', after:, before:, remote_id:) and hands out
// defensive copies, so in-memory mutation of listed records never reaches the
// stored state until a batch commit lands.
type fakeLedger struct {
	books    map[string]*ledger.Book
	accounts map[string][]*ledger.Account
	txs      map[string][]*ledger.Transaction

	nextID int
	clock  time.Time

	// created tracks platform-assigned ids per book, in creation order.
	created map[string][]string
	// updateBatches records the ids of every batch update, per call.
	updateBatches [][]string
	// calls records each mutating batch call as "<op> <bookID>".
	calls []string

	createCalls        int
	updateCalls        int
	trashCalls         int
	updateAccountCalls int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		books:    map[string]*ledger.Book{},
		accounts: map[string][]*ledger.Account{},
		txs:      map[string][]*ledger.Transaction{},
		created:  map[string][]string{},
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeLedger) addBook(b *ledger.Book) { f.books[b.ID] = b }

func (f *fakeLedger) addAccount(bookID string, a *ledger.Account) {
	f.accounts[bookID] = append(f.accounts[bookID], a)
}

// seed stores a transaction, filling in the id, numeric date value, and a
// strictly increasing creation time when absent.
func (f *fakeLedger) seed(bookID string, tx *ledger.Transaction) {
	if tx.ID == "" {
		f.nextID++
		tx.ID = fmt.Sprintf("tx-%d", f.nextID)
	}
	if tx.DateValue == 0 {
		tx.DateValue = dateValueOf(tx.Date)
	}
	if tx.CreatedAt.IsZero() {
		f.clock = f.clock.Add(time.Second)
		tx.CreatedAt = f.clock
	}
	f.txs[bookID] = append(f.txs[bookID], cloneTx(tx))
}

// stored returns the live stored record, for assertions.
func (f *fakeLedger) stored(bookID, id string) *ledger.Transaction {
	for _, tx := range f.txs[bookID] {
		if tx.ID == id {
			return tx
		}
	}
	return nil
}

// storedAccount returns the live stored account, for assertions.
func (f *fakeLedger) storedAccount(bookID, id string) *ledger.Account {
	for _, a := range f.accounts[bookID] {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (f *fakeLedger) mutationCalls() int {
	return f.createCalls + f.updateCalls + f.trashCalls + f.updateAccountCalls
}

// ── ledger.Service ────────────────────────────────────────────────────────────

func (f *fakeLedger) GetBook(_ context.Context, bookID string) (*ledger.Book, error) {
	b, ok := f.books[bookID]
	if !ok {
		return nil, fmt.Errorf("book %s not found", bookID)
	}
	copied := *b
	return &copied, nil
}

func (f *fakeLedger) GetAccount(_ context.Context, bookID, ref string) (*ledger.Account, error) {
	for _, a := range f.accounts[bookID] {
		if a.ID == ref || a.Name == ref {
			return cloneAccount(a), nil
		}
	}
	return nil, fmt.Errorf("account %s not found in book %s", ref, bookID)
}

func (f *fakeLedger) ListAccounts(_ context.Context, bookID string) ([]*ledger.Account, error) {
	out := make([]*ledger.Account, 0, len(f.accounts[bookID]))
	for _, a := range f.accounts[bookID] {
		out = append(out, cloneAccount(a))
	}
	return out, nil
}

func (f *fakeLedger) UpdateAccount(_ context.Context, bookID string, account *ledger.Account) (*ledger.Account, error) {
	f.updateAccountCalls++
	for i, a := range f.accounts[bookID] {
		if a.ID == account.ID {
			f.accounts[bookID][i] = cloneAccount(account)
			return cloneAccount(account), nil
		}
	}
	return nil, fmt.Errorf("account %s not found in book %s", account.ID, bookID)
}

func (f *fakeLedger) ListTransactions(_ context.Context, bookID, query string) ([]*ledger.Transaction, error) {
	q := parseQuery(query)
	var out []*ledger.Transaction
	for _, tx := range f.txs[bookID] {
		if tx.Trashed {
			continue
		}
		if q.account != "" && !tx.DebitsAccount(q.account) && !tx.CreditsAccount(q.account) {
			continue
		}
		// ISO dates compare lexicographically; both bounds are exclusive.
		if q.after != "" && tx.Date <= q.after {
			continue
		}
		if q.before != "" && tx.Date >= q.before {
			continue
		}
		if q.remoteID != "" && !tx.HasRemoteID(q.remoteID) {
			continue
		}
		out = append(out, cloneTx(tx))
	}
	return out, nil
}

func (f *fakeLedger) CreateTransactions(_ context.Context, bookID string, txs []*ledger.Transaction) ([]*ledger.Transaction, error) {
	f.createCalls++
	f.calls = append(f.calls, "create "+bookID)
	out := make([]*ledger.Transaction, 0, len(txs))
	for _, tx := range txs {
		created := cloneTx(tx)
		f.nextID++
		created.ID = fmt.Sprintf("tx-%d", f.nextID)
		if created.DateValue == 0 {
			created.DateValue = dateValueOf(created.Date)
		}
		f.clock = f.clock.Add(time.Second)
		created.CreatedAt = f.clock
		f.txs[bookID] = append(f.txs[bookID], created)
		f.created[bookID] = append(f.created[bookID], created.ID)
		out = append(out, cloneTx(created))
	}
	return out, nil
}

func (f *fakeLedger) UpdateTransactions(_ context.Context, bookID string, txs []*ledger.Transaction) error {
	f.updateCalls++
	f.calls = append(f.calls, "update "+bookID)
	var ids []string
	for _, tx := range txs {
		ids = append(ids, tx.ID)
		found := false
		for i, stored := range f.txs[bookID] {
			if stored.ID == tx.ID {
				f.txs[bookID][i] = cloneTx(tx)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("update of unknown transaction %s in book %s", tx.ID, bookID)
		}
	}
	f.updateBatches = append(f.updateBatches, ids)
	return nil
}

func (f *fakeLedger) TrashTransactions(_ context.Context, bookID string, ids []string) error {
	f.trashCalls++
	f.calls = append(f.calls, "trash "+bookID)
	for _, id := range ids {
		tx := f.stored(bookID, id)
		if tx == nil {
			return fmt.Errorf("trash of unknown transaction %s in book %s", id, bookID)
		}
		tx.Trashed = true
	}
	return nil
}

// ── query parsing and cloning ─────────────────────────────────────────────────

var accountPattern = regexp.MustCompile(`account:'([^']*)'`)

type parsedQuery struct {
	account  string
	after    string
	before   string
	remoteID string
}

func parseQuery(raw string) parsedQuery {
	var q parsedQuery
	if m := accountPattern.FindStringSubmatch(raw); m != nil {
		q.account = m[1]
		raw = strings.Replace(raw, m[0], "", 1)
	}
	for _, field := range strings.Fields(raw) {
		switch {
		case strings.HasPrefix(field, "after:"):
			q.after = strings.TrimPrefix(field, "after:")
		case strings.HasPrefix(field, "before:"):
			q.before = strings.TrimPrefix(field, "before:")
		case strings.HasPrefix(field, "remote_id:"):
			q.remoteID = strings.TrimPrefix(field, "remote_id:")
		}
	}
	return q
}

func dateValueOf(date string) int64 {
	n, _ := strconv.ParseInt(strings.ReplaceAll(date, "-", ""), 10, 64)
	return n
}

func cloneTx(tx *ledger.Transaction) *ledger.Transaction {
	copied := *tx
	if tx.Properties != nil {
		copied.Properties = make(map[string]string, len(tx.Properties))
		for k, v := range tx.Properties {
			copied.Properties[k] = v
		}
	}
	copied.RemoteIDs = append([]string(nil), tx.RemoteIDs...)
	if tx.Debit != nil {
		debit := *tx.Debit
		copied.Debit = &debit
	}
	if tx.Credit != nil {
		credit := *tx.Credit
		copied.Credit = &credit
	}
	return &copied
}

func cloneAccount(a *ledger.Account) *ledger.Account {
	copied := *a
	if a.Properties != nil {
		copied.Properties = make(map[string]string, len(a.Properties))
		for k, v := range a.Properties {
			copied.Properties[k] = v
		}
	}
	return &copied
}
