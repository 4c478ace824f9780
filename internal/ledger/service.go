package ledger

import (
	"context"
	"fmt"
	"strings"
)

// Service is the surface of the external ledger platform this engine consumes.
// The platform owns all persistence; the engine only reads, stages, and commits
// batches through it.
type Service interface {
	// GetBook returns book metadata (time zone, precision).
	GetBook(ctx context.Context, bookID string) (*Book, error)

	// GetAccount looks up an account by id or name.
	GetAccount(ctx context.Context, bookID, ref string) (*Account, error)

	// ListAccounts returns all accounts of a book.
	ListAccounts(ctx context.Context, bookID string) ([]*Account, error)

	// UpdateAccount persists account property changes.
	UpdateAccount(ctx context.Context, bookID string, account *Account) (*Account, error)

	// ListTransactions evaluates a platform query expression, e.g.
	// account:'Widget' after:2024-01-01 before:2024-04-01. Trashed
	// transactions are never returned.
	ListTransactions(ctx context.Context, bookID, query string) ([]*Transaction, error)

	// CreateTransactions batch-creates transactions and returns them with
	// platform-assigned ids, in input order.
	CreateTransactions(ctx context.Context, bookID string, txs []*Transaction) ([]*Transaction, error)

	// UpdateTransactions batch-updates existing transactions (amount,
	// properties, checked flag, remote ids).
	UpdateTransactions(ctx context.Context, bookID string, txs []*Transaction) error

	// TrashTransactions batch-moves transactions to the book's trash.
	TrashTransactions(ctx context.Context, bookID string, ids []string) error
}

// Query builds a platform query expression from parts.
type Query struct {
	Account  string
	After    string // exclusive lower date bound, YYYY-MM-DD
	Before   string // exclusive upper date bound, YYYY-MM-DD
	RemoteID string
}

// String renders the query in platform syntax. Account names are quoted since
// they may contain spaces.
func (q Query) String() string {
	var parts []string
	if q.Account != "" {
		parts = append(parts, fmt.Sprintf("account:'%s'", q.Account))
	}
	if q.After != "" {
		parts = append(parts, "after:"+q.After)
	}
	if q.Before != "" {
		parts = append(parts, "before:"+q.Before)
	}
	if q.RemoteID != "" {
		parts = append(parts, "remote_id:"+q.RemoteID)
	}
	return strings.Join(parts, " ")
}
