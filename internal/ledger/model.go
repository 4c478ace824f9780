package ledger

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the ledger platform's normalized account classification.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Incoming  AccountType = "INCOMING"
	Outgoing  AccountType = "OUTGOING"
)

// Book is one double-entry ledger on the platform. A deployment pairs a
// financial book with an inventory book sharing account names.
type Book struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	TimeZone       string            `json:"time_zone"`
	FractionDigits int32             `json:"fraction_digits"`
	Properties     map[string]string `json:"properties,omitempty"`
}

// Location returns the book's time zone, falling back to UTC when the
// platform sends a zone this host cannot resolve.
func (b *Book) Location() *time.Location {
	if b.TimeZone != "" {
		if loc, err := time.LoadLocation(b.TimeZone); err == nil {
			return loc
		}
	}
	return time.UTC
}

// ParseDate parses a YYYY-MM-DD transaction date in the book's time zone.
func (b *Book) ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, b.Location())
}

// FormatDate renders t as a YYYY-MM-DD string in the book's time zone.
func (b *Book) FormatDate(t time.Time) string {
	return t.In(b.Location()).Format("2006-01-02")
}

// Round rounds d to the book's configured fractional-digit precision.
func (b *Book) Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(b.FractionDigits)
}

// Account is a ledger account. In the inventory book an account of type
// Asset represents one tracked good.
type Account struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Type       AccountType       `json:"type"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Property returns the named account property, or "" when absent.
func (a *Account) Property(key string) string {
	return a.Properties[key]
}

// SetProperty sets an account property. Persisted only via Service.UpdateAccount.
func (a *Account) SetProperty(key, value string) {
	if a.Properties == nil {
		a.Properties = map[string]string{}
	}
	a.Properties[key] = value
}

// DeleteProperty removes an account property.
func (a *Account) DeleteProperty(key string) {
	delete(a.Properties, key)
}

// AccountRef is the debit or credit side of a transaction.
type AccountRef struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Type AccountType `json:"type"`
}

// Transaction is one ledger posting. Amount means quantity in the inventory
// book and money in the financial book; all arithmetic is decimal.
type Transaction struct {
	ID          string            `json:"id,omitempty"`
	Date        string            `json:"date"` // YYYY-MM-DD in the book's time zone
	DateValue   int64             `json:"date_value"`
	CreatedAt   time.Time         `json:"created_at"`
	Amount      decimal.Decimal   `json:"amount"`
	Description string            `json:"description,omitempty"`
	Debit       *AccountRef       `json:"debit,omitempty"`
	Credit      *AccountRef       `json:"credit,omitempty"`
	Properties  map[string]string `json:"properties,omitempty"`
	RemoteIDs   []string          `json:"remote_ids,omitempty"`
	AgentID     string            `json:"agent_id,omitempty"`
	Checked     bool              `json:"checked"`
	Trashed     bool              `json:"trashed"`
	Locked      bool              `json:"locked"`
}

// Property returns the named transaction property, or "" when absent.
func (t *Transaction) Property(key string) string {
	return t.Properties[key]
}

// HasProperty reports whether the transaction carries the named property.
func (t *Transaction) HasProperty(key string) bool {
	_, ok := t.Properties[key]
	return ok
}

// SetProperty sets a transaction property on the in-memory copy.
func (t *Transaction) SetProperty(key, value string) {
	if t.Properties == nil {
		t.Properties = map[string]string{}
	}
	t.Properties[key] = value
}

// DeleteProperty removes a transaction property.
func (t *Transaction) DeleteProperty(key string) {
	delete(t.Properties, key)
}

// DecimalProperty parses the named property as a decimal, or returns zero.
func (t *Transaction) DecimalProperty(key string) decimal.Decimal {
	d, err := decimal.NewFromString(t.Properties[key])
	if err != nil {
		return decimal.Zero
	}
	return d
}

// IntProperty parses the named property as an integer, defaulting to 0.
func (t *Transaction) IntProperty(key string) int64 {
	n, err := strconv.ParseInt(t.Properties[key], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// AddRemoteID appends a cross-reference id if not already present.
func (t *Transaction) AddRemoteID(id string) {
	for _, r := range t.RemoteIDs {
		if r == id {
			return
		}
	}
	t.RemoteIDs = append(t.RemoteIDs, id)
}

// HasRemoteID reports whether the transaction carries the given cross-reference.
func (t *Transaction) HasRemoteID(id string) bool {
	for _, r := range t.RemoteIDs {
		if r == id {
			return true
		}
	}
	return false
}

// DebitsAccount reports whether the transaction's debit side is the named account.
func (t *Transaction) DebitsAccount(name string) bool {
	return t.Debit != nil && t.Debit.Name == name
}

// CreditsAccount reports whether the transaction's credit side is the named account.
func (t *Transaction) CreditsAccount(name string) bool {
	return t.Credit != nil && t.Credit.Name == name
}

// DateValueOf converts a time to the platform's numeric date form (YYYYMMDD),
// the primary FIFO ordering key.
func DateValueOf(t time.Time) int64 {
	return int64(t.Year())*10000 + int64(t.Month())*100 + int64(t.Day())
}
