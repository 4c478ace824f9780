package costing

import "fmt"

// Outcome messages surfaced to callers. Data-invariant violations and
// concurrency conflicts travel as error summaries, never as Go errors, so
// delivery adapters can show them without unwrapping.
const (
	msgCalculated      = "Calculated"
	msgReseted         = "Reseted"
	msgRebuildRequired = "Account needs rebuild: reseting..."
	msgNothing         = "Nothing to calculate"
	msgQuantityError   = "Cannot proceed: sales quantity is greater than quantity purchased"
	msgCreditNoteError = "Cannot proceed: credit note quantity is greater than quantity purchased"
	msgLockError       = "Cannot proceed: collection has locked/closed book(s)"
)

// Summary is the per-invocation result of a calculation or reset. It is
// transient and never persisted.
type Summary struct {
	AccountID string `json:"account_id"`
	Message   string `json:"message"`
	IsError   bool   `json:"is_error"`
}

func summaryOK(accountID, message string) Summary {
	return Summary{AccountID: accountID, Message: message}
}

func summaryError(accountID, message string) Summary {
	return Summary{AccountID: accountID, Message: message, IsError: true}
}

// withWarning appends a soft warning to a non-error summary.
func (s Summary) withWarning(format string, args ...any) Summary {
	s.Message = s.Message + " (warning: " + fmt.Sprintf(format, args...) + ")"
	return s
}
