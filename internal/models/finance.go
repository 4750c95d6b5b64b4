package models

// Transaction kinds for the household ledger.
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Transaction is a single ledger entry. Amount is always non-negative;
// Kind determines the sign when summarizing.
type Transaction struct {
	ID     string `json:"id"`
	Date   string `json:"date"` // ISO date, YYYY-MM-DD
	Item   string `json:"item"`
	Amount int64  `json:"amount"`
	Kind   string `json:"kind"`
}

// LedgerSummary holds month-to-date totals for the finance card.
type LedgerSummary struct {
	Balance int64 `json:"balance"`
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
}

// LedgerSync reports the outcome of a workbook import from Drive.
type LedgerSync struct {
	Imported int    `json:"imported"`
	SheetURL string `json:"sheet_url,omitempty"`
	SyncedAt string `json:"synced_at"`
}
