package qonto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount is one account of the organization.
type BankAccount struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	IBAN     string `json:"iban"` // may be empty for external accounts
	BIC      string `json:"bic"`
	Currency string `json:"currency"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Main     bool   `json:"main"`
	External bool   `json:"is_external_account"`
}

// Organization is the subset of the organization details the splitter uses.
type Organization struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Slug         string        `json:"slug"`
	BankAccounts []BankAccount `json:"bank_accounts"`
}

type organizationWrapper struct {
	Organization Organization `json:"organization"`
}

// Counterparty identifies the other side of a transaction. It is only
// populated for matching operation types (income among them).
type Counterparty struct {
	AccountNumber  string `json:"counterparty_account_number"`
	BankIdentifier string `json:"counterparty_bank_identifier"`
}

// Transaction is one bank transaction as returned by the transactions
// endpoint. Immutable once fetched within a run.
type Transaction struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Side          string          `json:"side"`
	OperationType string          `json:"operation_type"`
	Currency      string          `json:"currency"`
	Label         string          `json:"label"`
	Reference     string          `json:"reference"`
	EmittedAt     time.Time       `json:"emitted_at"`
	SettledAt     *time.Time      `json:"settled_at"`
	Status        string          `json:"status"`
	BankAccountID string          `json:"bank_account_id"`
	Income        *Counterparty   `json:"income"`
}

// CounterpartyAccountNumber returns the income counterparty's account number,
// or "" when the transaction carries none.
func (t Transaction) CounterpartyAccountNumber() string {
	if t.Income == nil {
		return ""
	}
	return t.Income.AccountNumber
}

type pagination struct {
	CurrentPage int  `json:"current_page"`
	NextPage    *int `json:"next_page"`
	TotalPages  int  `json:"total_pages"`
	TotalCount  int  `json:"total_count"`
	PerPage     int  `json:"per_page"`
}

type transactionsPage struct {
	Transactions []Transaction `json:"transactions"`
	Meta         pagination    `json:"meta"`
}

// TransferRequest describes one internal transfer. IdempotencyKey is minted
// by the caller once per logical withdrawal and reused across retries, so a
// retried request cannot be applied twice by the provider.
type TransferRequest struct {
	DebitIBAN      string
	CreditIBAN     string
	Reference      string
	Amount         decimal.Decimal
	IdempotencyKey string
}

// Transfer is the provider's confirmation of an internal transfer.
type Transfer struct {
	ID        string          `json:"id"`
	Slug      string          `json:"slug"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Reference string          `json:"reference"`
	CreatedAt time.Time       `json:"created_at"`
}

type transferPayload struct {
	InternalTransfer transferBody `json:"internal_transfer"`
}

type transferBody struct {
	DebitIBAN  string `json:"debit_iban"`
	CreditIBAN string `json:"credit_iban"`
	Reference  string `json:"reference"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
}
