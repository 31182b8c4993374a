package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConfigKey names one run-scoped setting stored in the configs table.
type ConfigKey string

const (
	KeyTargetAccount           ConfigKey = "target_account"
	KeyWithdrawalReference     ConfigKey = "withdrawal_reference"
	KeyVATMode                 ConfigKey = "vat_mode"
	KeyExcludeInternalAccounts ConfigKey = "exclude_internal_accounts"
	KeySplitAmount             ConfigKey = "split_amount"
)

// RequiredKeys returns the settings that must exist before a split run may
// execute. A missing key is a setup error, not a run error.
func RequiredKeys() []ConfigKey {
	return []ConfigKey{
		KeyTargetAccount,
		KeyWithdrawalReference,
		KeyVATMode,
		KeyExcludeInternalAccounts,
		KeySplitAmount,
	}
}

// Exclusion is a bank identifier whose incoming transactions are never split.
// IBANHash is a one-way salted hash; the plaintext IBAN is never stored.
type Exclusion struct {
	ID        int64
	Name      string
	IBANHash  string
	CreatedAt time.Time
}

// WatchedAccount is a source bank account polled for eligible transactions.
// ExternalID is the banking provider's account UUID.
type WatchedAccount struct {
	ID         int64
	Name       string
	ExternalID string
	CreatedAt  time.Time
}

// ProcessedTransaction records a transaction that was included in a
// withdrawal. TransactionID is unique in storage; its existence is the sole
// source of truth for "already handled".
type ProcessedTransaction struct {
	ID            int64
	TransactionID string
	Amount        decimal.Decimal
	Reference     string
	Label         string
	AmountSplit   decimal.Decimal
	CreatedAt     time.Time
}

// Withdrawal is one aggregated transfer from a watched account to the
// configured target account.
type Withdrawal struct {
	AccountID   string // external account ID of the debit side
	AccountName string
	DebitIBAN   string
	Amount      decimal.Decimal
}
