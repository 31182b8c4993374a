package qonto

import "fmt"

// Directory provides in-memory lookup over the organization's bank accounts,
// resolved once per run from the organization details.
type Directory struct {
	accounts []BankAccount
	byID     map[string]BankAccount
}

// NewDirectory creates a Directory from a slice of bank accounts.
func NewDirectory(accounts []BankAccount) *Directory {
	byID := make(map[string]BankAccount, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return &Directory{accounts: accounts, byID: byID}
}

// All returns all accounts.
func (d *Directory) All() []BankAccount {
	return d.accounts
}

// Get returns an account by its ID.
func (d *Directory) Get(id string) (BankAccount, bool) {
	a, ok := d.byID[id]
	return a, ok
}

// IBAN resolves an account ID to its IBAN.
func (d *Directory) IBAN(id string) (string, error) {
	a, ok := d.byID[id]
	if !ok {
		return "", fmt.Errorf("unknown bank account %s", id)
	}
	if a.IBAN == "" {
		return "", fmt.Errorf("bank account %s (%s) has no IBAN", id, a.Name)
	}
	return a.IBAN, nil
}

// InternalIBANs returns the IBANs of the organization's own (non-external)
// accounts, used to drop internal income when configured.
func (d *Directory) InternalIBANs() []string {
	var ibans []string
	for _, a := range d.accounts {
		if !a.External && a.IBAN != "" {
			ibans = append(ibans, a.IBAN)
		}
	}
	return ibans
}
