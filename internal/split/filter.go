package split

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/qsplit-dev/qsplit/internal/model"
	"github.com/qsplit-dev/qsplit/internal/qonto"
	"github.com/qsplit-dev/qsplit/internal/secret"
)

// defaultCheckConcurrency bounds the per-transaction eligibility checks.
// Each exclusion check is a bcrypt verification and deliberately expensive.
const defaultCheckConcurrency = 8

// ProcessedChecker reports whether a transaction ID has already been handled.
type ProcessedChecker func(ctx context.Context, transactionID string) (bool, error)

// Filter decides which fetched transactions are eligible for a split.
type Filter struct {
	exclusions  []model.Exclusion
	dropIBANs   map[string]struct{}
	isProcessed ProcessedChecker
	concurrency int
}

// NewFilter creates a Filter over the stored exclusions and the processed set.
func NewFilter(exclusions []model.Exclusion, isProcessed ProcessedChecker) *Filter {
	return &Filter{
		exclusions:  exclusions,
		dropIBANs:   make(map[string]struct{}),
		isProcessed: isProcessed,
		concurrency: defaultCheckConcurrency,
	}
}

// DropIBANs adds plaintext identifiers to exclude, on top of the hashed
// exclusion list. Used for the organization's own accounts when internal
// income is excluded.
func (f *Filter) DropIBANs(ibans ...string) {
	for _, iban := range ibans {
		f.dropIBANs[iban] = struct{}{}
	}
}

// Apply returns the transactions that should be split, preserving the input
// order. A transaction is dropped when its ID was already processed, or when
// its counterparty account number matches any exclusion. A transaction
// without a counterparty identifier cannot match an exclusion and passes
// that check.
func (f *Filter) Apply(ctx context.Context, txs []qonto.Transaction) ([]qonto.Transaction, error) {
	keep := make([]bool, len(txs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, tx := range txs {
		i, tx := i, tx
		g.Go(func() error {
			eligible, err := f.check(gctx, tx)
			if err != nil {
				return err
			}
			keep[i] = eligible
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var retained []qonto.Transaction
	for i, tx := range txs {
		if keep[i] {
			retained = append(retained, tx)
		}
	}
	return retained, nil
}

func (f *Filter) check(ctx context.Context, tx qonto.Transaction) (bool, error) {
	processed, err := f.isProcessed(ctx, tx.ID)
	if err != nil {
		return false, fmt.Errorf("checking processed state of %s: %w", tx.ID, err)
	}
	if processed {
		return false, nil
	}

	identifier := tx.CounterpartyAccountNumber()
	if identifier == "" {
		return true, nil
	}
	if _, dropped := f.dropIBANs[identifier]; dropped {
		return false, nil
	}
	for _, exclusion := range f.exclusions {
		if secret.VerifyIdentifier(exclusion.IBANHash, identifier) {
			return false, nil
		}
	}
	return true, nil
}
