package split

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/qsplit-dev/qsplit/internal/model"
	"github.com/qsplit-dev/qsplit/internal/qonto"
	"github.com/qsplit-dev/qsplit/internal/store"
)

// fetchConcurrency bounds the parallel per-account transaction fetches.
const fetchConcurrency = 4

var (
	// ErrSetupRequired means the run configuration is incomplete.
	ErrSetupRequired = errors.New("configuration incomplete")
	// ErrAborted means the operator declined the confirmation prompt.
	ErrAborted = errors.New("aborted by operator")
)

// BankAPI is the surface of the banking client the pipeline depends on.
type BankAPI interface {
	Organization(ctx context.Context) (*qonto.Organization, error)
	ListTransactions(ctx context.Context, q qonto.TransactionQuery) ([]qonto.Transaction, error)
	InternalTransfer(ctx context.Context, req qonto.TransferRequest) (*qonto.Transfer, error)
}

// Settings is the decrypted run configuration loaded from the config store.
type Settings struct {
	TargetAccountID         string
	WithdrawalReference     string
	SplitPercent            decimal.Decimal
	VATMode                 bool
	ExcludeInternalAccounts bool
}

// Options control a single pipeline run.
type Options struct {
	Unit        Unit
	DryRun      bool
	AutoApprove bool
}

// Item is one eligible transaction with its computed split.
type Item struct {
	Transaction qonto.Transaction
	Split       decimal.Decimal
}

// AccountBatch groups the eligible transactions of one watched account.
type AccountBatch struct {
	Account   model.WatchedAccount
	DebitIBAN string
	Items     []Item
	Total     decimal.Decimal
}

// Plan is the full breakdown of a run, presented to the operator before any
// transfer happens.
type Plan struct {
	From    time.Time
	To      time.Time
	Percent decimal.Decimal // normalized fraction
	VATMode bool
	Batches []AccountBatch
}

// TransactionCount returns the number of eligible transactions in the plan.
func (p *Plan) TransactionCount() int {
	n := 0
	for _, b := range p.Batches {
		n += len(b.Items)
	}
	return n
}

// Result summarizes a finished run.
type Result struct {
	Withdrawals []model.Withdrawal
	Recorded    int
	DryRun      bool
}

// Deps are the collaborators a Pipeline needs; all are injected explicitly.
type Deps struct {
	API        BankAPI
	Configs    store.ConfigStore
	Exclusions store.ExclusionStore
	Watched    store.WatchedAccountStore
	Processed  store.ProcessedStore

	// Present, when set, receives the plan before execution (table display).
	Present func(*Plan)
	// Confirm, when set, asks the operator to approve the plan. Skipped in
	// auto mode.
	Confirm func() (bool, error)

	Logger zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// NewIdempotencyKey defaults to uuid.NewString. One key is minted per
	// logical withdrawal and reused across retries of that withdrawal.
	NewIdempotencyKey func() string
}

// Pipeline drives one split run end to end: load settings, fetch, filter,
// compute, aggregate, confirm, transfer, record.
type Pipeline struct {
	deps Deps
}

// NewPipeline creates a Pipeline from its dependencies.
func NewPipeline(deps Deps) *Pipeline {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewIdempotencyKey == nil {
		deps.NewIdempotencyKey = uuid.NewString
	}
	return &Pipeline{deps: deps}
}

// Run executes one batch. It returns ErrSetupRequired when configuration is
// missing and ErrAborted when the operator declines. A failure on one watched
// account does not stop the others; all such failures are combined into the
// returned error.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	settings, err := p.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}

	watched, err := p.deps.Watched.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading watched accounts: %w", err)
	}
	if len(watched) == 0 {
		p.deps.Logger.Info().Msg("no watched accounts, nothing to do")
		return &Result{DryRun: opts.DryRun}, nil
	}

	exclusions, err := p.deps.Exclusions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading exclusions: %w", err)
	}

	org, err := p.deps.API.Organization(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching organization details: %w", err)
	}
	directory := qonto.NewDirectory(org.BankAccounts)

	targetIBAN, err := directory.IBAN(settings.TargetAccountID)
	if err != nil {
		return nil, fmt.Errorf("resolving target account: %w", err)
	}

	from, to, err := Window(p.deps.Now(), opts.Unit)
	if err != nil {
		return nil, err
	}

	filter := NewFilter(exclusions, p.deps.Processed.Exists)
	if settings.ExcludeInternalAccounts {
		filter.DropIBANs(directory.InternalIBANs()...)
	}

	plan := &Plan{
		From:    from,
		To:      to,
		Percent: NormalizePercent(settings.SplitPercent),
		VATMode: settings.VATMode,
	}
	batches, fetchErr := p.collectBatches(ctx, watched, directory, filter, settings, from, to)
	plan.Batches = batches

	if plan.TransactionCount() == 0 {
		p.deps.Logger.Info().Msg("no transactions to process")
		return &Result{DryRun: opts.DryRun}, fetchErr
	}

	if p.deps.Present != nil {
		p.deps.Present(plan)
	}
	if !opts.AutoApprove && p.deps.Confirm != nil {
		approved, err := p.deps.Confirm()
		if err != nil {
			return nil, fmt.Errorf("reading confirmation: %w", err)
		}
		if !approved {
			return nil, ErrAborted
		}
	}

	result := &Result{DryRun: opts.DryRun}
	runErr := fetchErr
	for _, batch := range batches {
		// Nothing to withdraw for this account.
		if !batch.Total.IsPositive() {
			continue
		}
		if err := p.executeWithdrawal(ctx, batch, targetIBAN, settings, opts.DryRun, result); err != nil {
			runErr = multierr.Append(runErr, err)
		}
	}
	return result, runErr
}

// LoadSettings reads and validates the five required configuration keys.
func (p *Pipeline) LoadSettings(ctx context.Context) (Settings, error) {
	values, err := p.deps.Configs.All(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("loading configuration: %w", err)
	}

	var missing []string
	for _, key := range model.RequiredKeys() {
		if _, ok := values[key]; !ok {
			missing = append(missing, string(key))
		}
	}
	if len(missing) > 0 {
		return Settings{}, fmt.Errorf("%w: missing %s", ErrSetupRequired, strings.Join(missing, ", "))
	}

	percent, err := decimal.NewFromString(values[model.KeySplitAmount])
	if err != nil {
		return Settings{}, fmt.Errorf("invalid split amount %q: %w", values[model.KeySplitAmount], err)
	}
	vatMode, err := strconv.ParseBool(values[model.KeyVATMode])
	if err != nil {
		return Settings{}, fmt.Errorf("invalid vat mode %q: %w", values[model.KeyVATMode], err)
	}
	excludeInternal, err := strconv.ParseBool(values[model.KeyExcludeInternalAccounts])
	if err != nil {
		return Settings{}, fmt.Errorf("invalid exclude internal accounts %q: %w", values[model.KeyExcludeInternalAccounts], err)
	}

	return Settings{
		TargetAccountID:         values[model.KeyTargetAccount],
		WithdrawalReference:     values[model.KeyWithdrawalReference],
		SplitPercent:            percent,
		VATMode:                 vatMode,
		ExcludeInternalAccounts: excludeInternal,
	}, nil
}

// collectBatches fetches, filters and totals each watched account's
// transactions concurrently. A failed account yields an error entry but never
// blocks the other accounts; the combined error is returned alongside the
// successful batches.
func (p *Pipeline) collectBatches(
	ctx context.Context,
	watched []model.WatchedAccount,
	directory *qonto.Directory,
	filter *Filter,
	settings Settings,
	from, to time.Time,
) ([]AccountBatch, error) {
	batches := make([]AccountBatch, len(watched))
	errs := make([]error, len(watched))

	var g errgroup.Group
	g.SetLimit(fetchConcurrency)
	for i, account := range watched {
		i, account := i, account
		g.Go(func() error {
			batch, err := p.collectOne(ctx, account, directory, filter, settings, from, to)
			if err != nil {
				errs[i] = err
				return nil
			}
			batches[i] = batch
			return nil
		})
	}
	_ = g.Wait() // individual errors land in errs

	kept := batches[:0]
	for i, b := range batches {
		if errs[i] == nil {
			kept = append(kept, b)
		}
	}
	return kept, multierr.Combine(errs...)
}

func (p *Pipeline) collectOne(
	ctx context.Context,
	account model.WatchedAccount,
	directory *qonto.Directory,
	filter *Filter,
	settings Settings,
	from, to time.Time,
) (AccountBatch, error) {
	p.deps.Logger.Debug().Str("account", account.Name).Msg("fetching transactions")

	txs, err := p.deps.API.ListTransactions(ctx, qonto.TransactionQuery{
		BankAccountID: account.ExternalID,
		OperationType: "income",
		EmittedFrom:   from,
		EmittedTo:     to,
	})
	if err != nil {
		return AccountBatch{}, fmt.Errorf("fetching transactions for %s: %w", account.Name, err)
	}

	eligible, err := filter.Apply(ctx, txs)
	if err != nil {
		return AccountBatch{}, fmt.Errorf("filtering transactions for %s: %w", account.Name, err)
	}

	batch := AccountBatch{Account: account, Total: decimal.Zero}
	for _, tx := range eligible {
		split := ComputeSplit(tx.Amount, settings.SplitPercent, settings.VATMode)
		batch.Items = append(batch.Items, Item{Transaction: tx, Split: split})
		batch.Total = batch.Total.Add(split)
	}

	if batch.Total.IsPositive() {
		iban, err := directory.IBAN(account.ExternalID)
		if err != nil {
			return AccountBatch{}, fmt.Errorf("resolving IBAN for %s: %w", account.Name, err)
		}
		batch.DebitIBAN = iban
	}
	return batch, nil
}

// executeWithdrawal transfers one batch's total and records its transactions.
// In dry-run mode both side effects are skipped. When the transfer fails the
// records are not written, leaving the transactions eligible for the next run.
func (p *Pipeline) executeWithdrawal(
	ctx context.Context,
	batch AccountBatch,
	targetIBAN string,
	settings Settings,
	dryRun bool,
	result *Result,
) error {
	withdrawal := model.Withdrawal{
		AccountID:   batch.Account.ExternalID,
		AccountName: batch.Account.Name,
		DebitIBAN:   batch.DebitIBAN,
		Amount:      batch.Total,
	}

	if dryRun {
		p.deps.Logger.Info().
			Str("account", batch.Account.Name).
			Str("amount", batch.Total.StringFixed(2)).
			Msg("dry run: transfer and records skipped")
		result.Withdrawals = append(result.Withdrawals, withdrawal)
		return nil
	}

	_, err := p.deps.API.InternalTransfer(ctx, qonto.TransferRequest{
		DebitIBAN:      batch.DebitIBAN,
		CreditIBAN:     targetIBAN,
		Reference:      settings.WithdrawalReference,
		Amount:         batch.Total,
		IdempotencyKey: p.deps.NewIdempotencyKey(),
	})
	if err != nil {
		return fmt.Errorf("withdrawing %s from %s: %w", batch.Total.StringFixed(2), batch.Account.Name, err)
	}

	records := make([]model.ProcessedTransaction, 0, len(batch.Items))
	for _, item := range batch.Items {
		records = append(records, model.ProcessedTransaction{
			TransactionID: item.Transaction.ID,
			Amount:        item.Transaction.Amount,
			Reference:     cleanReference(item.Transaction.Reference),
			Label:         item.Transaction.Label,
			AmountSplit:   item.Split,
		})
	}
	if err := p.deps.Processed.CreateBatch(ctx, records); err != nil {
		return fmt.Errorf("recording processed transactions for %s: %w", batch.Account.Name, err)
	}

	p.deps.Logger.Info().
		Str("account", batch.Account.Name).
		Str("amount", batch.Total.StringFixed(2)).
		Int("transactions", len(records)).
		Msg("withdrawal executed")
	result.Withdrawals = append(result.Withdrawals, withdrawal)
	result.Recorded += len(records)
	return nil
}

// cleanReference flattens the free-text reference to a single trimmed line.
func cleanReference(ref string) string {
	return strings.TrimSpace(strings.ReplaceAll(ref, "\n", " "))
}
