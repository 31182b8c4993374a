// Package qonto is a client for the Qonto business API: organization and
// account listing, transaction search and internal transfers.
package qonto

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

const (
	apiVersion     = "v2"
	requestTimeout = 30 * time.Second
	maxRetries     = 3
)

// APIError is a non-2xx response from the Qonto API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("qonto: %d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// Client calls the Qonto business API. Credentials are the organization slug
// and secret key, joined into a single Authorization header.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a Client for the given API base URL and credentials.
func NewClient(baseURL, organizationSlug, secretKey string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/" + apiVersion,
		authHeader: organizationSlug + ":" + secretKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// Organization fetches the organization details, including its bank accounts.
func (c *Client) Organization(ctx context.Context) (*Organization, error) {
	var wrapper organizationWrapper
	if err := c.getJSON(ctx, "organization", nil, &wrapper); err != nil {
		return nil, fmt.Errorf("fetching organization details: %w", err)
	}
	return &wrapper.Organization, nil
}

// TransactionQuery selects transactions for one bank account over an
// emitted-at window, optionally restricted to one operation type.
type TransactionQuery struct {
	BankAccountID string
	OperationType string
	EmittedFrom   time.Time
	EmittedTo     time.Time
}

func (q TransactionQuery) values(page int) url.Values {
	v := url.Values{}
	v.Set("bank_account_id", q.BankAccountID)
	if q.OperationType != "" {
		v.Set("operation_type[]", q.OperationType)
	}
	if !q.EmittedFrom.IsZero() {
		v.Set("emitted_at_from", q.EmittedFrom.Format(time.RFC3339Nano))
	}
	if !q.EmittedTo.IsZero() {
		v.Set("emitted_at_to", q.EmittedTo.Format(time.RFC3339Nano))
	}
	if page > 1 {
		v.Set("current_page", strconv.Itoa(page))
	}
	return v
}

// ListTransactions fetches every page of transactions matching the query, in
// the API's return order.
func (c *Client) ListTransactions(ctx context.Context, q TransactionQuery) ([]Transaction, error) {
	var all []Transaction
	page := 1
	for {
		var resp transactionsPage
		if err := c.getJSON(ctx, "transactions", q.values(page), &resp); err != nil {
			return nil, fmt.Errorf("listing transactions for account %s: %w", q.BankAccountID, err)
		}
		all = append(all, resp.Transactions...)
		if resp.Meta.NextPage == nil {
			return all, nil
		}
		page = *resp.Meta.NextPage
	}
}

// InternalTransfer moves money between two accounts of the organization.
// Retries reuse the request's idempotency key, so a transfer that was already
// applied is not applied again.
func (c *Client) InternalTransfer(ctx context.Context, req TransferRequest) (*Transfer, error) {
	if req.IdempotencyKey == "" {
		return nil, errors.New("internal transfer requires an idempotency key")
	}

	payload := transferPayload{
		InternalTransfer: transferBody{
			DebitIBAN:  req.DebitIBAN,
			CreditIBAN: req.CreditIBAN,
			Reference:  req.Reference,
			Amount:     req.Amount.StringFixed(2),
			Currency:   "EUR",
		},
	}

	var transfer Transfer
	err := c.withRetries(ctx, func(ctx context.Context) error {
		return c.do(ctx, http.MethodPost, "internal_transfer", nil, payload, req.IdempotencyKey, &transfer)
	})
	if err != nil {
		return nil, fmt.Errorf("creating internal transfer: %w", err)
	}

	c.logger.Info().
		Str("transfer_id", transfer.ID).
		Str("amount", req.Amount.StringFixed(2)).
		Str("status", transfer.Status).
		Msg("internal transfer created")
	return &transfer, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.withRetries(ctx, func(ctx context.Context) error {
		return c.do(ctx, http.MethodGet, path, query, nil, "", out)
	})
}

// withRetries retries transient failures (network errors and 5xx responses)
// with fibonacci backoff. 4xx responses are returned as-is.
func (c *Client) withRetries(ctx context.Context, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(maxRetries, retry.NewFibonacci(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if apiErr.Status >= http.StatusInternalServerError {
				return retry.RetryableError(err)
			}
			return err
		}
		// Network-level failure.
		return retry.RetryableError(err)
	})
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, idempotencyKey string, out any) error {
	endpoint := c.baseURL + "/" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain")
	req.Header.Set("Authorization", c.authHeader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("X-Qonto-Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding %s response: %w", path, err)
		}
	}
	return nil
}
