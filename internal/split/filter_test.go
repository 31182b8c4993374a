package split

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qsplit-dev/qsplit/internal/model"
	"github.com/qsplit-dev/qsplit/internal/qonto"
	"github.com/qsplit-dev/qsplit/internal/secret"
)

func tx(id, counterparty string) qonto.Transaction {
	t := qonto.Transaction{ID: id, Amount: decimal.NewFromInt(100)}
	if counterparty != "" {
		t.Income = &qonto.Counterparty{AccountNumber: counterparty}
	}
	return t
}

func neverProcessed(context.Context, string) (bool, error) { return false, nil }

func TestFilter_DropsProcessedTransactions(t *testing.T) {
	processed := map[string]bool{"t2": true}
	checker := func(_ context.Context, id string) (bool, error) {
		return processed[id], nil
	}

	filter := NewFilter(nil, checker)
	kept, err := filter.Apply(context.Background(), []qonto.Transaction{
		tx("t1", "FR76A"),
		tx("t2", "FR76B"),
		tx("t3", "FR76C"),
	})
	require.NoError(t, err)

	require.Len(t, kept, 2)
	assert.Equal(t, "t1", kept[0].ID)
	assert.Equal(t, "t3", kept[1].ID)
}

func TestFilter_DropsExcludedCounterparty(t *testing.T) {
	hash, err := secret.HashIdentifier("FR76EXCLUDED")
	require.NoError(t, err)

	filter := NewFilter([]model.Exclusion{{Name: "Landlord", IBANHash: hash}}, neverProcessed)
	kept, err := filter.Apply(context.Background(), []qonto.Transaction{
		tx("t1", "FR76EXCLUDED"),
		tx("t2", "FR76CLIENT"),
	})
	require.NoError(t, err)

	require.Len(t, kept, 1)
	assert.Equal(t, "t2", kept[0].ID)
}

func TestFilter_MissingCounterpartyPasses(t *testing.T) {
	hash, err := secret.HashIdentifier("FR76EXCLUDED")
	require.NoError(t, err)

	filter := NewFilter([]model.Exclusion{{IBANHash: hash}}, neverProcessed)
	kept, err := filter.Apply(context.Background(), []qonto.Transaction{tx("t1", "")})
	require.NoError(t, err)

	require.Len(t, kept, 1, "no identifier means no exclusion can match")
}

func TestFilter_DropIBANs(t *testing.T) {
	filter := NewFilter(nil, neverProcessed)
	filter.DropIBANs("FR76INTERNAL1", "FR76INTERNAL2")

	kept, err := filter.Apply(context.Background(), []qonto.Transaction{
		tx("t1", "FR76INTERNAL1"),
		tx("t2", "FR76CLIENT"),
		tx("t3", "FR76INTERNAL2"),
	})
	require.NoError(t, err)

	require.Len(t, kept, 1)
	assert.Equal(t, "t2", kept[0].ID)
}

func TestFilter_PreservesOrder(t *testing.T) {
	filter := NewFilter(nil, neverProcessed)

	input := make([]qonto.Transaction, 0, 20)
	for i := 0; i < 20; i++ {
		input = append(input, tx(string(rune('a'+i)), "FR76CLIENT"))
	}
	kept, err := filter.Apply(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, kept, len(input))
	for i := range input {
		assert.Equal(t, input[i].ID, kept[i].ID)
	}
}

func TestFilter_ApplyTwiceIsStable(t *testing.T) {
	hash, err := secret.HashIdentifier("FR76EXCLUDED")
	require.NoError(t, err)
	filter := NewFilter([]model.Exclusion{{IBANHash: hash}}, neverProcessed)

	input := []qonto.Transaction{
		tx("t1", "FR76EXCLUDED"),
		tx("t2", "FR76CLIENT"),
	}
	once, err := filter.Apply(context.Background(), input)
	require.NoError(t, err)
	twice, err := filter.Apply(context.Background(), once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestFilter_CheckerErrorAborts(t *testing.T) {
	boom := errors.New("connection refused")
	checker := func(context.Context, string) (bool, error) { return false, boom }

	filter := NewFilter(nil, checker)
	_, err := filter.Apply(context.Background(), []qonto.Transaction{tx("t1", "FR76A")})
	require.ErrorIs(t, err, boom)
}

func TestFilter_EmptyInput(t *testing.T) {
	filter := NewFilter(nil, neverProcessed)
	kept, err := filter.Apply(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, kept)
}
