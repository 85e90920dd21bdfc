package balance

import (
	"context"
	"math/big"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/shopspring/decimal"

	"github.com/sinbandera-io/vehicular-control/internal/chains"
	"github.com/sinbandera-io/vehicular-control/internal/constants"
	"github.com/sinbandera-io/vehicular-control/internal/errs"
)

// Reader queries native balances.
type Reader struct {
	client chains.Client
}

func NewReader(client chains.Client) *Reader {
	return &Reader{client: client}
}

// GetBalance returns the spendable SOL balance of account. The identifier is
// handed to the chain unmodified. A failed query is RpcUnavailable: the
// balance is unknown, not zero.
func (r *Reader) GetBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	if r.client == nil {
		return decimal.Zero, errs.Newf(errs.ErrRPCUnavailable, "balance: chain client not initialized")
	}

	pk, err := solana.PublicKeyFromBase58(account)
	if err != nil {
		return decimal.Zero, errs.Wrapf(errs.ErrInvalidRequest, err, "balance: invalid account %q", account)
	}

	lamports, err := r.client.GetBalance(ctx, pk)
	if err != nil {
		log.Error("get balance failed", "account", account, "error", err)
		return decimal.Zero, errs.Wrapf(errs.ErrRPCUnavailable, err, "balance: query %s", account)
	}

	return FromLamports(lamports), nil
}

// FromLamports converts the chain's smallest unit to SOL.
func FromLamports(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -constants.NativeDecimals)
}

// ToLamports converts a SOL amount to lamports. Negative amounts and amounts
// with more than 9 decimals are rejected.
func ToLamports(amount decimal.Decimal) (uint64, error) {
	if amount.IsNegative() {
		return 0, errs.Newf(errs.ErrInvalidRequest, "amount %s is negative", amount)
	}
	shifted := amount.Shift(constants.NativeDecimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, errs.Newf(errs.ErrInvalidRequest, "amount %s has more than %d decimals", amount, constants.NativeDecimals)
	}
	bi := shifted.BigInt()
	if !bi.IsUint64() {
		return 0, errs.Newf(errs.ErrInvalidRequest, "amount %s out of range", amount)
	}
	return bi.Uint64(), nil
}

// ParseAmount parses a user supplied SOL amount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, errs.Wrapf(errs.ErrInvalidRequest, err, "invalid amount %q", raw)
	}
	return d, nil
}
