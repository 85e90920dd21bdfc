// Package transfer moves native SOL from the connected account to a receiver.
package transfer

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/shopspring/decimal"

	"github.com/sinbandera-io/vehicular-control/internal/balance"
	"github.com/sinbandera-io/vehicular-control/internal/chains"
	"github.com/sinbandera-io/vehicular-control/internal/errs"
	"github.com/sinbandera-io/vehicular-control/internal/session"
	"github.com/sinbandera-io/vehicular-control/internal/wallet"
)

const DefaultConfirmTimeout = 60 * time.Second

type Config struct {
	Cluster          string
	ExplorerTemplate string
	Commitment       rpc.CommitmentType
	ConfirmTimeout   time.Duration
	PollInterval     time.Duration
}

// Result describes a confirmed transfer.
type Result struct {
	Signature   solana.Signature
	ExplorerURL string
	Slot        uint64
	// Balance is the sender balance read after confirmation; zero if that read failed.
	Balance decimal.Decimal
}

type Executor struct {
	client   chains.Client
	provider wallet.Provider
	balances *balance.Reader
	cfg      Config
}

func NewExecutor(client chains.Client, provider wallet.Provider, cfg Config) *Executor {
	if cfg.Commitment == "" {
		cfg.Commitment = rpc.CommitmentConfirmed
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = DefaultConfirmTimeout
	}
	if cfg.ExplorerTemplate == "" {
		cfg.ExplorerTemplate = chains.DefaultTxExplorer
	}
	return &Executor{
		client:   client,
		provider: provider,
		balances: balance.NewReader(client),
		cfg:      cfg,
	}
}

// Transfer sends amount SOL from the session account to receiver and waits for
// the configured commitment. Nothing is retried.
func (e *Executor) Transfer(ctx context.Context, sess *session.Session, receiver string, amount decimal.Decimal) (*Result, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}

	from, err := solana.PublicKeyFromBase58(sess.Account)
	if err != nil {
		return nil, errs.Wrapf(errs.ErrInvalidRequest, err, "transfer: invalid sender %q", sess.Account)
	}
	to, err := solana.PublicKeyFromBase58(receiver)
	if err != nil {
		return nil, errs.Wrapf(errs.ErrInvalidRequest, err, "transfer: invalid receiver %q", receiver)
	}
	if !amount.IsPositive() {
		return nil, errs.Newf(errs.ErrInvalidRequest, "transfer: amount must be positive, got %s", amount)
	}
	lamports, err := balance.ToLamports(amount)
	if err != nil {
		return nil, err
	}

	current, err := e.balances.GetBalance(ctx, sess.Account)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(current) {
		return nil, errs.Newf(errs.ErrInsufficientFunds, "transfer: amount %s exceeds balance %s", amount, current)
	}

	ix := system.NewTransferInstruction(lamports, from, to).Build()

	bh, err := e.client.LatestBlockhash(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrRPCUnavailable, err, "transfer: latest blockhash")
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		bh.Blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return nil, errors.Wrap(err, "transfer: build transaction")
	}

	signed, err := e.provider.SignTransaction(ctx, tx)
	if err != nil {
		if errors.Is(err, errs.ErrSignatureDenied) {
			return nil, err
		}
		return nil, errs.Wrap(errs.ErrSignatureDenied, err, "transfer: sign")
	}

	sig, err := e.client.SendTransaction(ctx, signed)
	if err != nil {
		log.Error("transfer submission failed", "from", sess.Account, "to", receiver, "error", err)
		return nil, errs.Wrap(errs.ErrSubmission, err, "transfer: submit")
	}
	log.Info("transfer submitted", "signature", sig.String(), "amount", amount.String(), "to", receiver)

	status, err := chains.WaitForConfirmation(ctx, e.client, sig, chains.ConfirmOptions{
		Commitment:   e.cfg.Commitment,
		Timeout:      e.cfg.ConfirmTimeout,
		PollInterval: e.cfg.PollInterval,
	})
	if err != nil {
		log.Error("transfer confirmation failed", "signature", sig.String(), "error", err)
		switch {
		case errors.Is(err, chains.ErrConfirmTimeout):
			return nil, errs.Wrapf(errs.ErrConfirmationTimeout, err, "transfer %s", sig)
		case errors.Is(err, chains.ErrTxFailed):
			return nil, errs.Wrapf(errs.ErrSubmission, err, "transfer %s", sig)
		default:
			return nil, errs.Wrapf(errs.ErrRPCUnavailable, err, "transfer %s", sig)
		}
	}

	res := &Result{
		Signature:   sig,
		ExplorerURL: chains.ExplorerLink(e.cfg.ExplorerTemplate, sig.String(), e.cfg.Cluster),
		Slot:        status.Slot,
	}

	if after, err := e.balances.GetBalance(ctx, sess.Account); err != nil {
		log.Warn("balance refresh after transfer failed", "account", sess.Account, "error", err)
	} else {
		res.Balance = after
	}

	log.Info("transfer confirmed", "signature", sig.String(), "slot", status.Slot)
	return res, nil
}
