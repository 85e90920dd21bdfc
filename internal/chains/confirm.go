package chains

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

var (
	ErrConfirmTimeout = errors.New("signature not confirmed in time")
	ErrTxFailed       = errors.New("transaction failed on chain")
)

const DefaultPollInterval = 500 * time.Millisecond

// ConfirmOptions controls WaitForConfirmation.
type ConfirmOptions struct {
	Commitment   rpc.CommitmentType
	Timeout      time.Duration
	PollInterval time.Duration
}

// WaitForConfirmation polls the signature status until it reaches the requested
// commitment, the transaction fails, or the window elapses. It never resubmits.
func WaitForConfirmation(ctx context.Context, client Client, sig solana.Signature, opt ConfirmOptions) (*SignatureStatus, error) {
	if opt.Commitment == "" {
		opt.Commitment = rpc.CommitmentConfirmed
	}
	if opt.PollInterval <= 0 {
		opt.PollInterval = DefaultPollInterval
	}

	waitCtx := ctx
	if opt.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, opt.Timeout)
		defer cancel()
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	polls := 0
	var lastErr error
	for {
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, errors.Wrapf(ctx.Err(), "wait for %s", sig)
			}
			if lastErr != nil {
				return nil, errors.Mark(errors.Wrapf(lastErr, "%s after %d polls", sig, polls), ErrConfirmTimeout)
			}
			return nil, errors.Wrapf(ErrConfirmTimeout, "%s after %d polls (commitment %s)", sig, polls, opt.Commitment)
		case <-timer.C:
		}

		polls++
		status, err := client.SignatureStatus(waitCtx, sig)
		switch {
		case err != nil:
			lastErr = err
			log.Warn("signature status poll failed", "signature", sig.String(), "error", err)
		case status == nil:
		case status.Err != nil:
			return status, errors.Wrapf(ErrTxFailed, "%s: %s", sig, fmt.Sprint(status.Err))
		case reached(status.Commitment, opt.Commitment):
			return status, nil
		}

		timer.Reset(opt.PollInterval)
	}
}
