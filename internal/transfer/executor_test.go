package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sinbandera-io/vehicular-control/internal/chains"
	"github.com/sinbandera-io/vehicular-control/internal/chains/chainstest"
	"github.com/sinbandera-io/vehicular-control/internal/errs"
	"github.com/sinbandera-io/vehicular-control/internal/session"
	"github.com/sinbandera-io/vehicular-control/internal/wallet/wallettest"
)

type fixture struct {
	client   *chainstest.MockClient
	provider *wallettest.MockProvider
	exec     *Executor
	sender   solana.PublicKey
	receiver solana.PublicKey
	sess     *session.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		client:   new(chainstest.MockClient),
		provider: new(wallettest.MockProvider),
		sender:   solana.NewWallet().PublicKey(),
		receiver: solana.NewWallet().PublicKey(),
	}
	f.sess = &session.Session{Account: f.sender.String()}
	f.exec = NewExecutor(f.client, f.provider, Config{
		Cluster:        "devnet",
		ConfirmTimeout: 200 * time.Millisecond,
		PollInterval:   5 * time.Millisecond,
	})
	return f
}

func (f *fixture) expectSigned(sig solana.Signature) *solana.Transaction {
	signed := &solana.Transaction{}
	f.client.On("LatestBlockhash", mock.Anything).Return(chains.LatestBlockhash{Blockhash: solana.Hash{1}}, nil).Once()
	f.provider.On("SignTransaction", mock.Anything, mock.AnythingOfType("*solana.Transaction")).Return(signed, nil).Once()
	f.client.On("SendTransaction", mock.Anything, signed).Return(sig, nil).Once()
	return signed
}

func TestTransferConfirmed(t *testing.T) {
	f := newFixture(t)
	sig := solana.Signature{7}

	f.client.On("GetBalance", mock.Anything, f.sender).Return(uint64(2_000_000_000), nil).Once()
	f.client.On("GetBalance", mock.Anything, f.sender).Return(uint64(1_499_995_000), nil).Once()
	f.expectSigned(sig)
	f.client.On("SignatureStatus", mock.Anything, sig).Return(nil, nil).Once()
	f.client.On("SignatureStatus", mock.Anything, sig).Return(chainstest.Confirmed(42), nil).Once()

	res, err := f.exec.Transfer(context.Background(), f.sess, f.receiver.String(), decimal.RequireFromString("0.5"))
	require.NoError(t, err)

	assert.Equal(t, sig, res.Signature)
	assert.Equal(t, uint64(42), res.Slot)
	assert.Equal(t, "https://explorer.solana.com/tx/"+sig.String()+"?cluster=devnet", res.ExplorerURL)
	assert.True(t, decimal.RequireFromString("1.499995").Equal(res.Balance))
	f.client.AssertExpectations(t)
	f.provider.AssertExpectations(t)
}

func TestTransferBuildsSingleSystemTransfer(t *testing.T) {
	f := newFixture(t)
	sig := solana.Signature{9}

	f.client.On("GetBalance", mock.Anything, f.sender).Return(uint64(5_000_000_000), nil)
	f.client.On("LatestBlockhash", mock.Anything).Return(chains.LatestBlockhash{Blockhash: solana.Hash{3}}, nil).Once()

	var seen *solana.Transaction
	f.provider.On("SignTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { seen = args.Get(1).(*solana.Transaction) }).
		Return(&solana.Transaction{}, nil).Once()
	f.client.On("SendTransaction", mock.Anything, mock.Anything).Return(sig, nil).Once()
	f.client.On("SignatureStatus", mock.Anything, sig).Return(chainstest.Finalized(1), nil).Once()

	_, err := f.exec.Transfer(context.Background(), f.sess, f.receiver.String(), decimal.RequireFromString("1.25"))
	require.NoError(t, err)

	require.NotNil(t, seen)
	assert.Equal(t, solana.Hash{3}, seen.Message.RecentBlockhash)
	assert.Equal(t, f.sender, seen.Message.AccountKeys[0])
	require.Len(t, seen.Message.Instructions, 1)

	ix := seen.Message.Instructions[0]
	program, err := seen.Message.Program(ix.ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, solana.SystemProgramID, program)

	accounts, err := ix.ResolveInstructionAccounts(&seen.Message)
	require.NoError(t, err)
	decoded, err := system.DecodeInstruction(accounts, ix.Data)
	require.NoError(t, err)
	tr, ok := decoded.Impl.(*system.Transfer)
	require.True(t, ok)
	assert.Equal(t, uint64(1_250_000_000), *tr.Lamports)
}

func TestTransferWithoutSessionTouchesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.exec.Transfer(context.Background(), nil, f.receiver.String(), decimal.NewFromInt(1))
	assert.True(t, errors.Is(err, errs.ErrNoSession))
	f.client.AssertNotCalled(t, "GetBalance", mock.Anything, mock.Anything)
	f.provider.AssertNotCalled(t, "SignTransaction", mock.Anything, mock.Anything)
}

func TestTransferRejectsBadInput(t *testing.T) {
	cases := []struct {
		name     string
		receiver func(f *fixture) string
		amount   string
	}{
		{"zero", func(f *fixture) string { return f.receiver.String() }, "0"},
		{"negative", func(f *fixture) string { return f.receiver.String() }, "-1"},
		{"too precise", func(f *fixture) string { return f.receiver.String() }, "0.0000000001"},
		{"bad receiver", func(*fixture) string { return "not-a-key" }, "1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.exec.Transfer(context.Background(), f.sess, tc.receiver(f), decimal.RequireFromString(tc.amount))
			assert.True(t, errors.Is(err, errs.ErrInvalidRequest), "got %v", err)
			f.client.AssertNotCalled(t, "GetBalance", mock.Anything, mock.Anything)
		})
	}
}

func TestTransferInsufficientFundsSubmitsNothing(t *testing.T) {
	f := newFixture(t)
	f.client.On("GetBalance", mock.Anything, f.sender).Return(uint64(1_000_000_000), nil).Once()

	_, err := f.exec.Transfer(context.Background(), f.sess, f.receiver.String(), decimal.NewFromInt(2))
	assert.True(t, errors.Is(err, errs.ErrInsufficientFunds))
	f.provider.AssertNotCalled(t, "SignTransaction", mock.Anything, mock.Anything)
	f.client.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)
}

func TestTransferBalanceUnavailable(t *testing.T) {
	f := newFixture(t)
	f.client.On("GetBalance", mock.Anything, f.sender).Return(uint64(0), errors.New("connection refused")).Once()

	_, err := f.exec.Transfer(context.Background(), f.sess, f.receiver.String(), decimal.NewFromInt(1))
	assert.True(t, errors.Is(err, errs.ErrRPCUnavailable))
	f.client.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)
}

func TestTransferSignatureDenied(t *testing.T) {
	f := newFixture(t)
	f.client.On("GetBalance", mock.Anything, f.sender).Return(uint64(3_000_000_000), nil).Once()
	f.client.On("LatestBlockhash", mock.Anything).Return(chains.LatestBlockhash{Blockhash: solana.Hash{1}}, nil).Once()
	f.provider.On("SignTransaction", mock.Anything, mock.Anything).
		Return(nil, errs.Newf(errs.ErrSignatureDenied, "declined")).Once()

	_, err := f.exec.Transfer(context.Background(), f.sess, f.receiver.String(), decimal.NewFromInt(1))
	assert.True(t, errors.Is(err, errs.ErrSignatureDenied))
	f.client.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)
}

func TestTransferSubmissionError(t *testing.T) {
	f := newFixture(t)
	f.client.On("GetBalance", mock.Anything, f.sender).Return(uint64(3_000_000_000), nil).Once()
	f.client.On("LatestBlockhash", mock.Anything).Return(chains.LatestBlockhash{Blockhash: solana.Hash{1}}, nil).Once()
	f.provider.On("SignTransaction", mock.Anything, mock.Anything).Return(&solana.Transaction{}, nil).Once()
	f.client.On("SendTransaction", mock.Anything, mock.Anything).Return(solana.Signature{}, errors.New("blockhash not found")).Once()

	_, err := f.exec.Transfer(context.Background(), f.sess, f.receiver.String(), decimal.NewFromInt(1))
	assert.True(t, errors.Is(err, errs.ErrSubmission))
	f.client.AssertNotCalled(t, "SignatureStatus", mock.Anything, mock.Anything)
}

func TestTransferConfirmationTimeout(t *testing.T) {
	f := newFixture(t)
	sig := solana.Signature{5}
	f.client.On("GetBalance", mock.Anything, f.sender).Return(uint64(3_000_000_000), nil).Once()
	f.expectSigned(sig)
	f.client.On("SignatureStatus", mock.Anything, sig).Return(nil, nil)

	_, err := f.exec.Transfer(context.Background(), f.sess, f.receiver.String(), decimal.NewFromInt(1))
	assert.True(t, errors.Is(err, errs.ErrConfirmationTimeout))
	assert.Equal(t, "ConfirmationTimeout", errs.Kind(err))
	f.client.AssertNumberOfCalls(t, "SendTransaction", 1)
}

func TestTransferFailedOnChain(t *testing.T) {
	f := newFixture(t)
	sig := solana.Signature{6}
	f.client.On("GetBalance", mock.Anything, f.sender).Return(uint64(3_000_000_000), nil).Once()
	f.expectSigned(sig)
	f.client.On("SignatureStatus", mock.Anything, sig).
		Return(&chains.SignatureStatus{Slot: 3, Commitment: "confirmed", Err: map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}}, nil).Once()

	_, err := f.exec.Transfer(context.Background(), f.sess, f.receiver.String(), decimal.NewFromInt(1))
	assert.True(t, errors.Is(err, errs.ErrSubmission))
}

func TestTransferBalanceRefreshFailureIsNotAnError(t *testing.T) {
	f := newFixture(t)
	sig := solana.Signature{8}
	f.client.On("GetBalance", mock.Anything, f.sender).Return(uint64(3_000_000_000), nil).Once()
	f.client.On("GetBalance", mock.Anything, f.sender).Return(uint64(0), errors.New("timeout")).Once()
	f.expectSigned(sig)
	f.client.On("SignatureStatus", mock.Anything, sig).Return(chainstest.Confirmed(10), nil).Once()

	res, err := f.exec.Transfer(context.Background(), f.sess, f.receiver.String(), decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, sig, res.Signature)
	assert.True(t, res.Balance.IsZero())
}
