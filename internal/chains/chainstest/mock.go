// Package chainstest provides a testify mock of chains.Client.
package chainstest

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/mock"

	"github.com/sinbandera-io/vehicular-control/internal/chains"
)

type MockClient struct {
	mock.Mock
}

var _ chains.Client = (*MockClient)(nil)

func (m *MockClient) GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockClient) LatestBlockhash(ctx context.Context) (chains.LatestBlockhash, error) {
	args := m.Called(ctx)
	return args.Get(0).(chains.LatestBlockhash), args.Error(1)
}

func (m *MockClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *MockClient) SignatureStatus(ctx context.Context, sig solana.Signature) (*chains.SignatureStatus, error) {
	args := m.Called(ctx, sig)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chains.SignatureStatus), args.Error(1)
}

func (m *MockClient) MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	args := m.Called(ctx, size)
	return args.Get(0).(uint64), args.Error(1)
}

// Confirmed is a status at confirmed commitment.
func Confirmed(slot uint64) *chains.SignatureStatus {
	return &chains.SignatureStatus{Slot: slot, Commitment: "confirmed"}
}

// Finalized is a status at finalized commitment.
func Finalized(slot uint64) *chains.SignatureStatus {
	return &chains.SignatureStatus{Slot: slot, Commitment: "finalized"}
}
