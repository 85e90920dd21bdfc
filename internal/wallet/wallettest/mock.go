// Package wallettest provides a testify mock of wallet.Provider.
package wallettest

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/mock"

	"github.com/sinbandera-io/vehicular-control/internal/wallet"
)

type MockProvider struct {
	mock.Mock
}

var _ wallet.Provider = (*MockProvider)(nil)

func (m *MockProvider) Connect(ctx context.Context) (solana.PublicKey, error) {
	args := m.Called(ctx)
	return args.Get(0).(solana.PublicKey), args.Error(1)
}

func (m *MockProvider) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*solana.Transaction), args.Error(1)
}

func (m *MockProvider) Disconnect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
