package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sinbandera-io/vehicular-control/internal/balance"
	"github.com/sinbandera-io/vehicular-control/internal/chains/chainstest"
	"github.com/sinbandera-io/vehicular-control/internal/errs"
	"github.com/sinbandera-io/vehicular-control/internal/wallet/wallettest"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	return s
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := newFileStore(t)

	got, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, got)

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(Session{Account: "ABC123", ConnectedAt: at}))

	got, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ABC123", got.Account)
	assert.True(t, at.Equal(got.ConnectedAt))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	got, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, store.Save(Session{}))
}

func TestConnectPersistsAccount(t *testing.T) {
	account := solana.NewWallet().PublicKey()
	provider := new(wallettest.MockProvider)
	provider.On("Connect", mock.Anything).Return(account, nil).Once()

	store := newFileStore(t)
	m := NewManager(provider, store)

	s, err := m.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, account.String(), s.Account)

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, account.String(), stored.Account)
	provider.AssertExpectations(t)
}

func TestConnectFailuresKeepTheirKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"unavailable", errs.Newf(errs.ErrProviderUnavailable, "no wallet"), errs.ErrProviderUnavailable},
		{"rejected", errs.Newf(errs.ErrUserRejected, "declined"), errs.ErrUserRejected},
		{"other", errors.New("popup closed"), errs.ErrUserRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider := new(wallettest.MockProvider)
			provider.On("Connect", mock.Anything).Return(solana.PublicKey{}, tc.err)
			store := &MemoryStore{}

			_, err := NewManager(provider, store).Connect(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want))

			s, _ := store.Load()
			assert.Nil(t, s)
		})
	}
}

func TestConnectWithoutProvider(t *testing.T) {
	_, err := NewManager(nil, &MemoryStore{}).Connect(context.Background())
	assert.True(t, errors.Is(err, errs.ErrProviderUnavailable))
}

func TestDisconnectClearsAndReloads(t *testing.T) {
	provider := new(wallettest.MockProvider)
	provider.On("Disconnect", mock.Anything).Return(nil).Once()

	store := &MemoryStore{}
	require.NoError(t, store.Save(Session{Account: "ABC123"}))

	reloaded := 0
	m := NewManager(provider, store, WithReload(func() { reloaded++ }))
	require.NoError(t, m.Disconnect(context.Background()))

	s, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, 1, reloaded)
	provider.AssertExpectations(t)
}

func TestRestoreDoesNotPromptWallet(t *testing.T) {
	provider := new(wallettest.MockProvider)
	store := &MemoryStore{}
	require.NoError(t, store.Save(Session{Account: "ABC123"}))

	s, err := NewManager(provider, store).Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ABC123", s.Account)
	provider.AssertNotCalled(t, "Connect", mock.Anything)

	s, err = NewManager(provider, &MemoryStore{}).Restore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestRequire(t *testing.T) {
	assert.True(t, errors.Is(Require(nil), errs.ErrNoSession))
	assert.True(t, errors.Is(Require(&Session{}), errs.ErrNoSession))
	assert.NoError(t, Require(&Session{Account: "ABC123"}))
}

func TestConnectedAccountReachesBalanceUnmodified(t *testing.T) {
	account := solana.NewWallet().PublicKey()
	provider := new(wallettest.MockProvider)
	provider.On("Connect", mock.Anything).Return(account, nil).Once()

	s, err := NewManager(provider, &MemoryStore{}).Connect(context.Background())
	require.NoError(t, err)

	client := new(chainstest.MockClient)
	client.On("GetBalance", mock.Anything, account).Return(uint64(1_500_000_000), nil).Once()

	bal, err := balance.NewReader(client).GetBalance(context.Background(), s.Account)
	require.NoError(t, err)
	assert.Equal(t, "1.5", bal.String())
	client.AssertExpectations(t)
}
