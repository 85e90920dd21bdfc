package session

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/sinbandera-io/vehicular-control/internal/errs"
	"github.com/sinbandera-io/vehicular-control/internal/wallet"
)

// Manager connects and disconnects the wallet and keeps the store in sync.
type Manager struct {
	provider wallet.Provider
	store    Store
	onReload func()
	now      func() time.Time
}

type Option func(*Manager)

// WithReload sets the hook run after a disconnect (the view reload).
func WithReload(fn func()) Option {
	return func(m *Manager) { m.onReload = fn }
}

func NewManager(provider wallet.Provider, store Store, opts ...Option) *Manager {
	m := &Manager{
		provider: provider,
		store:    store,
		onReload: func() {},
		now:      time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Connect asks the wallet for an account and persists it.
func (m *Manager) Connect(ctx context.Context) (*Session, error) {
	if m.provider == nil {
		return nil, errs.Newf(errs.ErrProviderUnavailable, wallet.InstallHint)
	}

	account, err := m.provider.Connect(ctx)
	if err != nil {
		if errors.Is(err, errs.ErrProviderUnavailable) || errors.Is(err, errs.ErrUserRejected) {
			return nil, err
		}
		return nil, errs.Wrap(errs.ErrUserRejected, err, "wallet connect")
	}

	s := Session{Account: account.String(), ConnectedAt: m.now().UTC()}
	if err := m.store.Save(s); err != nil {
		return nil, errors.Wrap(err, "persist session")
	}

	log.Info("session created", "account", s.Account)
	return &s, nil
}

// Disconnect clears the stored session, ends the wallet session and reloads the view.
func (m *Manager) Disconnect(ctx context.Context) error {
	if err := m.store.Clear(); err != nil {
		return err
	}
	if m.provider != nil {
		if err := m.provider.Disconnect(ctx); err != nil {
			log.Warn("wallet disconnect failed", "error", err)
		}
	}
	log.Info("session cleared")
	m.onReload()
	return nil
}

// Restore returns the stored session without prompting the wallet, or nil when absent.
func (m *Manager) Restore(_ context.Context) (*Session, error) {
	s, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if s != nil {
		log.Info("session restored", "account", s.Account)
	}
	return s, nil
}

// Require returns ErrNoSession when s is nil.
func Require(s *Session) error {
	if s == nil || s.Account == "" {
		return errs.Newf(errs.ErrNoSession, "connect a wallet first")
	}
	return nil
}
