package wallet

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/sinbandera-io/vehicular-control/internal/errs"
)

// InstallHint is shown when no wallet is available.
const InstallHint = "no wallet keystore found: run `vehicular-control wallet import <keypair.json>` or install a Solana wallet"

// KeystoreProvider is a local wallet backed by an encrypted keystore file.
type KeystoreProvider struct {
	store    *KeystoreStore
	approver Approver

	mu  sync.Mutex
	key solana.PrivateKey
}

var _ Provider = (*KeystoreProvider)(nil)

func NewKeystoreProvider(store *KeystoreStore, approver Approver) *KeystoreProvider {
	return &KeystoreProvider{store: store, approver: approver}
}

// Available reports whether a keystore exists.
func (p *KeystoreProvider) Available() bool {
	if p == nil || p.store == nil || p.approver == nil {
		return false
	}
	_, err := os.Stat(p.store.Path)
	return err == nil
}

func (p *KeystoreProvider) Connect(ctx context.Context) (solana.PublicKey, error) {
	if !p.Available() {
		return solana.PublicKey{}, errs.Newf(errs.ErrProviderUnavailable, InstallHint)
	}

	key, err := p.unlock(ctx)
	if err != nil {
		return solana.PublicKey{}, err
	}

	account := key.PublicKey()
	ok, err := p.approver.ApproveConnect(ctx, account.String())
	if err != nil {
		return solana.PublicKey{}, errs.Wrap(errs.ErrUserRejected, err, "connect approval")
	}
	if !ok {
		p.lock()
		return solana.PublicKey{}, errs.Newf(errs.ErrUserRejected, "connection to %s declined", account)
	}

	log.Info("wallet connected", "account", account.String())
	return account, nil
}

func (p *KeystoreProvider) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	if tx == nil {
		return nil, errs.Newf(errs.ErrInvalidRequest, "nil transaction")
	}
	if !p.Available() {
		return nil, errs.Newf(errs.ErrProviderUnavailable, InstallHint)
	}

	// A restored session has not unlocked the keystore yet.
	key, err := p.unlock(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrSignatureDenied, err, "unlock wallet for signing")
	}

	account := key.PublicKey()
	if !tx.Message.IsSigner(account) {
		return nil, errs.Newf(errs.ErrSignatureDenied, "wallet account %s is not a signer of this transaction", account)
	}

	ok, err := p.approver.ApproveSignature(ctx, SignRequest{
		Account:      account.String(),
		Instructions: len(tx.Message.Instructions),
		Summary:      summarize(tx),
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrSignatureDenied, err, "signature approval")
	}
	if !ok {
		return nil, errs.Newf(errs.ErrSignatureDenied, "signature declined by %s", account)
	}

	_, err = tx.PartialSign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(account) {
			return &key
		}
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrSignatureDenied, err, "sign transaction")
	}
	return tx, nil
}

func (p *KeystoreProvider) Disconnect(_ context.Context) error {
	p.lock()
	log.Info("wallet disconnected")
	return nil
}

func (p *KeystoreProvider) unlock(ctx context.Context) (solana.PrivateKey, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.key != nil {
		return p.key, nil
	}

	pass, err := p.approver.Passphrase(ctx, "Wallet passphrase: ")
	if err != nil {
		return nil, errs.Wrap(errs.ErrUserRejected, err, "read passphrase")
	}
	if len(pass) == 0 {
		return nil, errs.Newf(errs.ErrUserRejected, "empty passphrase")
	}
	defer zero(pass)

	ks, err := p.store.Load(pass)
	if err != nil {
		return nil, errs.Wrap(errs.ErrUserRejected, err, "unlock keystore")
	}
	key, err := ks.privateKey()
	if err != nil {
		return nil, errs.Wrap(errs.ErrProviderUnavailable, err, "keystore")
	}

	p.key = key
	return key, nil
}

func (p *KeystoreProvider) lock() {
	p.mu.Lock()
	defer p.mu.Unlock()
	zero(p.key)
	p.key = nil
}

func summarize(tx *solana.Transaction) string {
	programs := make([]string, 0, len(tx.Message.Instructions))
	for _, ix := range tx.Message.Instructions {
		prog, err := tx.Message.Program(ix.ProgramIDIndex)
		if err != nil {
			programs = append(programs, "unknown")
			continue
		}
		programs = append(programs, prog.Short(4))
	}
	return fmt.Sprintf("%d instruction(s) %v", len(programs), programs)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// IsUnavailable reports whether err means no wallet is installed.
func IsUnavailable(err error) bool {
	return errors.Is(err, errs.ErrProviderUnavailable)
}
