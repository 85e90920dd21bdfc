package wallet

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// Provider is the wallet boundary: it owns the keys, the application only
// ever sees the public account and signed transactions.
type Provider interface {
	Connect(ctx context.Context) (solana.PublicKey, error)
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
	Disconnect(ctx context.Context) error
}

// SignRequest is what the user is shown before approving a signature.
type SignRequest struct {
	Account      string
	Instructions int
	Summary      string
}

// Approver asks the human in front of the wallet.
type Approver interface {
	Passphrase(ctx context.Context, prompt string) ([]byte, error)
	ApproveConnect(ctx context.Context, account string) (bool, error)
	ApproveSignature(ctx context.Context, req SignRequest) (bool, error)
}
