package chains

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Client is the subset of the cluster RPC the flows depend on.
type Client interface {
	GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
	LatestBlockhash(ctx context.Context) (LatestBlockhash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	// SignatureStatus returns nil, nil while the cluster does not know the signature yet.
	SignatureStatus(ctx context.Context, sig solana.Signature) (*SignatureStatus, error)
	MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
}

// Resolve applies defaults to cfg and picks the RPC URL: an explicit rpcUrl
// wins, otherwise the public endpoint of the named cluster.
func Resolve(cfg NetworkConfig) (ResolvedNetwork, error) {
	cluster := normalizeCluster(cfg.Cluster)
	if cluster == "" {
		return ResolvedNetwork{}, errors.New("network cluster is empty")
	}

	url := strings.TrimSpace(cfg.RPCURL)
	if url == "" {
		known, ok := clusterRPCs[cluster]
		if !ok {
			return ResolvedNetwork{}, fmt.Errorf("unknown cluster %q and no rpcUrl configured", cluster)
		}
		url = known
	}

	commitment, err := ParseCommitment(cfg.Commitment)
	if err != nil {
		return ResolvedNetwork{}, err
	}

	return ResolvedNetwork{
		Cluster:    cluster,
		URL:        url,
		Commitment: commitment,
	}, nil
}

// ParseCommitment maps a configured commitment level to the rpc type.
// Empty defaults to confirmed; the deprecated singleGossip/recent aliases are accepted.
func ParseCommitment(raw string) (rpc.CommitmentType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "confirmed", "singlegossip":
		return rpc.CommitmentConfirmed, nil
	case "processed", "recent":
		return rpc.CommitmentProcessed, nil
	case "finalized", "max", "root":
		return rpc.CommitmentFinalized, nil
	default:
		return "", fmt.Errorf("invalid commitment %q (allowed: processed, confirmed, finalized)", raw)
	}
}

// SolanaClient implements Client on top of the JSON-RPC client.
type SolanaClient struct {
	rpc        *rpc.Client
	network    ResolvedNetwork
	commitment rpc.CommitmentType
}

func NewSolanaClient(network ResolvedNetwork) (*SolanaClient, error) {
	if strings.TrimSpace(network.URL) == "" {
		return nil, errors.New("chains: rpc url is empty")
	}
	commitment := network.Commitment
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &SolanaClient{
		rpc:        rpc.New(network.URL),
		network:    network,
		commitment: commitment,
	}, nil
}

func (c *SolanaClient) Network() ResolvedNetwork { return c.network }

func (c *SolanaClient) GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	out, err := c.rpc.GetBalance(ctx, account, c.commitment)
	if err != nil {
		return 0, errors.Wrapf(err, "getBalance %s", account)
	}
	if out == nil {
		return 0, errors.Newf("getBalance %s: empty response", account)
	}
	return out.Value, nil
}

func (c *SolanaClient) LatestBlockhash(ctx context.Context) (LatestBlockhash, error) {
	out, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return LatestBlockhash{}, errors.Wrap(err, "getLatestBlockhash")
	}
	if out == nil || out.Value == nil {
		return LatestBlockhash{}, errors.New("getLatestBlockhash: empty response")
	}
	return LatestBlockhash{
		Blockhash:            out.Value.Blockhash,
		LastValidBlockHeight: out.Value.LastValidBlockHeight,
	}, nil
}

func (c *SolanaClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: c.commitment,
	})
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "sendTransaction")
	}
	return sig, nil
}

func (c *SolanaClient) SignatureStatus(ctx context.Context, sig solana.Signature) (*SignatureStatus, error) {
	out, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		return nil, errors.Wrapf(err, "getSignatureStatuses %s", sig)
	}
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		return nil, nil
	}
	st := out.Value[0]
	return &SignatureStatus{
		Slot:       st.Slot,
		Commitment: st.ConfirmationStatus,
		Err:        st.Err,
	}, nil
}

func (c *SolanaClient) MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	lamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, size, c.commitment)
	if err != nil {
		return 0, errors.Wrapf(err, "getMinimumBalanceForRentExemption(%d)", size)
	}
	return lamports, nil
}
