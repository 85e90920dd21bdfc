package chains

import (
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// NetworkConfig describes the cluster the application talks to.
type NetworkConfig struct {
	Cluster    string `json:"cluster" yaml:"cluster" mapstructure:"cluster"`
	RPCURL     string `json:"rpcUrl" yaml:"rpcUrl" mapstructure:"rpcUrl"`
	Commitment string `json:"commitment" yaml:"commitment" mapstructure:"commitment"`
}

// ResolvedNetwork is a NetworkConfig with defaults applied and the RPC URL picked.
type ResolvedNetwork struct {
	Cluster    string
	URL        string
	Commitment rpc.CommitmentType
}

// SignatureStatus is the chain's view of a submitted transaction.
type SignatureStatus struct {
	Slot       uint64
	Commitment rpc.ConfirmationStatusType
	Err        interface{}
}

// LatestBlockhash is the recent block reference attached to transactions.
type LatestBlockhash struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

var clusterRPCs = map[string]string{
	"devnet":       rpc.DevNet_RPC,
	"testnet":      rpc.TestNet_RPC,
	"mainnet-beta": rpc.MainNetBeta_RPC,
	"localnet":     rpc.LocalNet_RPC,
}

func normalizeCluster(cluster string) string {
	c := strings.ToLower(strings.TrimSpace(cluster))
	if c == "mainnet" {
		return "mainnet-beta"
	}
	return c
}

func commitmentRank(c rpc.ConfirmationStatusType) int {
	switch c {
	case rpc.ConfirmationStatusProcessed:
		return 1
	case rpc.ConfirmationStatusConfirmed:
		return 2
	case rpc.ConfirmationStatusFinalized:
		return 3
	default:
		return 0
	}
}

// reached reports whether a status at `have` satisfies the commitment `want`.
func reached(have rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	return commitmentRank(have) >= commitmentRank(rpc.ConfirmationStatusType(want))
}
