// Package nftprogram builds and submits Metaplex token-metadata NFT mints.
package nftprogram

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/sinbandera-io/vehicular-control/internal/chains"
)

const metadataFileName = "metadata.json"

// Collection groups NFTs in the off-chain metadata document.
type Collection struct {
	Name   string `json:"name"`
	Family string `json:"family"`
}

// Metadata is the off-chain JSON document the on-chain record points at.
type Metadata struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	Symbol      string     `json:"symbol"`
	Collection  Collection `json:"collection"`
}

type MetadataUpload struct {
	URI string
}

type CreateParams struct {
	URI                  string
	Name                 string
	Symbol               string
	SellerFeeBasisPoints uint16
	IsMutable            bool
	// MaxSupply nil means unlimited prints.
	MaxSupply *uint64
	// Owner receives the minted token.
	Owner solana.PublicKey
	// Payer funds the mint and acts as mint and update authority.
	Payer solana.PrivateKey
	// RecentBlockhash is fetched when zero.
	RecentBlockhash solana.Hash
}

type CreateOptions struct {
	Commitment     rpc.CommitmentType
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
}

type CreateResult struct {
	Signature solana.Signature
	Mint      solana.PublicKey
}

// Program is the NFT-program boundary used by the minting flow.
type Program interface {
	UploadMetadata(ctx context.Context, md Metadata) (MetadataUpload, error)
	CreateNFT(ctx context.Context, p CreateParams, opt CreateOptions) (CreateResult, error)
}

// JSONUploader stores a JSON document and returns its URI.
type JSONUploader interface {
	UploadJSON(ctx context.Context, name string, doc any) (string, error)
}

// Metaplex implements Program against a cluster and a storage backend.
type Metaplex struct {
	client   chains.Client
	uploader JSONUploader
	newMint  func() (solana.PrivateKey, error)
}

var _ Program = (*Metaplex)(nil)

func NewMetaplex(client chains.Client, uploader JSONUploader) *Metaplex {
	return &Metaplex{
		client:   client,
		uploader: uploader,
		newMint:  solana.NewRandomPrivateKey,
	}
}

func (m *Metaplex) UploadMetadata(ctx context.Context, md Metadata) (MetadataUpload, error) {
	uri, err := m.uploader.UploadJSON(ctx, metadataFileName, md)
	if err != nil {
		return MetadataUpload{}, err
	}
	return MetadataUpload{URI: uri}, nil
}

// CreateNFT mints a single token to the owner in one transaction and waits for
// the requested commitment.
func (m *Metaplex) CreateNFT(ctx context.Context, p CreateParams, opt CreateOptions) (CreateResult, error) {
	if strings.TrimSpace(p.URI) == "" {
		return CreateResult{}, errors.New("nft: metadata uri is empty")
	}
	if p.Owner.IsZero() {
		return CreateResult{}, errors.New("nft: owner is empty")
	}
	if len(p.Payer) == 0 {
		return CreateResult{}, errors.New("nft: payer key is empty")
	}

	mintKey, err := m.newMint()
	if err != nil {
		return CreateResult{}, errors.Wrap(err, "nft: generate mint key")
	}
	mint := mintKey.PublicKey()
	payer := p.Payer.PublicKey()

	ixs, err := m.mintInstructions(ctx, p, payer, mint)
	if err != nil {
		return CreateResult{}, err
	}

	blockhash := p.RecentBlockhash
	if blockhash.IsZero() {
		bh, err := m.client.LatestBlockhash(ctx)
		if err != nil {
			return CreateResult{}, errors.Wrap(err, "nft: latest blockhash")
		}
		blockhash = bh.Blockhash
	}

	tx, err := solana.NewTransaction(ixs, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return CreateResult{}, errors.Wrap(err, "nft: build transaction")
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		switch {
		case key.Equals(payer):
			return &p.Payer
		case key.Equals(mint):
			return &mintKey
		}
		return nil
	}); err != nil {
		return CreateResult{}, errors.Wrap(err, "nft: sign")
	}

	sig, err := m.client.SendTransaction(ctx, tx)
	if err != nil {
		return CreateResult{}, errors.Wrap(err, "nft: submit")
	}
	log.Info("nft mint submitted", "signature", sig.String(), "mint", mint.String(), "owner", p.Owner.String())

	commitment := opt.Commitment
	if commitment == "" {
		commitment = rpc.CommitmentFinalized
	}
	if _, err := chains.WaitForConfirmation(ctx, m.client, sig, chains.ConfirmOptions{
		Commitment:   commitment,
		Timeout:      opt.ConfirmTimeout,
		PollInterval: opt.PollInterval,
	}); err != nil {
		return CreateResult{Signature: sig, Mint: mint}, errors.Wrapf(err, "nft: confirm %s", sig)
	}

	return CreateResult{Signature: sig, Mint: mint}, nil
}

func (m *Metaplex) mintInstructions(ctx context.Context, p CreateParams, payer, mint solana.PublicKey) ([]solana.Instruction, error) {
	rent, err := m.client.MinimumBalanceForRentExemption(ctx, token.MINT_SIZE)
	if err != nil {
		return nil, errors.Wrap(err, "nft: mint rent")
	}

	ata, _, err := solana.FindAssociatedTokenAddress(p.Owner, mint)
	if err != nil {
		return nil, errors.Wrap(err, "nft: associated token address")
	}
	metadata, err := MetadataAddress(mint)
	if err != nil {
		return nil, errors.Wrap(err, "nft: metadata address")
	}
	edition, err := MasterEditionAddress(mint)
	if err != nil {
		return nil, errors.Wrap(err, "nft: edition address")
	}

	metaIx, err := NewCreateMetadataAccountV3Instruction(MetadataAccounts{
		Metadata:        metadata,
		Mint:            mint,
		MintAuthority:   payer,
		Payer:           payer,
		UpdateAuthority: payer,
	}, DataV2{
		Name:                 p.Name,
		Symbol:               p.Symbol,
		URI:                  p.URI,
		SellerFeeBasisPoints: p.SellerFeeBasisPoints,
		Creators:             []Creator{{Address: payer, Verified: true, Share: 100}},
	}, p.IsMutable)
	if err != nil {
		return nil, errors.Wrap(err, "nft: metadata instruction")
	}

	editionIx, err := NewCreateMasterEditionV3Instruction(MasterEditionAccounts{
		Edition:         edition,
		Mint:            mint,
		UpdateAuthority: payer,
		MintAuthority:   payer,
		Payer:           payer,
		Metadata:        metadata,
	}, p.MaxSupply)
	if err != nil {
		return nil, errors.Wrap(err, "nft: master edition instruction")
	}

	return []solana.Instruction{
		system.NewCreateAccountInstruction(rent, token.MINT_SIZE, solana.TokenProgramID, payer, mint).Build(),
		token.NewInitializeMintInstruction(0, payer, payer, mint, solana.SysVarRentPubkey).Build(),
		associatedtokenaccount.NewCreateInstruction(payer, p.Owner, mint).Build(),
		token.NewMintToInstruction(1, mint, ata, payer, nil).Build(),
		metaIx,
		editionIx,
	}, nil
}
