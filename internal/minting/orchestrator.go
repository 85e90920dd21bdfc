// Package minting turns a mint request into an on-chain NFT owned by the
// requester, paid for by the server key.
package minting

import (
	"context"
	"crypto/ed25519"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/sinbandera-io/vehicular-control/internal/chains"
	"github.com/sinbandera-io/vehicular-control/internal/errs"
	"github.com/sinbandera-io/vehicular-control/internal/nftprogram"
)

const (
	DefaultSymbol               = "STS"
	DefaultDescription          = "Project for Solana Hackathon 2024"
	DefaultCollectionName       = "SinBandera"
	DefaultCollectionFamily     = "Superteam MX"
	DefaultSellerFeeBasisPoints = 500

	// editionMaxSupply caps the master edition at the one token minted.
	editionMaxSupply uint64 = 1
)

// CollectionConfig is fixed per deployment. A zero seller fee is kept as zero.
type CollectionConfig struct {
	Symbol               string `mapstructure:"symbol"`
	Description          string `mapstructure:"description"`
	Name                 string `mapstructure:"name"`
	Family               string `mapstructure:"family"`
	SellerFeeBasisPoints uint16 `mapstructure:"sellerFeeBasisPoints"`
}

type Config struct {
	Collection       CollectionConfig
	Cluster          string
	ExplorerTemplate string
	Commitment       rpc.CommitmentType
	ConfirmTimeout   time.Duration
	PollInterval     time.Duration
	// SecretKey returns the base58 payer key; it is decoded on every mint.
	SecretKey func() string
}

type Request struct {
	Owner       string
	AssetURI    string
	DisplayName string
}

type Result struct {
	Signature   solana.Signature
	Mint        solana.PublicKey
	ExplorerURL string
}

type Orchestrator struct {
	program nftprogram.Program
	client  chains.Client
	cfg     Config
}

func NewOrchestrator(program nftprogram.Program, client chains.Client, cfg Config) *Orchestrator {
	c := &cfg.Collection
	if c.Symbol == "" {
		c.Symbol = DefaultSymbol
	}
	if c.Description == "" {
		c.Description = DefaultDescription
	}
	if c.Name == "" {
		c.Name = DefaultCollectionName
	}
	if c.Family == "" {
		c.Family = DefaultCollectionFamily
	}
	if cfg.Commitment == "" {
		cfg.Commitment = rpc.CommitmentFinalized
	}
	if cfg.ExplorerTemplate == "" {
		cfg.ExplorerTemplate = chains.DefaultMintExplorer
	}
	if cfg.SecretKey == nil {
		cfg.SecretKey = func() string { return "" }
	}
	return &Orchestrator{program: program, client: client, cfg: cfg}
}

// Mint uploads the metadata document, then mints one token to the owner.
// Uploaded metadata is left in place when a later step fails.
func (o *Orchestrator) Mint(ctx context.Context, req Request) (*Result, error) {
	owner, err := o.validate(req)
	if err != nil {
		return nil, err
	}

	md := nftprogram.Metadata{
		Name:        req.DisplayName,
		Description: o.cfg.Collection.Description,
		Image:       req.AssetURI,
		Symbol:      o.cfg.Collection.Symbol,
		Collection: nftprogram.Collection{
			Name:   o.cfg.Collection.Name,
			Family: o.cfg.Collection.Family,
		},
	}

	upload, err := o.program.UploadMetadata(ctx, md)
	if err != nil {
		log.Error("metadata upload failed", "owner", req.Owner, "error", err)
		return nil, errs.Wrap(errs.ErrMetadataUpload, err, "mint: upload metadata")
	}
	log.Info("metadata uploaded", "uri", upload.URI)

	payer, err := solana.PrivateKeyFromBase58(strings.TrimSpace(o.cfg.SecretKey()))
	if err != nil {
		log.Error("payer key decode failed", "error", err)
		return nil, errs.Wrap(errs.ErrKeyDecode, err, "mint: decode payer key")
	}
	if len(payer) != ed25519.PrivateKeySize {
		return nil, errs.Newf(errs.ErrKeyDecode, "mint: payer key is %d bytes, want %d", len(payer), ed25519.PrivateKeySize)
	}

	bh, err := o.client.LatestBlockhash(ctx)
	if err != nil {
		log.Error("latest blockhash failed", "error", err)
		return nil, errs.Wrap(errs.ErrMint, err, "mint: latest blockhash")
	}

	maxSupply := editionMaxSupply
	created, err := o.program.CreateNFT(ctx, nftprogram.CreateParams{
		URI:                  upload.URI,
		Name:                 req.DisplayName,
		Symbol:               o.cfg.Collection.Symbol,
		SellerFeeBasisPoints: o.cfg.Collection.SellerFeeBasisPoints,
		IsMutable:            true,
		MaxSupply:            &maxSupply,
		Owner:                owner,
		Payer:                payer,
		RecentBlockhash:      bh.Blockhash,
	}, nftprogram.CreateOptions{
		Commitment:     o.cfg.Commitment,
		ConfirmTimeout: o.cfg.ConfirmTimeout,
		PollInterval:   o.cfg.PollInterval,
	})
	if err != nil {
		log.Error("nft creation failed", "owner", req.Owner, "metadata", upload.URI, "error", err)
		return nil, errs.Wrap(errs.ErrMint, err, "mint: create nft")
	}

	log.Info("nft minted", "signature", created.Signature.String(), "mint", created.Mint.String(), "owner", req.Owner)
	return &Result{
		Signature:   created.Signature,
		Mint:        created.Mint,
		ExplorerURL: chains.ExplorerLink(o.cfg.ExplorerTemplate, created.Signature.String(), o.cfg.Cluster),
	}, nil
}

// validate rejects requests the metadata program would refuse, before anything is uploaded.
func (o *Orchestrator) validate(req Request) (solana.PublicKey, error) {
	if strings.TrimSpace(req.Owner) == "" {
		return solana.PublicKey{}, errs.Newf(errs.ErrInvalidRequest, "ownerAccount is required")
	}
	if strings.TrimSpace(req.AssetURI) == "" {
		return solana.PublicKey{}, errs.Newf(errs.ErrInvalidRequest, "imageUri is required")
	}
	if len(req.DisplayName) > nftprogram.MaxNameLen {
		return solana.PublicKey{}, errs.Newf(errs.ErrInvalidRequest, "name is %d bytes, max %d", len(req.DisplayName), nftprogram.MaxNameLen)
	}
	if len(o.cfg.Collection.Symbol) > nftprogram.MaxSymbolLen {
		return solana.PublicKey{}, errs.Newf(errs.ErrInvalidRequest, "collection symbol %q longer than %d bytes", o.cfg.Collection.Symbol, nftprogram.MaxSymbolLen)
	}
	owner, err := solana.PublicKeyFromBase58(strings.TrimSpace(req.Owner))
	if err != nil {
		return solana.PublicKey{}, errs.Wrap(errs.ErrInvalidRequest, errors.Wrap(err, req.Owner), "ownerAccount is not a public key")
	}
	return owner, nil
}
