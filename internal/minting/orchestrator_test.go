package minting

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sinbandera-io/vehicular-control/internal/chains"
	"github.com/sinbandera-io/vehicular-control/internal/chains/chainstest"
	"github.com/sinbandera-io/vehicular-control/internal/errs"
	"github.com/sinbandera-io/vehicular-control/internal/nftprogram"
	"github.com/sinbandera-io/vehicular-control/internal/nftprogram/nftprogramtest"
)

type fixture struct {
	program *nftprogramtest.MockProgram
	client  *chainstest.MockClient
	payer   solana.PrivateKey
	owner   solana.PublicKey
	orch    *Orchestrator
}

func newFixture(t *testing.T, secret string) *fixture {
	t.Helper()
	f := &fixture{
		program: new(nftprogramtest.MockProgram),
		client:  new(chainstest.MockClient),
		payer:   solana.NewWallet().PrivateKey,
		owner:   solana.NewWallet().PublicKey(),
	}
	if secret == "" {
		secret = f.payer.String()
	}
	f.orch = NewOrchestrator(f.program, f.client, Config{
		Collection: CollectionConfig{SellerFeeBasisPoints: DefaultSellerFeeBasisPoints},
		Cluster:    "devnet",
		SecretKey:  func() string { return secret },
	})
	return f
}

func (f *fixture) request() Request {
	return Request{Owner: f.owner.String(), AssetURI: "https://gw.test/ipfs/img", DisplayName: "Mi primer NFT"}
}

func TestMintHappyPath(t *testing.T) {
	f := newFixture(t, "")
	sig := solana.Signature{1, 2, 3}
	mint := solana.NewWallet().PublicKey()

	f.program.On("UploadMetadata", mock.Anything, nftprogram.Metadata{
		Name:        "Mi primer NFT",
		Description: "Project for Solana Hackathon 2024",
		Image:       "https://gw.test/ipfs/img",
		Symbol:      "STS",
		Collection:  nftprogram.Collection{Name: "SinBandera", Family: "Superteam MX"},
	}).Return(nftprogram.MetadataUpload{URI: "https://gw.test/ipfs/meta"}, nil).Once()
	f.client.On("LatestBlockhash", mock.Anything).Return(chains.LatestBlockhash{Blockhash: solana.Hash{9}}, nil).Once()

	var params nftprogram.CreateParams
	var opts nftprogram.CreateOptions
	f.program.On("CreateNFT", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			params = args.Get(1).(nftprogram.CreateParams)
			opts = args.Get(2).(nftprogram.CreateOptions)
		}).
		Return(nftprogram.CreateResult{Signature: sig, Mint: mint}, nil).Once()

	res, err := f.orch.Mint(context.Background(), f.request())
	require.NoError(t, err)

	assert.Equal(t, sig, res.Signature)
	assert.Equal(t, mint, res.Mint)
	assert.Equal(t, "https://solscan.io/tx/"+sig.String()+"?cluster=devnet", res.ExplorerURL)

	assert.Equal(t, "https://gw.test/ipfs/meta", params.URI)
	assert.Equal(t, "Mi primer NFT", params.Name)
	assert.Equal(t, "STS", params.Symbol)
	assert.Equal(t, uint16(500), params.SellerFeeBasisPoints)
	assert.True(t, params.IsMutable)
	require.NotNil(t, params.MaxSupply)
	assert.Equal(t, uint64(1), *params.MaxSupply)
	assert.Equal(t, f.owner, params.Owner)
	assert.Equal(t, f.payer.PublicKey(), params.Payer.PublicKey())
	assert.Equal(t, solana.Hash{9}, params.RecentBlockhash)
	assert.Equal(t, rpc.CommitmentFinalized, opts.Commitment)

	f.program.AssertExpectations(t)
	f.client.AssertExpectations(t)
}

func TestMintMetadataUploadFailureStopsFlow(t *testing.T) {
	f := newFixture(t, "")
	f.program.On("UploadMetadata", mock.Anything, mock.Anything).
		Return(nftprogram.MetadataUpload{}, errs.Newf(errs.ErrUpload, "gateway down")).Once()

	_, err := f.orch.Mint(context.Background(), f.request())
	assert.True(t, errors.Is(err, errs.ErrMetadataUpload))
	assert.Equal(t, "MetadataUploadError", errs.Kind(err))
	f.program.AssertNotCalled(t, "CreateNFT", mock.Anything, mock.Anything, mock.Anything)
	f.client.AssertNotCalled(t, "LatestBlockhash", mock.Anything)
}

func TestMintKeyDecodeError(t *testing.T) {
	for _, secret := range []string{"0OIl-not-base58", "3mJr7AoUXx2Wqd"} {
		f := newFixture(t, secret)
		f.program.On("UploadMetadata", mock.Anything, mock.Anything).
			Return(nftprogram.MetadataUpload{URI: "https://gw.test/ipfs/meta"}, nil).Once()

		_, err := f.orch.Mint(context.Background(), f.request())
		assert.True(t, errors.Is(err, errs.ErrKeyDecode), "secret %q: %v", secret, err)
		f.program.AssertNotCalled(t, "CreateNFT", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestMintBlockhashFailure(t *testing.T) {
	f := newFixture(t, "")
	f.program.On("UploadMetadata", mock.Anything, mock.Anything).
		Return(nftprogram.MetadataUpload{URI: "u"}, nil).Once()
	f.client.On("LatestBlockhash", mock.Anything).Return(chains.LatestBlockhash{}, errors.New("503")).Once()

	_, err := f.orch.Mint(context.Background(), f.request())
	assert.True(t, errors.Is(err, errs.ErrMint))
	f.program.AssertNotCalled(t, "CreateNFT", mock.Anything, mock.Anything, mock.Anything)
}

func TestMintCreateFailure(t *testing.T) {
	f := newFixture(t, "")
	f.program.On("UploadMetadata", mock.Anything, mock.Anything).
		Return(nftprogram.MetadataUpload{URI: "u"}, nil).Once()
	f.client.On("LatestBlockhash", mock.Anything).Return(chains.LatestBlockhash{Blockhash: solana.Hash{1}}, nil).Once()
	f.program.On("CreateNFT", mock.Anything, mock.Anything, mock.Anything).
		Return(nftprogram.CreateResult{}, errors.New("insufficient lamports")).Once()

	_, err := f.orch.Mint(context.Background(), f.request())
	assert.True(t, errors.Is(err, errs.ErrMint))
	assert.ErrorContains(t, err, "insufficient lamports")
}

func TestMintRejectsInvalidRequest(t *testing.T) {
	f := newFixture(t, "")
	owner := f.owner.String()

	for _, req := range []Request{
		{AssetURI: "u", DisplayName: "n"},
		{Owner: owner, DisplayName: "n"},
		{Owner: "not a key", AssetURI: "u"},
	} {
		_, err := f.orch.Mint(context.Background(), req)
		assert.True(t, errors.Is(err, errs.ErrInvalidRequest), "%+v: %v", req, err)
	}
	f.program.AssertNotCalled(t, "UploadMetadata", mock.Anything, mock.Anything)
}

func TestMintRejectsOversizedNameBeforeUpload(t *testing.T) {
	f := newFixture(t, "")
	req := f.request()
	req.DisplayName = strings.Repeat("x", nftprogram.MaxNameLen+1)

	_, err := f.orch.Mint(context.Background(), req)
	assert.True(t, errors.Is(err, errs.ErrInvalidRequest), "%v", err)
	assert.Equal(t, "InvalidRequest", errs.Kind(err))
	f.program.AssertNotCalled(t, "UploadMetadata", mock.Anything, mock.Anything)
	f.client.AssertNotCalled(t, "LatestBlockhash", mock.Anything)
}

func TestMintRejectsOversizedSymbolBeforeUpload(t *testing.T) {
	program := new(nftprogramtest.MockProgram)
	client := new(chainstest.MockClient)
	orch := NewOrchestrator(program, client, Config{
		Collection: CollectionConfig{Symbol: "SINBANDERA-X"},
	})

	_, err := orch.Mint(context.Background(), Request{
		Owner:       solana.NewWallet().PublicKey().String(),
		AssetURI:    "https://gw.test/ipfs/img",
		DisplayName: "car",
	})
	assert.True(t, errors.Is(err, errs.ErrInvalidRequest), "%v", err)
	program.AssertNotCalled(t, "UploadMetadata", mock.Anything, mock.Anything)
}

func TestMintKeepsZeroSellerFeeAndSingleSupply(t *testing.T) {
	program := new(nftprogramtest.MockProgram)
	client := new(chainstest.MockClient)
	payer := solana.NewWallet().PrivateKey
	orch := NewOrchestrator(program, client, Config{
		SecretKey: func() string { return payer.String() },
	})

	program.On("UploadMetadata", mock.Anything, mock.Anything).
		Return(nftprogram.MetadataUpload{URI: "u"}, nil).Once()
	client.On("LatestBlockhash", mock.Anything).Return(chains.LatestBlockhash{Blockhash: solana.Hash{1}}, nil).Once()

	var params nftprogram.CreateParams
	program.On("CreateNFT", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { params = args.Get(1).(nftprogram.CreateParams) }).
		Return(nftprogram.CreateResult{Signature: solana.Signature{7}}, nil).Once()

	_, err := orch.Mint(context.Background(), Request{
		Owner:       solana.NewWallet().PublicKey().String(),
		AssetURI:    "https://gw.test/ipfs/img",
		DisplayName: "car",
	})
	require.NoError(t, err)
	assert.Zero(t, params.SellerFeeBasisPoints)
	require.NotNil(t, params.MaxSupply)
	assert.Equal(t, uint64(1), *params.MaxSupply)
}
