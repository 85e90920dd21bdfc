package main

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	clientconfig "github.com/sinbandera-io/vehicular-control/cmd/vehicular-control/config"
	"github.com/sinbandera-io/vehicular-control/internal/balance"
	"github.com/sinbandera-io/vehicular-control/internal/chains"
	"github.com/sinbandera-io/vehicular-control/internal/mintclient"
	"github.com/sinbandera-io/vehicular-control/internal/minting"
	"github.com/sinbandera-io/vehicular-control/internal/nftprogram"
	"github.com/sinbandera-io/vehicular-control/internal/notify"
	"github.com/sinbandera-io/vehicular-control/internal/session"
	"github.com/sinbandera-io/vehicular-control/internal/storage"
	"github.com/sinbandera-io/vehicular-control/internal/transfer"
	"github.com/sinbandera-io/vehicular-control/internal/wallet"
)

// app holds the configuration and the lazily built services shared by commands.
type app struct {
	verbose   bool
	assumeYes bool
	cfgDir    string

	cfg      *clientconfig.Config
	network  chains.ResolvedNetwork
	client   *chains.SolanaClient
	keystore *wallet.KeystoreStore
	provider *wallet.KeystoreProvider
	sessions *session.Manager
	out      *notify.Notifier
}

func (a *app) init() error {
	if err := clientconfig.LoadDotEnv(); err != nil {
		return err
	}

	paths := clientconfig.DefaultPaths()
	if a.cfgDir != "" {
		paths = append(paths, a.cfgDir)
	}
	cfg, err := clientconfig.LoadFrom(paths...)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	a.cfg = cfg
	a.out = notify.New(os.Stdout, a.verbose)

	a.network, err = chains.Resolve(cfg.Network.NetworkConfig)
	if err != nil {
		return err
	}
	return nil
}

func (a *app) chainClient() (*chains.SolanaClient, error) {
	if a.client != nil {
		return a.client, nil
	}
	c, err := chains.NewSolanaClient(a.network)
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

func (a *app) keystoreStore() (*wallet.KeystoreStore, error) {
	if a.keystore != nil {
		return a.keystore, nil
	}
	ks, err := wallet.NewKeystoreStore(a.cfg.Client.KeystorePath)
	if err != nil {
		return nil, err
	}
	a.keystore = ks
	return ks, nil
}

func (a *app) walletProvider() (*wallet.KeystoreProvider, error) {
	if a.provider != nil {
		return a.provider, nil
	}
	ks, err := a.keystoreStore()
	if err != nil {
		return nil, err
	}
	a.provider = wallet.NewKeystoreProvider(ks, wallet.NewTerminalApprover(a.assumeYes))
	return a.provider, nil
}

func (a *app) sessionManager() (*session.Manager, error) {
	if a.sessions != nil {
		return a.sessions, nil
	}
	provider, err := a.walletProvider()
	if err != nil {
		return nil, err
	}
	store, err := session.NewFileStore(a.cfg.Client.SessionPath)
	if err != nil {
		return nil, err
	}
	a.sessions = session.NewManager(provider, store, session.WithReload(func() {
		a.out.Info("Session cleared.")
	}))
	return a.sessions, nil
}

func (a *app) balanceReader() (*balance.Reader, error) {
	c, err := a.chainClient()
	if err != nil {
		return nil, err
	}
	return balance.NewReader(c), nil
}

func (a *app) transferExecutor() (*transfer.Executor, error) {
	c, err := a.chainClient()
	if err != nil {
		return nil, err
	}
	provider, err := a.walletProvider()
	if err != nil {
		return nil, err
	}
	return transfer.NewExecutor(c, provider, transfer.Config{
		Cluster:          a.network.Cluster,
		ExplorerTemplate: a.cfg.Network.TxExplorer,
		Commitment:       a.network.Commitment,
		ConfirmTimeout:   a.cfg.Network.ConfirmTimeout,
		PollInterval:     a.cfg.Network.PollInterval,
	}), nil
}

func (a *app) uploader(ctx context.Context) (storage.Uploader, error) {
	sc := a.cfg.Storage
	switch sc.Backend {
	case clientconfig.BackendS3:
		return storage.NewS3Uploader(ctx, storage.S3Config{
			Bucket:          sc.S3.Bucket,
			Region:          sc.S3.Region,
			Endpoint:        sc.S3.Endpoint,
			PublicBaseURL:   sc.S3.PublicBaseURL,
			AccessKeyID:     sc.S3.AccessKeyID,
			SecretAccessKey: sc.S3.SecretAccessKey,
			KeyPrefix:       sc.S3.KeyPrefix,
		})
	default:
		return storage.NewIPFSUploader(storage.IPFSConfig{
			PinningURL: sc.IPFS.PinningURL,
			GatewayURL: sc.IPFS.GatewayURL,
			Token:      sc.IPFS.Token,
			Timeout:    sc.IPFS.Timeout,
		}), nil
	}
}

func (a *app) storageAdapter(ctx context.Context) (*storage.Adapter, error) {
	up, err := a.uploader(ctx)
	if err != nil {
		return nil, err
	}
	return storage.NewAdapter(up), nil
}

func (a *app) orchestrator(ctx context.Context) (*minting.Orchestrator, error) {
	c, err := a.chainClient()
	if err != nil {
		return nil, err
	}
	adapter, err := a.storageAdapter(ctx)
	if err != nil {
		return nil, err
	}
	mintCommitment, err := chains.ParseCommitment(a.cfg.Network.MintCommitment)
	if err != nil {
		return nil, err
	}
	if clientconfig.PayerSecret() == "" {
		log.Warn("payer key not set; mints will fail", "env", "PAYER_PRIVATE_KEY")
	}

	return minting.NewOrchestrator(nftprogram.NewMetaplex(c, adapter), c, minting.Config{
		Collection:       a.cfg.Collection,
		Cluster:          a.network.Cluster,
		ExplorerTemplate: a.cfg.Network.MintExplorer,
		Commitment:       mintCommitment,
		ConfirmTimeout:   a.cfg.Network.ConfirmTimeout,
		PollInterval:     a.cfg.Network.PollInterval,
		SecretKey:        clientconfig.PayerSecret,
	}), nil
}

func (a *app) mintClient() *mintclient.Client {
	return mintclient.New(mintclient.Config{
		ServerURL:        a.cfg.Client.ServerURL,
		Token:            a.cfg.Client.Token,
		Cluster:          a.network.Cluster,
		ExplorerTemplate: a.cfg.Network.MintExplorer,
		Timeout:          a.cfg.Client.Timeout,
	})
}
