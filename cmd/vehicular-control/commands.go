package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sinbandera-io/vehicular-control/internal/balance"
	"github.com/sinbandera-io/vehicular-control/internal/errs"
	apihttp "github.com/sinbandera-io/vehicular-control/internal/http"
	"github.com/sinbandera-io/vehicular-control/internal/session"
	"github.com/sinbandera-io/vehicular-control/internal/wallet"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "vehicular-control",
		Short:         "Solana wallet, transfer and NFT minting client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "show error details")
	root.PersistentFlags().BoolVarP(&a.assumeYes, "yes", "y", false, "approve wallet prompts without asking")
	root.PersistentFlags().StringVar(&a.cfgDir, "config-dir", "", "extra directory searched for config.yaml")

	root.AddCommand(
		newConnectCmd(a),
		newDisconnectCmd(a),
		newSessionCmd(a),
		newBalanceCmd(a),
		newTransferCmd(a),
		newUploadCmd(a),
		newMintCmd(a),
		newServeCmd(a),
		newWalletCmd(a),
	)
	return root
}

func newConnectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Connect the local wallet and remember the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.sessionManager()
			if err != nil {
				return err
			}
			s, err := m.Connect(cmd.Context())
			if err != nil {
				return err
			}
			a.out.Success("Connected %s", s.Account)
			showBalance(a, cmd, s.Account)
			return nil
		},
	}
}

func newDisconnectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Forget the connected account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.sessionManager()
			if err != nil {
				return err
			}
			return m.Disconnect(cmd.Context())
		},
	}
}

func newSessionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show the connected account and its balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := restore(a, cmd)
			if err != nil {
				return err
			}
			if s == nil {
				a.out.Info("No wallet connected.")
				return nil
			}
			a.out.Status("Account", s.Account)
			a.out.Status("Connected", s.ConnectedAt.Local().Format("2006-01-02 15:04"))
			a.out.Status("Network", a.network.Cluster)
			showBalance(a, cmd, s.Account)
			return nil
		},
	}
}

func newBalanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [account]",
		Short: "Show the SOL balance of an account (default: connected account)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account := ""
			if len(args) == 1 {
				account = args[0]
			} else {
				s, err := restore(a, cmd)
				if err != nil {
					return err
				}
				if err := session.Require(s); err != nil {
					return err
				}
				account = s.Account
			}

			r, err := a.balanceReader()
			if err != nil {
				return err
			}
			bal, err := r.GetBalance(cmd.Context(), account)
			if err != nil {
				return err
			}
			a.out.Status("Balance", bal.String()+" SOL")
			return nil
		},
	}
}

func newTransferCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <receiver> <amount>",
		Short: "Send SOL from the connected account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := restore(a, cmd)
			if err != nil {
				return err
			}
			amount, err := balance.ParseAmount(args[1])
			if err != nil {
				return err
			}
			exec, err := a.transferExecutor()
			if err != nil {
				return err
			}

			a.out.Info("Sending %s SOL to %s", amount.String(), args[0])
			res, err := exec.Transfer(cmd.Context(), s, args[0], amount)
			if err != nil {
				return err
			}

			a.out.Success("Transfer confirmed")
			a.out.Status("Signature", res.Signature.String())
			a.out.Status("Explorer", res.ExplorerURL)
			if !res.Balance.IsZero() {
				a.out.Status("Balance", res.Balance.String()+" SOL")
			}
			return nil
		},
	}
}

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file|url>",
		Short: "Upload a local file or the content of a URL and print its URI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := a.storageAdapter(cmd.Context())
			if err != nil {
				return err
			}

			src := args[0]
			var uri string
			if isURL(src) {
				uri, err = adapter.UploadFromURL(cmd.Context(), src)
			} else {
				f, openErr := os.Open(src)
				if openErr != nil {
					return openErr
				}
				defer f.Close()
				uri, err = adapter.UploadFile(cmd.Context(), filepath.Base(src), f)
			}
			if err != nil {
				return err
			}

			a.out.Success("Uploaded")
			a.out.Status("URI", uri)
			return nil
		},
	}
}

func newMintCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "mint <image-uri>",
		Short: "Mint an NFT of an uploaded asset to the connected account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := restore(a, cmd)
			if err != nil {
				return err
			}
			res, err := a.mintClient().Mint(cmd.Context(), s, args[0], name)
			if err != nil {
				return err
			}

			a.out.Success("NFT minted")
			a.out.Status("Signature", res.Signature)
			if res.Mint != "" {
				a.out.Status("Mint", res.Mint)
			}
			a.out.Status("Explorer", res.ExplorerURL)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name of the NFT")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the mint API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logVersion()
			orch, err := a.orchestrator(cmd.Context())
			if err != nil {
				return err
			}

			router := apihttp.NewRouter(apihttp.NewHandler(orch), apihttp.RouterConfig{
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
				JWTSecret:      a.cfg.Server.JWTSecret,
			})
			srv := apihttp.NewServer(apihttp.ServerConfig{
				Host: a.cfg.Server.Host,
				Port: a.cfg.Server.Port,
			}, router)
			return srv.Run(cmd.Context())
		},
	}
}

func newWalletCmd(a *app) *cobra.Command {
	w := &cobra.Command{
		Use:   "wallet",
		Short: "Manage the local encrypted wallet",
	}
	w.AddCommand(&cobra.Command{
		Use:   "import <keygen.json>",
		Short: "Import a solana-keygen key file into the encrypted keystore",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := a.keystoreStore()
			if err != nil {
				return err
			}
			approver := wallet.NewTerminalApprover(false)
			pass, err := approver.Passphrase(cmd.Context(), "New keystore passphrase: ")
			if err != nil {
				return err
			}
			if term.IsTerminal(int(os.Stdin.Fd())) {
				again, err := approver.Passphrase(cmd.Context(), "Repeat passphrase: ")
				if err != nil {
					return err
				}
				if string(again) != string(pass) {
					return errs.Newf(errs.ErrInvalidRequest, "passphrases do not match")
				}
			}

			k, err := ks.ImportKeygenFile(args[0], pass)
			if err != nil {
				return err
			}
			a.out.Success("Wallet imported")
			a.out.Status("Account", k.PublicKey)
			a.out.Status("Keystore", ks.Path)
			return nil
		},
	})
	return w
}

func restore(a *app, cmd *cobra.Command) (*session.Session, error) {
	m, err := a.sessionManager()
	if err != nil {
		return nil, err
	}
	return m.Restore(cmd.Context())
}

// showBalance prints the balance of account; a failed read is reported, not returned.
func showBalance(a *app, cmd *cobra.Command, account string) {
	r, err := a.balanceReader()
	if err == nil {
		bal, balErr := r.GetBalance(cmd.Context(), account)
		if balErr == nil {
			a.out.Status("Balance", bal.String()+" SOL")
			return
		}
		err = balErr
	}
	a.out.Error(err)
}

func isURL(s string) bool {
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}
