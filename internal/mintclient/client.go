// Package mintclient calls the remote mint endpoint on behalf of the connected account.
package mintclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/sinbandera-io/vehicular-control/internal/chains"
	"github.com/sinbandera-io/vehicular-control/internal/errs"
	apihttp "github.com/sinbandera-io/vehicular-control/internal/http"
	"github.com/sinbandera-io/vehicular-control/internal/session"
)

const mintPath = "/api/mintnft"

type Config struct {
	ServerURL        string
	Token            string
	Cluster          string
	ExplorerTemplate string
	Timeout          time.Duration
}

type Result struct {
	Signature   string
	Mint        string
	ExplorerURL string
}

type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.ExplorerTemplate == "" {
		cfg.ExplorerTemplate = chains.DefaultMintExplorer
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// Mint asks the server to mint assetURI as an NFT owned by the session account.
func (c *Client) Mint(ctx context.Context, sess *session.Session, assetURI, name string) (*Result, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	if strings.TrimSpace(assetURI) == "" {
		return nil, errs.Newf(errs.ErrInvalidRequest, "asset uri is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errs.Newf(errs.ErrInvalidRequest, "nft name is required")
	}

	body, err := json.Marshal(apihttp.MintRequest{
		Name:         name,
		ImageURI:     assetURI,
		OwnerAccount: sess.Account,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrMint, err, "encode mint request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ServerURL+mintPath, bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.ErrMint, err, "build mint request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set(apihttp.HeaderAuthorization, apihttp.BearerPrefix+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.ErrMint, err, "mint request")
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		var e apihttp.ErrorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		log.Error("mint endpoint failed", "status", resp.StatusCode, "kind", e.Kind, "error", msg)
		return nil, errs.Newf(errs.FromKind(e.Kind), "mint endpoint: status %d: %s", resp.StatusCode, msg)
	}

	var out apihttp.MintResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errs.Wrap(errs.ErrMint, err, "decode mint response")
	}
	if out.Signature == "" {
		return nil, errs.Newf(errs.ErrMint, "mint endpoint returned no signature")
	}

	explorer := out.ExplorerURL
	if explorer == "" {
		explorer = chains.ExplorerLink(c.cfg.ExplorerTemplate, out.Signature, c.cfg.Cluster)
	}
	return &Result{Signature: out.Signature, Mint: out.Mint, ExplorerURL: explorer}, nil
}
