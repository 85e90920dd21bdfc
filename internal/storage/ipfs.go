package storage

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ipfs/go-cid"
)

const (
	DefaultPinningURL = "https://api.pinata.cloud"
	DefaultGatewayURL = "https://gateway.pinata.cloud"

	pinFilePath = "/pinning/pinFileToIPFS"
)

type IPFSConfig struct {
	PinningURL string
	GatewayURL string
	Token      string
	Timeout    time.Duration
}

// IPFSUploader pins files through a pinning service and serves them from its gateway.
type IPFSUploader struct {
	cfg  IPFSConfig
	http *http.Client
}

var _ Uploader = (*IPFSUploader)(nil)

func NewIPFSUploader(cfg IPFSConfig) *IPFSUploader {
	if cfg.PinningURL == "" {
		cfg.PinningURL = DefaultPinningURL
	}
	if cfg.GatewayURL == "" {
		cfg.GatewayURL = DefaultGatewayURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	cfg.PinningURL = strings.TrimRight(cfg.PinningURL, "/")
	cfg.GatewayURL = strings.TrimRight(cfg.GatewayURL, "/")
	return &IPFSUploader{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

func (u *IPFSUploader) Upload(ctx context.Context, name string, body io.Reader) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err == nil {
			_, err = io.Copy(part, body)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.PinningURL+pinFilePath, pr)
	if err != nil {
		_ = pr.Close()
		return "", errors.Wrap(err, "ipfs: build request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if u.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+u.cfg.Token)
	}

	resp, err := u.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "ipfs: pin request")
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Newf("ipfs: pin %s: status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out pinResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", errors.Wrap(err, "ipfs: decode pin response")
	}
	c, err := cid.Decode(out.IpfsHash)
	if err != nil {
		return "", errors.Wrapf(err, "ipfs: invalid cid %q", out.IpfsHash)
	}

	return u.cfg.GatewayURL + "/ipfs/" + c.String(), nil
}
