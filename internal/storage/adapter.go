package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/sinbandera-io/vehicular-control/internal/constants"
	"github.com/sinbandera-io/vehicular-control/internal/errs"
)

// Adapter maps uploads and URL fetches onto the error taxonomy.
type Adapter struct {
	uploader Uploader
	http     *http.Client
}

func NewAdapter(uploader Uploader) *Adapter {
	return &Adapter{
		uploader: uploader,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

// UploadFile stores r under name and returns its URI.
func (a *Adapter) UploadFile(ctx context.Context, name string, r io.Reader) (string, error) {
	if a.uploader == nil {
		return "", errs.Newf(errs.ErrUpload, "storage: no uploader configured")
	}
	uri, err := a.uploader.Upload(ctx, name, r)
	if err != nil {
		log.Error("upload failed", "name", name, "error", err)
		return "", errs.Wrapf(errs.ErrUpload, err, "upload %s", name)
	}
	log.Info("file uploaded", "name", name, "uri", uri)
	return uri, nil
}

// UploadFromURL fetches url and re-uploads the bytes as a file. The content
// is not inspected.
func (a *Adapter) UploadFromURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errs.Wrapf(errs.ErrFetch, err, "fetch %s", url)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return "", errs.Wrapf(errs.ErrFetch, err, "fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errs.Newf(errs.ErrFetch, "fetch %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.Wrapf(errs.ErrFetch, err, "read %s", url)
	}

	return a.UploadFile(ctx, constants.DefaultUploadName, bytes.NewReader(data))
}

// UploadJSON marshals doc and uploads it under name.
func (a *Adapter) UploadJSON(ctx context.Context, name string, doc any) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", errs.Wrapf(errs.ErrUpload, err, "marshal %s", name)
	}
	return a.UploadFile(ctx, name, bytes.NewReader(raw))
}
