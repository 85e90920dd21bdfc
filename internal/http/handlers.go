package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/sinbandera-io/vehicular-control/internal/errs"
	"github.com/sinbandera-io/vehicular-control/internal/minting"
)

// Minter runs one mint end to end.
type Minter interface {
	Mint(ctx context.Context, req minting.Request) (*minting.Result, error)
}

type Handler struct {
	minter Minter
}

func NewHandler(minter Minter) *Handler {
	return &Handler{minter: minter}
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// POST /api/mintnft
func (h *Handler) MintNFT(c *gin.Context) {
	if h.minter == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: HTTPErrorMinterMissingText})
		return
	}

	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: errs.Kind(errs.ErrInvalidRequest)})
		return
	}

	res, err := h.minter.Mint(c.Request.Context(), minting.Request{
		Owner:       req.OwnerAccount,
		AssetURI:    req.ImageURI,
		DisplayName: req.Name,
	})
	if err != nil {
		log.Error("mint request failed",
			"request_id", c.GetString(ContextKeyRequestID),
			"owner", req.OwnerAccount,
			"kind", errs.Kind(err),
			"error", err,
		)
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error(), Kind: errs.Kind(err)})
		return
	}

	c.JSON(http.StatusOK, MintResponse{
		Signature:   res.Signature.String(),
		Mint:        res.Mint.String(),
		ExplorerURL: res.ExplorerURL,
	})
}

func statusFor(err error) int {
	switch errs.Kind(err) {
	case "InvalidRequest":
		return http.StatusBadRequest
	case "MetadataUploadError", "MintError":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
