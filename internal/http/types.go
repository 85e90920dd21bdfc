package http

// MintRequest is the body of POST /api/mintnft.
type MintRequest struct {
	Name         string `json:"name"         binding:"required"`
	ImageURI     string `json:"imageUri"     binding:"required"`
	OwnerAccount string `json:"ownerAccount" binding:"required"`
}

// MintResponse is returned on a successful mint.
type MintResponse struct {
	Signature   string `json:"signature"`
	Mint        string `json:"mint,omitempty"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

// ErrorResponse is returned on any failure.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
