package errs

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsKindAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrRPCUnavailable, cause, "get balance")

	assert.True(t, errors.Is(err, ErrRPCUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrMint))
	assert.Contains(t, err.Error(), "get balance")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapWithoutCause(t *testing.T) {
	err := Wrap(ErrInsufficientFunds, nil, "amount 2 exceeds balance 1")

	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	assert.Equal(t, "amount 2 exceeds balance 1: insufficient funds", err.Error())
}

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{Wrap(ErrProviderUnavailable, errors.New("x"), "connect"), "ProviderUnavailable"},
		{Newf(ErrKeyDecode, "bad key %d", 1), "KeyDecodeError"},
		{Wrapf(ErrConfirmationTimeout, errors.New("deadline"), "tx %s", "abc"), "ConfirmationTimeout"},
		{errors.New("boom"), "Internal"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Kind(tc.err))
	}
}

func TestKindPrefersOuterFlowKind(t *testing.T) {
	inner := Newf(ErrUpload, "gateway down")
	err := Wrap(ErrMetadataUpload, inner, "mint: upload metadata")

	assert.True(t, errors.Is(err, ErrUpload))
	assert.Equal(t, "MetadataUploadError", Kind(err))
}

func TestFromKindRoundTrips(t *testing.T) {
	for _, k := range kinds {
		assert.Equal(t, k.err, FromKind(k.name))
		assert.Equal(t, k.name, Kind(Newf(FromKind(k.name), "remote")))
	}
	assert.Equal(t, ErrMint, FromKind(""))
	assert.Equal(t, ErrMint, FromKind("Internal"))
}
