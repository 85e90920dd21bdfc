// Package errs holds the error kinds surfaced to the user by every flow.
//
// A kind is a sentinel. Failures keep their cause and context and are marked
// with the kind, so callers test them with errors.Is.
package errs

import (
	"github.com/cockroachdb/errors"
)

var (
	ErrProviderUnavailable = errors.New("wallet provider unavailable")
	ErrUserRejected        = errors.New("user rejected the request")
	ErrRPCUnavailable      = errors.New("rpc unavailable")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrSignatureDenied     = errors.New("signature denied")
	ErrSubmission          = errors.New("transaction submission failed")
	ErrConfirmationTimeout = errors.New("transaction confirmation timed out")
	ErrUpload              = errors.New("upload failed")
	ErrFetch               = errors.New("fetch failed")
	ErrMetadataUpload      = errors.New("metadata upload failed")
	ErrKeyDecode           = errors.New("signing key decode failed")
	ErrMint                = errors.New("mint failed")

	ErrNoSession      = errors.New("no wallet session")
	ErrInvalidRequest = errors.New("invalid request")
)

// kinds is ordered so that flow-level kinds win over the kinds they wrap:
// a metadata upload failure carries UploadError too but reports MetadataUploadError.
var kinds = []struct {
	err  error
	name string
}{
	{ErrMetadataUpload, "MetadataUploadError"},
	{ErrKeyDecode, "KeyDecodeError"},
	{ErrMint, "MintError"},
	{ErrNoSession, "NoSession"},
	{ErrInvalidRequest, "InvalidRequest"},
	{ErrProviderUnavailable, "ProviderUnavailable"},
	{ErrUserRejected, "UserRejected"},
	{ErrInsufficientFunds, "InsufficientFunds"},
	{ErrSignatureDenied, "SignatureDenied"},
	{ErrSubmission, "SubmissionError"},
	{ErrConfirmationTimeout, "ConfirmationTimeout"},
	{ErrRPCUnavailable, "RpcUnavailable"},
	{ErrUpload, "UploadError"},
	{ErrFetch, "FetchError"},
}

// FromKind returns the sentinel named by a taxonomy name, as reported by Kind.
// Unknown names map to ErrMint.
func FromKind(name string) error {
	for _, k := range kinds {
		if k.name == name {
			return k.err
		}
	}
	return ErrMint
}

// Wrap annotates cause with msg and marks it with kind.
// A nil cause yields kind annotated with msg.
func Wrap(kind error, cause error, msg string) error {
	if cause == nil {
		return errors.Wrap(kind, msg)
	}
	return errors.Mark(errors.Wrap(cause, msg), kind)
}

// Wrapf is Wrap with a format string.
func Wrapf(kind error, cause error, format string, args ...interface{}) error {
	if cause == nil {
		return errors.Wrapf(kind, format, args...)
	}
	return errors.Mark(errors.Wrapf(cause, format, args...), kind)
}

// Newf builds an error of the given kind with no underlying cause.
func Newf(kind error, format string, args ...interface{}) error {
	return errors.Wrapf(kind, format, args...)
}

// Kind returns the taxonomy name of err, or "Internal" for unclassified errors.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}
