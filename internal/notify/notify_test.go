package notify

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/sinbandera-io/vehicular-control/internal/errs"
)

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Contains(t, UserMessage(errs.Newf(errs.ErrNoSession, "x")), "Connect a wallet")
	assert.Contains(t, UserMessage(errs.Wrap(errs.ErrConfirmationTimeout, errors.New("deadline"), "tx")), "not confirmed in time")
	assert.Equal(t, "Something went wrong.", UserMessage(errors.New("boom")))
}

func TestEveryKindHasAMessage(t *testing.T) {
	for _, kind := range []error{
		errs.ErrProviderUnavailable, errs.ErrUserRejected, errs.ErrRPCUnavailable,
		errs.ErrInsufficientFunds, errs.ErrSignatureDenied, errs.ErrSubmission,
		errs.ErrConfirmationTimeout, errs.ErrUpload, errs.ErrFetch, errs.ErrMetadataUpload,
		errs.ErrKeyDecode, errs.ErrMint, errs.ErrNoSession, errs.ErrInvalidRequest,
	} {
		_, ok := messages[errs.Kind(kind)]
		assert.True(t, ok, errs.Kind(kind))
	}
}

func TestNotifierError(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true).Error(errs.Wrap(errs.ErrFetch, errors.New("status 404"), "fetch"))

	out := buf.String()
	assert.Contains(t, out, "could not be downloaded")
	assert.Contains(t, out, "status 404")

	buf.Reset()
	New(&buf, false).Error(errs.Newf(errs.ErrFetch, "status 404"))
	assert.NotContains(t, buf.String(), "status 404")

	buf.Reset()
	New(&buf, false).Error(nil)
	assert.Empty(t, buf.String())
}

func TestNotifierLines(t *testing.T) {
	var buf bytes.Buffer
	n := New(&buf, false)
	n.Success("sent %s SOL", "0.5")
	n.Status("Signature", "5abc")

	assert.Contains(t, buf.String(), "sent 0.5 SOL")
	assert.Contains(t, buf.String(), "5abc")
}
