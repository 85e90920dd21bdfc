// Package notify renders short transient notices for the CLI.
package notify

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/sinbandera-io/vehicular-control/internal/errs"
)

var (
	ColorSuccess = lipgloss.AdaptiveColor{Light: "2", Dark: "2"}
	ColorError   = lipgloss.AdaptiveColor{Light: "1", Dark: "1"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "6", Dark: "6"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "8", Dark: "8"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "3", Dark: "3"}

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleLabel   = lipgloss.NewStyle().Bold(true).Width(12)

	IconSuccess = "✔"
	IconError   = "✘"
	IconInfo    = "ℹ"
	IconWarning = "⚠"
)

var messages = map[string]string{
	"ProviderUnavailable": "No wallet found. Import one with 'vehicular-control wallet import'.",
	"UserRejected":        "The wallet request was declined.",
	"RpcUnavailable":      "The Solana RPC endpoint could not be reached. Try again later.",
	"InsufficientFunds":   "Your balance does not cover this amount.",
	"SignatureDenied":     "The transaction was not signed.",
	"SubmissionError":     "The transaction was rejected by the network.",
	"ConfirmationTimeout": "The transaction was sent but not confirmed in time. Check the explorer before retrying.",
	"UploadError":         "The file could not be uploaded.",
	"FetchError":          "The file could not be downloaded from that URL.",
	"MetadataUploadError": "The NFT metadata could not be uploaded.",
	"KeyDecodeError":      "The mint server key is misconfigured.",
	"MintError":           "The NFT could not be minted.",
	"NoSession":           "Connect a wallet first with 'vehicular-control connect'.",
	"InvalidRequest":      "The request is invalid.",
}

// UserMessage turns err into a short sentence for the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg, ok := messages[errs.Kind(err)]; ok {
		return msg
	}
	return "Something went wrong."
}

type Notifier struct {
	out     io.Writer
	verbose bool
}

func New(out io.Writer, verbose bool) *Notifier {
	if out == nil {
		out = os.Stderr
	}
	return &Notifier{out: out, verbose: verbose}
}

func (n *Notifier) Success(format string, args ...any) {
	n.line(StyleSuccess.Render(IconSuccess + " " + fmt.Sprintf(format, args...)))
}

func (n *Notifier) Info(format string, args ...any) {
	n.line(StyleInfo.Render(IconInfo + " " + fmt.Sprintf(format, args...)))
}

func (n *Notifier) Warn(format string, args ...any) {
	n.line(StyleWarning.Render(IconWarning + " " + fmt.Sprintf(format, args...)))
}

// Status prints one label/value row.
func (n *Notifier) Status(label string, value any) {
	n.line(StyleLabel.Render(label) + " " + fmt.Sprint(value))
}

// Error prints the user message for err, plus the cause when verbose or unclassified.
func (n *Notifier) Error(err error) {
	if err == nil {
		return
	}
	n.line(StyleError.Render(IconError + " " + UserMessage(err)))
	if n.verbose || errs.Kind(err) == "Internal" {
		n.line(StyleMuted.Render("  " + err.Error()))
	}
}

func (n *Notifier) line(s string) {
	_, _ = fmt.Fprintln(n.out, s)
}
