package chains

import "strings"

const (
	DefaultTxExplorer   = "https://explorer.solana.com/tx/{signature}?cluster={cluster}"
	DefaultMintExplorer = "https://solscan.io/tx/{signature}?cluster={cluster}"
)

// ExplorerLink fills the {signature} and {cluster} placeholders of template.
func ExplorerLink(template, signature, cluster string) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultTxExplorer
	}
	return strings.NewReplacer(
		"{signature}", signature,
		"{cluster}", cluster,
	).Replace(template)
}
