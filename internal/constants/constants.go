package constants

const (
	AppName      = "vehicular-control"
	SessionFile  = "session.json"
	KeystoreFile = "keystore.json"

	SchemaV1      = 1
	FilePerm      = 0o600
	DirectoryPerm = 0o700

	// SOL has 9 decimals; 1 SOL = 1_000_000_000 lamports.
	NativeDecimals = 9

	// AAD for the keystore envelope (must match on decrypt).
	KeystoreAAD = "vehicular-control:keystore:v1"

	// PayerKeyEnv holds the base58 secret key of the server-side mint payer.
	PayerKeyEnv = "PAYER_PRIVATE_KEY"

	// EnvSelector picks the state sub-folder: local, develop or empty (prod).
	EnvSelector = "VC_ENV"

	// DefaultUploadName is the file name used when wrapping bytes fetched from a URL.
	DefaultUploadName = "image.png"
)
